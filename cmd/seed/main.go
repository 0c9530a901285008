// Package main provides a tool to seed the database with demo wellness data.
//
// It creates books, reading sessions, mood entries, journal entries, and
// goals over the past two weeks so the stats, insight, and achievement
// features have something to chew on.
//
// Usage:
//
//	MINDLEAF_DATA_PATH=~/.mindleaf go run ./cmd/seed
//	go run ./cmd/seed --clear  # Wipe existing data first
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/service"
	"github.com/mindleafapp/mindleaf/internal/store"
)

var clearFirst = flag.Bool("clear", false, "Clear existing data before seeding")

// demoBooks are the titles seeded into the library.
var demoBooks = []struct {
	title  string
	author string
	pages  int
	tags   []string
}{
	{"Dune", "Frank Herbert", 412, []string{"sci-fi"}},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", 304, []string{"sci-fi"}},
	{"Meditations", "Marcus Aurelius", 256, []string{"philosophy"}},
	{"The Overstory", "Richard Powers", 502, []string{"fiction", "nature"}},
	{"Why We Sleep", "Matthew Walker", 368, []string{"science", "health"}},
}

var demoThoughts = []string{
	"The worldbuilding here is incredible.",
	"Slow chapter but the prose carries it.",
	"Did not want to put this down.",
	"Rereading this passage tomorrow.",
}

var demoJournalLines = []string{
	"Quiet morning. Read with coffee before work and it set the tone for the day.",
	"Felt scattered today, but journaling helps me find the thread again.",
	"Long walk, then an hour with a book. The good kind of tired.",
	"Struggled to focus. Keeping the streak alive anyway.",
	"Finished a chapter that genuinely changed how I think about rest.",
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	fmt.Printf("Opening database at: %s\n", cfg.DatabasePath())

	s, err := store.New(cfg.DatabasePath(), nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	if *clearFirst {
		fmt.Println("Clearing existing data...")
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
	}

	if err := s.SeedDefaultTags(ctx); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	books := service.NewBookService(s, search.NewNoopIndexer(), logger)
	sessions := service.NewSessionService(s, books, logger)
	journal := service.NewJournalService(s, search.NewNoopIndexer(), logger)
	moods := service.NewMoodService(s, logger)
	goals := service.NewGoalService(s, logger)
	achievements := service.NewAchievementService(s, sessions, journal, moods, logger)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Books
	bookIDs := make([]string, 0, len(demoBooks))
	for _, b := range demoBooks {
		book, err := books.Create(ctx, service.CreateBookInput{
			Title:      b.title,
			Author:     b.author,
			TotalPages: b.pages,
			Status:     "reading",
			Tags:       b.tags,
		})
		if err != nil {
			log.Printf("Failed to create book %q: %v", b.title, err)
			continue
		}
		bookIDs = append(bookIDs, book.ID)
		fmt.Printf("Created book: %s\n", book.Title)
	}

	if len(bookIDs) == 0 {
		log.Fatal("No books created, aborting")
	}

	// Reading sessions over the past 14 days
	sessionsCreated := 0
	for day := 13; day >= 0; day-- {
		// Always read today and yesterday; 70% chance on other days
		if day > 1 && rng.Float32() > 0.7 {
			continue
		}

		start := time.Date(now.Year(), now.Month(), now.Day()-day,
			7+rng.Intn(14), rng.Intn(60), 0, 0, time.Local)
		minutes := 15 + rng.Intn(45)
		end := start.Add(time.Duration(minutes) * time.Minute)

		input := service.CreateSessionInput{
			BookID:     bookIDs[rng.Intn(len(bookIDs))],
			StartTime:  start,
			EndTime:    &end,
			Duration:   minutes * 60,
			PagesRead:  5 + rng.Intn(25),
			MoodBefore: 2 + rng.Intn(3),
			MoodAfter:  3 + rng.Intn(3),
		}
		if rng.Float32() > 0.6 {
			input.Thoughts = []string{demoThoughts[rng.Intn(len(demoThoughts))]}
		}

		sess, err := sessions.Create(ctx, input)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			continue
		}
		sessionsCreated++

		if rng.Float32() > 0.7 {
			_, err := sessions.AddQuote(ctx, sess.ID,
				"A beginning is the time for taking the most delicate care.", 0)
			if err != nil {
				log.Printf("Failed to add quote: %v", err)
			}
		}
	}
	fmt.Printf("Created %d reading sessions\n", sessionsCreated)

	// Mood entries, one or two per day
	emotionsByMood := map[int][]string{
		2: {"worried", "restless"},
		3: {"balanced", "nostalgic"},
		4: {"content", "relaxed"},
		5: {"joyful", "grateful"},
	}
	moodsCreated := 0
	for day := 13; day >= 0; day-- {
		entries := 1 + rng.Intn(2)
		for range entries {
			level := 2 + rng.Intn(4)
			ts := time.Date(now.Year(), now.Month(), now.Day()-day,
				8+rng.Intn(12), rng.Intn(60), 0, 0, time.Local)

			activities := []string{"reading"}
			if rng.Float32() > 0.5 {
				activities = append(activities, "rest")
			}

			_, err := moods.Create(ctx, service.CreateMoodInput{
				MoodLevel:        level,
				Timestamp:        ts,
				SpecificEmotions: emotionsByMood[level],
				ActivityTags:     activities,
			})
			if err != nil {
				log.Printf("Failed to create mood entry: %v", err)
				continue
			}
			moodsCreated++
		}
	}
	fmt.Printf("Created %d mood entries\n", moodsCreated)

	// Journal entries, a few published and one draft
	journalCreated := 0
	for i, line := range demoJournalLines {
		_, err := journal.Create(ctx, service.CreateEntryInput{
			Content:   "<p>" + line + "</p>",
			PlainText: line,
			Tags:      []string{"emotion-grateful"},
			IsDraft:   i == len(demoJournalLines)-1,
		})
		if err != nil {
			log.Printf("Failed to create journal entry: %v", err)
			continue
		}
		journalCreated++
	}
	fmt.Printf("Created %d journal entries (1 draft)\n", journalCreated)

	// Goals
	for _, g := range []service.CreateGoalInput{
		{Type: "reading-time", Frequency: "daily", Target: 30},
		{Type: "journal-entries", Frequency: "weekly", Target: 3},
		{Type: "mood-logs", Frequency: "daily", Target: 1},
	} {
		if _, err := goals.Create(ctx, g); err != nil {
			log.Printf("Failed to create goal: %v", err)
		}
	}
	fmt.Println("Created 3 goals")

	// Grant whatever the seeded data has earned
	granted, err := achievements.CheckAll(ctx)
	if err != nil {
		log.Printf("Achievement check failed: %v", err)
	} else {
		for _, a := range granted {
			fmt.Printf("Achievement unlocked: %s\n", a.Name)
		}
	}

	fmt.Println("\nSeeding complete!")
}
