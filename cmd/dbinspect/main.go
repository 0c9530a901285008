// Package main inspects a Mindleaf database: record counts per collection,
// the dashboard aggregates, and whatever insights the current data yields.
//
// Usage:
//
//	MINDLEAF_DATA_PATH=~/.mindleaf go run ./cmd/dbinspect
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/mindleafapp/mindleaf/internal/config"
	"github.com/mindleafapp/mindleaf/internal/search"
	"github.com/mindleafapp/mindleaf/internal/service"
	"github.com/mindleafapp/mindleaf/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	s, err := store.New(cfg.DatabasePath(), nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	books := service.NewBookService(s, search.NewNoopIndexer(), logger)
	sessions := service.NewSessionService(s, books, logger)
	journal := service.NewJournalService(s, search.NewNoopIndexer(), logger)
	moods := service.NewMoodService(s, logger)
	stats := service.NewStatsService(s, sessions, journal, moods, logger)
	insights := service.NewInsightService(moods, sessions, logger)

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	if err := printCounts(ctx, s); err != nil {
		log.Fatalf("Failed to count records: %v", err)
	}
	if err := printDashboard(ctx, stats); err != nil {
		log.Fatalf("Failed to compute dashboard: %v", err)
	}
	if err := printInsights(ctx, insights); err != nil {
		log.Fatalf("Failed to generate insights: %v", err)
	}
}

func printCounts(ctx context.Context, s *store.Store) error {
	counts := []struct {
		name  string
		count func() (int, error)
	}{
		{"Books", func() (int, error) { return s.Books.Count(ctx, nil) }},
		{"Sessions", func() (int, error) { return s.Sessions.Count(ctx, nil) }},
		{"Journal", func() (int, error) { return s.Journal.Count(ctx, nil) }},
		{"Moods", func() (int, error) { return s.Moods.Count(ctx, nil) }},
		{"Goals", func() (int, error) { return s.Goals.Count(ctx, nil) }},
		{"Achievements", func() (int, error) { return s.Achievements.Count(ctx, nil) }},
		{"Tags", func() (int, error) { return s.Tags.Count(ctx, nil) }},
	}

	fmt.Println("Record counts:")
	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return err
		}
		fmt.Printf("  %-13s %d\n", c.name, n)
	}
	fmt.Println()
	return nil
}

func printDashboard(ctx context.Context, stats *service.StatsService) error {
	d, err := stats.Dashboard(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Dashboard:")
	fmt.Printf("  Reading:   %d books (%d in progress, %d completed), %d sessions, %d min total\n",
		d.TotalBooks, d.BooksReading, d.BooksCompleted, d.TotalSessions, d.TotalReadingMinutes)
	fmt.Printf("  Writing:   %d journal entries, %d quotes saved\n", d.JournalEntries, d.TotalQuotes)
	fmt.Printf("  Wellness:  %d mood entries, %d active goals, %d achievements\n",
		d.MoodEntries, d.ActiveGoals, d.Achievements)
	fmt.Printf("  Last 30d:  read on %d days, journaled on %d, logged mood on %d\n",
		d.ReadingDays30, d.JournalingDays30, d.MoodLoggingDays30)
	fmt.Println()
	return nil
}

func printInsights(ctx context.Context, insights *service.InsightService) error {
	list, err := insights.Generate(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Insights:")
	if len(list) == 0 {
		fmt.Println("  (not enough data yet)")
		return nil
	}
	for _, in := range list {
		fmt.Printf("  %s %s\n", in.Icon, in.Title)
		fmt.Printf("     %s\n", in.Description)
	}
	return nil
}
