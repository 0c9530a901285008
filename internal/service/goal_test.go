package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindleafapp/mindleaf/internal/domain"
	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
)

func TestGoalCreate_DefaultUnit(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "reading-time", Frequency: "daily", Target: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "minutes", goal.Unit)
	assert.True(t, goal.IsActive)

	custom, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "mood-logs", Frequency: "daily", Target: 1, Unit: "check-ins",
	})
	require.NoError(t, err)
	assert.Equal(t, "check-ins", custom.Unit)
}

func TestGoalCreate_Validation(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.goals.Create(ctx, CreateGoalInput{Type: "sleep", Frequency: "daily", Target: 8})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = env.goals.Create(ctx, CreateGoalInput{Type: "reading-time", Frequency: "hourly", Target: 5})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = env.goals.Create(ctx, CreateGoalInput{Type: "reading-time", Frequency: "daily", Target: 0})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestGoalProgress_DailyReadingTime(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "reading-time", Frequency: "daily", Target: 30,
	})
	require.NoError(t, err)

	// 15 minutes read today: halfway.
	_, err = env.sessions.Create(ctx, CreateSessionInput{BookID: bookID, Duration: 15 * 60})
	require.NoError(t, err)

	progress, err := env.goals.Progress(ctx, goal)
	require.NoError(t, err)
	assert.Equal(t, 15, progress.Current)
	assert.Equal(t, 50, progress.Percentage)

	// Overshooting caps at 100.
	_, err = env.sessions.Create(ctx, CreateSessionInput{BookID: bookID, Duration: 45 * 60})
	require.NoError(t, err)

	progress, err = env.goals.Progress(ctx, goal)
	require.NoError(t, err)
	assert.Equal(t, 60, progress.Current)
	assert.Equal(t, 100, progress.Percentage)
}

func TestGoalConsistency_WeeklyCountsAnyActivity(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "reading-time", Frequency: "weekly", Target: 120,
	})
	require.NoError(t, err)

	// Sessions on 10 distinct days within the window.
	now := time.Now()
	for day := 3; day < 13; day++ {
		_, err := env.sessions.Create(ctx, CreateSessionInput{
			BookID:    bookID,
			StartTime: now.AddDate(0, 0, -day),
			Duration:  10 * 60,
		})
		require.NoError(t, err)
	}

	consistency, err := env.goals.Consistency(ctx, goal, 30)
	require.NoError(t, err)
	assert.Equal(t, 10, consistency.CompletedDays)
	assert.Equal(t, 31, consistency.TotalDays)
	assert.Equal(t, 32, consistency.Percentage)
}

func TestGoalConsistency_DailyRequiresFullTarget(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()
	bookID := createReadingBook(t, env, "Dune", 412)

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "reading-time", Frequency: "daily", Target: 30,
	})
	require.NoError(t, err)

	now := time.Now()
	// Yesterday fell short of the target; today met it.
	_, err = env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, StartTime: now.AddDate(0, 0, -1), Duration: 15 * 60,
	})
	require.NoError(t, err)
	_, err = env.sessions.Create(ctx, CreateSessionInput{
		BookID: bookID, StartTime: now, Duration: 30 * 60,
	})
	require.NoError(t, err)

	consistency, err := env.goals.Consistency(ctx, goal, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, consistency.CompletedDays)
	assert.Equal(t, 2, consistency.TotalDays)
	assert.Equal(t, 50, consistency.Percentage)
}

func TestGoalPause(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "mood-logs", Frequency: "daily", Target: 1,
	})
	require.NoError(t, err)

	err = env.goals.Pause(ctx, goal.ID, time.Now().Add(-time.Hour))
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	until := time.Now().Add(24 * time.Hour)
	require.NoError(t, env.goals.Pause(ctx, goal.ID, until))

	paused, err := env.goals.GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.True(t, paused.Paused(time.Now()))

	require.NoError(t, env.goals.Unpause(ctx, goal.ID))
	unpaused, err := env.goals.GetByID(ctx, goal.ID)
	require.NoError(t, err)
	assert.False(t, unpaused.Paused(time.Now()))
}

func TestGoalDeactivate_KeepsGoal(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	goal, err := env.goals.Create(ctx, CreateGoalInput{
		Type: "journal-entries", Frequency: "weekly", Target: 3,
	})
	require.NoError(t, err)

	require.NoError(t, env.goals.Deactivate(ctx, goal.ID))

	active, err := env.goals.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := env.goals.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, env.goals.Reactivate(ctx, goal.ID))
	active, err = env.goals.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestGoalEncouragement_NeverShaming(t *testing.T) {
	env := setupServices(t)

	msg := env.goals.EncouragementMessage(domain.GoalProgress{Current: 0, Target: 30, Percentage: 0})
	assert.Equal(t, "Whenever you're ready. No pressure.", msg)

	msg = env.goals.EncouragementMessage(domain.GoalProgress{Current: 30, Target: 30, Percentage: 100})
	assert.Equal(t, "Goal reached! Wonderful work.", msg)
}
