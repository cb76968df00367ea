package report

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/metrics"
	"calmtide/internal/outbox"
	"calmtide/internal/rewards"
	"calmtide/internal/storage"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("database down")

type failingRepository struct {
	*storage.MemoryRepository
}

func (failingRepository) SaveSession(context.Context, model.CompletedSessionRecord) error {
	return errDown
}

func (failingRepository) SaveCycle(context.Context, model.CycleRecord) error {
	return errDown
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (notifier *recordingNotifier) Notify(_, message string) {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	notifier.messages = append(notifier.messages, message)
}

func (notifier *recordingNotifier) count() int {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	return len(notifier.messages)
}

func fixedNow() time.Time {
	return time.Date(2026, time.October, 18, 20, 0, 0, 0, time.UTC)
}

func TestFocusCompletedSavesAndPublishesRewards(t *testing.T) {
	repo := storage.NewMemory()
	logger, _ := test.NewNullLogger()
	recorder := metrics.New()

	reporter, err := New(Config{
		Repository: repo,
		Metrics:    recorder,
		Logger:     logger,
		Now:        fixedNow,
		NewID:      func() string { return "session-1" },
	})
	require.NoError(t, err)

	summaries := make(chan rewards.Summary, 1)
	reporter.SetOnRewards(func(summary rewards.Summary) { summaries <- summary })

	reporter.FocusCompleted(model.CompletedSessionRecord{
		Label:           "Writing",
		DurationMinutes: 25,
		CompletedAt:     fixedNow().Add(-time.Hour),
	})
	reporter.Close()

	stored, err := repo.SessionsSince(context.Background(), time.Time{})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "session-1", stored[0].ID)

	summary := <-summaries
	assert.Equal(t, 1, summary.TotalSessions)
	assert.Equal(t, 1, summary.CurrentStreak)
	assert.Equal(t, 35, summary.Points)
	assert.Contains(t, summary.Badges, rewards.BadgeFirstSession)

	expected := `
# HELP calmtide_focus_sessions_completed_total Total number of completed focus phases.
# TYPE calmtide_focus_sessions_completed_total counter
calmtide_focus_sessions_completed_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.Registry, strings.NewReader(expected),
		"calmtide_focus_sessions_completed_total"))
}

func TestFocusCompletedFailureQueuesAndNotifies(t *testing.T) {
	logger, hook := test.NewNullLogger()
	box := outbox.New(outbox.Config{Logger: logger})
	notifier := &recordingNotifier{}
	recorder := metrics.New()

	reporter, err := New(Config{
		Repository: failingRepository{storage.NewMemory()},
		Outbox:     box,
		Metrics:    recorder,
		Notifier:   notifier,
		Logger:     logger,
		Now:        fixedNow,
	})
	require.NoError(t, err)

	rewarded := false
	reporter.SetOnRewards(func(rewards.Summary) { rewarded = true })

	reporter.FocusCompleted(model.CompletedSessionRecord{
		Label:           "Focus",
		DurationMinutes: 25,
		CompletedAt:     fixedNow(),
	})
	reporter.Close()

	require.Equal(t, 1, box.Len())
	assert.NotEmpty(t, box.Pending()[0].ID)
	assert.Equal(t, 1, notifier.count())
	assert.False(t, rewarded)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "failed to save focus session", entry.Message)

	expected := `
# HELP calmtide_record_save_failures_total Total number of records that failed to persist.
# TYPE calmtide_record_save_failures_total counter
calmtide_record_save_failures_total{kind="session"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(recorder.Registry, strings.NewReader(expected),
		"calmtide_record_save_failures_total"))
}

func TestCycleCompletedSavesWithoutNotifying(t *testing.T) {
	repo := storage.NewMemory()
	notifier := &recordingNotifier{}
	logger, _ := test.NewNullLogger()

	reporter, err := New(Config{Repository: repo, Notifier: notifier, Logger: logger})
	require.NoError(t, err)

	reporter.CycleCompleted(model.CycleRecord{Exercise: "478", Cycle: 1, Duration: 19 * time.Second})
	reporter.CycleCompleted(model.CycleRecord{Exercise: "478", Cycle: 2, Duration: 19 * time.Second})
	reporter.Close()

	assert.Equal(t, 2, repo.Cycles())
	assert.Zero(t, notifier.count())
}

func TestCycleFailureIsLoggedOnly(t *testing.T) {
	logger, hook := test.NewNullLogger()
	box := outbox.New(outbox.Config{Logger: logger})
	notifier := &recordingNotifier{}

	reporter, err := New(Config{
		Repository: failingRepository{storage.NewMemory()},
		Outbox:     box,
		Notifier:   notifier,
		Logger:     logger,
	})
	require.NoError(t, err)

	reporter.CycleCompleted(model.CycleRecord{Exercise: "box", Cycle: 1})
	reporter.Close()

	assert.Zero(t, box.Len())
	assert.Zero(t, notifier.count())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRetryDrainsOutbox(t *testing.T) {
	repo := storage.NewMemory()
	logger, _ := test.NewNullLogger()
	box := outbox.New(outbox.Config{Logger: logger, RatePerSecond: 1000})
	box.Enqueue(model.CompletedSessionRecord{ID: "a", DurationMinutes: 25, CompletedAt: fixedNow()})
	box.Enqueue(model.CompletedSessionRecord{ID: "b", DurationMinutes: 25, CompletedAt: fixedNow()})

	reporter, err := New(Config{Repository: repo, Outbox: box, Logger: logger, Now: fixedNow})
	require.NoError(t, err)

	saved, err := box.Flush(context.Background(), reporter.Retry)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	assert.Zero(t, box.Len())

	summary, err := reporter.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalSessions)
}

func TestNewRequiresRepository(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNotifierFunc(t *testing.T) {
	var got string
	NotifierFunc(func(_, message string) { got = message }).Notify("t", "hello")
	assert.Equal(t, "hello", got)
}
