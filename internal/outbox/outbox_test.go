package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"calmtide/internal/core/model"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string) model.CompletedSessionRecord {
	return model.CompletedSessionRecord{ID: id, Label: "Focus", DurationMinutes: 25}
}

func newTestOutbox(capacity int) (*Outbox, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return New(Config{Capacity: capacity, RatePerSecond: 1000, Logger: logger}), hook
}

func TestEnqueueDropsOldestWhenFull(t *testing.T) {
	box, hook := newTestOutbox(2)

	_, overflow := box.Enqueue(record("a"))
	assert.False(t, overflow)
	box.Enqueue(record("b"))
	dropped, overflow := box.Enqueue(record("c"))

	assert.True(t, overflow)
	assert.Equal(t, "a", dropped.ID)
	require.Len(t, box.Pending(), 2)
	assert.Equal(t, "b", box.Pending()[0].ID)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestFlushSavesInOrder(t *testing.T) {
	box, _ := newTestOutbox(10)
	box.Enqueue(record("a"))
	box.Enqueue(record("b"))
	box.Enqueue(record("c"))

	var saved []string
	count, err := box.Flush(context.Background(), func(_ context.Context, rec model.CompletedSessionRecord) error {
		saved = append(saved, rec.ID)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"a", "b", "c"}, saved)
	assert.Equal(t, 0, box.Len())
}

func TestFlushStopsAtFirstFailure(t *testing.T) {
	box, _ := newTestOutbox(10)
	box.Enqueue(record("a"))
	box.Enqueue(record("b"))
	box.Enqueue(record("c"))

	failure := errors.New("connection refused")
	count, err := box.Flush(context.Background(), func(_ context.Context, rec model.CompletedSessionRecord) error {
		if rec.ID == "b" {
			return failure
		}
		return nil
	})

	require.ErrorIs(t, err, failure)
	assert.Equal(t, 1, count)
	pending := box.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "b", pending[0].ID)
}

func TestFlushHonoursContext(t *testing.T) {
	logger, _ := test.NewNullLogger()
	box := New(Config{RatePerSecond: 0.001, Logger: logger})
	box.Enqueue(record("a"))
	box.Enqueue(record("b"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	count, err := box.Flush(ctx, func(context.Context, model.CompletedSessionRecord) error { return nil })

	require.Error(t, err)
	assert.Equal(t, 1, count, "the first record uses the initial burst token")
	assert.Equal(t, 1, box.Len())
}

func TestOnChangeReportsPending(t *testing.T) {
	box, _ := newTestOutbox(10)
	var counts []int
	box.SetOnChange(func(pending int) { counts = append(counts, pending) })

	box.Enqueue(record("a"))
	box.Enqueue(record("b"))
	_, err := box.Flush(context.Background(), func(context.Context, model.CompletedSessionRecord) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 1, 0}, counts)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	box := New(Config{Schedule: "every so often", Logger: logger})

	err := box.Start(func(context.Context, model.CompletedSessionRecord) error { return nil })

	require.Error(t, err)
}

func TestStartFlushesOnSchedule(t *testing.T) {
	logger, _ := test.NewNullLogger()
	box := New(Config{Schedule: "@every 1s", RatePerSecond: 1000, Logger: logger})
	for i := 0; i < 3; i++ {
		box.Enqueue(record(fmt.Sprintf("id-%d", i)))
	}

	var mu sync.Mutex
	saved := 0
	require.NoError(t, box.Start(func(context.Context, model.CompletedSessionRecord) error {
		mu.Lock()
		defer mu.Unlock()
		saved++
		return nil
	}))
	defer box.Stop()

	require.Eventually(t, func() bool { return box.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 3, saved)
}
