// Package outbox holds completed sessions that could not be saved and retries them.
package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"calmtide/internal/core/model"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// SaveFunc persists a single record.
type SaveFunc func(ctx context.Context, record model.CompletedSessionRecord) error

// Config contains outbox options.
type Config struct {
	Capacity      int
	Schedule      string
	RatePerSecond float64
	FlushTimeout  time.Duration
	Logger        logrus.FieldLogger
}

// Outbox is a bounded FIFO of records awaiting persistence.
type Outbox struct {
	mu       sync.Mutex
	flushMu  sync.Mutex
	items    []model.CompletedSessionRecord
	config   Config
	limiter  *rate.Limiter
	log      logrus.FieldLogger
	cron     *cron.Cron
	onChange func(pending int)
}

// New creates an empty outbox.
func New(config Config) *Outbox {
	if config.Capacity <= 0 {
		config.Capacity = 100
	}
	if config.Schedule == "" {
		config.Schedule = "@every 1m"
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = 2
	}
	if config.FlushTimeout <= 0 {
		config.FlushTimeout = 30 * time.Second
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}

	return &Outbox{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RatePerSecond), 1),
		log:     config.Logger.WithField("component", "outbox"),
	}
}

// SetOnChange registers a callback receiving the pending count after every change.
func (box *Outbox) SetOnChange(handler func(pending int)) {
	box.mu.Lock()
	defer box.mu.Unlock()
	box.onChange = handler
}

// Enqueue appends a record. When full, the oldest record is dropped and returned.
func (box *Outbox) Enqueue(record model.CompletedSessionRecord) (model.CompletedSessionRecord, bool) {
	box.mu.Lock()
	var dropped model.CompletedSessionRecord
	overflow := len(box.items) >= box.config.Capacity
	if overflow {
		dropped = box.items[0]
		box.items = box.items[1:]
	}
	box.items = append(box.items, record)
	pending := len(box.items)
	handler := box.onChange
	box.mu.Unlock()

	if overflow {
		box.log.WithFields(logrus.Fields{
			"dropped_id":   dropped.ID,
			"completed_at": dropped.CompletedAt,
		}).Warn("outbox full, dropping oldest session")
	}
	if handler != nil {
		handler(pending)
	}
	return dropped, overflow
}

// Len returns the number of pending records.
func (box *Outbox) Len() int {
	box.mu.Lock()
	defer box.mu.Unlock()
	return len(box.items)
}

// Pending returns a copy of the pending records, oldest first.
func (box *Outbox) Pending() []model.CompletedSessionRecord {
	box.mu.Lock()
	defer box.mu.Unlock()
	return append([]model.CompletedSessionRecord(nil), box.items...)
}

// Flush saves pending records in order and stops at the first failure.
// It returns the number of records saved.
func (box *Outbox) Flush(ctx context.Context, save SaveFunc) (int, error) {
	box.flushMu.Lock()
	defer box.flushMu.Unlock()

	saved := 0
	for {
		box.mu.Lock()
		if len(box.items) == 0 {
			box.mu.Unlock()
			return saved, nil
		}
		head := box.items[0]
		box.mu.Unlock()

		if err := box.limiter.Wait(ctx); err != nil {
			return saved, fmt.Errorf("wait for retry slot: %w", err)
		}
		if err := save(ctx, head); err != nil {
			return saved, fmt.Errorf("retry session %s: %w", head.ID, err)
		}

		box.remove(head.ID)
		saved++
	}
}

// Start schedules periodic flushes.
func (box *Outbox) Start(save SaveFunc) error {
	scheduler := cron.New()
	_, err := scheduler.AddFunc(box.config.Schedule, func() {
		if box.Len() == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), box.config.FlushTimeout)
		defer cancel()

		saved, err := box.Flush(ctx, save)
		entry := box.log.WithFields(logrus.Fields{
			"saved":   saved,
			"pending": box.Len(),
		})
		if err != nil {
			entry.WithError(err).Warn("outbox flush incomplete")
			return
		}
		entry.Info("outbox flushed")
	})
	if err != nil {
		return fmt.Errorf("schedule outbox flush %q: %w", box.config.Schedule, err)
	}

	box.mu.Lock()
	box.cron = scheduler
	box.mu.Unlock()
	scheduler.Start()
	return nil
}

// Stop halts scheduled flushes and waits for a running flush to finish.
func (box *Outbox) Stop() {
	box.mu.Lock()
	scheduler := box.cron
	box.cron = nil
	box.mu.Unlock()

	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
}

func (box *Outbox) remove(id string) {
	box.mu.Lock()
	for index, item := range box.items {
		if item.ID == id {
			box.items = append(box.items[:index], box.items[index+1:]...)
			break
		}
	}
	pending := len(box.items)
	handler := box.onChange
	box.mu.Unlock()

	if handler != nil {
		handler(pending)
	}
}
