// Package report persists completed sessions and breathing cycles off the timer path.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/metrics"
	"calmtide/internal/outbox"
	"calmtide/internal/rewards"
	"calmtide/internal/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	KindSession = "session"
	KindCycle   = "cycle"
)

const defaultSaveTimeout = 10 * time.Second

// Notifier shows a short message to the user.
type Notifier interface {
	Notify(title, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(title, message string)

func (fn NotifierFunc) Notify(title, message string) {
	fn(title, message)
}

// Config wires the reporter to its collaborators. Outbox, Metrics and Notifier are optional.
type Config struct {
	Repository  storage.Repository
	Outbox      *outbox.Outbox
	Metrics     *metrics.Recorder
	Notifier    Notifier
	Logger      logrus.FieldLogger
	SaveTimeout time.Duration
	Now         func() time.Time
	NewID       func() string
}

// Reporter receives completion records and stores them asynchronously.
type Reporter struct {
	repo        storage.Repository
	outbox      *outbox.Outbox
	metrics     *metrics.Recorder
	notifier    Notifier
	log         logrus.FieldLogger
	saveTimeout time.Duration
	now         func() time.Time
	newID       func() string

	mu        sync.Mutex
	onRewards func(rewards.Summary)
	wg        sync.WaitGroup
}

// New creates a reporter. A repository is required.
func New(config Config) (*Reporter, error) {
	if config.Repository == nil {
		return nil, errors.New("create reporter: repository is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.StandardLogger()
	}
	if config.SaveTimeout <= 0 {
		config.SaveTimeout = defaultSaveTimeout
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.NewID == nil {
		config.NewID = uuid.NewString
	}

	return &Reporter{
		repo:        config.Repository,
		outbox:      config.Outbox,
		metrics:     config.Metrics,
		notifier:    config.Notifier,
		log:         config.Logger.WithField("component", "report"),
		saveTimeout: config.SaveTimeout,
		now:         config.Now,
		newID:       config.NewID,
	}, nil
}

// SetOnRewards registers the callback receiving a fresh summary after each saved session.
func (reporter *Reporter) SetOnRewards(handler func(rewards.Summary)) {
	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	reporter.onRewards = handler
}

// FocusCompleted stores a finished focus phase in the background.
func (reporter *Reporter) FocusCompleted(record model.CompletedSessionRecord) {
	if record.ID == "" {
		record.ID = reporter.newID()
	}
	if reporter.metrics != nil {
		reporter.metrics.FocusSessionCompleted()
	}

	reporter.wg.Add(1)
	go func() {
		defer reporter.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), reporter.saveTimeout)
		defer cancel()

		if err := reporter.repo.SaveSession(ctx, record); err != nil {
			reporter.sessionFailed(record, err)
			return
		}
		reporter.log.WithFields(logrus.Fields{
			"id":      record.ID,
			"label":   record.Label,
			"minutes": record.DurationMinutes,
		}).Info("focus session saved")
		reporter.publishRewards(ctx)
	}()
}

// CycleCompleted stores a finished breathing cycle in the background.
func (reporter *Reporter) CycleCompleted(record model.CycleRecord) {
	if record.ID == "" {
		record.ID = reporter.newID()
	}
	if reporter.metrics != nil {
		reporter.metrics.BreathingCycleCompleted(record.Exercise)
	}

	reporter.wg.Add(1)
	go func() {
		defer reporter.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), reporter.saveTimeout)
		defer cancel()

		entry := reporter.log.WithFields(logrus.Fields{
			"id":       record.ID,
			"exercise": record.Exercise,
			"cycle":    record.Cycle,
		})
		if err := reporter.repo.SaveCycle(ctx, record); err != nil {
			if reporter.metrics != nil {
				reporter.metrics.SaveFailed(KindCycle)
			}
			entry.WithError(err).Warn("failed to save breathing cycle")
			return
		}
		entry.Debug("breathing cycle saved")
	}()
}

// Retry saves a session previously queued in the outbox.
func (reporter *Reporter) Retry(ctx context.Context, record model.CompletedSessionRecord) error {
	if err := reporter.repo.SaveSession(ctx, record); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	reporter.publishRewards(ctx)
	return nil
}

// Summary computes the current rewards summary from the repository.
func (reporter *Reporter) Summary(ctx context.Context) (rewards.Summary, error) {
	now := reporter.now()
	sessions, err := reporter.repo.SessionsSince(ctx, rewards.LookbackStart(now))
	if err != nil {
		return rewards.Summary{}, fmt.Errorf("load sessions: %w", err)
	}
	return rewards.Summarize(sessions, now), nil
}

// Close waits for in-flight saves.
func (reporter *Reporter) Close() {
	reporter.wg.Wait()
}

func (reporter *Reporter) sessionFailed(record model.CompletedSessionRecord, err error) {
	if reporter.metrics != nil {
		reporter.metrics.SaveFailed(KindSession)
	}
	reporter.log.WithError(err).WithFields(logrus.Fields{
		"id":           record.ID,
		"completed_at": record.CompletedAt,
	}).Error("failed to save focus session")

	if reporter.outbox != nil {
		reporter.outbox.Enqueue(record)
	}
	if reporter.notifier != nil {
		reporter.notifier.Notify("Calmtide", "Could not save your session. It will be retried.")
	}
}

func (reporter *Reporter) publishRewards(ctx context.Context) {
	reporter.mu.Lock()
	handler := reporter.onRewards
	reporter.mu.Unlock()
	if handler == nil {
		return
	}

	summary, err := reporter.Summary(ctx)
	if err != nil {
		reporter.log.WithError(err).Warn("failed to refresh rewards")
		return
	}
	handler(summary)
}
