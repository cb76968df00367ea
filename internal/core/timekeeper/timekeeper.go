package timekeeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"calmtide/internal/core/model"
	"calmtide/internal/core/schedule"
)

// ErrIdleUnsupported indicates idle detection is not available on this system.
var ErrIdleUnsupported = errors.New("idle detection unsupported")

// IdleChecker reports the duration of user inactivity.
type IdleChecker interface {
	IdleDuration() (time.Duration, error)
}

// Config contains runtime options for TimeKeeper.
type Config struct {
	TickInterval time.Duration
	Now          func() time.Time
}

// TimeKeeper alternates focus and break phases and reports finished focus phases.
type TimeKeeper struct {
	mu              sync.Mutex
	config          model.TimeKeeperConfig
	options         Config
	state           State
	isBreak         bool
	timeLeft        int
	idleChecker     IdleChecker
	lastIdleCheck   time.Time
	events          []chan Event
	onFocusComplete func(model.CompletedSessionRecord)
	loop            *schedule.Loop
}

// New creates an idle TimeKeeper with the provided configuration.
func New(config model.TimeKeeperConfig, options Config) *TimeKeeper {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.Now == nil {
		options.Now = time.Now
	}

	keeper := &TimeKeeper{
		config:  normalizeConfig(config),
		options: options,
		state:   StateIdle,
	}
	keeper.timeLeft = keeper.focusSecondsLocked()
	keeper.loop = schedule.New(options.TickInterval, keeper.IsRunning, func(time.Time) {
		keeper.Tick()
	})
	return keeper
}

// SetIdleChecker injects an idle checker.
func (keeper *TimeKeeper) SetIdleChecker(checker IdleChecker) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.idleChecker = checker
}

// SetOnFocusPhaseComplete registers the persistence callback.
// It is invoked synchronously on the ticking goroutine, after the controller lock is released.
func (keeper *TimeKeeper) SetOnFocusPhaseComplete(handler func(model.CompletedSessionRecord)) {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	keeper.onFocusComplete = handler
}

// Subscribe registers a new observer channel.
func (keeper *TimeKeeper) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	keeper.mu.Lock()
	keeper.events = append(keeper.events, ch)
	keeper.mu.Unlock()
	return ch
}

// Run drives one tick per interval while running, until ctx is cancelled.
// Observers are closed on return.
func (keeper *TimeKeeper) Run(ctx context.Context) {
	keeper.loop.Run(ctx)

	keeper.mu.Lock()
	events := keeper.events
	keeper.events = nil
	keeper.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
}

// Start begins or resumes the countdown.
func (keeper *TimeKeeper) Start() {
	keeper.mu.Lock()
	if keeper.state == StateRunning {
		keeper.mu.Unlock()
		return
	}
	keeper.state = StateRunning
	keeper.lastIdleCheck = keeper.options.Now()
	keeper.emitLocked(keeper.eventLocked(EventStateChange, keeper.lastIdleCheck))
	keeper.mu.Unlock()
	keeper.loop.Wake()
}

// Pause freezes the countdown.
func (keeper *TimeKeeper) Pause() {
	keeper.mu.Lock()
	if keeper.state != StateRunning {
		keeper.mu.Unlock()
		return
	}
	keeper.state = StatePaused
	keeper.emitLocked(keeper.eventLocked(EventStateChange, keeper.options.Now()))
	keeper.mu.Unlock()
	keeper.loop.Wake()
}

// Reset returns to an idle focus phase.
func (keeper *TimeKeeper) Reset() {
	keeper.mu.Lock()
	keeper.state = StateIdle
	keeper.isBreak = false
	keeper.timeLeft = keeper.focusSecondsLocked()
	keeper.emitLocked(keeper.eventLocked(EventStateChange, keeper.options.Now()))
	keeper.mu.Unlock()
	keeper.loop.Wake()
}

// Configure applies session settings. The label is always applied; durations
// are ignored while running and the method reports false in that case.
// Non-positive durations and an empty label leave the current values untouched.
func (keeper *TimeKeeper) Configure(session model.SessionConfig) bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()

	if session.SessionLabel != "" {
		keeper.config.Session.SessionLabel = session.SessionLabel
	}
	if keeper.state == StateRunning {
		return false
	}

	if session.FocusDurationMinutes > 0 {
		keeper.config.Session.FocusDurationMinutes = session.FocusDurationMinutes
	}
	if session.BreakDurationMinutes > 0 {
		keeper.config.Session.BreakDurationMinutes = session.BreakDurationMinutes
	}
	if keeper.state == StateIdle && !keeper.isBreak {
		keeper.timeLeft = keeper.focusSecondsLocked()
	}
	keeper.emitLocked(keeper.eventLocked(EventStateChange, keeper.options.Now()))
	return true
}

// UpdateConfig applies idle settings and, when allowed, session settings.
func (keeper *TimeKeeper) UpdateConfig(config model.TimeKeeperConfig) bool {
	config = normalizeConfig(config)

	keeper.mu.Lock()
	keeper.config.IdlePauseEnabled = config.IdlePauseEnabled
	keeper.config.IdlePauseAfter = config.IdlePauseAfter
	keeper.config.IdleCheckInterval = config.IdleCheckInterval
	keeper.mu.Unlock()

	return keeper.Configure(config.Session)
}

// Config returns the active configuration.
func (keeper *TimeKeeper) Config() model.TimeKeeperConfig {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.config
}

// IsRunning reports whether the countdown is advancing.
func (keeper *TimeKeeper) IsRunning() bool {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return keeper.state == StateRunning
}

// DisplayState returns a snapshot for rendering.
func (keeper *TimeKeeper) DisplayState() DisplayState {
	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	return DisplayState{
		State:         keeper.state,
		TimeLeft:      keeper.timeLeft,
		IsBreak:       keeper.isBreak,
		IsRunning:     keeper.state == StateRunning,
		FormattedTime: FormatTime(keeper.timeLeft),
		Label:         keeper.config.Session.SessionLabel,
	}
}

// Tick advances the countdown by one second.
func (keeper *TimeKeeper) Tick() {
	now := keeper.options.Now()
	if keeper.pauseIfIdle(now) {
		keeper.loop.Wake()
		return
	}

	keeper.mu.Lock()
	if keeper.state != StateRunning {
		keeper.mu.Unlock()
		return
	}

	keeper.timeLeft--
	if keeper.timeLeft > 0 {
		keeper.emitLocked(keeper.eventLocked(EventProgress, now))
		keeper.mu.Unlock()
		return
	}

	var record *model.CompletedSessionRecord
	if keeper.isBreak {
		keeper.isBreak = false
		keeper.timeLeft = keeper.focusSecondsLocked()
	} else {
		record = &model.CompletedSessionRecord{
			Label:           keeper.config.Session.SessionLabel,
			DurationMinutes: keeper.config.Session.FocusDurationMinutes,
			CompletedAt:     now,
		}
		completed := keeper.eventLocked(EventFocusComplete, now)
		completed.Record = record
		keeper.emitLocked(completed)
		keeper.isBreak = true
		keeper.timeLeft = keeper.breakSecondsLocked()
	}
	keeper.emitLocked(keeper.eventLocked(EventStateChange, now))
	handler := keeper.onFocusComplete
	keeper.mu.Unlock()

	if record != nil && handler != nil {
		handler(*record)
	}
}

// pauseIfIdle queries the idle checker without holding the lock and pauses a
// running focus phase once the user has been away long enough.
func (keeper *TimeKeeper) pauseIfIdle(now time.Time) bool {
	keeper.mu.Lock()
	checker := keeper.idleCheckDueLocked(now)
	keeper.mu.Unlock()
	if checker == nil {
		return false
	}

	idleDuration, err := checker.IdleDuration()

	keeper.mu.Lock()
	defer keeper.mu.Unlock()
	if keeper.state != StateRunning || keeper.isBreak {
		return false
	}
	if err != nil {
		if errors.Is(err, ErrIdleUnsupported) {
			keeper.config.IdlePauseEnabled = false
		}
		event := keeper.eventLocked(EventIdleError, now)
		event.Message = err.Error()
		keeper.emitLocked(event)
		return false
	}
	if idleDuration < keeper.config.IdlePauseAfter {
		return false
	}

	keeper.state = StatePaused
	event := keeper.eventLocked(EventIdlePause, now)
	event.Message = fmt.Sprintf("paused after %s idle", idleDuration.Round(time.Second))
	keeper.emitLocked(event)
	keeper.emitLocked(keeper.eventLocked(EventStateChange, now))
	return true
}

func (keeper *TimeKeeper) idleCheckDueLocked(now time.Time) IdleChecker {
	if keeper.state != StateRunning || keeper.isBreak {
		return nil
	}
	if !keeper.config.IdlePauseEnabled || keeper.idleChecker == nil {
		return nil
	}
	if !keeper.lastIdleCheck.IsZero() && now.Sub(keeper.lastIdleCheck) < keeper.config.IdleCheckInterval {
		return nil
	}
	keeper.lastIdleCheck = now
	return keeper.idleChecker
}

func (keeper *TimeKeeper) focusSecondsLocked() int {
	return keeper.config.Session.FocusDurationMinutes * 60
}

func (keeper *TimeKeeper) breakSecondsLocked() int {
	return keeper.config.Session.BreakDurationMinutes * 60
}

func (keeper *TimeKeeper) phaseProgressLocked() float64 {
	total := keeper.focusSecondsLocked()
	if keeper.isBreak {
		total = keeper.breakSecondsLocked()
	}
	if total <= 0 {
		return 1
	}
	progress := float64(total-keeper.timeLeft) / float64(total)
	if progress < 0 {
		return 0
	}
	if progress > 1 {
		return 1
	}
	return progress
}

func (keeper *TimeKeeper) eventLocked(eventType EventType, now time.Time) Event {
	return Event{
		Type:     eventType,
		State:    keeper.state,
		IsBreak:  keeper.isBreak,
		TimeLeft: keeper.timeLeft,
		Progress: keeper.phaseProgressLocked(),
		At:       now,
	}
}

func (keeper *TimeKeeper) emitLocked(event Event) {
	for _, ch := range keeper.events {
		select {
		case ch <- event:
		default:
		}
	}
}

// FormatTime renders seconds as MM:SS.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func normalizeConfig(config model.TimeKeeperConfig) model.TimeKeeperConfig {
	defaults := model.DefaultSessionConfig()
	if config.Session.FocusDurationMinutes <= 0 {
		config.Session.FocusDurationMinutes = defaults.FocusDurationMinutes
	}
	if config.Session.BreakDurationMinutes <= 0 {
		config.Session.BreakDurationMinutes = defaults.BreakDurationMinutes
	}
	if config.Session.SessionLabel == "" {
		config.Session.SessionLabel = defaults.SessionLabel
	}
	if config.IdlePauseAfter <= 0 {
		config.IdlePauseAfter = 5 * time.Minute
	}
	if config.IdleCheckInterval <= 0 {
		config.IdleCheckInterval = 5 * time.Second
	}
	return config
}
