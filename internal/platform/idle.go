package platform

import (
	"time"

	"calmtide/internal/core/timekeeper"
)

// IdleProvider returns the duration since last user input.
type IdleProvider interface {
	IdleDuration() (time.Duration, error)
}

var _ timekeeper.IdleChecker = IdleProvider(nil)

// NewIdleProvider returns a platform-specific idle provider.
// Providers that cannot measure idle time return timekeeper.ErrIdleUnsupported.
func NewIdleProvider() IdleProvider {
	return newIdleProvider()
}

type unsupportedIdleProvider struct{}

func (unsupportedIdleProvider) IdleDuration() (time.Duration, error) {
	return 0, timekeeper.ErrIdleUnsupported
}
