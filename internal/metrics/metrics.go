package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder holds the application collectors.
type Recorder struct {
	Registry *prometheus.Registry

	focusSessions   prometheus.Counter
	breathingCycles *prometheus.CounterVec
	saveFailures    *prometheus.CounterVec
	outboxPending   prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	recorder := &Recorder{
		Registry: prometheus.NewRegistry(),
		focusSessions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "calmtide",
				Name:      "focus_sessions_completed_total",
				Help:      "Total number of completed focus phases.",
			},
		),
		breathingCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "calmtide",
				Name:      "breathing_cycles_total",
				Help:      "Total number of completed breathing cycles.",
			},
			[]string{"exercise"},
		),
		saveFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "calmtide",
				Name:      "record_save_failures_total",
				Help:      "Total number of records that failed to persist.",
			},
			[]string{"kind"},
		),
		outboxPending: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "calmtide",
				Name:      "outbox_pending",
				Help:      "Number of focus sessions waiting to be retried.",
			},
		),
	}

	recorder.Registry.MustRegister(
		recorder.focusSessions,
		recorder.breathingCycles,
		recorder.saveFailures,
		recorder.outboxPending,
	)
	return recorder
}

// FocusSessionCompleted counts a finished focus phase.
func (recorder *Recorder) FocusSessionCompleted() {
	recorder.focusSessions.Inc()
}

// BreathingCycleCompleted counts a finished breathing cycle.
func (recorder *Recorder) BreathingCycleCompleted(exercise string) {
	recorder.breathingCycles.WithLabelValues(exercise).Inc()
}

// SaveFailed counts a persistence failure for the given record kind.
func (recorder *Recorder) SaveFailed(kind string) {
	recorder.saveFailures.WithLabelValues(kind).Inc()
}

// SetOutboxPending reports the outbox size.
func (recorder *Recorder) SetOutboxPending(pending int) {
	recorder.outboxPending.Set(float64(pending))
}

// Handler exposes the registry in the Prometheus text format.
func (recorder *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(recorder.Registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (recorder *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", recorder.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve metrics: %w", err)
	}
	return nil
}
