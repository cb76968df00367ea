package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	recorder := New()

	recorder.FocusSessionCompleted()
	recorder.FocusSessionCompleted()
	recorder.BreathingCycleCompleted("478")
	recorder.SaveFailed("session")
	recorder.SetOutboxPending(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(recorder.focusSessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.breathingCycles.WithLabelValues("478")))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.saveFailures.WithLabelValues("session")))
	assert.Equal(t, 3.0, testutil.ToFloat64(recorder.outboxPending))
}

func TestHandlerExposesMetrics(t *testing.T) {
	recorder := New()
	recorder.FocusSessionCompleted()

	server := httptest.NewServer(recorder.Handler())
	defer server.Close()

	response, err := server.Client().Get(server.URL)
	require.NoError(t, err)
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "calmtide_focus_sessions_completed_total 1"))
}
