package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r := NewRecorder()
	r.ObserveHandled("cmd.report", "ok")
	r.ObserveHandled("cmd.report", "ok")
	r.ObserveHandled("", "error")
	r.ReportSubmitted(false)
	r.ReportSubmitted(true)
	r.ReportSubmitted(true)
	r.DeliveryFailed()
	r.SendFailed("send.text", errors.New("boom"))
	r.Dropped("duplicate")
	r.ObserveUpdate("message", 20*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.handled.WithLabelValues("cmd.report", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.handled.WithLabelValues("unknown", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.reports.WithLabelValues("named")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.reports.WithLabelValues("anonymous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.deliveryFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.sendFailures.WithLabelValues("send.text")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.dropped.WithLabelValues("duplicate")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.updateDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveHandled("x", "ok")
		r.ObserveUpdate("message", time.Second)
		r.ReportSubmitted(true)
		r.DeliveryFailed()
		r.SendFailed("send.text", nil)
		r.Dropped("duplicate")
		r.TrackSessions(func() int { return 1 })
	})
}

func TestActiveSessionsGauge(t *testing.T) {
	r := NewRecorder()
	n := 3
	r.TrackSessions(func() int { return n })

	expected := `
# HELP rescuebot_active_sessions Report forms currently in progress.
# TYPE rescuebot_active_sessions gauge
rescuebot_active_sessions 3
`
	require.NoError(t, testutil.GatherAndCompare(r.Registry(), strings.NewReader(expected), "rescuebot_active_sessions"))
}

func TestServerEndpoints(t *testing.T) {
	r := NewRecorder()
	r.ReportSubmitted(false)
	healthy := true
	srv := NewServer(":0", r, map[string]Check{
		"archive": func(context.Context) error {
			if healthy {
				return nil
			}
			return errors.New("connection refused")
		},
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	healthy = false
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `rescuebot_reports_submitted_total{kind="named"} 1`)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
