// Package metrics exposes bot counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rescuebot"

// Recorder owns a private registry so tests and multiple bots never collide.
// A nil *Recorder records nothing.
type Recorder struct {
	registry         *prometheus.Registry
	handled          *prometheus.CounterVec
	updateDuration   *prometheus.HistogramVec
	reports          *prometheus.CounterVec
	deliveryFailures prometheus.Counter
	sendFailures     *prometheus.CounterVec
	dropped          *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		handled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_handled_total",
			Help:      "Updates handled, by handler and status.",
		}, []string{"handler", "status"}),
		updateDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "update_duration_seconds",
			Help:      "Time spent handling an update, by update kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		reports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_submitted_total",
			Help:      "Reports delivered to the rescue group, by kind.",
		}, []string{"kind"}),
		deliveryFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_delivery_failures_total",
			Help:      "Reports that could not be delivered to the rescue group.",
		}),
		sendFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Queued Telegram sends that failed after retries, by action.",
		}, []string{"action"}),
		dropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_dropped_total",
			Help:      "Updates dropped before reaching a handler, by reason.",
		}, []string{"reason"}),
	}
}

// ObserveHandled counts one handled update.
func (r *Recorder) ObserveHandled(handler, status string) {
	if r == nil {
		return
	}
	if handler == "" {
		handler = "unknown"
	}
	r.handled.WithLabelValues(handler, status).Inc()
}

// ObserveUpdate records how long an update of the given kind took.
func (r *Recorder) ObserveUpdate(kind string, took time.Duration) {
	if r == nil {
		return
	}
	r.updateDuration.WithLabelValues(kind).Observe(took.Seconds())
}

func (r *Recorder) ReportSubmitted(anonymous bool) {
	if r == nil {
		return
	}
	kind := "named"
	if anonymous {
		kind = "anonymous"
	}
	r.reports.WithLabelValues(kind).Inc()
}

func (r *Recorder) DeliveryFailed() {
	if r == nil {
		return
	}
	r.deliveryFailures.Inc()
}

// SendFailed matches sender.Options.OnFailure.
func (r *Recorder) SendFailed(action string, _ error) {
	if r == nil {
		return
	}
	r.sendFailures.WithLabelValues(action).Inc()
}

// Dropped counts an update rejected by middleware ("duplicate", "rate_limited").
func (r *Recorder) Dropped(reason string) {
	if r == nil {
		return
	}
	r.dropped.WithLabelValues(reason).Inc()
}

// TrackSessions exports fn as the active sessions gauge.
func (r *Recorder) TrackSessions(fn func() int) {
	if r == nil || fn == nil {
		return
	}
	promauto.With(r.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Report forms currently in progress.",
	}, func() float64 { return float64(fn()) })
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
