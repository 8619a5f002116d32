package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registration module.
// All methods are safe to call on a nil receiver.
type Metrics struct {
	BackendCalls       *prometheus.CounterVec
	BackendDuration    *prometheus.HistogramVec
	DocumentRejections *prometheus.CounterVec
	Completions        *prometheus.CounterVec
	BlockedValidations prometheus.Counter
	OTPThrottled       prometheus.Counter
	CountdownsExpired  prometheus.Counter
	ActiveSessions     prometheus.Gauge
	SessionsEvicted    prometheus.Counter
}

// New registers the registration metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the registration metrics with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BackendCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_backend_calls_total",
			Help: "Backend calls by operation and outcome (ok, rejected, transport_error)",
		}, []string{"operation", "outcome"}),
		BackendDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enroll_backend_call_duration_seconds",
			Help:    "Latency of backend calls by operation",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"operation"}),
		DocumentRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_document_rejections_total",
			Help: "Document images rejected at attach time by reason",
		}, []string{"reason"}),
		Completions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "enroll_registrations_completed_total",
			Help: "Completed registrations by path (otp, not_required)",
		}, []string{"path"}),
		BlockedValidations: factory.NewCounter(prometheus.CounterOpts{
			Name: "enroll_blocked_validations_total",
			Help: "Data validations halted by a blocking account state",
		}),
		OTPThrottled: factory.NewCounter(prometheus.CounterOpts{
			Name: "enroll_otp_requests_throttled_total",
			Help: "OTP requests refused by the throttle",
		}),
		CountdownsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "enroll_otp_countdowns_expired_total",
			Help: "Resend countdowns that ran out before the codes were confirmed",
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "enroll_sessions_active",
			Help: "Registration sessions currently held in memory",
		}),
		SessionsEvicted: factory.NewCounter(prometheus.CounterOpts{
			Name: "enroll_sessions_evicted_total",
			Help: "Sessions evicted after their idle TTL",
		}),
	}
}

// ObserveBackendCall records one backend call outcome and its latency.
// Call with time.Now() taken before the call.
func (m *Metrics) ObserveBackendCall(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.BackendCalls.WithLabelValues(operation, outcome).Inc()
	m.BackendDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementDocumentRejected(reason string) {
	if m == nil {
		return
	}
	m.DocumentRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementCompleted(path string) {
	if m == nil {
		return
	}
	m.Completions.WithLabelValues(path).Inc()
}

func (m *Metrics) IncrementBlocked() {
	if m == nil {
		return
	}
	m.BlockedValidations.Inc()
}

func (m *Metrics) IncrementOTPThrottled() {
	if m == nil {
		return
	}
	m.OTPThrottled.Inc()
}

// IncrementCountdownExpired is shaped to serve as a countdown expiry hook.
func (m *Metrics) IncrementCountdownExpired() {
	if m == nil {
		return
	}
	m.CountdownsExpired.Inc()
}

// SetActiveSessions reports the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

func (m *Metrics) AddEvicted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsEvicted.Add(float64(n))
}
