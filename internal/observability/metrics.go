package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spec-kit/account-service/internal/domain"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	authz    *prometheus.CounterVec
	reissue  *prometheus.CounterVec
	logins   *prometheus.CounterVec
}

// NewMetrics registers collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_http_requests_total", Help: "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "account_http_request_duration_seconds", Help: "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_http_errors_total", Help: "HTTP errors by route and error code",
		}, []string{"path", "method", "code"}),
		authz: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_authz_decisions_total", Help: "Bearer token decisions by status",
		}, []string{"status"}),
		reissue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_token_reissue_total", Help: "Access token reissue attempts by outcome",
		}, []string{"outcome"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "account_logins_total", Help: "Login attempts by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.requests, m.latency, m.errors, m.authz, m.reissue, m.logins)
	return m
}

// RecordRequest counts a finished request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// ObserveAuthz counts a gate decision.
func (m *Metrics) ObserveAuthz(status domain.AuthzStatus) {
	if m == nil {
		return
	}
	m.authz.WithLabelValues(string(status)).Inc()
}

// ObserveReissue counts a reissue outcome.
func (m *Metrics) ObserveReissue(outcome string) {
	if m == nil {
		return
	}
	m.reissue.WithLabelValues(outcome).Inc()
}

// ObserveLogin counts a login outcome.
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}
