package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultError   = "error"
)

// AuthMetrics counts authentication outcomes. A nil *AuthMetrics is valid and records nothing.
type AuthMetrics struct {
	registry *prometheus.Registry
	logins   *prometheus.CounterVec
	renewals *prometheus.CounterVec
	logouts  prometheus.Counter
	issued   *prometheus.CounterVec
	denied   prometheus.Counter
}

func New() *AuthMetrics {
	reg := prometheus.NewRegistry()
	m := &AuthMetrics{
		registry: reg,
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_login_total",
			Help: "Password logins by result.",
		}, []string{"result"}),
		renewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_refresh_total",
			Help: "Refresh-token renewals by result.",
		}, []string{"result"}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_logout_total",
			Help: "Logouts.",
		}),
		issued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "portal_tokens_issued_total",
			Help: "Signed tokens by kind.",
		}, []string{"kind"}),
		denied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "portal_authorization_denied_total",
			Help: "Mutations rejected by the permission rules.",
		}),
	}
	reg.MustRegister(
		m.logins, m.renewals, m.logouts, m.issued, m.denied,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry so other collectors (gRPC) can share it.
func (m *AuthMetrics) Registry() *prometheus.Registry { return m.registry }

func (m *AuthMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *AuthMetrics) Login(result string) {
	if m != nil {
		m.logins.WithLabelValues(result).Inc()
	}
}

func (m *AuthMetrics) Renewal(result string) {
	if m != nil {
		m.renewals.WithLabelValues(result).Inc()
	}
}

func (m *AuthMetrics) Logout() {
	if m != nil {
		m.logouts.Inc()
	}
}

func (m *AuthMetrics) Issued(kind string) {
	if m != nil {
		m.issued.WithLabelValues(kind).Inc()
	}
}

func (m *AuthMetrics) Denied() {
	if m != nil {
		m.denied.Inc()
	}
}
