package metrics

import "github.com/prometheus/client_golang/prometheus"

// AuthMetrics holds Prometheus metrics for signup, login and bearer checks.
type AuthMetrics struct {
	LoginAttempts *prometheus.CounterVec
	Signups       *prometheus.CounterVec
	Rejections    *prometheus.CounterVec
}

// NewAuthMetrics creates and registers authentication metrics on the given registry.
func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	m := &AuthMetrics{
		LoginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts, by result.",
		}, []string{"result"}),
		Signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "signups_total",
			Help:      "Total number of signup attempts, by result.",
		}, []string{"result"}),
		Rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "rejections_total",
			Help:      "Total number of requests rejected by the auth guard, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.LoginAttempts, m.Signups, m.Rejections)
	return m
}
