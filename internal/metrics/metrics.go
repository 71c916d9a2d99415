package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks auth flow outcomes. A nil *Metrics is a valid no-op receiver
// so tests can skip registration entirely.
type Metrics struct {
	loginSuccess  prometheus.Counter
	loginFailure  *prometheus.CounterVec
	accountLink   prometheus.Counter
	accountUnlink prometheus.Counter
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)

	return &Metrics{
		loginSuccess: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "banssharp",
			Subsystem: "auth",
			Name:      "login_success_total",
			Help:      "Successful provider sign-ins",
		}),
		loginFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "banssharp",
			Subsystem: "auth",
			Name:      "login_failure_total",
			Help:      "Failed provider sign-ins by reason",
		}, []string{"reason"}),
		accountLink: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "banssharp",
			Subsystem: "auth",
			Name:      "account_link_total",
			Help:      "Provider identities linked to existing accounts",
		}),
		accountUnlink: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "banssharp",
			Subsystem: "auth",
			Name:      "account_unlink_total",
			Help:      "Provider identities unlinked from accounts",
		}),
	}
}

func (m *Metrics) LoginSuccess() {
	if m == nil {
		return
	}

	m.loginSuccess.Inc()
}

func (m *Metrics) LoginFailure(reason string) {
	if m == nil {
		return
	}

	m.loginFailure.WithLabelValues(reason).Inc()
}

func (m *Metrics) AccountLink() {
	if m == nil {
		return
	}

	m.accountLink.Inc()
}

func (m *Metrics) AccountUnlink() {
	if m == nil {
		return
	}

	m.accountUnlink.Inc()
}
