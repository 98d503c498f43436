package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Metrics holds the counters exported by the authorization service.
type Metrics struct {
	AuthorizationsListed  prometheus.Counter
	AuthorizationsRevoked prometheus.Counter
	RevokeFailures        prometheus.Counter
	TokensRevoked         prometheus.Counter
}

// New creates the counters and registers them with reg. A nil registerer
// leaves them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthorizationsListed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grants_authorizations_listed_total",
			Help: "Total number of authorization list requests served.",
		}),
		AuthorizationsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grants_authorizations_revoked_total",
			Help: "Total number of authorizations revoked by users.",
		}),
		RevokeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grants_revoke_failures_total",
			Help: "Total number of failed revocations.",
		}),
		TokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grants_tokens_revoked_total",
			Help: "Total number of tokens revoked as part of a revocation.",
		}),
	}

	if reg == nil {
		return m
	}

	for _, c := range []prometheus.Collector{
		m.AuthorizationsListed, m.AuthorizationsRevoked, m.RevokeFailures, m.TokensRevoked,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register metric")
		}
	}
	log.Debug().Msg("Custom Prometheus metrics registered.")

	return m
}
