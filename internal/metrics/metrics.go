package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Callbacks counts processed callback requests by terminal outcome:
	// success, replay, state_mismatch, code_already_used, exchange_failed,
	// upgrade_failed, config_error, persistence_error, internal_error.
	Callbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instagram_auth",
		Name:      "callbacks_total",
		Help:      "Processed OAuth callback requests by outcome.",
	}, []string{"outcome"})

	// TokenExchanges counts authorization-code exchanges against the
	// provider by result: ok, error, code_reused.
	TokenExchanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "instagram_auth",
		Name:      "token_exchanges_total",
		Help:      "Authorization-code exchange attempts by result.",
	}, []string{"result"})

	// CallbackDuration observes end-to-end callback processing time.
	CallbackDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "instagram_auth",
		Name:      "callback_duration_seconds",
		Help:      "End-to-end callback processing duration.",
		Buckets:   prometheus.DefBuckets,
	})
)
