// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moeum_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FederatedLogins counts social login attempts by provider and outcome.
	FederatedLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moeum_federated_logins_total",
		Help: "Total number of federated login attempts by provider and outcome",
	}, []string{"provider", "outcome"})

	// LinkedLogins counts logins that attached to an existing account by email.
	LinkedLogins = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moeum_linked_logins_total",
		Help: "Total number of logins linked to an existing account by verified email",
	}, []string{"provider"})

	// PostViews counts view increment attempts by outcome (counted, deduped, failed).
	PostViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moeum_post_views_total",
		Help: "Total number of post view increment attempts by outcome",
	}, []string{"outcome"})
)
