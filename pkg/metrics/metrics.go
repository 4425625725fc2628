package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResourceChecks counts access decisions per resource key and outcome (allowed|denied|error).
	ResourceChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendora_resource_checks_total",
			Help: "Total number of resource access checks",
		},
		[]string{"resource", "result"},
	)

	// CatalogSeededResources counts resources inserted by registry sync runs.
	CatalogSeededResources = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "vendora_catalog_seeded_resources_total",
			Help: "Total number of protectable resources inserted by registry sync",
		},
	)

	// GroupMutations counts permission-group lifecycle operations by action.
	GroupMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vendora_group_mutations_total",
			Help: "Total number of permission group mutations",
		},
		[]string{"action"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vendora_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
