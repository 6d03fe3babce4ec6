// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package metrics exposes Prometheus collectors for the recommendation
// pipeline: serving latency and outcomes, training runs, artifact loads
// and cache efficiency. All collectors are registered with the default
// registry via promauto and served by promhttp in the API router.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecommendRequests counts recommendation requests by domain and outcome.
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interleaf_recommend_requests_total",
			Help: "Total recommendation requests by domain and status",
		},
		[]string{"domain", "status"}, // status: ok, invalid_domain, not_ready, error
	)

	// RecommendLatency observes end-to-end recommendation latency.
	RecommendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "interleaf_recommend_duration_seconds",
			Help:    "Duration of recommendation requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	// TrainingRuns counts full retrain runs by outcome.
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interleaf_training_runs_total",
			Help: "Total retrain pipeline runs by outcome",
		},
		[]string{"status"}, // status: ok, error, busy
	)

	// TrainingDuration observes full retrain pipeline duration.
	TrainingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "interleaf_training_duration_seconds",
			Help:    "Duration of the full retrain pipeline in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	// ArtifactLoads counts model artifact load attempts during registry loads.
	ArtifactLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interleaf_artifact_loads_total",
			Help: "Model artifact load attempts by domain, family and result",
		},
		[]string{"domain", "family", "result"}, // result: loaded, missing, error
	)

	// RegistryVersion reports the currently served snapshot version.
	RegistryVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "interleaf_registry_version",
			Help: "Version of the currently served model registry snapshot",
		},
	)

	// CacheHits counts response cache hits.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interleaf_cache_hits_total",
			Help: "Total recommendation cache hits",
		},
	)

	// CacheMisses counts response cache misses.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "interleaf_cache_misses_total",
			Help: "Total recommendation cache misses",
		},
	)
)

// ObserveRecommend records a completed recommendation request.
func ObserveRecommend(domain, status string, start time.Time) {
	RecommendRequests.WithLabelValues(domain, status).Inc()
	if status == "ok" {
		RecommendLatency.WithLabelValues(domain).Observe(time.Since(start).Seconds())
	}
}

// ObserveTraining records a completed retrain run.
func ObserveTraining(status string, start time.Time) {
	TrainingRuns.WithLabelValues(status).Inc()
	if status == "ok" {
		TrainingDuration.Observe(time.Since(start).Seconds())
	}
}
