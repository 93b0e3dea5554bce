// Package metrics holds the domain counters. HTTP metrics live in middleware.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChainIntegrityErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chain_integrity_errors_total",
			Help: "Total number of corrupted answer or question chains detected",
		},
		[]string{"operation"},
	)
	ScheduleRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "schedule_runs_total",
			Help: "Total number of question order runs by result",
		},
		[]string{"result"},
	)
	NotificationIntents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_intents_total",
			Help: "Total number of notification intents handed off by kind",
		},
		[]string{"kind"},
	)
)

var registerOnce sync.Once

// Register adds the domain counters to the default registry. Safe to call
// from every binary entry point.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(ChainIntegrityErrors)
		prometheus.MustRegister(ScheduleRuns)
		prometheus.MustRegister(NotificationIntents)
	})
}
