// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package wal

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for WAL operations
var (
	walWritesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_writes_total",
		Help: "Total number of WAL write operations",
	})

	walWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_write_failures_total",
		Help: "Total number of failed WAL writes",
	})

	walConfirmsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_confirms_total",
		Help: "Total number of WAL confirm operations",
	})

	walRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_retries_total",
		Help: "Total number of failed WAL replay attempts",
	})

	walPendingEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ractso_wal_pending_entries",
		Help: "Current number of pending WAL entries",
	})

	walConfirmedEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ractso_wal_confirmed_entries",
		Help: "Current number of confirmed WAL entries awaiting compaction",
	})

	walWriteLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ractso_wal_write_latency_seconds",
		Help:    "WAL write latency in seconds",
		Buckets: prometheus.DefBuckets,
	})

	walDBSizeBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ractso_wal_db_size_bytes",
		Help: "BadgerDB database size in bytes",
	})

	walCompactionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_compactions_total",
		Help: "Total number of WAL compaction runs",
	})

	walCompactionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ractso_wal_compaction_latency_seconds",
		Help:    "WAL compaction duration in seconds",
		Buckets: prometheus.DefBuckets,
	})

	walEntriesCompactedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_entries_compacted_total",
		Help: "Total number of entries removed by compaction",
	})

	walExpiredEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_expired_entries_total",
		Help: "Total number of pending entries dropped after EntryTTL",
	})

	walMaxRetriesExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_max_retries_exceeded_total",
		Help: "Total number of entries dropped after MaxRetries failed replays",
	})

	walReplayedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ractso_wal_replayed_total",
		Help: "Total number of entries replayed successfully",
	})
)
