// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package wal provides a durable Write-Ahead Log (WAL) using BadgerDB.
//
// View records that could not be appended to the view history (store down,
// circuit breaker open) are written here instead of being dropped. The
// RetryLoop replays them into the store once it recovers:
//
//	ViewTracked → history sink → store append
//	                         ↓ (on failure)
//	                   WAL Write → RetryLoop → store append → WAL Confirm
//
// # Components
//
//   - BadgerWAL: entry storage with pending and confirmed key prefixes
//   - RetryLoop: periodic replay with exponential backoff and a retry cap,
//     plus compaction of confirmed and expired entries
//
// # Usage
//
//	w, err := wal.Open(&cfg)
//	if err != nil {
//	    return err
//	}
//	defer w.Close()
//
//	entryID, err := w.Write(ctx, record)
//	// ... later, after the record reached the store:
//	err = w.Confirm(ctx, entryID)
//
//	loop := wal.NewRetryLoop(w, wal.ReplayFunc(func(ctx context.Context, e *wal.Entry) error {
//	    var rec recommend.ViewRecord
//	    if err := e.UnmarshalPayload(&rec); err != nil {
//	        return err
//	    }
//	    return store.AppendViewRecord(ctx, rec)
//	}))
//	go loop.Serve(ctx)
//
// Replays must be idempotent: an entry whose confirm failed after a
// successful replay is replayed again.
//
// # Metrics
//
// Prometheus metrics are exposed under the ractso_wal_ prefix:
// writes, confirms, retries, pending entries, database size and
// compaction counters.
package wal
