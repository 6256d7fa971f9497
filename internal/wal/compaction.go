// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package wal

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/excel-azmin/ractso/internal/logging"
)

// CompactResult reports what a compaction run removed.
type CompactResult struct {
	Confirmed int64
	Expired   int64
	Duration  time.Duration
}

// Total returns the number of removed entries.
func (r CompactResult) Total() int64 {
	return r.Confirmed + r.Expired
}

// Compact removes confirmed entries and pending entries older than
// EntryTTL, then runs value log garbage collection.
func (w *BadgerWAL) Compact() (CompactResult, error) {
	if err := w.checkOpen(); err != nil {
		return CompactResult{}, err
	}

	start := time.Now()
	var result CompactResult

	confirmed, err := w.deletePrefix(prefixConfirmed, nil)
	if err != nil {
		return result, err
	}
	result.Confirmed = confirmed

	cutoff := time.Now().Add(-w.config.EntryTTL)
	expired, err := w.deletePrefix(prefixPending, func(e *Entry) bool {
		return w.config.EntryTTL > 0 && e.CreatedAt.Before(cutoff)
	})
	if err != nil {
		return result, err
	}
	result.Expired = expired

	if err := w.RunGC(); err != nil {
		logging.Error().Err(err).Msg("WAL compaction GC error")
	}

	w.mu.Lock()
	w.lastCompaction = time.Now()
	w.mu.Unlock()

	result.Duration = time.Since(start)
	walCompactionsTotal.Inc()
	walCompactionLatency.Observe(result.Duration.Seconds())
	if total := result.Total(); total > 0 {
		walEntriesCompactedTotal.Add(float64(total))
		walExpiredEntriesTotal.Add(float64(result.Expired))
		logging.Info().
			Int64("confirmed", result.Confirmed).
			Int64("expired", result.Expired).
			Dur("duration", result.Duration).
			Msg("WAL compaction removed entries")
	}
	return result, nil
}

// deletePrefix removes every key under prefix, or only those whose entry
// satisfies match when it is non-nil. Keys are collected before deleting.
func (w *BadgerWAL) deletePrefix(prefix string, match func(*Entry) bool) (int64, error) {
	var count int64

	err := w.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = match != nil
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			item := it.Item()
			if match != nil {
				var entry Entry
				if err := item.Value(func(val []byte) error {
					return json.Unmarshal(val, &entry)
				}); err != nil {
					continue
				}
				if !match(&entry) {
					continue
				}
			}
			keys = append(keys, item.KeyCopy(nil))
		}

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
			count++
		}
		return nil
	})

	return count, err
}
