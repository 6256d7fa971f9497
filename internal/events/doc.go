// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

/*
Package events delivers tracked views to the persistence sinks.

The recommendation engine mutates its model synchronously and then
publishes a ViewTracked message. The Bus carries those messages over an
in-process Watermill GoChannel and fans them out to independent sinks, each
running as its own router handler:

  - snapshot-sink rewrites the interaction snapshot file
  - history-sink appends the view record to the store, through a circuit
    breaker, falling back to the write-ahead log when the store is down

Every handler runs behind three router middlewares, outermost first:

	drop on failure -> retry with backoff -> panic recoverer

A message that still fails after its retries is logged, counted and acked.
A failing sink never blocks the bus and never affects the engine.

The Bus implements suture.Service. Sinks must be added before the bus is
started; each Serve call builds a fresh router over the shared pub/sub.
*/
package events
