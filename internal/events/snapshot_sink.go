// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"context"
	"fmt"

	"github.com/excel-azmin/ractso/internal/recommend"
)

// SnapshotSinkName is the router handler name of the snapshot sink.
const SnapshotSinkName = "snapshot-sink"

// SnapshotSource supplies the current interaction snapshot.
type SnapshotSource interface {
	Snapshot() recommend.Snapshot
}

// SnapshotSaver persists a snapshot.
type SnapshotSaver interface {
	Save(snap recommend.Snapshot) error
}

// SnapshotSink rewrites the snapshot file after every tracked view. It
// saves the engine's current state rather than the record, so a dropped
// message is repaired by the next one.
type SnapshotSink struct {
	source SnapshotSource
	saver  SnapshotSaver
}

// NewSnapshotSink creates a sink saving source's snapshot through saver.
func NewSnapshotSink(source SnapshotSource, saver SnapshotSaver) *SnapshotSink {
	return &SnapshotSink{source: source, saver: saver}
}

// Name implements Sink.
func (s *SnapshotSink) Name() string {
	return SnapshotSinkName
}

// Handle implements Sink.
func (s *SnapshotSink) Handle(ctx context.Context, _ recommend.ViewRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.saver.Save(s.source.Snapshot()); err != nil {
		return fmt.Errorf("save interaction snapshot: %w", err)
	}
	return nil
}
