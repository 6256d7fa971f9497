// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotFormat selects the on-disk encoding of the interaction snapshot.
type SnapshotFormat string

const (
	SnapshotJSON    SnapshotFormat = "json"
	SnapshotMsgpack SnapshotFormat = "msgpack"
)

// FileSnapshotter stores the interaction snapshot as a single file. Each
// Save rewrites the whole file through a temporary file and rename, so a
// reader never sees a partial write.
type FileSnapshotter struct {
	path   string
	format SnapshotFormat
	mu     sync.Mutex
}

// NewFileSnapshotter returns a snapshotter writing to path in format.
func NewFileSnapshotter(path string, format SnapshotFormat) (*FileSnapshotter, error) {
	if path == "" {
		return nil, errors.New("snapshot path must not be empty")
	}
	switch format {
	case SnapshotJSON, SnapshotMsgpack:
	case "":
		format = SnapshotJSON
	default:
		return nil, fmt.Errorf("unsupported snapshot format %q", format)
	}
	return &FileSnapshotter{path: path, format: format}, nil
}

// Path returns the snapshot file location.
func (s *FileSnapshotter) Path() string {
	return s.path
}

// Save writes snap, creating the parent directory when needed.
func (s *FileSnapshotter) Save(snap Snapshot) error {
	if snap.Interactions == nil {
		snap.Interactions = map[string][]string{}
	}
	data, err := s.encode(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".interactions-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot. A missing file yields an empty snapshot.
func (s *FileSnapshotter) Load() (Snapshot, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if errors.Is(err, fs.ErrNotExist) {
		return Snapshot{Interactions: map[string][]string{}}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}

	var snap Snapshot
	if err := s.decode(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if snap.Interactions == nil {
		snap.Interactions = map[string][]string{}
	}
	return snap, nil
}

func (s *FileSnapshotter) encode(snap Snapshot) ([]byte, error) {
	if s.format == SnapshotMsgpack {
		return msgpack.Marshal(&snap)
	}
	return json.Marshal(snap)
}

func (s *FileSnapshotter) decode(data []byte, snap *Snapshot) error {
	if s.format == SnapshotMsgpack {
		return msgpack.Unmarshal(data, snap)
	}
	return json.Unmarshal(data, snap)
}
