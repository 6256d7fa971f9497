// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package recommend

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestFileSnapshotter_SaveLoad(t *testing.T) {
	t.Parallel()

	for _, format := range []SnapshotFormat{SnapshotJSON, SnapshotMsgpack} {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "nested", "interactions."+string(format))
			s, err := NewFileSnapshotter(path, format)
			if err != nil {
				t.Fatalf("NewFileSnapshotter: %v", err)
			}

			want := Snapshot{Interactions: map[string][]string{
				"u1": {"p1", "p2"},
				"u2": {"p3"},
			}}
			if err := s.Save(want); err != nil {
				t.Fatalf("Save: %v", err)
			}

			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("Load = %v, want %v", got, want)
			}

			entries, err := os.ReadDir(filepath.Dir(path))
			if err != nil {
				t.Fatalf("ReadDir: %v", err)
			}
			if len(entries) != 1 {
				t.Errorf("temp files left behind: %v", entries)
			}
		})
	}
}

func TestFileSnapshotter_JSONShape(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "interactions.json")
	s, err := NewFileSnapshotter(path, SnapshotJSON)
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}
	if err := s.Save(Snapshot{Interactions: map[string][]string{"u1": {"p1"}}}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != `{"interactions":{"u1":["p1"]}}` {
		t.Errorf("file = %s", data)
	}
}

func TestFileSnapshotter_MissingFile(t *testing.T) {
	t.Parallel()

	s, err := NewFileSnapshotter(filepath.Join(t.TempDir(), "absent.json"), SnapshotJSON)
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}
	snap, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if snap.Interactions == nil || len(snap.Interactions) != 0 {
		t.Errorf("expected empty snapshot, got %#v", snap)
	}
}

func TestFileSnapshotter_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "interactions.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s, err := NewFileSnapshotter(path, SnapshotJSON)
	if err != nil {
		t.Fatalf("NewFileSnapshotter: %v", err)
	}
	if _, err := s.Load(); err == nil || !strings.Contains(err.Error(), "decode snapshot") {
		t.Errorf("Load = %v, want decode error", err)
	}
}

func TestNewFileSnapshotter_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewFileSnapshotter("", SnapshotJSON); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewFileSnapshotter("x.xml", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	s, err := NewFileSnapshotter("x.json", "")
	if err != nil || s.format != SnapshotJSON {
		t.Errorf("empty format should default to json, got %v %v", s, err)
	}
}
