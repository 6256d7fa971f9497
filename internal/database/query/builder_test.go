// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package query

import (
	"reflect"
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}
	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_Lists(t *testing.T) {
	tests := []struct {
		name      string
		build     func(*WhereBuilder)
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "in",
			build:     func(wb *WhereBuilder) { wb.AddIn(`p."authorId"`, []string{"a1", "a2"}) },
			wantWhere: `p."authorId" IN (?, ?)`,
			wantArgs:  []any{"a1", "a2"},
		},
		{
			name:      "not in",
			build:     func(wb *WhereBuilder) { wb.AddNotIn("p.id", []string{"x"}) },
			wantWhere: "p.id NOT IN (?)",
			wantArgs:  []any{"x"},
		},
		{
			name:      "empty list skipped",
			build:     func(wb *WhereBuilder) { wb.AddNotIn("p.id", nil) },
			wantWhere: "1=1",
			wantArgs:  []any{},
		},
		{
			name: "combined keeps argument order",
			build: func(wb *WhereBuilder) {
				wb.AddClause("u.status = ?", "ACTIVE").
					AddIn(`p."authorId"`, []string{"a1"}).
					AddNotIn("p.id", []string{"x", "y"})
			},
			wantWhere: `u.status = ? AND p."authorId" IN (?) AND p.id NOT IN (?, ?)`,
			wantArgs:  []any{"ACTIVE", "a1", "x", "y"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			tt.build(wb)
			where, args := wb.Build()
			if where != tt.wantWhere {
				t.Errorf("where = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWhereBuilder_BuildWithPrefix(t *testing.T) {
	where, _ := NewWhereBuilder().AddClause("a = ?", 1).BuildWithPrefix()
	if where != "WHERE a = ?" {
		t.Errorf("got %q", where)
	}
}

func TestPlaceholders(t *testing.T) {
	tests := map[int]string{0: "", 1: "?", 3: "?, ?, ?"}
	for n, want := range tests {
		if got := Placeholders(n); got != want {
			t.Errorf("Placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestDollar(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"none", "SELECT 1", "SELECT 1"},
		{"numbered", "SELECT * FROM t WHERE a = ? AND b IN (?, ?)", "SELECT * FROM t WHERE a = $1 AND b IN ($2, $3)"},
		{"literal untouched", "SELECT '?' FROM t WHERE a = ?", "SELECT '?' FROM t WHERE a = $1"},
		{"identifier untouched", `SELECT "we?rd" FROM t WHERE a = ?`, `SELECT "we?rd" FROM t WHERE a = $1`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dollar(tt.in); got != tt.want {
				t.Errorf("Dollar(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
