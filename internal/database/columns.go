// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package database

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
)

// sqliteTimeLayout is fixed width so stored timestamps sort as text.
const sqliteTimeLayout = "2006-01-02 15:04:05.000000000"

var timeLayouts = []string{
	sqliteTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeArg converts a timestamp into the parameter form the dialect stores.
func (db *DB) timeArg(t time.Time) any {
	if db.dialect == DialectSQLite {
		return t.UTC().Format(sqliteTimeLayout)
	}
	return t.UTC()
}

// imagesArg converts an image list into the parameter form the dialect stores.
func (db *DB) imagesArg(images []string) (any, error) {
	if images == nil {
		images = []string{}
	}
	if db.dialect == DialectPostgres {
		return pq.StringArray(images), nil
	}
	b, err := json.Marshal(images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	return string(b), nil
}

// timeColumn scans TIMESTAMP values that drivers return either as
// time.Time or as text.
type timeColumn struct {
	dest *time.Time
}

func (c timeColumn) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c.dest = time.Time{}
		return nil
	case time.Time:
		*c.dest = v.UTC()
		return nil
	case string:
		return c.parse(v)
	case []byte:
		return c.parse(string(v))
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (c timeColumn) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*c.dest = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// imagesColumn scans the images column: a text[] on PostgreSQL and a JSON
// array elsewhere. NULL becomes an empty list.
type imagesColumn struct {
	dest    *[]string
	dialect Dialect
}

func (c imagesColumn) Scan(src any) error {
	if src == nil {
		*c.dest = []string{}
		return nil
	}
	if c.dialect == DialectPostgres {
		var arr pq.StringArray
		if err := arr.Scan(src); err != nil {
			return err
		}
		*c.dest = nonNil([]string(arr))
		return nil
	}

	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("unsupported images type %T", src)
	}
	if len(raw) == 0 {
		*c.dest = []string{}
		return nil
	}
	var images []string
	if err := json.Unmarshal(raw, &images); err != nil {
		return fmt.Errorf("decode images: %w", err)
	}
	*c.dest = nonNil(images)
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
