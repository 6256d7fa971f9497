// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package events

import (
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/excel-azmin/ractso/internal/recommend"
)

// TopicViewTracked carries one message per tracked view.
const TopicViewTracked = "recommend.view_tracked"

// Message metadata keys.
const (
	MetadataEventType = "event_type"
	MetadataRequestID = "request_id"
	MetadataUserID    = "user_id"
)

// EventTypeViewTracked is the event_type of view messages.
const EventTypeViewTracked = "view_tracked"

var (
	// ErrBusClosed is returned when publishing after Close.
	ErrBusClosed = errors.New("events: bus closed")

	// ErrNilSink is returned by AddSink for a nil sink.
	ErrNilSink = errors.New("events: sink is nil")

	// ErrDuplicateSink is returned by AddSink when the name is taken.
	ErrDuplicateSink = errors.New("events: duplicate sink name")

	// ErrBusStarted is returned by AddSink once the bus has been served.
	ErrBusStarted = errors.New("events: sinks must be added before the bus starts")
)

// encodeViewTracked builds the message for record. The record ID doubles
// as the message UUID.
func encodeViewTracked(record *recommend.ViewRecord) (*message.Message, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode view record: %w", err)
	}
	msg := message.NewMessage(record.ID, payload)
	msg.Metadata.Set(MetadataEventType, EventTypeViewTracked)
	msg.Metadata.Set(MetadataUserID, record.UserID)
	return msg, nil
}

// decodeViewTracked parses a view message payload.
func decodeViewTracked(msg *message.Message) (recommend.ViewRecord, error) {
	var record recommend.ViewRecord
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		return record, fmt.Errorf("decode view record %s: %w", msg.UUID, err)
	}
	if record.UserID == "" || record.PostID == "" {
		return record, fmt.Errorf("decode view record %s: %w", msg.UUID, recommend.ErrInvalidView)
	}
	return record, nil
}
