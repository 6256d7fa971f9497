// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() should not return nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

// viewRequest mirrors the shape of the track-view payload.
type viewRequest struct {
	UserID     string  `json:"user_id" validate:"required,identifier,max=255"`
	PostID     string  `json:"post_id" validate:"required,identifier,max=255"`
	Content    *string `json:"post_content,omitempty" validate:"omitempty,max=10000"`
	DurationMS *int64  `json:"duration_ms,omitempty" validate:"omitempty,gte=0"`
	SessionID  string  `json:"session_id,omitempty" validate:"omitempty,notblank"`
	Internal   string  `json:"-"`
}

// pageQuery mirrors the recommendation query parameters.
type pageQuery struct {
	Page  int `json:"page" validate:"min=1"`
	Limit int `json:"limit" validate:"min=1,max=100"`
}

func int64Ptr(v int64) *int64 { return &v }

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input any
	}{
		{"minimal view", &viewRequest{UserID: "u1", PostID: "p1"}},
		{"full view", &viewRequest{UserID: "user-42", PostID: "5d3c", DurationMS: int64Ptr(0), SessionID: "s1"}},
		{"uuid ids", &viewRequest{UserID: "0f8fad5b-d9cb-469f-a165-70867728950e", PostID: "7c9e6679-7425-40de-944b-e07fc1f90ae7"}},
		{"first page", &pageQuery{Page: 1, Limit: 1}},
		{"max limit", &pageQuery{Page: 50, Limit: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() returned unexpected error: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     any
		wantField string
		wantTag   string
	}{
		{"missing user", &viewRequest{PostID: "p1"}, "user_id", "required"},
		{"missing post", &viewRequest{UserID: "u1"}, "post_id", "required"},
		{"padded user", &viewRequest{UserID: " u1", PostID: "p1"}, "user_id", "identifier"},
		{"control character", &viewRequest{UserID: "u\x001", PostID: "p1"}, "user_id", "identifier"},
		{"oversized post id", &viewRequest{UserID: "u1", PostID: strings.Repeat("p", 256)}, "post_id", "max"},
		{"negative duration", &viewRequest{UserID: "u1", PostID: "p1", DurationMS: int64Ptr(-1)}, "duration_ms", "gte"},
		{"blank session", &viewRequest{UserID: "u1", PostID: "p1", SessionID: "   "}, "session_id", "notblank"},
		{"page zero", &pageQuery{Page: 0, Limit: 10}, "page", "min"},
		{"limit too large", &pageQuery{Page: 1, Limit: 101}, "limit", "max"},
		{"limit zero", &pageQuery{Page: 1, Limit: 0}, "limit", "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() expected error, got nil")
			}

			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&viewRequest{PostID: "p1"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %s, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "user_id is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "user_id" {
		t.Errorf("Details = %v", apiErr.Details)
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&pageQuery{Page: 0, Limit: 0})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	apiErr := err.ToAPIError()
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("Expected details to contain 'fields' key")
	}
	for _, want := range []string{"page: page must be at least 1", "limit: limit must be at least 1"} {
		if !strings.Contains(apiErr.Message, want) {
			t.Errorf("Message %q missing %q", apiErr.Message, want)
		}
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
	}{
		{"required", &viewRequest{PostID: "p1"}, "user_id is required"},
		{"string max", &viewRequest{UserID: "u1", PostID: strings.Repeat("p", 256)}, "post_id must be at most 255 characters"},
		{"numeric max", &pageQuery{Page: 1, Limit: 500}, "limit must be at most 100"},
		{"gte", &viewRequest{UserID: "u1", PostID: "p1", DurationMS: int64Ptr(-5)}, "duration_ms must be greater than or equal to 0"},
		{"notblank", &viewRequest{UserID: "u1", PostID: "p1", SessionID: "\t"}, "session_id must not be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestJSONFieldName_IgnoresDashTag(t *testing.T) {
	// Internal carries json:"-" and no validate tag; validation must still pass.
	if err := ValidateStruct(&viewRequest{UserID: "u1", PostID: "p1", Internal: "x"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
