// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/excel-azmin/ractso/internal/logging"
	"github.com/excel-azmin/ractso/internal/metrics"
	"github.com/excel-azmin/ractso/internal/recommend"
	"github.com/excel-azmin/ractso/internal/validation"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "post-recommendation-api"

// maxRequestBodySize caps track-view payloads.
const maxRequestBodySize = 1 << 20

// Recommender is the engine surface the handlers use.
type Recommender interface {
	TrackView(ctx context.Context, view recommend.ViewEvent) error
	Recommend(ctx context.Context, userID string, page, limit int) (*recommend.Page, error)
	Statistics() recommend.Statistics
	ModelLoaded() bool
	Counters() (requests, fallbacks, views int64)
}

// BreakerStatus reports the circuit breaker of a persistence sink.
type BreakerStatus interface {
	Name() string
	State() string
}

// WarmStartStatus reports the state of the background history load.
type WarmStartStatus interface {
	Status() recommend.LoadStatus
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	Version        string
	DefaultLimit   int
	MaxLimit       int
	RequestTimeout time.Duration
}

// Handler serves the recommendation API.
type Handler struct {
	engine    Recommender
	warmStart WarmStartStatus
	breakers  []BreakerStatus
	config    HandlerConfig
}

// NewHandler creates a handler. warmStart may be nil when warm start is disabled.
func NewHandler(engine Recommender, warmStart WarmStartStatus, cfg HandlerConfig) *Handler {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = 100
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{engine: engine, warmStart: warmStart, config: cfg}
}

// AddBreaker exposes a sink's breaker state in the model status.
func (h *Handler) AddBreaker(b BreakerStatus) {
	h.breakers = append(h.breakers, b)
}

// TrackViewRequest is the body of POST /api/v1/track-view.
type TrackViewRequest struct {
	UserID       string  `json:"user_id" validate:"required,identifier,max=255"`
	PostID       string  `json:"post_id" validate:"required,identifier,max=255"`
	PostContent  *string `json:"post_content,omitempty" validate:"omitempty,max=100000"`
	PostAuthorID *string `json:"post_author_id,omitempty" validate:"omitempty,identifier,max=255"`
	DurationMS   *int64  `json:"duration_ms,omitempty" validate:"omitempty,gte=0"`
	SessionID    string  `json:"session_id,omitempty" validate:"omitempty,notblank,max=255"`
}

// TrackViewResponse acknowledges a tracked view.
type TrackViewResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	PostID  string `json:"post_id"`
}

// RecommendationsQuery holds the parsed paging parameters.
type RecommendationsQuery struct {
	UserID string `json:"user_id" validate:"required,identifier,max=255"`
	Page   int    `json:"page" validate:"min=1"`
	Limit  int    `json:"limit" validate:"min=1"`
}

// PageMeta describes the page returned.
type PageMeta struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// RecommendationsResponse is the body of GET /api/v1/recommendations/{userID}.
type RecommendationsResponse struct {
	Status          string                 `json:"status"`
	UserID          string                 `json:"user_id"`
	Recommendations []recommend.PostDetail `json:"recommendations"`
	Count           int                    `json:"count"`
	Meta            PageMeta               `json:"meta"`
}

// ModelStatusResponse is the body of GET /api/v1/model/status.
type ModelStatusResponse struct {
	Status string `json:"status"`
	recommend.Statistics
	Counters  EngineCounters        `json:"counters"`
	Breakers  map[string]string     `json:"breakers,omitempty"`
	WarmStart *recommend.LoadStatus `json:"warm_start,omitempty"`
}

// EngineCounters are totals since process start.
type EngineCounters struct {
	RecommendationRequests int64 `json:"recommendation_requests"`
	Fallbacks              int64 `json:"fallbacks"`
	ViewsTracked           int64 `json:"views_tracked"`
}

// Root handles GET /.
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Post Recommendation API",
		"version": h.config.Version,
		"health":  "/api/v1/health",
	})
}

// Health handles GET /api/v1/health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"service":      ServiceName,
		"model_loaded": h.engine.ModelLoaded(),
	})
}

// TrackView handles POST /api/v1/track-view.
func (h *Handler) TrackView(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, CodeInvalidJSON, "Request body too large", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Failed to read request body", nil)
		return
	}

	var req TrackViewRequest
	if err := json.Unmarshal(data, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeInvalidJSON, "Invalid JSON request body", nil)
		return
	}

	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	err = h.engine.TrackView(r.Context(), recommend.ViewEvent{
		UserID:       req.UserID,
		PostID:       req.PostID,
		PostContent:  req.PostContent,
		PostAuthorID: req.PostAuthorID,
	})
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidView) {
			respondError(w, r, http.StatusBadRequest, CodeValidation, "user_id and post_id are required", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to track view", err)
		return
	}
	metrics.RecordViewTracked()

	event := logging.Ctx(r.Context()).Debug().
		Str("user_id", req.UserID).
		Str("post_id", req.PostID)
	if req.DurationMS != nil {
		event = event.Int64("duration_ms", *req.DurationMS)
	}
	if req.SessionID != "" {
		event = event.Str("session_id", req.SessionID)
	}
	event.Msg("view tracked")

	respondJSON(w, http.StatusOK, &TrackViewResponse{
		Status:  "success",
		Message: "View tracked and model updated",
		UserID:  req.UserID,
		PostID:  req.PostID,
	})
}

// Recommendations handles GET /api/v1/recommendations/{userID}.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := url.PathUnescape(chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "user_id is not a valid path segment", nil)
		return
	}

	q := RecommendationsQuery{UserID: userID, Page: 1, Limit: h.config.DefaultLimit}
	if q.Page, err = intParam(r, "page", q.Page); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "page must be an integer", nil)
		return
	}
	if q.Limit, err = intParam(r, "limit", q.Limit); err != nil {
		respondError(w, r, http.StatusBadRequest, CodeValidation, "limit must be an integer", nil)
		return
	}
	if verr := validation.ValidateStruct(&q); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	if q.Limit > h.config.MaxLimit {
		respondErrorDetails(w, r, http.StatusBadRequest, CodeValidation,
			"limit must be at most "+strconv.Itoa(h.config.MaxLimit),
			map[string]any{"field": "limit", "tag": "max", "value": q.Limit}, nil)
		return
	}

	ctx := r.Context()
	if h.config.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	page, err := h.engine.Recommend(ctx, q.UserID, q.Page, q.Limit)
	if err != nil {
		switch {
		case errors.Is(err, recommend.ErrInvalidPage):
			respondError(w, r, http.StatusBadRequest, CodeValidation, "page must be at least 1", nil)
		case errors.Is(err, recommend.ErrInvalidLimit):
			respondError(w, r, http.StatusBadRequest, CodeValidation, "limit is out of range", nil)
		default:
			respondError(w, r, http.StatusInternalServerError, CodeInternal, "Failed to get recommendations", err)
		}
		return
	}
	metrics.RecordRecommendation(string(page.Source), page.Fallback, time.Since(start))

	items := page.Items
	if items == nil {
		items = []recommend.PostDetail{}
	}

	respondJSON(w, http.StatusOK, &RecommendationsResponse{
		Status:          "success",
		UserID:          q.UserID,
		Recommendations: items,
		Count:           len(items),
		Meta: PageMeta{
			Page:        page.Page,
			Limit:       page.Limit,
			Total:       page.Total,
			TotalPages:  page.TotalPages(),
			HasNext:     page.HasNext(),
			HasPrevious: page.HasPrevious(),
		},
	})
}

// ModelStatus handles GET /api/v1/model/status.
func (h *Handler) ModelStatus(w http.ResponseWriter, _ *http.Request) {
	stats := h.engine.Statistics()
	metrics.UpdateModelGauges(stats.TotalUsers, stats.TotalPosts, stats.TotalInteractions)

	resp := &ModelStatusResponse{Status: "success", Statistics: stats}
	resp.Counters.RecommendationRequests, resp.Counters.Fallbacks, resp.Counters.ViewsTracked = h.engine.Counters()
	if len(h.breakers) > 0 {
		resp.Breakers = make(map[string]string, len(h.breakers))
		for _, b := range h.breakers {
			resp.Breakers[b.Name()] = b.State()
		}
	}
	if h.warmStart != nil {
		status := h.warmStart.Status()
		resp.WarmStart = &status
	}
	respondJSON(w, http.StatusOK, resp)
}

// intParam reads an integer query parameter, returning def when absent.
func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// respondValidationError converts validator output to the error envelope.
func respondValidationError(w http.ResponseWriter, r *http.Request, verr *validation.RequestValidationError) {
	apiErr := verr.ToAPIError()
	respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
}
