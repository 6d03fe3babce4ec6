// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/cache"
	"github.com/interleaflabs/interleaf/internal/metrics"
	"github.com/interleaflabs/interleaf/internal/recommend"
	"github.com/interleaflabs/interleaf/internal/registry"
	"github.com/interleaflabs/interleaf/internal/trainer"
	"github.com/interleaflabs/interleaf/internal/validation"
)

// Handler owns the HTTP endpoints.
type Handler struct {
	engine      *recommend.Engine
	coordinator *trainer.Coordinator
	registry    *registry.Registry
	cache       *cache.ResponseCache // may be nil when caching is disabled
	maxK        int
}

func NewHandler(engine *recommend.Engine, coord *trainer.Coordinator, reg *registry.Registry, c *cache.ResponseCache, maxK int) *Handler {
	return &Handler{
		engine:      engine,
		coordinator: coord,
		registry:    reg,
		cache:       c,
		maxK:        maxK,
	}
}

// recommendRequest is the POST body for recommendation requests.
type recommendRequest struct {
	UserID int64 `json:"user_id" validate:"required,gte=1"`
	K      int   `json:"k" validate:"omitempty,gte=1"`
}

// recommendResponse is the data payload for a recommendation.
type recommendResponse struct {
	Domain          artifact.Domain `json:"domain"`
	UserID          int64           `json:"user_id"`
	Recommendations []int64         `json:"recommendations"`
	Count           int             `json:"count"`
}

// Recommend handles POST /api/v1/recommend/{domain}.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	domain, err := artifact.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		metrics.ObserveRecommend(chi.URLParam(r, "domain"), "invalid_domain", start)
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    "INVALID_DOMAIN",
			Message: "domain must be one of: books, movies",
		}, start)
		return
	}

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRecommend(string(domain), "bad_request", start)
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    "INVALID_BODY",
			Message: "request body must be JSON with a user_id field",
		}, start)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		metrics.ObserveRecommend(string(domain), "bad_request", start)
		respondError(w, r, http.StatusBadRequest, &APIError{
			Code:    "VALIDATION_ERROR",
			Message: verr.Error(),
			Details: map[string]any{"fields": verr.Fields},
		}, start)
		return
	}
	if req.K > h.maxK {
		req.K = h.maxK
	}

	if h.cache != nil {
		if ids, ok := h.cache.Get(domain, req.UserID, req.K); ok {
			metrics.ObserveRecommend(string(domain), "ok", start)
			respondJSON(w, http.StatusOK, &APIResponse{
				Status: "ok",
				Data: &recommendResponse{
					Domain:          domain,
					UserID:          req.UserID,
					Recommendations: ids,
					Count:           len(ids),
				},
				Metadata: Metadata{
					Timestamp:  time.Now().UTC(),
					DurationMS: time.Since(start).Milliseconds(),
					Cached:     true,
					RequestID:  requestIDFrom(r),
				},
			})
			return
		}
	}

	ids, err := h.engine.Recommend(req.UserID, domain, req.K)
	if err != nil {
		h.respondRecommendError(w, r, domain, err, start)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	if h.cache != nil {
		h.cache.Set(domain, req.UserID, req.K, ids)
	}

	metrics.ObserveRecommend(string(domain), "ok", start)
	respondData(w, r, http.StatusOK, &recommendResponse{
		Domain:          domain,
		UserID:          req.UserID,
		Recommendations: ids,
		Count:           len(ids),
	}, start)
}

func (h *Handler) respondRecommendError(w http.ResponseWriter, r *http.Request, domain artifact.Domain, err error, start time.Time) {
	var notReady *recommend.NotReadyError
	switch {
	case errors.Is(err, recommend.ErrRegistryEmpty):
		metrics.ObserveRecommend(string(domain), "not_ready", start)
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    "MODELS_NOT_READY",
			Message: "no models loaded; train first",
		}, start)
	case errors.As(err, &notReady):
		metrics.ObserveRecommend(string(domain), "not_ready", start)
		respondError(w, r, http.StatusServiceUnavailable, &APIError{
			Code:    "MODELS_NOT_READY",
			Message: notReady.Error(),
			Details: map[string]any{
				"domain":  notReady.Domain,
				"missing": notReady.Missing,
			},
		}, start)
	default:
		metrics.ObserveRecommend(string(domain), "error", start)
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    "INTERNAL_ERROR",
			Message: "recommendation failed",
		}, start)
	}
}

// retrainResponse is the data payload after a successful retrain.
type retrainResponse struct {
	Version  int64               `json:"version"`
	Loaded   []artifact.ModelKey `json:"loaded"`
	Missing  []artifact.ModelKey `json:"missing"`
	Duration string              `json:"duration"`
}

// Retrain handles POST /api/v1/retrain. The run is synchronous, as the
// caller wants to know the outcome; overlapping runs are rejected.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap, err := h.coordinator.Retrain(r.Context())
	if err != nil {
		if errors.Is(err, trainer.ErrTrainingInProgress) {
			respondError(w, r, http.StatusConflict, &APIError{
				Code:    "TRAINING_IN_PROGRESS",
				Message: "a training run is already in progress",
			}, start)
			return
		}
		respondError(w, r, http.StatusInternalServerError, &APIError{
			Code:    "TRAINING_ERROR",
			Message: err.Error(),
		}, start)
		return
	}

	respondData(w, r, http.StatusOK, &retrainResponse{
		Version:  snap.Version,
		Loaded:   snap.Report.Loaded,
		Missing:  snap.Report.Missing,
		Duration: time.Since(start).String(),
	}, start)
}

// domainStatus summarizes one domain's serving readiness.
type domainStatus struct {
	Users   int               `json:"users"`
	Items   int               `json:"items"`
	Ready   bool              `json:"ready"`
	Missing []artifact.Family `json:"missing,omitempty"`
}

// statusResponse is the data payload of the status endpoint.
type statusResponse struct {
	Training bool                              `json:"training"`
	Loaded   bool                              `json:"loaded"`
	Version  int64                             `json:"version,omitempty"`
	LoadedAt *time.Time                        `json:"loaded_at,omitempty"`
	Domains  map[artifact.Domain]*domainStatus `json:"domains,omitempty"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := &statusResponse{Training: h.coordinator.Training()}
	if snap := h.registry.Snapshot(); snap != nil {
		resp.Loaded = true
		resp.Version = snap.Version
		loadedAt := snap.LoadedAt
		resp.LoadedAt = &loadedAt
		resp.Domains = make(map[artifact.Domain]*domainStatus, 2)
		for _, domain := range artifact.Domains() {
			state := snap.Domain(domain)
			resp.Domains[domain] = &domainStatus{
				Users:   state.Users.Len(),
				Items:   state.Items.Len(),
				Ready:   state.Ready(),
				Missing: state.MissingFamilies(),
			}
		}
	}

	respondData(w, r, http.StatusOK, resp, start)
}

// Health handles GET /api/v1/health. It reports liveness only; model
// readiness belongs to the status endpoint.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondData(w, r, http.StatusOK, map[string]string{"status": "healthy"}, start)
}
