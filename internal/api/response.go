// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package api serves the HTTP surface: recommendation, retrain,
// status and health endpoints, all wrapped in one response envelope.
package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/interleaflabs/interleaf/internal/logging"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata carries per-response observability fields.
type Metadata struct {
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Cached     bool      `json:"cached,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
}

// APIError is the machine-readable error payload.
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func newMetadata(r *http.Request, start time.Time) Metadata {
	return Metadata{
		Timestamp:  time.Now().UTC(),
		DurationMS: time.Since(start).Milliseconds(),
		RequestID:  requestIDFrom(r),
	}
}

func respondJSON(w http.ResponseWriter, status int, response *APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("marshal response failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("write response failed")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError, start time.Time) {
	respondJSON(w, status, &APIResponse{
		Status:   "error",
		Metadata: newMetadata(r, start),
		Error:    apiErr,
	})
}

func respondData(w http.ResponseWriter, r *http.Request, status int, data any, start time.Time) {
	respondJSON(w, status, &APIResponse{
		Status:   "ok",
		Data:     data,
		Metadata: newMetadata(r, start),
	})
}
