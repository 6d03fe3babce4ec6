// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/interleaflabs/interleaf/internal/logging"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// RequestID attaches an X-Request-ID to every request, honoring an
// inbound header from a proxy, and stores it on the context for the
// response metadata and log correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// RequestLogger emits one structured log line per request.
func RequestLogger(next http.Handler) http.Handler {
	log := logging.With().Str("component", "http").Logger()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(start)).
			Str("request_id", requestIDFrom(r)).
			Msg("request")
	})
}
