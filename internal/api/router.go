// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig tunes the middleware stack.
type RouterConfig struct {
	CORSOrigins []string

	// RateLimit is requests per IP per minute on the API routes.
	// Zero disables rate limiting (used in tests).
	RateLimit int
}

// NewRouter wires the middleware stack and routes.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(RequestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			r.Use(httprate.LimitByRealIP(cfg.RateLimit, time.Minute))
		}

		r.Get("/health", h.Health)
		r.Get("/status", h.Status)
		r.Post("/recommend/{domain}", h.Recommend)
		r.Post("/retrain", h.Retrain)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
