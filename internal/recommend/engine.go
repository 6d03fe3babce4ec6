// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package recommend blends the per-domain model families into one
// ranked recommendation list. Collaborative results lead, content
// results follow, cross-domain results come last, and duplicates keep
// their first position.
package recommend

import (
	"github.com/rs/zerolog"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/logging"
	"github.com/interleaflabs/interleaf/internal/model"
	"github.com/interleaflabs/interleaf/internal/registry"
)

// Engine serves recommendations off the registry's current snapshot.
type Engine struct {
	registry *registry.Registry
	topK     int
	log      zerolog.Logger
}

// NewEngine returns an engine that takes topK results per model family
// when the caller does not specify a count.
func NewEngine(reg *registry.Registry, topK int) *Engine {
	return &Engine{
		registry: reg,
		topK:     topK,
		log:      logging.With().Str("component", "recommend").Logger(),
	}
}

// Recommend returns blended item IDs for the user in the requested
// domain. k is the per-family cutoff; k <= 0 uses the engine default.
// An unknown or history-less user yields an empty list, not an error:
// cold start is an expected state.
func (e *Engine) Recommend(userID int64, domain artifact.Domain, k int) ([]int64, error) {
	snap := e.registry.Snapshot()
	if snap == nil {
		return nil, ErrRegistryEmpty
	}
	return Recommend(snap, userID, domain, e.pickK(k))
}

func (e *Engine) pickK(k int) int {
	if k <= 0 {
		return e.topK
	}
	return k
}

// Recommend blends all three sources against a fixed snapshot. The
// snapshot's domain state must have every serving family loaded;
// otherwise the caller gets a NotReadyError naming the gaps.
func Recommend(snap *registry.Snapshot, userID int64, domain artifact.Domain, k int) ([]int64, error) {
	state := snap.Domain(domain)
	if state == nil {
		return nil, &NotReadyError{Domain: domain, Missing: artifact.Families()}
	}
	if missing := state.MissingFamilies(); len(missing) > 0 {
		return nil, &NotReadyError{Domain: domain, Missing: missing}
	}

	collab := collaborativeTop(state, userID, k)
	content := contentTop(state, userID, k)
	cross := crossDomainTop(snap, state, userID, k)

	merged := mergeDedupe(collab, content, cross)

	ids := make([]int64, 0, len(merged))
	for _, idx := range merged {
		id, ok := state.Items.ID(idx)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// collaborativeTop ranks by the user's latent factors. Users without a
// trained embedding contribute nothing.
func collaborativeTop(state *registry.DomainState, userID int64, k int) []int {
	ui, ok := state.Users.Index(userID)
	if !ok {
		return nil
	}
	return state.Collaborative.Recommend(ui, k)
}

// contentTop ranks by the predicted rating of the user's mean genre
// profile, built from the genre rows of every item the user rated.
func contentTop(state *registry.DomainState, userID int64, k int) []int {
	history := state.History(userID)
	if len(history) == 0 {
		return nil
	}

	profile := make([]float64, state.Genres.NumGenres())
	n := 0
	for _, idx := range history {
		row := state.Genres.Row(idx)
		if row == nil {
			continue
		}
		for g := range profile {
			profile[g] += row[g]
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for g := range profile {
		profile[g] /= float64(n)
	}

	return model.TopK(state.Content.ScoreProfile(profile, state.Genres), k)
}

// crossDomainTop averages the user's embeddings in the opposite
// domain, projects them through the inbound translator, and ranks the
// requested domain's embedding rows by dot product.
func crossDomainTop(snap *registry.Snapshot, state *registry.DomainState, userID int64, k int) []int {
	source := snap.Domain(state.Domain.Other())
	taste := source.Embeddings.Average(source.History(userID))
	if taste == nil {
		return nil
	}

	projected, err := state.Inbound.Project(taste)
	if err != nil {
		// Dim mismatch means the artifacts on disk were trained
		// against different embedding shapes; treat as no signal.
		logging.Warn().Err(err).Str("domain", string(state.Domain)).Msg("translator projection failed")
		return nil
	}
	return model.TopK(state.Embeddings.ScoreAgainst(projected), k)
}

// mergeDedupe concatenates the ranked lists in precedence order and
// drops later duplicates, preserving each index's first position.
func mergeDedupe(lists ...[]int) []int {
	seen := make(map[int]struct{})
	var merged []int
	for _, list := range lists {
		for _, idx := range list {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			merged = append(merged, idx)
		}
	}
	return merged
}
