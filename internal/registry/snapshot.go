// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package registry owns the serving-side model state. A Loader builds
// an immutable Snapshot from the data tables and whatever artifacts
// exist on disk, and the Registry publishes snapshots through an
// atomic pointer so request handlers never observe a half-loaded
// model set.
package registry

import (
	"sync/atomic"
	"time"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/dataset"
	"github.com/interleaflabs/interleaf/internal/metrics"
	"github.com/interleaflabs/interleaf/internal/model"
)

// DomainState holds everything needed to serve one domain: the index
// maps and genre matrix rebuilt from the tables, per-user interaction
// history in index space, and the model families that loaded.
type DomainState struct {
	Domain artifact.Domain

	Users  *dataset.IndexMap
	Items  *dataset.IndexMap
	Genres *dataset.GenreMatrix

	// ItemsByUser lists each user's rated item indices in table
	// order, addressed by user index.
	ItemsByUser [][]int

	Collaborative *model.Collaborative
	Content       *model.Content
	Embeddings    *model.Embeddings

	// Inbound translates the opposite domain's embeddings into this
	// domain's vector space. It is nil unless the direction's weight
	// file and both embedding matrices loaded.
	Inbound *model.Translator
}

// History returns the item indices the user with the given external ID
// has rated, or nil for an unknown user.
func (d *DomainState) History(userID int64) []int {
	ui, ok := d.Users.Index(userID)
	if !ok {
		return nil
	}
	return d.ItemsByUser[ui]
}

// MissingFamilies lists the model families a recommendation for this
// domain needs but that did not load. The translator entry covers the
// inbound direction including its embedding prerequisites.
func (d *DomainState) MissingFamilies() []artifact.Family {
	var missing []artifact.Family
	if d.Collaborative == nil {
		missing = append(missing, artifact.FamilyCollaborative)
	}
	if d.Content == nil {
		missing = append(missing, artifact.FamilyContent)
	}
	if d.Inbound == nil {
		missing = append(missing, artifact.FamilyTranslator)
	}
	return missing
}

// Ready reports whether every family needed for serving loaded.
func (d *DomainState) Ready() bool { return len(d.MissingFamilies()) == 0 }

// LoadReport records which artifacts a load run found and which it
// skipped, in the deterministic domain-then-family scan order.
type LoadReport struct {
	Loaded  []artifact.ModelKey `json:"loaded"`
	Missing []artifact.ModelKey `json:"missing"`
}

// Snapshot is an immutable view of all loaded state. Fields are never
// mutated after Load returns; replace the whole snapshot instead.
type Snapshot struct {
	Books  *DomainState
	Movies *DomainState

	LoadedAt time.Time
	Version  int64
	Report   LoadReport
}

// Domain returns the state for d, or nil for an unknown domain.
func (s *Snapshot) Domain(d artifact.Domain) *DomainState {
	switch d {
	case artifact.DomainBooks:
		return s.Books
	case artifact.DomainMovies:
		return s.Movies
	}
	return nil
}

// Registry publishes the current snapshot. The zero value is ready to
// use and starts empty.
type Registry struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64
}

func NewRegistry() *Registry { return &Registry{} }

// Snapshot returns the current snapshot, or nil before the first
// successful load.
func (r *Registry) Snapshot() *Snapshot {
	return r.current.Load()
}

// Swap stamps snap with the next version number and publishes it,
// returning the snapshot it replaced (nil on first publish). In-flight
// requests keep reading the old snapshot untouched.
func (r *Registry) Swap(snap *Snapshot) *Snapshot {
	snap.Version = r.version.Add(1)
	metrics.RegistryVersion.Set(float64(snap.Version))
	return r.current.Swap(snap)
}
