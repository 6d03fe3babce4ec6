// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package registry

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/dataset"
	"github.com/interleaflabs/interleaf/internal/logging"
	"github.com/interleaflabs/interleaf/internal/metrics"
	"github.com/interleaflabs/interleaf/internal/model"
)

// tableNames maps each domain to its foundational CSV files. All four
// files must exist; the registry cannot serve a domain without its
// index maps.
var tableNames = map[artifact.Domain]struct{ ratings, items string }{
	artifact.DomainBooks:  {ratings: "book_ratings.csv", items: "books.csv"},
	artifact.DomainMovies: {ratings: "movie_ratings.csv", items: "movies.csv"},
}

// Loader builds snapshots from the data directory and artifact store.
type Loader struct {
	dataDir string
	store   *artifact.Store
	log     zerolog.Logger
}

func NewLoader(dataDir string, store *artifact.Store) *Loader {
	return &Loader{
		dataDir: dataDir,
		store:   store,
		log:     logging.With().Str("component", "registry").Logger(),
	}
}

// Load reads the foundational tables, rebuilds index maps and genre
// matrices, and loads whatever model artifacts exist. A missing table
// fails the whole load; a missing artifact only lands that model key
// in the report's Missing list.
func (l *Loader) Load() (*Snapshot, error) {
	start := time.Now()
	snap := &Snapshot{LoadedAt: start}

	for _, domain := range artifact.Domains() {
		state, err := l.loadTables(domain)
		if err != nil {
			return nil, err
		}
		switch domain {
		case artifact.DomainBooks:
			snap.Books = state
		case artifact.DomainMovies:
			snap.Movies = state
		}
	}

	for _, domain := range artifact.Domains() {
		l.loadModels(snap, snap.Domain(domain))
	}
	for _, domain := range artifact.Domains() {
		l.loadTranslator(snap, snap.Domain(domain))
	}

	l.log.Info().
		Int("loaded", len(snap.Report.Loaded)).
		Int("missing", len(snap.Report.Missing)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot built")
	return snap, nil
}

// loadTables reads one domain's ratings and catalog and derives the
// in-memory structures that are never persisted.
func (l *Loader) loadTables(domain artifact.Domain) (*DomainState, error) {
	names := tableNames[domain]

	ratings, err := dataset.ReadRatings(filepath.Join(l.dataDir, names.ratings))
	if err != nil {
		return nil, fmt.Errorf("load %s ratings: %w", domain, err)
	}
	items, err := dataset.ReadItems(filepath.Join(l.dataDir, names.items))
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", domain, err)
	}

	// Index maps come from the rating table, not the catalog: an item
	// is indexed iff someone rated it, and artifacts trained against
	// rating-derived indices stay interpretable. Catalog rows for
	// unrated items only matter as genre metadata and are skipped by
	// the matrix builder; rated items missing from the catalog keep an
	// all-zero genre row.
	state := &DomainState{
		Domain: domain,
		Users:  dataset.BuildUserIndex(ratings),
		Items:  dataset.BuildItemIndex(ratings),
	}
	state.Genres = dataset.BuildGenreMatrix(items, state.Items)

	state.ItemsByUser = make([][]int, state.Users.Len())
	for _, r := range ratings {
		ui, ok := state.Users.Index(r.UserID)
		if !ok {
			continue
		}
		ii, ok := state.Items.Index(r.ItemID)
		if !ok {
			continue
		}
		state.ItemsByUser[ui] = append(state.ItemsByUser[ui], ii)
	}

	l.log.Debug().
		Str("domain", string(domain)).
		Int("users", state.Users.Len()).
		Int("items", state.Items.Len()).
		Int("genres", state.Genres.NumGenres()).
		Msg("tables loaded")
	return state, nil
}

// loadModels fills in the domain's own model families. Absent
// artifacts are recorded and skipped; anything else that goes wrong
// reading an artifact is treated the same way after a warning, so one
// corrupt file cannot take down the rest of the snapshot. Shapes are
// checked against the freshly rebuilt tables: an artifact trained
// against a different index or genre vocabulary is stale and counts
// as missing rather than being served.
func (l *Loader) loadModels(snap *Snapshot, state *DomainState) {
	var collab model.Collaborative
	if l.loadArtifact(snap, artifact.ModelKey{Domain: state.Domain, Family: artifact.FamilyCollaborative}, &collab, func() error {
		if err := collab.Valid(); err != nil {
			return err
		}
		if got, want := collab.NumUsers(), state.Users.Len(); got != want {
			return fmt.Errorf("%d user factors, index has %d users", got, want)
		}
		if got, want := collab.NumItems(), state.Items.Len(); got != want {
			return fmt.Errorf("%d item factors, index has %d items", got, want)
		}
		return nil
	}) {
		state.Collaborative = &collab
	}

	var content model.Content
	if l.loadArtifact(snap, artifact.ModelKey{Domain: state.Domain, Family: artifact.FamilyContent}, &content, func() error {
		if err := content.Valid(); err != nil {
			return err
		}
		if got, want := content.NumGenres(), state.Genres.NumGenres(); got != want {
			return fmt.Errorf("trained on %d genres, vocabulary has %d", got, want)
		}
		return nil
	}) {
		state.Content = &content
	}

	var emb model.Embeddings
	if l.loadArtifact(snap, artifact.ModelKey{Domain: state.Domain, Family: artifact.FamilyEmbeddings}, &emb, func() error {
		if err := emb.Valid(); err != nil {
			return err
		}
		if got, want := emb.NumItems(), state.Items.Len(); got != want {
			return fmt.Errorf("%d embedding rows, index has %d items", got, want)
		}
		return nil
	}) {
		state.Embeddings = &emb
	}
}

// loadTranslator wires the translator pointing INTO state's domain.
// The artifact key belongs to the source domain; it only loads when
// both embedding matrices are present, because inference needs the
// source side to build the query and the target side to rank.
func (l *Loader) loadTranslator(snap *Snapshot, state *DomainState) {
	source := snap.Domain(state.Domain.Other())
	key := artifact.ModelKey{Domain: source.Domain, Family: artifact.FamilyTranslator}

	if source.Embeddings == nil || state.Embeddings == nil {
		if l.store.Exists(key) {
			l.log.Warn().
				Str("model", key.String()).
				Msg("translator weights present but embeddings missing, skipping")
		}
		snap.Report.Missing = append(snap.Report.Missing, key)
		metrics.ArtifactLoads.WithLabelValues(string(key.Domain), string(key.Family), "missing").Inc()
		return
	}

	var tr model.Translator
	if l.loadArtifact(snap, key, &tr, func() error {
		if err := tr.Valid(); err != nil {
			return err
		}
		if got, want := tr.SourceDim(), source.Embeddings.Dim; got != want {
			return fmt.Errorf("source dim %d, embeddings have %d", got, want)
		}
		if got, want := tr.TargetDim(), state.Embeddings.Dim; got != want {
			return fmt.Errorf("target dim %d, embeddings have %d", got, want)
		}
		return nil
	}) {
		state.Inbound = &tr
	}
}

// loadArtifact loads one artifact, runs its shape check, maintains the
// report, and reports whether the model is usable.
func (l *Loader) loadArtifact(snap *Snapshot, key artifact.ModelKey, v any, valid func() error) bool {
	err := l.store.Load(key, v)
	switch {
	case err == nil:
		if verr := valid(); verr != nil {
			l.log.Warn().Err(verr).Str("model", key.String()).Msg("artifact stale, skipping")
			break
		}
		snap.Report.Loaded = append(snap.Report.Loaded, key)
		metrics.ArtifactLoads.WithLabelValues(string(key.Domain), string(key.Family), "loaded").Inc()
		l.log.Debug().Str("model", key.String()).Msg("artifact loaded")
		return true
	case errors.Is(err, artifact.ErrNotFound):
		l.log.Debug().Str("model", key.String()).Msg("artifact absent")
	default:
		l.log.Warn().Err(err).Str("model", key.String()).Msg("artifact unreadable, skipping")
	}
	snap.Report.Missing = append(snap.Report.Missing, key)
	metrics.ArtifactLoads.WithLabelValues(string(key.Domain), string(key.Family), "missing").Inc()
	return false
}
