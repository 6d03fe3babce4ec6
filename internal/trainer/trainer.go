// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package trainer runs the full training pipeline: per-domain
// collaborative, content and co-occurrence models, then the two
// cross-domain translators, all persisted through the artifact store.
package trainer

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/config"
	"github.com/interleaflabs/interleaf/internal/dataset"
	"github.com/interleaflabs/interleaf/internal/logging"
	"github.com/interleaflabs/interleaf/internal/metrics"
	"github.com/interleaflabs/interleaf/internal/model"
)

// domainTables mirrors the registry's foundational file layout.
var domainTables = map[artifact.Domain]struct{ ratings, items string }{
	artifact.DomainBooks:  {ratings: "book_ratings.csv", items: "books.csv"},
	artifact.DomainMovies: {ratings: "movie_ratings.csv", items: "movies.csv"},
}

// Trainer trains and persists every model family.
type Trainer struct {
	cfg     config.TrainingConfig
	dataDir string
	store   *artifact.Store
	log     zerolog.Logger
}

func New(cfg config.TrainingConfig, dataDir string, store *artifact.Store) *Trainer {
	return &Trainer{
		cfg:     cfg,
		dataDir: dataDir,
		store:   store,
		log:     logging.With().Str("component", "trainer").Logger(),
	}
}

// domainData is the in-memory training view of one domain's tables.
type domainData struct {
	ratings []dataset.Rating
	users   *dataset.IndexMap
	items   *dataset.IndexMap
	genres  *dataset.GenreMatrix
}

// TrainAll runs the whole pipeline with a single seeded random source,
// so one seed pins every artifact byte-for-byte. The context is
// checked between stages; a cancelled run leaves whatever artifacts it
// already wrote, which the loader treats as a partial set.
func (t *Trainer) TrainAll(ctx context.Context) error {
	start := time.Now()
	rng := rand.New(rand.NewSource(t.cfg.Seed))

	embeddings := make(map[artifact.Domain]*model.Embeddings)
	for _, domain := range artifact.Domains() {
		data, err := t.readTables(domain)
		if err != nil {
			metrics.ObserveTraining("error", start)
			return err
		}
		emb, err := t.trainDomain(ctx, domain, data, rng)
		if err != nil {
			metrics.ObserveTraining("error", start)
			return err
		}
		embeddings[domain] = emb
	}

	for _, domain := range artifact.Domains() {
		if err := ctx.Err(); err != nil {
			metrics.ObserveTraining("cancelled", start)
			return err
		}
		if err := t.trainTranslator(domain, embeddings, rng); err != nil {
			metrics.ObserveTraining("error", start)
			return err
		}
	}

	metrics.ObserveTraining("ok", start)
	t.log.Info().Dur("elapsed", time.Since(start)).Msg("training pipeline finished")
	return nil
}

func (t *Trainer) readTables(domain artifact.Domain) (*domainData, error) {
	names := domainTables[domain]

	ratings, err := dataset.ReadRatings(filepath.Join(t.dataDir, names.ratings))
	if err != nil {
		return nil, fmt.Errorf("read %s ratings: %w", domain, err)
	}
	items, err := dataset.ReadItems(filepath.Join(t.dataDir, names.items))
	if err != nil {
		return nil, fmt.Errorf("read %s catalog: %w", domain, err)
	}

	// Item indices are derived from the rating table in first-occurrence
	// order, the same way the loader rebuilds them, so persisted
	// embedding rows line up with the indices the registry serves.
	data := &domainData{
		ratings: ratings,
		users:   dataset.BuildUserIndex(ratings),
		items:   dataset.BuildItemIndex(ratings),
	}
	data.genres = dataset.BuildGenreMatrix(items, data.items)
	return data, nil
}

// trainDomain fits the three in-domain families and persists them,
// returning the embeddings for translator training.
func (t *Trainer) trainDomain(ctx context.Context, domain artifact.Domain, data *domainData, rng *rand.Rand) (*model.Embeddings, error) {
	log := t.log.With().Str("domain", string(domain)).Logger()
	log.Info().
		Int("ratings", len(data.ratings)).
		Int("users", data.users.Len()).
		Int("items", data.items.Len()).
		Msg("training domain")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collab := model.TrainCollaborative(model.CollaborativeConfig{
		Dim:          t.cfg.EmbeddingDim,
		Epochs:       t.cfg.Epochs,
		BatchSize:    t.cfg.BatchSize,
		LearningRate: t.cfg.LearningRate,
	}, data.ratings, data.users, data.items, rng)
	if err := t.save(domain, artifact.FamilyCollaborative, collab); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := model.TrainContent(model.ContentConfig{
		HiddenDim:    t.cfg.HiddenDim,
		Epochs:       t.cfg.Epochs,
		BatchSize:    t.cfg.BatchSize,
		LearningRate: t.cfg.LearningRate,
	}, data.ratings, data.items, data.genres, rng)
	if err := t.save(domain, artifact.FamilyContent, content); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := model.TrainSkipGram(model.SkipGramConfig{
		Dim:             t.cfg.EmbeddingDim,
		Window:          t.cfg.Window,
		NegativeSamples: t.cfg.NegativeSamples,
		Epochs:          t.cfg.Epochs,
		LearningRate:    t.cfg.LearningRate,
	}, data.ratings, data.users, data.items, rng)
	if err := t.save(domain, artifact.FamilyEmbeddings, emb); err != nil {
		return nil, err
	}

	return emb, nil
}

// trainTranslator fits the translator OUT of domain into its opposite.
// Both translator layers are sized to the embedding dimension, since
// the network maps between the two domains' embedding spaces.
func (t *Trainer) trainTranslator(domain artifact.Domain, embeddings map[artifact.Domain]*model.Embeddings, rng *rand.Rand) error {
	tr := model.TrainTranslator(model.TranslatorConfig{
		HiddenDim:    t.cfg.EmbeddingDim,
		Epochs:       t.cfg.Epochs,
		BatchSize:    t.cfg.BatchSize,
		LearningRate: t.cfg.LearningRate,
	}, embeddings[domain], embeddings[domain.Other()], rng)
	return t.save(domain, artifact.FamilyTranslator, tr)
}

func (t *Trainer) save(domain artifact.Domain, family artifact.Family, v any) error {
	key := artifact.ModelKey{Domain: domain, Family: family}
	if err := t.store.Save(key, v); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	t.log.Debug().Str("model", key.String()).Msg("artifact written")
	return nil
}
