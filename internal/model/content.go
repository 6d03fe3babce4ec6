// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package model

import (
	"errors"
	"math/rand"

	"github.com/interleaflabs/interleaf/internal/dataset"
)

// ContentConfig contains hyperparameters for the content-based model.
type ContentConfig struct {
	HiddenDim    int
	Epochs       int
	BatchSize    int
	LearningRate float64
}

func (c ContentConfig) withDefaults() ContentConfig {
	if c.HiddenDim <= 0 {
		c.HiddenDim = 64
	}
	if c.Epochs <= 0 {
		c.Epochs = 5
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 64
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.01
	}
	return c
}

// Content predicts a rating from an item's genre indicator vector. The
// network carries no user state: at inference time the caller supplies
// a genre profile, typically averaged over a user's rated items.
type Content struct {
	Net *FeedForward `json:"net"`
}

// NumGenres returns the genre vocabulary size the model was trained on.
func (m *Content) NumGenres() int { return m.Net.InDim() }

// Valid reports whether the deserialized network is usable.
func (m *Content) Valid() error {
	if m.Net == nil {
		return errors.New("content: missing network")
	}
	return m.Net.Valid()
}

// Predict returns the predicted rating for a single genre vector.
func (m *Content) Predict(genres []float64) float64 {
	return m.Net.Forward(genres)[0]
}

// ScoreProfile scores one genre profile against every row of the genre
// matrix. The profile is broadcast: each item is scored as the sum of
// the profile prediction, so relative order comes from the stable
// tie-break when items share a profile. Callers that want per-item
// differentiation should score item rows directly.
func (m *Content) ScoreProfile(profile []float64, genres *dataset.GenreMatrix) []float64 {
	score := m.Predict(profile)
	scores := make([]float64, len(genres.Rows))
	for i := range scores {
		scores[i] = score
	}
	return scores
}

// TrainContent fits the network to (genre vector, rating) pairs built
// by joining the rating table to the genre matrix through the item
// index. Ratings for unindexed items are skipped.
func TrainContent(cfg ContentConfig, ratings []dataset.Rating, items *dataset.IndexMap, genres *dataset.GenreMatrix, rng *rand.Rand) *Content {
	cfg = cfg.withDefaults()

	xs := make([][]float64, 0, len(ratings))
	ys := make([]float64, 0, len(ratings))
	for _, r := range ratings {
		ii, ok := items.Index(r.ItemID)
		if !ok || ii >= len(genres.Rows) {
			continue
		}
		xs = append(xs, genres.Rows[ii])
		ys = append(ys, r.Rating)
	}

	net := NewFeedForward(genres.NumGenres(), cfg.HiddenDim, 1, rng)
	trainRegression(net, xs, ys, cfg.Epochs, cfg.BatchSize, cfg.LearningRate, rng)

	return &Content{Net: net}
}

// trainRegression runs shuffled mini-batch SGD over a regression
// dataset with scalar targets.
func trainRegression(net *FeedForward, xs [][]float64, ys []float64, epochs, batchSize int, lr float64, rng *rand.Rand) {
	for epoch := 0; epoch < epochs; epoch++ {
		order := shuffledIndices(len(xs), rng)
		for start := 0; start < len(order); start += batchSize {
			end := start + batchSize
			if end > len(order) {
				end = len(order)
			}
			bx := make([][]float64, 0, end-start)
			by := make([][]float64, 0, end-start)
			for _, i := range order[start:end] {
				bx = append(bx, xs[i])
				by = append(by, []float64{ys[i]})
			}
			net.TrainBatch(bx, by, lr)
		}
	}
}
