// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package model

import (
	"fmt"
	"math/rand"

	"github.com/interleaflabs/interleaf/internal/dataset"
)

// CollaborativeConfig contains hyperparameters for the collaborative
// filtering model.
type CollaborativeConfig struct {
	// Dim is the latent embedding dimension. Default 64.
	Dim int

	// Epochs is the number of passes over the rating table.
	Epochs int

	// BatchSize is the mini-batch size.
	BatchSize int

	// LearningRate is the SGD step size.
	LearningRate float64
}

// withDefaults fills zero fields with the tuned defaults.
func (c CollaborativeConfig) withDefaults() CollaborativeConfig {
	if c.Dim <= 0 {
		c.Dim = 64
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

// Collaborative holds one latent vector per user and per item; the
// predicted rating for (u, i) is the dot product of the two vectors.
// Rows are addressed by dense index, so the model is only valid
// together with the index maps it was trained against.
type Collaborative struct {
	Dim         int         `json:"dim"`
	UserFactors [][]float64 `json:"user_factors"`
	ItemFactors [][]float64 `json:"item_factors"`
}

// NumUsers returns the user embedding count.
func (m *Collaborative) NumUsers() int { return len(m.UserFactors) }

// NumItems returns the item embedding count.
func (m *Collaborative) NumItems() int { return len(m.ItemFactors) }

// Valid reports whether every factor row matches the declared
// dimension. Used after deserializing an artifact.
func (m *Collaborative) Valid() error {
	for i, row := range m.UserFactors {
		if len(row) != m.Dim {
			return fmt.Errorf("collaborative: user factor row %d has dim %d, want %d", i, len(row), m.Dim)
		}
	}
	for i, row := range m.ItemFactors {
		if len(row) != m.Dim {
			return fmt.Errorf("collaborative: item factor row %d has dim %d, want %d", i, len(row), m.Dim)
		}
	}
	return nil
}

// Score predicts the rating of the item at itemIdx by the user at userIdx.
func (m *Collaborative) Score(userIdx, itemIdx int) float64 {
	return dot(m.UserFactors[userIdx], m.ItemFactors[itemIdx])
}

// ScoreAll scores the user at userIdx against every item index.
func (m *Collaborative) ScoreAll(userIdx int) []float64 {
	scores := make([]float64, m.NumItems())
	u := m.UserFactors[userIdx]
	for i, v := range m.ItemFactors {
		scores[i] = dot(u, v)
	}
	return scores
}

// Recommend returns the top-k item indices for the user at userIdx,
// ranked by predicted rating descending with stable index tie-break.
// A userIdx out of range yields nil: users unseen at training time have
// no embedding, and cold-start is deliberately unhandled here.
func (m *Collaborative) Recommend(userIdx, k int) []int {
	if userIdx < 0 || userIdx >= m.NumUsers() {
		return nil
	}
	return TopK(m.ScoreAll(userIdx), k)
}

// TrainCollaborative fits user and item embeddings to the rating table
// by mini-batch SGD on squared error, shuffling the sample order every
// epoch. Ratings whose user or item is missing from the index maps are
// skipped; index maps built from the same table never produce any.
func TrainCollaborative(cfg CollaborativeConfig, ratings []dataset.Rating, users, items *dataset.IndexMap, rng *rand.Rand) *Collaborative {
	cfg = cfg.withDefaults()

	m := &Collaborative{
		Dim:         cfg.Dim,
		UserFactors: randomMatrix(rng, users.Len(), cfg.Dim, initScale(cfg.Dim)),
		ItemFactors: randomMatrix(rng, items.Len(), cfg.Dim, initScale(cfg.Dim)),
	}

	type sample struct {
		user, item int
		rating     float64
	}
	samples := make([]sample, 0, len(ratings))
	for _, r := range ratings {
		ui, ok := users.Index(r.UserID)
		if !ok {
			continue
		}
		ii, ok := items.Index(r.ItemID)
		if !ok {
			continue
		}
		samples = append(samples, sample{user: ui, item: ii, rating: r.Rating})
	}

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := shuffledIndices(len(samples), rng)
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			for _, si := range order[start:end] {
				s := samples[si]
				u := m.UserFactors[s.user]
				v := m.ItemFactors[s.item]

				err := dot(u, v) - s.rating
				step := cfg.LearningRate * err
				for f := 0; f < cfg.Dim; f++ {
					uf := u[f]
					u[f] -= step * v[f]
					v[f] -= step * uf
				}
			}
		}
	}

	return m
}
