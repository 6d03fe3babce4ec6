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

// SkipGramConfig contains hyperparameters for item embedding training.
type SkipGramConfig struct {
	Dim             int
	Window          int
	NegativeSamples int
	Epochs          int
	LearningRate    float64
}

func (c SkipGramConfig) withDefaults() SkipGramConfig {
	if c.Dim <= 0 {
		c.Dim = 64
	}
	if c.Window <= 0 {
		c.Window = 2
	}
	if c.NegativeSamples <= 0 {
		c.NegativeSamples = 1
	}
	if c.Epochs <= 0 {
		c.Epochs = 5
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.01
	}
	return c
}

// Embeddings holds one dense vector per item index, learned from
// co-occurrence of items inside each user's rating sequence.
type Embeddings struct {
	Dim     int         `json:"dim"`
	Vectors [][]float64 `json:"vectors"`
}

// NumItems returns the number of embedded items.
func (e *Embeddings) NumItems() int { return len(e.Vectors) }

// Valid reports whether every vector matches the declared dimension.
// Used after deserializing an artifact.
func (e *Embeddings) Valid() error {
	for i, v := range e.Vectors {
		if len(v) != e.Dim {
			return fmt.Errorf("embeddings: vector %d has dim %d, want %d", i, len(v), e.Dim)
		}
	}
	return nil
}

// Vector returns the embedding at itemIdx, or nil if out of range.
func (e *Embeddings) Vector(itemIdx int) []float64 {
	if itemIdx < 0 || itemIdx >= len(e.Vectors) {
		return nil
	}
	return e.Vectors[itemIdx]
}

// Average returns the mean of the embeddings at the given item
// indices, skipping indices without a vector. It returns nil when no
// index contributes.
func (e *Embeddings) Average(itemIdxs []int) []float64 {
	sum := make([]float64, e.Dim)
	n := 0
	for _, idx := range itemIdxs {
		v := e.Vector(idx)
		if v == nil {
			continue
		}
		for f := range sum {
			sum[f] += v[f]
		}
		n++
	}
	if n == 0 {
		return nil
	}
	for f := range sum {
		sum[f] /= float64(n)
	}
	return sum
}

// ScoreAgainst ranks every embedded item by dot product with query.
func (e *Embeddings) ScoreAgainst(query []float64) []float64 {
	scores := make([]float64, len(e.Vectors))
	for i, v := range e.Vectors {
		scores[i] = dot(query, v)
	}
	return scores
}

// pair is one (center, context) training example.
type pair struct {
	center, context int
}

// buildPairs groups ratings into per-user item sequences in table
// order, then emits every (center, context) pair whose positions are
// at most window apart within the same sequence. User grouping
// preserves first-appearance order so pair construction is a pure
// function of the table.
func buildPairs(ratings []dataset.Rating, users, items *dataset.IndexMap, window int) []pair {
	sequences := make([][]int, users.Len())
	for _, r := range ratings {
		ui, ok := users.Index(r.UserID)
		if !ok {
			continue
		}
		ii, ok := items.Index(r.ItemID)
		if !ok {
			continue
		}
		sequences[ui] = append(sequences[ui], ii)
	}

	var pairs []pair
	for _, seq := range sequences {
		for i, center := range seq {
			lo := i - window
			if lo < 0 {
				lo = 0
			}
			hi := i + window
			if hi > len(seq)-1 {
				hi = len(seq) - 1
			}
			for j := lo; j <= hi; j++ {
				if j == i {
					continue
				}
				pairs = append(pairs, pair{center: center, context: seq[j]})
			}
		}
	}
	return pairs
}

// TrainSkipGram learns item embeddings with negative sampling. Each
// positive (center, context) pair is paired with NegativeSamples items
// drawn uniformly from the full item range; a draw that happens to hit
// the true context is kept, which only softens that one update.
func TrainSkipGram(cfg SkipGramConfig, ratings []dataset.Rating, users, items *dataset.IndexMap, rng *rand.Rand) *Embeddings {
	cfg = cfg.withDefaults()
	numItems := items.Len()

	in := randomMatrix(rng, numItems, cfg.Dim, initScale(cfg.Dim))
	out := randomMatrix(rng, numItems, cfg.Dim, initScale(cfg.Dim))

	pairs := buildPairs(ratings, users, items, cfg.Window)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := shuffledIndices(len(pairs), rng)
		for _, pi := range order {
			p := pairs[pi]
			sgdStep(in[p.center], out[p.context], 1, cfg.LearningRate)
			for n := 0; n < cfg.NegativeSamples; n++ {
				neg := rng.Intn(numItems)
				sgdStep(in[p.center], out[neg], 0, cfg.LearningRate)
			}
		}
	}

	return &Embeddings{Dim: cfg.Dim, Vectors: in}
}

// sgdStep applies one logistic-loss gradient step to a center/context
// vector pair with the given binary label. The context gradient is
// computed from a copy of the center vector so the two updates do not
// feed each other within the step.
func sgdStep(center, context []float64, label float64, lr float64) {
	g := lr * (sigmoid(dot(center, context)) - label)
	for f := range center {
		cf := center[f]
		center[f] -= g * context[f]
		context[f] -= g * cf
	}
}
