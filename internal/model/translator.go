// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package model

import (
	"errors"
	"fmt"
	"math/rand"
)

// TranslatorConfig contains hyperparameters for cross-domain
// embedding translation.
type TranslatorConfig struct {
	HiddenDim    int
	Epochs       int
	BatchSize    int
	LearningRate float64

	// Pairs optionally lists explicit (source index, target index)
	// training alignments. When empty, training falls back to
	// positional alignment: source row i maps to target row i, up to
	// the shorter matrix. Positional alignment only carries signal
	// when the two catalogs are curated so matching rows correspond.
	Pairs [][2]int
}

func (c TranslatorConfig) withDefaults() TranslatorConfig {
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

// Translator maps an embedding from one domain's vector space into
// another's, so a user's taste profile in movies can be ranked against
// the book catalog and vice versa.
type Translator struct {
	Net *FeedForward `json:"net"`
}

// SourceDim returns the expected input embedding dimension.
func (t *Translator) SourceDim() int { return t.Net.InDim() }

// TargetDim returns the produced embedding dimension.
func (t *Translator) TargetDim() int { return t.Net.OutDim() }

// Valid reports whether the deserialized network is usable.
func (t *Translator) Valid() error {
	if t.Net == nil {
		return errors.New("translator: missing network")
	}
	return t.Net.Valid()
}

// Project translates a source-domain embedding into the target space.
func (t *Translator) Project(embedding []float64) ([]float64, error) {
	if len(embedding) != t.SourceDim() {
		return nil, fmt.Errorf("translator: embedding dim %d, want %d", len(embedding), t.SourceDim())
	}
	return t.Net.Forward(embedding), nil
}

// TrainTranslator fits a network mapping source embeddings to target
// embeddings. Explicit pairs from cfg.Pairs take precedence; rows out
// of range are skipped. Without pairs, row i of src aligns with row i
// of dst up to the shorter matrix.
func TrainTranslator(cfg TranslatorConfig, src, dst *Embeddings, rng *rand.Rand) *Translator {
	cfg = cfg.withDefaults()

	var xs, ys [][]float64
	if len(cfg.Pairs) > 0 {
		for _, p := range cfg.Pairs {
			x := src.Vector(p[0])
			y := dst.Vector(p[1])
			if x == nil || y == nil {
				continue
			}
			xs = append(xs, x)
			ys = append(ys, y)
		}
	} else {
		n := src.NumItems()
		if dst.NumItems() < n {
			n = dst.NumItems()
		}
		for i := 0; i < n; i++ {
			xs = append(xs, src.Vectors[i])
			ys = append(ys, dst.Vectors[i])
		}
	}

	net := NewFeedForward(src.Dim, cfg.HiddenDim, dst.Dim, rng)

	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		order := shuffledIndices(len(xs), rng)
		for start := 0; start < len(order); start += cfg.BatchSize {
			end := start + cfg.BatchSize
			if end > len(order) {
				end = len(order)
			}
			bx := make([][]float64, 0, end-start)
			by := make([][]float64, 0, end-start)
			for _, i := range order[start:end] {
				bx = append(bx, xs[i])
				by = append(by, ys[i])
			}
			net.TrainBatch(bx, by, cfg.LearningRate)
		}
	}

	return &Translator{Net: net}
}
