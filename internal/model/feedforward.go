// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package model

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// FeedForward is a one-hidden-layer network with ReLU activation and a
// linear output, trained with mini-batch SGD on squared error. It backs
// both the content regressor (scalar output) and the cross-domain
// translators (vector output). The weight fields are exported for
// artifact serialization.
type FeedForward struct {
	// W1 is the input-to-hidden weight matrix (inDim x hiddenDim).
	W1 [][]float64 `json:"w1"`
	// B1 is the hidden bias vector.
	B1 []float64 `json:"b1"`
	// W2 is the hidden-to-output weight matrix (hiddenDim x outDim).
	W2 [][]float64 `json:"w2"`
	// B2 is the output bias vector.
	B2 []float64 `json:"b2"`
}

// NewFeedForward allocates a network with small random initial weights.
func NewFeedForward(inDim, hiddenDim, outDim int, rng *rand.Rand) *FeedForward {
	return &FeedForward{
		W1: randomMatrix(rng, inDim, hiddenDim, initScale(inDim)),
		B1: make([]float64, hiddenDim),
		W2: randomMatrix(rng, hiddenDim, outDim, initScale(hiddenDim)),
		B2: make([]float64, outDim),
	}
}

// InDim returns the input dimension.
func (n *FeedForward) InDim() int { return len(n.W1) }

// HiddenDim returns the hidden layer width.
func (n *FeedForward) HiddenDim() int { return len(n.B1) }

// OutDim returns the output dimension.
func (n *FeedForward) OutDim() int { return len(n.B2) }

// Valid reports whether the weight shapes are mutually consistent.
// Used after deserializing an artifact.
func (n *FeedForward) Valid() error {
	hidden := len(n.B1)
	out := len(n.B2)
	for i, row := range n.W1 {
		if len(row) != hidden {
			return fmt.Errorf("w1 row %d has %d columns, want %d", i, len(row), hidden)
		}
	}
	if len(n.W2) != hidden {
		return fmt.Errorf("w2 has %d rows, want %d", len(n.W2), hidden)
	}
	for j, row := range n.W2 {
		if len(row) != out {
			return fmt.Errorf("w2 row %d has %d columns, want %d", j, len(row), out)
		}
	}
	return nil
}

// Forward computes the network output for a single input vector.
func (n *FeedForward) Forward(x []float64) []float64 {
	_, out := n.forward(x)
	return out
}

// forward returns the post-activation hidden layer and the output.
func (n *FeedForward) forward(x []float64) (hidden, out []float64) {
	hidden = make([]float64, n.HiddenDim())
	for j := range hidden {
		sum := n.B1[j]
		for i, xi := range x {
			sum += xi * n.W1[i][j]
		}
		if sum > 0 {
			hidden[j] = sum
		}
	}

	out = make([]float64, n.OutDim())
	for k := range out {
		sum := n.B2[k]
		for j, hj := range hidden {
			sum += hj * n.W2[j][k]
		}
		out[k] = sum
	}
	return hidden, out
}

// TrainBatch runs one gradient step on a mini-batch of (input, target)
// pairs and returns the mean squared error before the update. Gradients
// are averaged over the batch.
func (n *FeedForward) TrainBatch(xs, ys [][]float64, lr float64) float64 {
	if len(xs) == 0 {
		return 0
	}

	inDim, hiddenDim, outDim := n.InDim(), n.HiddenDim(), n.OutDim()

	gW1 := make([][]float64, inDim)
	for i := range gW1 {
		gW1[i] = make([]float64, hiddenDim)
	}
	gB1 := make([]float64, hiddenDim)
	gW2 := make([][]float64, hiddenDim)
	for j := range gW2 {
		gW2[j] = make([]float64, outDim)
	}
	gB2 := make([]float64, outDim)

	var loss float64
	for s := range xs {
		x, target := xs[s], ys[s]
		hidden, out := n.forward(x)

		// Output layer gradient: d = out - target.
		dOut := make([]float64, outDim)
		for k := range dOut {
			d := out[k] - target[k]
			dOut[k] = d
			loss += d * d
		}

		for j, hj := range hidden {
			for k, dk := range dOut {
				gW2[j][k] += hj * dk
			}
		}
		for k, dk := range dOut {
			gB2[k] += dk
		}

		// Backprop through ReLU: units that were clamped pass nothing.
		dHidden := make([]float64, hiddenDim)
		for j := range dHidden {
			if hidden[j] <= 0 {
				continue
			}
			var sum float64
			for k, dk := range dOut {
				sum += dk * n.W2[j][k]
			}
			dHidden[j] = sum
		}

		for i, xi := range x {
			if xi == 0 {
				continue
			}
			for j, dj := range dHidden {
				gW1[i][j] += xi * dj
			}
		}
		for j, dj := range dHidden {
			gB1[j] += dj
		}
	}

	step := lr / float64(len(xs))
	for i := range gW1 {
		for j := range gW1[i] {
			n.W1[i][j] -= step * gW1[i][j]
		}
	}
	for j := range gB1 {
		n.B1[j] -= step * gB1[j]
	}
	for j := range gW2 {
		for k := range gW2[j] {
			n.W2[j][k] -= step * gW2[j][k]
		}
	}
	for k := range gB2 {
		n.B2[k] -= step * gB2[k]
	}

	return loss / float64(len(xs)*outDim)
}

// randomMatrix returns a rows-by-cols matrix of uniform values in
// [-scale, scale).
func randomMatrix(rng *rand.Rand, rows, cols int, scale float64) [][]float64 {
	m := make([][]float64, rows)
	for i := range m {
		m[i] = make([]float64, cols)
		for j := range m[i] {
			m[i][j] = (rng.Float64()*2 - 1) * scale
		}
	}
	return m
}

// initScale returns the weight initialization scale for a layer with
// the given fan-in.
func initScale(fanIn int) float64 {
	if fanIn == 0 {
		return 0.1
	}
	return 1.0 / math.Sqrt(float64(fanIn))
}

// dot computes the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// sigmoid is the logistic function.
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

// TopK returns the indices of the k highest scores in descending score
// order. Ties resolve to the lower index (stable sort), which keeps
// ranking deterministic when scores collide.
func TopK(scores []float64, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}

// shuffledIndices returns a permutation of [0, n) drawn from rng.
func shuffledIndices(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	rng.Shuffle(n, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	return idx
}
