// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package model

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/interleaflabs/interleaf/internal/dataset"
)

func TestBuildPairs(t *testing.T) {
	// User 1 rates items 10, 11, 12 in table order; user 2 rates 12.
	// With window 1 the only pairs come from user 1's sequence.
	ratings := []dataset.Rating{
		{UserID: 1, ItemID: 10, Rating: 5},
		{UserID: 1, ItemID: 11, Rating: 4},
		{UserID: 2, ItemID: 12, Rating: 3},
		{UserID: 1, ItemID: 12, Rating: 2},
	}
	users := dataset.BuildUserIndex(ratings)
	items := dataset.BuildItemIndex(ratings)

	// Item indices: 10->0, 11->1, 12->2. User 1's sequence is
	// [0, 1, 2] because grouping preserves table order.
	got := buildPairs(ratings, users, items, 1)
	want := []pair{
		{center: 0, context: 1},
		{center: 1, context: 0},
		{center: 1, context: 2},
		{center: 2, context: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("buildPairs = %v, want %v", got, want)
	}
}

func TestBuildPairsWindow(t *testing.T) {
	ratings := []dataset.Rating{
		{UserID: 1, ItemID: 10},
		{UserID: 1, ItemID: 11},
		{UserID: 1, ItemID: 12},
		{UserID: 1, ItemID: 13},
	}
	users := dataset.BuildUserIndex(ratings)
	items := dataset.BuildItemIndex(ratings)

	tests := []struct {
		window int
		want   int
	}{
		{window: 1, want: 6},
		{window: 2, want: 10},
		{window: 3, want: 12},
	}
	for _, tt := range tests {
		got := buildPairs(ratings, users, items, tt.window)
		if len(got) != tt.want {
			t.Errorf("window %d: got %d pairs, want %d", tt.window, len(got), tt.want)
		}
	}
}

func TestTrainSkipGram(t *testing.T) {
	ratings := []dataset.Rating{
		{UserID: 1, ItemID: 10}, {UserID: 1, ItemID: 11}, {UserID: 1, ItemID: 12},
		{UserID: 2, ItemID: 10}, {UserID: 2, ItemID: 11},
		{UserID: 3, ItemID: 12}, {UserID: 3, ItemID: 13},
	}
	users := dataset.BuildUserIndex(ratings)
	items := dataset.BuildItemIndex(ratings)
	cfg := SkipGramConfig{Dim: 8, Epochs: 2}

	e := TrainSkipGram(cfg, ratings, users, items, rand.New(rand.NewSource(42)))
	if e.Dim != 8 {
		t.Errorf("Dim = %d, want 8", e.Dim)
	}
	if e.NumItems() != 4 {
		t.Errorf("NumItems() = %d, want 4", e.NumItems())
	}

	again := TrainSkipGram(cfg, ratings, users, items, rand.New(rand.NewSource(42)))
	if !reflect.DeepEqual(e, again) {
		t.Error("same seed produced different embeddings")
	}
}

func TestEmbeddingsVector(t *testing.T) {
	e := &Embeddings{Dim: 2, Vectors: [][]float64{{1, 2}, {3, 4}}}

	if got := e.Vector(1); !reflect.DeepEqual(got, []float64{3, 4}) {
		t.Errorf("Vector(1) = %v", got)
	}
	if got := e.Vector(2); got != nil {
		t.Errorf("Vector(2) = %v, want nil", got)
	}
	if got := e.Vector(-1); got != nil {
		t.Errorf("Vector(-1) = %v, want nil", got)
	}
}

func TestEmbeddingsAverage(t *testing.T) {
	e := &Embeddings{Dim: 2, Vectors: [][]float64{{1, 2}, {3, 4}, {5, 6}}}

	tests := []struct {
		name string
		idxs []int
		want []float64
	}{
		{name: "two vectors", idxs: []int{0, 2}, want: []float64{3, 4}},
		{name: "single vector", idxs: []int{1}, want: []float64{3, 4}},
		{name: "out of range skipped", idxs: []int{0, 99}, want: []float64{1, 2}},
		{name: "nothing contributes", idxs: []int{99}, want: nil},
		{name: "empty input", idxs: nil, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Average(tt.idxs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Average(%v) = %v, want %v", tt.idxs, got, tt.want)
			}
		})
	}
}

func TestEmbeddingsScoreAgainst(t *testing.T) {
	e := &Embeddings{Dim: 2, Vectors: [][]float64{{1, 0}, {0, 1}, {1, 1}}}

	got := e.ScoreAgainst([]float64{2, 3})
	want := []float64{2, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ScoreAgainst = %v, want %v", got, want)
	}
}
