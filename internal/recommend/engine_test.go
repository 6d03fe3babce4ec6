// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package recommend

import (
	"errors"
	"reflect"
	"testing"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/dataset"
	"github.com/interleaflabs/interleaf/internal/model"
	"github.com/interleaflabs/interleaf/internal/registry"
)

func TestMergeDedupe(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]int
		want  []int
	}{
		{
			name:  "precedence with duplicates",
			lists: [][]int{{5, 3, 3, 7}, {3, 9}, {7, 1}},
			want:  []int{5, 3, 7, 9, 1},
		},
		{
			name:  "all empty",
			lists: [][]int{nil, nil, nil},
			want:  nil,
		},
		{
			name:  "single list",
			lists: [][]int{{2, 0, 1}},
			want:  []int{2, 0, 1},
		},
		{
			name:  "disjoint keeps order",
			lists: [][]int{{1}, {2}, {3}},
			want:  []int{1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeDedupe(tt.lists...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mergeDedupe(%v) = %v, want %v", tt.lists, got, tt.want)
			}
		})
	}
}

// swapNet builds a 2-in 2-out network whose forward pass swaps the
// two coordinates, with no hidden-layer distortion.
func swapNet() *model.FeedForward {
	return &model.FeedForward{
		W1: [][]float64{{1, 0}, {0, 1}},
		B1: []float64{0, 0},
		W2: [][]float64{{0, 1}, {1, 0}},
		B2: []float64{0, 0},
	}
}

// constNet builds a network that outputs B2 for any input, giving the
// content model a uniform score over every item.
func constNet(inDim int) *model.FeedForward {
	w1 := make([][]float64, inDim)
	for i := range w1 {
		w1[i] = []float64{0}
	}
	return &model.FeedForward{
		W1: w1,
		B1: []float64{0},
		W2: [][]float64{{0}},
		B2: []float64{1},
	}
}

// testSnapshot builds a fully-loaded two-domain snapshot with
// hand-picked weights so every ranking is known exactly.
//
// Books: user 1 rated items 10, 11. Collaborative factors rank the
// items [10, 11, 12]; content scores are uniform so ties rank by
// index; the inbound translator swaps the user's movie-taste vector
// [1, 0] to [0, 1], which ranks book embedding rows [12, 11, 10].
func testSnapshot() *registry.Snapshot {
	bookUsers := dataset.NewIndexMap()
	bookUsers.Add(1)
	bookItems := dataset.NewIndexMap()
	bookItems.Add(10)
	bookItems.Add(11)
	bookItems.Add(12)

	books := &registry.DomainState{
		Domain:      artifact.DomainBooks,
		Users:       bookUsers,
		Items:       bookItems,
		ItemsByUser: [][]int{{0, 1}},
		Genres: &dataset.GenreMatrix{
			Vocab: []string{"drama", "mystery"},
			Rows:  [][]float64{{1, 0}, {1, 0}, {0, 1}},
		},
		Collaborative: &model.Collaborative{
			Dim:         2,
			UserFactors: [][]float64{{1, 0}},
			ItemFactors: [][]float64{{1, 0}, {0.5, 0}, {0.1, 0}},
		},
		Content: &model.Content{Net: constNet(2)},
		Embeddings: &model.Embeddings{
			Dim:     2,
			Vectors: [][]float64{{0, 0.1}, {0, 0.2}, {0, 5}},
		},
		Inbound: &model.Translator{Net: swapNet()},
	}

	movieUsers := dataset.NewIndexMap()
	movieUsers.Add(1)
	movieItems := dataset.NewIndexMap()
	movieItems.Add(20)

	movies := &registry.DomainState{
		Domain:      artifact.DomainMovies,
		Users:       movieUsers,
		Items:       movieItems,
		ItemsByUser: [][]int{{0}},
		Genres: &dataset.GenreMatrix{
			Vocab: []string{"action"},
			Rows:  [][]float64{{1}},
		},
		Collaborative: &model.Collaborative{
			Dim:         2,
			UserFactors: [][]float64{{1, 0}},
			ItemFactors: [][]float64{{1, 0}},
		},
		Content: &model.Content{Net: constNet(1)},
		Embeddings: &model.Embeddings{
			Dim:     2,
			Vectors: [][]float64{{1, 0}},
		},
		Inbound: &model.Translator{Net: swapNet()},
	}

	return &registry.Snapshot{Books: books, Movies: movies}
}

func TestRecommendBlends(t *testing.T) {
	snap := testSnapshot()

	// Per-family top-2: collaborative [10 11], content tie-break
	// [10 11], cross-domain [12 11]. Merged with first-occurrence
	// dedupe: [10 11 12].
	got, err := Recommend(snap, 1, artifact.DomainBooks, 2)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []int64{10, 11, 12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend = %v, want %v", got, want)
	}
}

func TestRecommendColdUser(t *testing.T) {
	snap := testSnapshot()

	got, err := Recommend(snap, 999, artifact.DomainBooks, 5)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("cold user got %v, want empty", got)
	}
}

func TestRecommendNotReady(t *testing.T) {
	snap := testSnapshot()
	snap.Books.Content = nil
	snap.Books.Inbound = nil

	_, err := Recommend(snap, 1, artifact.DomainBooks, 5)
	var notReady *NotReadyError
	if !errors.As(err, &notReady) {
		t.Fatalf("Recommend error = %v, want NotReadyError", err)
	}
	want := []artifact.Family{artifact.FamilyContent, artifact.FamilyTranslator}
	if !reflect.DeepEqual(notReady.Missing, want) {
		t.Errorf("Missing = %v, want %v", notReady.Missing, want)
	}
	if notReady.Domain != artifact.DomainBooks {
		t.Errorf("Domain = %q, want books", notReady.Domain)
	}
}

func TestEngineEmptyRegistry(t *testing.T) {
	engine := NewEngine(registry.NewRegistry(), 10)

	_, err := engine.Recommend(1, artifact.DomainBooks, 0)
	if !errors.Is(err, ErrRegistryEmpty) {
		t.Errorf("error = %v, want ErrRegistryEmpty", err)
	}
}

func TestEngineDefaultK(t *testing.T) {
	reg := registry.NewRegistry()
	reg.Swap(testSnapshot())
	engine := NewEngine(reg, 1)

	// Default k of 1 takes only the top item per family:
	// collaborative [10], content [10], cross-domain [12].
	got, err := engine.Recommend(1, artifact.DomainBooks, 0)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	want := []int64{10, 12}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recommend = %v, want %v", got, want)
	}
}
