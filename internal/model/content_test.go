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

func contentFixture() ([]dataset.Rating, *dataset.IndexMap, *dataset.GenreMatrix) {
	catalog := []dataset.Item{
		{ID: 10, Title: "A", Genres: "Drama|Romance"},
		{ID: 11, Title: "B", Genres: "Action"},
		{ID: 12, Title: "C", Genres: "Drama"},
	}
	ratings := []dataset.Rating{
		{UserID: 1, ItemID: 10, Rating: 5},
		{UserID: 1, ItemID: 11, Rating: 2},
		{UserID: 2, ItemID: 12, Rating: 4},
	}
	items := dataset.NewIndexMap()
	for _, it := range catalog {
		items.Add(it.ID)
	}
	return ratings, items, dataset.BuildGenreMatrix(catalog, items)
}

func TestTrainContent(t *testing.T) {
	ratings, items, genres := contentFixture()

	m := TrainContent(ContentConfig{HiddenDim: 8}, ratings, items, genres, rand.New(rand.NewSource(42)))

	if m.NumGenres() != genres.NumGenres() {
		t.Errorf("NumGenres() = %d, want %d", m.NumGenres(), genres.NumGenres())
	}
	if m.Net.OutDim() != 1 {
		t.Errorf("OutDim() = %d, want 1", m.Net.OutDim())
	}
}

func TestTrainContentSkipsUnindexedItems(t *testing.T) {
	ratings, items, genres := contentFixture()
	ratings = append(ratings, dataset.Rating{UserID: 3, ItemID: 999, Rating: 1})

	// Must not panic on the rating whose item has no genre row.
	m := TrainContent(ContentConfig{HiddenDim: 8}, ratings, items, genres, rand.New(rand.NewSource(42)))
	if m == nil {
		t.Fatal("TrainContent returned nil")
	}
}

func TestContentScoreProfileBroadcast(t *testing.T) {
	ratings, items, genres := contentFixture()
	m := TrainContent(ContentConfig{HiddenDim: 8}, ratings, items, genres, rand.New(rand.NewSource(42)))

	profile := make([]float64, genres.NumGenres())
	profile[0] = 1

	scores := m.ScoreProfile(profile, genres)
	if len(scores) != len(genres.Rows) {
		t.Fatalf("got %d scores, want %d", len(scores), len(genres.Rows))
	}
	want := m.Predict(profile)
	for i, s := range scores {
		if s != want {
			t.Errorf("score %d = %f, want broadcast value %f", i, s, want)
		}
	}

	// Broadcast scores rank purely by index through the stable sort.
	if got := TopK(scores, 2); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("TopK over broadcast scores = %v, want [0 1]", got)
	}
}

func TestTrainContentDeterministic(t *testing.T) {
	ratings, items, genres := contentFixture()
	cfg := ContentConfig{HiddenDim: 8, Epochs: 3}

	a := TrainContent(cfg, ratings, items, genres, rand.New(rand.NewSource(42)))
	b := TrainContent(cfg, ratings, items, genres, rand.New(rand.NewSource(42)))

	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different models")
	}
}
