// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package artifact

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/interleaflabs/interleaf/internal/model"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		key  ModelKey
		want string
	}{
		{ModelKey{DomainBooks, FamilyCollaborative}, "collab_book_weights.json"},
		{ModelKey{DomainMovies, FamilyCollaborative}, "collab_movie_weights.json"},
		{ModelKey{DomainBooks, FamilyContent}, "content_book_weights.json"},
		{ModelKey{DomainMovies, FamilyContent}, "content_movie_weights.json"},
		{ModelKey{DomainBooks, FamilyEmbeddings}, "book_embeddings.json"},
		{ModelKey{DomainMovies, FamilyEmbeddings}, "movie_embeddings.json"},
		{ModelKey{DomainBooks, FamilyTranslator}, "book2movie_weights.json"},
		{ModelKey{DomainMovies, FamilyTranslator}, "movie2book_weights.json"},
	}
	for _, tt := range tests {
		got, err := FileName(tt.key)
		if err != nil {
			t.Errorf("FileName(%s): %v", tt.key, err)
			continue
		}
		if got != tt.want {
			t.Errorf("FileName(%s) = %q, want %q", tt.key, got, tt.want)
		}
	}

	if _, err := FileName(ModelKey{Domain: "music", Family: FamilyContent}); err == nil {
		t.Error("FileName accepted an unknown domain")
	}
}

func TestParseDomain(t *testing.T) {
	tests := []struct {
		in      string
		want    Domain
		wantErr bool
	}{
		{in: "books", want: DomainBooks},
		{in: "movies", want: DomainMovies},
		{in: "Books", wantErr: true},
		{in: "music", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDomain(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDomain(%q) accepted", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDomain(%q): %v", tt.in, err)
		} else if got != tt.want {
			t.Errorf("ParseDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDomainOther(t *testing.T) {
	if got := DomainBooks.Other(); got != DomainMovies {
		t.Errorf("books.Other() = %q", got)
	}
	if got := DomainMovies.Other(); got != DomainBooks {
		t.Errorf("movies.Other() = %q", got)
	}
}

func TestStoreSaveLoad(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "outputs"))
	key := ModelKey{DomainBooks, FamilyEmbeddings}

	rng := rand.New(rand.NewSource(42))
	want := &model.Embeddings{Dim: 4, Vectors: [][]float64{
		{rng.Float64(), rng.Float64(), rng.Float64(), rng.Float64()},
	}}

	if store.Exists(key) {
		t.Fatal("Exists before Save")
	}
	if err := store.Save(key, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists(key) {
		t.Fatal("artifact missing after Save")
	}

	var got model.Embeddings
	if err := store.Load(key, &got); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(&got, want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", &got, want)
	}

	// No temp file left behind.
	path, _ := store.Path(key)
	if _, err := os.Stat(path + ".tmp"); err == nil {
		t.Error("temp file left behind after Save")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())

	var e model.Embeddings
	err := store.Load(ModelKey{DomainMovies, FamilyEmbeddings}, &e)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load of missing artifact = %v, want ErrNotFound", err)
	}
}
