// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package dataset

import (
	"sort"
	"strings"
)

// GenreMatrix is a dense binary item-index-by-genre matrix. The genre
// vocabulary is derived fresh on every build and sorted
// lexicographically for deterministic column order; a matrix is only
// meaningful together with the item index and vocabulary it was built
// with. Never mix rows and vocabularies from different builds.
type GenreMatrix struct {
	// Rows has one row per item index; Rows[i][g] is 1.0 when the item
	// at index i carries the genre at vocabulary position g.
	Rows [][]float64

	// Vocab is the sorted list of distinct genre tokens.
	Vocab []string
}

// NumGenres returns the vocabulary size.
func (g *GenreMatrix) NumGenres() int {
	return len(g.Vocab)
}

// Row returns the genre vector for an item index, or nil when out of range.
func (g *GenreMatrix) Row(idx int) []float64 {
	if idx < 0 || idx >= len(g.Rows) {
		return nil
	}
	return g.Rows[idx]
}

// BuildGenreMatrix builds the item-by-genre one-hot matrix for every
// indexed item. Items absent from the index are skipped; indexed items
// missing from the metadata table, or carrying an empty genre string,
// keep an all-zero row.
func BuildGenreMatrix(items []Item, itemIndex *IndexMap) *GenreMatrix {
	vocabSet := make(map[string]struct{})
	for _, item := range items {
		for _, g := range splitGenres(item.Genres) {
			vocabSet[g] = struct{}{}
		}
	}

	vocab := make([]string, 0, len(vocabSet))
	for g := range vocabSet {
		vocab = append(vocab, g)
	}
	sort.Strings(vocab)

	genreCol := make(map[string]int, len(vocab))
	for i, g := range vocab {
		genreCol[g] = i
	}

	rows := make([][]float64, itemIndex.Len())
	for i := range rows {
		rows[i] = make([]float64, len(vocab))
	}

	for _, item := range items {
		idx, ok := itemIndex.Index(item.ID)
		if !ok {
			continue
		}
		for _, g := range splitGenres(item.Genres) {
			rows[idx][genreCol[g]] = 1.0
		}
	}

	return &GenreMatrix{Rows: rows, Vocab: vocab}
}

// splitGenres splits a pipe-delimited genre string, dropping empty tokens.
func splitGenres(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
