// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Rating is a single (user, item, rating) observation, domain-scoped.
// Immutable once loaded.
type Rating struct {
	UserID int64
	ItemID int64
	Rating float64
}

// Item is one row of an item metadata table. Genres is the raw
// pipe-delimited genre string; empty means no genre information.
type Item struct {
	ID     int64
	Title  string
	Genres string
}

// columnAliases maps known legacy column spellings to canonical names.
// Applied after lower-casing.
var columnAliases = map[string]string{
	"userid":  "user_id",
	"bookid":  "book_id",
	"movieid": "movie_id",
	"itemid":  "item_id",
	"genre":   "genres",
}

// NormalizeColumn lower-cases a column name and resolves known aliases.
func NormalizeColumn(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := columnAliases[n]; ok {
		return canonical
	}
	return n
}

// itemIDColumns lists the accepted identifier columns of a rating or
// item table, in lookup order.
var itemIDColumns = []string{"book_id", "movie_id", "item_id", "id"}

// header maps normalized column names to positions.
type header map[string]int

func readHeader(rec []string) header {
	h := make(header, len(rec))
	for i, name := range rec {
		h[NormalizeColumn(name)] = i
	}
	return h
}

// itemIDColumn returns the position of the first recognized item
// identifier column.
func (h header) itemIDColumn() (int, error) {
	for _, name := range itemIDColumns {
		if pos, ok := h[name]; ok {
			return pos, nil
		}
	}
	return 0, fmt.Errorf("no item identifier column among %v", itemIDColumns)
}

// ReadRatings reads a rating table from path. The header is normalized
// per NormalizeColumn; user_id, an item identifier column and rating are
// required. Row order is preserved: it is the interaction sequence the
// co-occurrence model windows over.
func ReadRatings(path string) ([]Rating, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ratings %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read ratings header %s: %w", path, err)
	}
	h := readHeader(head)

	userCol, ok := h["user_id"]
	if !ok {
		return nil, fmt.Errorf("ratings %s: missing user_id column", path)
	}
	itemCol, err := h.itemIDColumn()
	if err != nil {
		return nil, fmt.Errorf("ratings %s: %w", path, err)
	}
	ratingCol, ok := h["rating"]
	if !ok {
		return nil, fmt.Errorf("ratings %s: missing rating column", path)
	}

	var ratings []Rating
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read ratings row %s: %w", path, err)
		}

		userID, err := strconv.ParseInt(strings.TrimSpace(rec[userCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ratings %s: bad user_id %q: %w", path, rec[userCol], err)
		}
		itemID, err := strconv.ParseInt(strings.TrimSpace(rec[itemCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("ratings %s: bad item id %q: %w", path, rec[itemCol], err)
		}
		rating, err := strconv.ParseFloat(strings.TrimSpace(rec[ratingCol]), 64)
		if err != nil {
			return nil, fmt.Errorf("ratings %s: bad rating %q: %w", path, rec[ratingCol], err)
		}

		ratings = append(ratings, Rating{UserID: userID, ItemID: itemID, Rating: rating})
	}

	return ratings, nil
}

// ReadItems reads an item metadata table from path. An identifier column
// and, optionally, genres and title columns are recognized after
// normalization. A missing genres column or cell yields an empty Genres
// string, which later contributes an all-zero genre row.
func ReadItems(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open items %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	head, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read items header %s: %w", path, err)
	}
	h := readHeader(head)

	idCol, err := h.itemIDColumn()
	if err != nil {
		return nil, fmt.Errorf("items %s: %w", path, err)
	}
	genresCol, hasGenres := h["genres"]
	titleCol, hasTitle := h["title"]

	var items []Item
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read items row %s: %w", path, err)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(rec[idCol]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("items %s: bad id %q: %w", path, rec[idCol], err)
		}

		item := Item{ID: id}
		if hasTitle && titleCol < len(rec) {
			item.Title = rec[titleCol]
		}
		if hasGenres && genresCol < len(rec) {
			item.Genres = strings.TrimSpace(rec[genresCol])
		}
		items = append(items, item)
	}

	return items, nil
}
