// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package dataset

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"UserID", "user_id"},
		{"userid", "user_id"},
		{"user_id", "user_id"},
		{"BookID", "book_id"},
		{"MovieId", "movie_id"},
		{"Genre", "genres"},
		{"genres", "genres"},
		{"Rating", "rating"},
		{" Title ", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeColumn(tt.input); got != tt.want {
				t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestReadRatings(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		csv     string
		want    []Rating
		wantErr bool
	}{
		{
			name: "canonical header",
			csv:  "user_id,book_id,rating\n1,100,4.5\n2,101,3\n",
			want: []Rating{
				{UserID: 1, ItemID: 100, Rating: 4.5},
				{UserID: 2, ItemID: 101, Rating: 3},
			},
		},
		{
			name: "aliased and cased header",
			csv:  "UserID,MovieID,Rating\n5,7,2\n",
			want: []Rating{{UserID: 5, ItemID: 7, Rating: 2}},
		},
		{
			name:    "missing rating column",
			csv:     "user_id,book_id\n1,100\n",
			wantErr: true,
		},
		{
			name:    "missing user column",
			csv:     "book_id,rating\n100,4\n",
			wantErr: true,
		},
		{
			name:    "malformed rating value",
			csv:     "user_id,book_id,rating\n1,100,abc\n",
			wantErr: true,
		},
		{
			name: "header only yields empty table",
			csv:  "user_id,book_id,rating\n",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "ratings_"+tt.name+".csv", tt.csv)
			got, err := ReadRatings(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadRatings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadRatings() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReadRatingsMissingFile(t *testing.T) {
	if _, err := ReadRatings(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("ReadRatings() on missing file: error = nil, want error")
	}
}

func TestReadItems(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		csv     string
		want    []Item
		wantErr bool
	}{
		{
			name: "genre alias and title",
			csv:  "ID,Title,Genre\n1,Dune,Sci-Fi|Adventure\n2,Emma,Romance\n",
			want: []Item{
				{ID: 1, Title: "Dune", Genres: "Sci-Fi|Adventure"},
				{ID: 2, Title: "Emma", Genres: "Romance"},
			},
		},
		{
			name: "missing genre cell",
			csv:  "book_id,genres\n1,\n",
			want: []Item{{ID: 1, Genres: ""}},
		},
		{
			name: "no genres column at all",
			csv:  "item_id,title\n3,Solaris\n",
			want: []Item{{ID: 3, Title: "Solaris"}},
		},
		{
			name:    "no identifier column",
			csv:     "title,genres\nDune,Sci-Fi\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "items_"+tt.name+".csv", tt.csv)
			got, err := ReadItems(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadItems() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ReadItems() = %v, want %v", got, tt.want)
			}
		})
	}
}
