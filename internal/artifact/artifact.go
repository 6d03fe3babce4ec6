// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package artifact persists trained models as JSON files in the
// artifacts directory and owns the naming scheme that ties each file
// to a (domain, family) model key. Training writes through this
// package and the registry reads through it, so the two sides can
// never disagree on file names.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// Domain identifies a recommendation catalog.
type Domain string

const (
	DomainBooks  Domain = "books"
	DomainMovies Domain = "movies"
)

// Domains lists every known domain in canonical order.
func Domains() []Domain { return []Domain{DomainBooks, DomainMovies} }

// ParseDomain validates a request-supplied domain string.
func ParseDomain(s string) (Domain, error) {
	switch Domain(s) {
	case DomainBooks:
		return DomainBooks, nil
	case DomainMovies:
		return DomainMovies, nil
	}
	return "", fmt.Errorf("unknown domain %q", s)
}

// Other returns the opposite domain.
func (d Domain) Other() Domain {
	if d == DomainBooks {
		return DomainMovies
	}
	return DomainBooks
}

// Family identifies a model family within a domain.
type Family string

const (
	FamilyCollaborative Family = "collaborative"
	FamilyContent       Family = "content"
	FamilyEmbeddings    Family = "embeddings"

	// FamilyTranslator maps embeddings OUT of the key's domain into
	// the opposite domain's vector space.
	FamilyTranslator Family = "translator"
)

// Families lists every model family in load order.
func Families() []Family {
	return []Family{FamilyCollaborative, FamilyContent, FamilyEmbeddings, FamilyTranslator}
}

// ModelKey names one persisted model.
type ModelKey struct {
	Domain Domain `json:"domain"`
	Family Family `json:"family"`
}

func (k ModelKey) String() string {
	return string(k.Domain) + "/" + string(k.Family)
}

// fileNames maps each model key to its artifact file. Translator
// files are named source2target after the direction they translate.
var fileNames = map[ModelKey]string{
	{DomainBooks, FamilyCollaborative}:  "collab_book_weights.json",
	{DomainMovies, FamilyCollaborative}: "collab_movie_weights.json",
	{DomainBooks, FamilyContent}:        "content_book_weights.json",
	{DomainMovies, FamilyContent}:       "content_movie_weights.json",
	{DomainBooks, FamilyEmbeddings}:     "book_embeddings.json",
	{DomainMovies, FamilyEmbeddings}:    "movie_embeddings.json",
	{DomainBooks, FamilyTranslator}:     "book2movie_weights.json",
	{DomainMovies, FamilyTranslator}:    "movie2book_weights.json",
}

// FileName returns the artifact file name for a model key.
func FileName(key ModelKey) (string, error) {
	name, ok := fileNames[key]
	if !ok {
		return "", fmt.Errorf("no artifact file for model %s", key)
	}
	return name, nil
}

// Store reads and writes model artifacts under a single directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on
// the first Save, not here, so a read-only deployment can construct a
// store over a prebuilt artifacts directory.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifacts directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the full path for a model key.
func (s *Store) Path(key ModelKey) (string, error) {
	name, err := FileName(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name), nil
}

// Exists reports whether the artifact for key is present on disk.
func (s *Store) Exists(key ModelKey) bool {
	path, err := s.Path(key)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Save marshals v as JSON and writes it to the key's artifact file,
// creating the artifacts directory if needed. The write goes through
// a temp file and rename so a crash cannot leave a torn artifact.
func (s *Store) Save(key ModelKey, v any) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Load reads the key's artifact file into v. A missing file is
// returned as ErrNotFound so callers can treat absence as "model not
// trained yet" rather than a failure.
func (s *Store) Load(key ModelKey, v any) error {
	path, err := s.Path(key)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return nil
}
