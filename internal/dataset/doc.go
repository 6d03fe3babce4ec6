// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package dataset holds the tabular inputs of the training pipeline and
// the derived structures every model family shares: rating and item
// tables read from CSV with normalized column names, dense index maps
// over the observed identifiers, and the sparse item-by-genre feature
// matrix.
//
// Index maps are rebuilt from the current tables on every training or
// load cycle and are never persisted. Indices are therefore not stable
// across retrains: embeddings keyed by old indices are invalidated the
// moment the underlying identifier set changes.
package dataset
