// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package model implements the trainable model families of the
// recommendation pipeline:
//
//   - Collaborative: latent user/item embeddings scored by dot product,
//     fit to observed ratings with mini-batch SGD on squared error.
//   - Content: a one-hidden-layer feed-forward regressor from genre
//     feature vectors to ratings.
//   - SkipGram: item embeddings learned from windowed co-occurrence in
//     per-user rating sequences with uniform negative sampling.
//   - Translator: a two-layer feed-forward projection between the two
//     domains' embedding spaces.
//
// All models operate purely in dense index space; resolving indices to
// raw identifiers is the caller's concern. Training is deterministic
// for a fixed seed: every random decision flows through the *rand.Rand
// passed in by the caller.
//
// The numeric kernels are hand-rolled on slices; the matrices involved
// are small enough that a BLAS dependency buys nothing.
package model
