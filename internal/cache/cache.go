// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

// Package cache is a TTL'd response cache for recommendation results,
// backed by an in-memory BadgerDB. Entries expire on their own; a
// registry swap drops everything at once because every cached list was
// computed against the replaced models.
package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/interleaflabs/interleaf/internal/artifact"
	"github.com/interleaflabs/interleaf/internal/metrics"
)

// ResponseCache stores recommendation lists keyed by (domain, user, k).
type ResponseCache struct {
	db  *badger.DB
	ttl time.Duration
}

// New opens an in-memory badger instance. The caller owns Close.
func New(ttl time.Duration) (*ResponseCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return &ResponseCache{db: db, ttl: ttl}, nil
}

// Close releases the underlying database.
func (c *ResponseCache) Close() error {
	return c.db.Close()
}

func cacheKey(domain artifact.Domain, userID int64, k int) []byte {
	return []byte(fmt.Sprintf("rec:%s:%d:%d", domain, userID, k))
}

// Get returns the cached recommendation list, or (nil, false) on a
// miss. Expired entries count as misses.
func (c *ResponseCache) Get(domain artifact.Domain, userID int64, k int) ([]int64, bool) {
	var ids []int64
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cacheKey(domain, userID, k))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ids)
		})
	})
	if err != nil {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return ids, true
}

// Set stores a recommendation list under the cache TTL. Errors are
// swallowed after accounting: a failed cache write only costs a future
// recompute.
func (c *ResponseCache) Set(domain artifact.Domain, userID int64, k int, ids []int64) {
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	_ = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cacheKey(domain, userID, k), data).WithTTL(c.ttl)
		return txn.SetEntry(entry)
	})
}

// DropAll discards every cached entry. Called after a registry swap.
func (c *ResponseCache) DropAll() error {
	return c.db.DropAll()
}
