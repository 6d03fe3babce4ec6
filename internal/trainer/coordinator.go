// Interleaf - Cross-Domain Hybrid Recommendation Service
// Copyright 2026 Interleaf Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/interleaflabs/interleaf

package trainer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/interleaflabs/interleaf/internal/registry"
)

// ErrTrainingInProgress rejects a retrain that overlaps a running one.
var ErrTrainingInProgress = errors.New("training already in progress")

// Dropper is the slice of the response cache the coordinator needs.
type Dropper interface {
	DropAll() error
}

// Coordinator serializes the retrain-reload-swap cycle. Only one cycle
// runs at a time; concurrent requests fail fast instead of queueing,
// because a queued retrain would just redo identical work.
type Coordinator struct {
	trainer  *Trainer
	loader   *registry.Loader
	registry *registry.Registry
	cache    Dropper // may be nil
	timeout  time.Duration

	mu      sync.Mutex
	running atomic.Bool
}

func NewCoordinator(t *Trainer, l *registry.Loader, r *registry.Registry, cache Dropper, timeout time.Duration) *Coordinator {
	return &Coordinator{trainer: t, loader: l, registry: r, cache: cache, timeout: timeout}
}

// Training reports whether a retrain cycle is currently running.
func (c *Coordinator) Training() bool { return c.running.Load() }

// Retrain runs the full pipeline, rebuilds a snapshot from the fresh
// artifacts, publishes it, and drops the response cache. The swap
// happens only after both training and reload succeed, so a failed
// cycle leaves the previous snapshot serving.
func (c *Coordinator) Retrain(ctx context.Context) (*registry.Snapshot, error) {
	if !c.mu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer c.mu.Unlock()

	c.running.Store(true)
	defer c.running.Store(false)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.trainer.TrainAll(ctx); err != nil {
		return nil, err
	}

	snap, err := c.loader.Load()
	if err != nil {
		return nil, err
	}
	c.registry.Swap(snap)

	if c.cache != nil {
		if err := c.cache.DropAll(); err != nil {
			// Stale entries age out on their own TTL; the swap
			// itself already succeeded.
			c.trainer.log.Warn().Err(err).Msg("cache drop after swap failed")
		}
	}
	return snap, nil
}
