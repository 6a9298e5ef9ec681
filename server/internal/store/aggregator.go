package store

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/swarmreport/swarmreport/server/internal/ingress"
)

// Default aggregator cadence.
const (
	DefaultDrainInterval    = 100 * time.Millisecond
	DefaultSweepInterval    = 5 * time.Second
	DefaultSilenceThreshold = 60 * time.Second
)

// Source is the queue the aggregator drains. *ingress.Queue satisfies it.
type Source interface {
	Drain() []ingress.Item
}

// Observer receives counts from each aggregator cycle. All methods are
// called from the aggregator goroutines and must not block.
type Observer interface {
	Upserted(n int)
	Evicted(n int)
	Reporters(n int)
}

// AggregatorConfig controls the two aggregator cycles. Zero fields take the
// package defaults.
type AggregatorConfig struct {
	DrainInterval    time.Duration
	SweepInterval    time.Duration
	SilenceThreshold time.Duration
}

// Aggregator is the single writer of a Store. It applies queued reports on
// one timer and evicts silent reporters on another.
type Aggregator struct {
	store *Store
	src   Source
	obs   Observer

	drainInterval time.Duration
	sweepInterval time.Duration
	threshold     atomic.Int64 // time.Duration; hot-reloadable

	now func() time.Time // injectable for deterministic tests
}

// NewAggregator wires st to src. obs may be nil.
func NewAggregator(st *Store, src Source, cfg AggregatorConfig, obs Observer) *Aggregator {
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = DefaultDrainInterval
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = DefaultSweepInterval
	}
	if cfg.SilenceThreshold <= 0 {
		cfg.SilenceThreshold = DefaultSilenceThreshold
	}
	a := &Aggregator{
		store:         st,
		src:           src,
		obs:           obs,
		drainInterval: cfg.DrainInterval,
		sweepInterval: cfg.SweepInterval,
		now:           time.Now,
	}
	a.threshold.Store(int64(cfg.SilenceThreshold))
	return a
}

// SilenceThreshold returns the current eviction threshold.
func (a *Aggregator) SilenceThreshold() time.Duration {
	return time.Duration(a.threshold.Load())
}

// SetSilenceThreshold changes the eviction threshold from the next sweep on.
// Non-positive values are ignored.
func (a *Aggregator) SetSilenceThreshold(d time.Duration) {
	if d <= 0 {
		return
	}
	if old := time.Duration(a.threshold.Swap(int64(d))); old != d {
		slog.Info("aggregator: silence threshold changed", "old", old, "new", d)
	}
}

// DrainOnce applies every queued item to the store, in queue order, and
// returns how many were applied.
func (a *Aggregator) DrainOnce() int {
	items := a.src.Drain()
	if len(items) == 0 {
		return 0
	}
	for _, it := range items {
		a.store.Upsert(it.Identity, it.Report, it.ReceivedAt)
	}
	if a.obs != nil {
		a.obs.Upserted(len(items))
		a.obs.Reporters(a.store.Len())
	}
	return len(items)
}

// SweepOnce evicts reporters silent for longer than the threshold and returns
// how many were removed.
func (a *Aggregator) SweepOnce() int {
	n := a.store.Sweep(a.now(), a.SilenceThreshold())
	if n > 0 {
		slog.Info("aggregator: evicted silent reporters",
			"count", n, "threshold", a.SilenceThreshold(), "remaining", a.store.Len())
	}
	if a.obs != nil {
		a.obs.Evicted(n)
		a.obs.Reporters(a.store.Len())
	}
	return n
}

// Run starts the drain and sweep cycles as independent timer loops. It blocks
// until ctx is cancelled. Queued items are applied one last time on exit.
func (a *Aggregator) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.every(ctx, a.drainInterval, func() { a.DrainOnce() })
	}()
	go func() {
		defer wg.Done()
		a.every(ctx, a.sweepInterval, func() { a.SweepOnce() })
	}()
	wg.Wait()
	a.DrainOnce()
}

func (a *Aggregator) every(ctx context.Context, interval time.Duration, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			fn()
		}
	}
}
