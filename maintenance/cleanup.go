// Package maintenance provides housekeeping for the deletion-spec store.
//
// Deletion specs are single-use caller intent: once a conversation has been
// pruned (or abandoned), its spec record only accumulates. The cleanup
// service purges records that have not been touched within a retention
// window.
package maintenance

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/prunekit/prunekit/storage"
)

// Default cleanup configuration values.
const (
	DefaultCleanupInterval = 10 * time.Minute
	DefaultSpecRetention   = 24 * time.Hour
)

// CleanupConfig holds configuration for the cleanup service.
type CleanupConfig struct {
	// Interval is how often to run cleanup operations.
	// Default: 10 minutes.
	Interval time.Duration

	// SpecRetention is how long a deletion spec may go untouched before it
	// is purged. Default: 24 hours.
	SpecRetention time.Duration

	// OnSpecCleanup is called with the number of specs purged, when any were.
	OnSpecCleanup func(count int)

	// OnError is called when a cleanup operation fails.
	OnError func(err error)
}

// DefaultCleanupConfig returns the default cleanup configuration.
func DefaultCleanupConfig() *CleanupConfig {
	return &CleanupConfig{
		Interval:      DefaultCleanupInterval,
		SpecRetention: DefaultSpecRetention,
	}
}

// CleanupResult holds the results of one cleanup pass.
type CleanupResult struct {
	// SpecsPurged is the number of stale deletion specs removed.
	SpecsPurged int

	// Err is the error from the pass, if any.
	Err error
}

// Cleanup periodically purges stale deletion specs from a store.
type Cleanup struct {
	store  storage.Store
	config *CleanupConfig

	started atomic.Bool
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewCleanup creates a new cleanup service.
func NewCleanup(store storage.Store, config *CleanupConfig) *Cleanup {
	if config == nil {
		config = DefaultCleanupConfig()
	}
	if config.Interval <= 0 {
		config.Interval = DefaultCleanupInterval
	}
	if config.SpecRetention <= 0 {
		config.SpecRetention = DefaultSpecRetention
	}

	return &Cleanup{
		store:  store,
		config: config,
		done:   make(chan struct{}),
	}
}

// Start begins the cleanup loop. It returns immediately and runs cleanup
// passes in a goroutine.
func (c *Cleanup) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	ctx, c.cancel = context.WithCancel(ctx)
	go c.run(ctx)

	return nil
}

// Stop stops the cleanup loop.
func (c *Cleanup) Stop(ctx context.Context) error {
	if !c.started.Load() {
		return ErrNotStarted
	}

	c.cancel()
	<-c.done

	c.started.Store(false)
	return nil
}

// run is the main cleanup loop.
func (c *Cleanup) run(ctx context.Context) {
	defer close(c.done)

	// Run cleanup immediately on start.
	c.runCleanup(ctx)

	ticker := time.NewTicker(c.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runCleanup(ctx)
		}
	}
}

// runCleanup performs one pass and dispatches callbacks.
func (c *Cleanup) runCleanup(ctx context.Context) {
	result := c.RunOnce(ctx)

	if c.config.OnSpecCleanup != nil && result.SpecsPurged > 0 {
		c.config.OnSpecCleanup(result.SpecsPurged)
	}
	if c.config.OnError != nil && result.Err != nil {
		c.config.OnError(result.Err)
	}
}

// RunOnce performs one cleanup pass and returns the result. This can be
// called manually for testing or one-off cleanup.
func (c *Cleanup) RunOnce(ctx context.Context) *CleanupResult {
	cutoff := time.Now().Add(-c.config.SpecRetention)

	purged, err := c.store.PurgeOlderThan(ctx, cutoff)
	return &CleanupResult{SpecsPurged: purged, Err: err}
}

// IsRunning returns true if the cleanup service is running.
func (c *Cleanup) IsRunning() bool {
	return c.started.Load()
}
