// Package hooks provides observation callbacks around prune operations.
//
// An agent loop registers hooks on a Registry and runs its pruner through
// prunekit's facade, which fires BeforePrune ahead of each call and
// AfterPrune with the statistics when it returns. Hook errors abort the
// surrounding operation for BeforePrune and are logged for AfterPrune.
package hooks

import (
	"context"
	"sync"

	"github.com/prunekit/prunekit/prune"
	"github.com/prunekit/prunekit/types"
)

// BeforePruneHook is called before a conversation is pruned.
type BeforePruneHook func(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) error

// AfterIDPruneHook is called after the ID deletion phase with the working
// conversation, the number of messages removed, and the phase warnings.
type AfterIDPruneHook func(conv types.Conversation, removed int, warnings []string)

// AfterSanitizeHook is called after the sanitization phase with the working
// conversation and the number of messages rewritten.
type AfterSanitizeHook func(conv types.Conversation, sanitized int)

// AfterPruneHook is called after a prune completes with its statistics.
type AfterPruneHook func(ctx context.Context, conv types.Conversation, stats *prune.Stats) error

// Registry holds all registered hooks.
type Registry struct {
	mu            sync.RWMutex
	beforePrune   []BeforePruneHook
	afterIDPrune  []AfterIDPruneHook
	afterSanitize []AfterSanitizeHook
	afterPrune    []AfterPruneHook
}

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnBeforePrune registers a hook to be called before each prune.
func (r *Registry) OnBeforePrune(hook BeforePruneHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beforePrune = append(r.beforePrune, hook)
}

// OnAfterIDPrune registers a hook to be called after each ID deletion phase.
func (r *Registry) OnAfterIDPrune(hook AfterIDPruneHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterIDPrune = append(r.afterIDPrune, hook)
}

// OnAfterSanitize registers a hook to be called after each sanitization phase.
func (r *Registry) OnAfterSanitize(hook AfterSanitizeHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterSanitize = append(r.afterSanitize, hook)
}

// OnAfterPrune registers a hook to be called after each prune.
func (r *Registry) OnAfterPrune(hook AfterPruneHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.afterPrune = append(r.afterPrune, hook)
}

// FireBeforePrune runs the BeforePrune hooks in registration order. The
// first error stops the chain and is returned.
func (r *Registry) FireBeforePrune(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) error {
	r.mu.RLock()
	hooks := append([]BeforePruneHook(nil), r.beforePrune...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, conv, spec); err != nil {
			return err
		}
	}
	return nil
}

// FireAfterIDPrune runs the AfterIDPrune hooks in registration order.
// Phase hooks are notification only; they cannot alter or abort the prune.
func (r *Registry) FireAfterIDPrune(conv types.Conversation, removed int, warnings []string) {
	r.mu.RLock()
	hooks := append([]AfterIDPruneHook(nil), r.afterIDPrune...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(conv, removed, warnings)
	}
}

// FireAfterSanitize runs the AfterSanitize hooks in registration order.
func (r *Registry) FireAfterSanitize(conv types.Conversation, sanitized int) {
	r.mu.RLock()
	hooks := append([]AfterSanitizeHook(nil), r.afterSanitize...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(conv, sanitized)
	}
}

// FireAfterPrune runs the AfterPrune hooks in registration order and
// returns the first error, if any.
func (r *Registry) FireAfterPrune(ctx context.Context, conv types.Conversation, stats *prune.Stats) error {
	r.mu.RLock()
	hooks := append([]AfterPruneHook(nil), r.afterPrune...)
	r.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook(ctx, conv, stats); err != nil {
			return err
		}
	}
	return nil
}
