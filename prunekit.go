package prunekit

import (
	"context"

	"github.com/prunekit/prunekit/hooks"
	"github.com/prunekit/prunekit/prune"
	"github.com/prunekit/prunekit/storage"
	"github.com/prunekit/prunekit/types"
)

// Re-export core types so simple integrations only import prunekit.
type (
	Role         = types.Role
	Message      = types.Message
	Conversation = types.Conversation
	DeletionSpec = types.DeletionSpec
	Config       = prune.Config
	Stats        = prune.Stats
)

// Re-export role constants.
const (
	RoleSystem    = types.RoleSystem
	RoleUser      = types.RoleUser
	RoleAssistant = types.RoleAssistant
)

// Engine couples a pruner with an optional deletion-spec store and hook
// registry. It is the integration surface for agent loops; the prune
// package remains usable on its own.
type Engine struct {
	pruner   *prune.Pruner
	store    storage.Store
	registry *hooks.Registry
}

// Option is a functional option for configuring an Engine.
type Option func(*Engine) error

// WithStore attaches a deletion-spec store. PruneConversation consults it
// for the conversation's pending deletion request.
func WithStore(store storage.Store) Option {
	return func(e *Engine) error {
		e.store = store
		return nil
	}
}

// WithHooks attaches a hook registry fired around each prune. Per-phase
// hooks are bridged onto the pruner's phase callbacks.
func WithHooks(registry *hooks.Registry) Option {
	return func(e *Engine) error {
		e.registry = registry
		e.pruner.Config().OnIDPrune = registry.FireAfterIDPrune
		e.pruner.Config().OnSanitize = registry.FireAfterSanitize
		return nil
	}
}

// New creates an Engine. If config is nil, default configuration is used.
func New(config *prune.Config, opts ...Option) (*Engine, error) {
	if config == nil {
		config = prune.DefaultConfig()
	} else {
		config.ApplyDefaults()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{pruner: prune.New(config)}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Pruner returns the underlying pruner.
func (e *Engine) Pruner() *prune.Pruner {
	return e.pruner
}

// Prune trims the conversation to its budget with an explicit deletion spec
// (which may be nil), firing any registered hooks.
func (e *Engine) Prune(ctx context.Context, conv Conversation, spec *DeletionSpec) (Conversation, *Stats, error) {
	if e.registry != nil {
		if err := e.registry.FireBeforePrune(ctx, conv, spec); err != nil {
			return conv, nil, err
		}
	}

	pruned, stats, err := e.pruner.Prune(ctx, conv, spec)
	if err != nil {
		return pruned, stats, err
	}

	if e.registry != nil {
		if hookErr := e.registry.FireAfterPrune(ctx, pruned, stats); hookErr != nil {
			e.pruner.Config().Logger.Warn("after-prune hook failed", "error", hookErr)
		}
	}
	return pruned, stats, nil
}

// PruneConversation trims the conversation, loading its pending deletion
// spec from the configured store. Without a store it behaves like Prune
// with a nil spec.
func (e *Engine) PruneConversation(ctx context.Context, conversationID string, conv Conversation) (Conversation, *Stats, error) {
	if e.store == nil {
		return e.Prune(ctx, conv, nil)
	}

	if e.registry != nil {
		if err := e.registry.FireBeforePrune(ctx, conv, nil); err != nil {
			return conv, nil, err
		}
	}

	pruned, stats, err := e.pruner.PruneStored(ctx, e.store, conversationID, conv)
	if err != nil {
		return pruned, stats, err
	}

	if e.registry != nil {
		if hookErr := e.registry.FireAfterPrune(ctx, pruned, stats); hookErr != nil {
			e.pruner.Config().Logger.Warn("after-prune hook failed", "error", hookErr)
		}
	}
	return pruned, stats, nil
}

// Prune is a convenience function for one-off pruning with defaults: pass a
// conversation and any supported budget value.
func Prune(ctx context.Context, conv Conversation, budget any) (Conversation, *Stats, error) {
	return prune.New(&prune.Config{Budget: budget}).Prune(ctx, conv, nil)
}
