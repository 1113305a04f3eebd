package hooks

import (
	"context"
	"log"

	"github.com/prunekit/prunekit/prune"
	"github.com/prunekit/prunekit/types"
)

// LoggingHooks provides built-in logging hooks for observability.
type LoggingHooks struct {
	logger *log.Logger
}

// NewLoggingHooks creates logging hooks with the provided logger.
func NewLoggingHooks(logger *log.Logger) *LoggingHooks {
	return &LoggingHooks{logger: logger}
}

// DefaultLoggingHooks creates logging hooks with the default logger.
func DefaultLoggingHooks() *LoggingHooks {
	return &LoggingHooks{logger: log.Default()}
}

// Register attaches the logging hooks to a registry.
func (h *LoggingHooks) Register(r *Registry) {
	r.OnBeforePrune(h.BeforePrune)
	r.OnAfterPrune(h.AfterPrune)
}

// BeforePrune logs the conversation shape before pruning.
func (h *LoggingHooks) BeforePrune(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) error {
	if spec != nil {
		h.logger.Printf("[prunekit] Pruning %d messages (%d deletion ids requested)", len(conv), len(spec.MessageIDs))
	} else {
		h.logger.Printf("[prunekit] Pruning %d messages", len(conv))
	}
	return nil
}

// AfterPrune logs what the prune did.
func (h *LoggingHooks) AfterPrune(ctx context.Context, conv types.Conversation, stats *prune.Stats) error {
	h.logger.Printf("[prunekit] Prune complete: %d -> %d messages, %d -> %d tokens (ratio %.2f, removed %d, sanitized %d)",
		stats.OriginalMessageCount, stats.FinalMessageCount,
		stats.OriginalTokens, stats.FinalTokens,
		stats.CompressionRatio(),
		stats.MessagesRemovedByIDPruning, stats.MessagesSanitized)
	for _, w := range stats.Warnings {
		h.logger.Printf("[prunekit] warning: %s", w)
	}
	return nil
}
