package prune

import (
	"context"
	"errors"

	"github.com/prunekit/prunekit/snapshot"
	"github.com/prunekit/prunekit/storage"
	"github.com/prunekit/prunekit/types"
)

// Pruner is the engine entry point. It sequences ID-based deletion,
// tool-content sanitization, and the escalation hint, and is the only
// component external callers invoke.
//
// A Pruner is a pure transformation over a caller-owned conversation: each
// call clones the input before mutating anything and returns the clone (or
// the identical input reference when the conversation is already within
// budget). There is no internal shared state, so a Pruner is safe for
// concurrent use.
type Pruner struct {
	config    *Config
	idPruner  *idPruner
	sanitizer *sanitizer
}

// New creates a Pruner with the given configuration. If config is nil,
// default configuration is used.
func New(config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	} else {
		config.ApplyDefaults()
	}

	return &Pruner{
		config: config,
		idPruner: &idPruner{
			extractor: config.Extractor,
			strict:    config.StrictIDs,
		},
		sanitizer: &sanitizer{
			detector:        config.Detector,
			counter:         config.Counter,
			minUnsanitized:  config.MinUnsanitized,
			inlineThreshold: config.InlinePayloadThreshold,
		},
	}
}

// Config returns the pruner's configuration.
func (p *Pruner) Config() *Config {
	return p.config
}

// Prune trims the conversation to its token budget. The deletion spec is
// optional; when present, ID-based deletion runs before sanitization.
//
// The returned conversation is always usable: a conversation within budget
// comes back unchanged, and an over-budget one comes back trimmed as far as
// the safety floor allows, with the escalation hint merged in when trimming
// was not enough. Only strict-mode ID validation returns an error, and even
// then the original conversation accompanies it so a calling agent loop can
// proceed with the unmodified input.
func (p *Pruner) Prune(ctx context.Context, conv types.Conversation, spec *types.DeletionSpec) (types.Conversation, *Stats, error) {
	budgetTokens := p.config.Resolver.Resolve(p.config.Budget, p.config.Model)
	if budgetTokens <= 0 {
		budgetTokens = p.config.DefaultBudget
	}

	stats := &Stats{
		OriginalMessageCount: len(conv),
		OriginalTokens:       p.config.Counter.Count(conv.Serialize()),
		BudgetTokens:         budgetTokens,
	}

	// Already within budget: the input is returned byte-for-byte.
	if stats.OriginalTokens <= budgetTokens {
		stats.FinalMessageCount = stats.OriginalMessageCount
		stats.FinalTokens = stats.OriginalTokens
		p.config.Logger.Debug("conversation within budget, no pruning",
			"tokens", stats.OriginalTokens, "budget", budgetTokens)
		return conv, stats, nil
	}

	work := conv.Clone()

	if spec != nil {
		result, err := p.idPruner.apply(work, spec)
		stats.Warnings = append(stats.Warnings, result.warnings...)
		if err != nil {
			if p.config.StrictIDs {
				stats.FinalMessageCount = stats.OriginalMessageCount
				stats.FinalTokens = stats.OriginalTokens
				return conv, stats, NewError("ValidateIDs", err).
					WithConversation(spec.ConversationID).
					WithContext("requested_ids", len(spec.MessageIDs))
			}
			// Lenient: the phase becomes a no-op.
			stats.Warnings = append(stats.Warnings, "id pruning skipped: "+err.Error())
			p.config.Logger.Warn("id pruning skipped", "error", err)
		} else {
			work = result.conversation
			stats.MessagesRemovedByIDPruning = result.removed
			p.config.Logger.Debug("id pruning complete",
				"removed", result.removed, "warnings", len(result.warnings))
		}
		if p.config.OnIDPrune != nil {
			p.config.OnIDPrune(work, stats.MessagesRemovedByIDPruning, stats.Warnings)
		}
	}

	if p.config.Counter.Count(work.Serialize()) > budgetTokens {
		stats.MessagesSanitized = p.sanitizer.apply(work, budgetTokens)
		p.config.Logger.Debug("sanitization complete", "sanitized", stats.MessagesSanitized)
		if p.config.OnSanitize != nil {
			p.config.OnSanitize(work, stats.MessagesSanitized)
		}
	}

	if p.config.Counter.Count(work.Serialize()) > budgetTokens {
		stats.EscalationAdded = appendEscalationHint(&work)
	}

	stats.FinalMessageCount = len(work)
	stats.FinalTokens = p.config.Counter.Count(work.Serialize())

	p.config.Logger.Info("prune complete",
		"original_messages", stats.OriginalMessageCount,
		"final_messages", stats.FinalMessageCount,
		"original_tokens", stats.OriginalTokens,
		"final_tokens", stats.FinalTokens,
		"budget", budgetTokens,
		"compression", stats.CompressionRatio(),
	)

	p.emitSnapshot(ctx, spec, work)

	return work, stats, nil
}

// PruneStored looks up the conversation's deletion spec in the store and
// prunes with it. A missing spec is not an error: the prune simply runs
// without an ID phase. Store failures are downgraded to a warning for the
// same reason — the caller still needs a conversation back.
func (p *Pruner) PruneStored(ctx context.Context, store storage.Store, conversationID string, conv types.Conversation) (types.Conversation, *Stats, error) {
	var spec *types.DeletionSpec
	if store != nil {
		loaded, err := store.GetSpec(ctx, conversationID)
		switch {
		case err == nil:
			spec = loaded
		case errors.Is(err, storage.ErrSpecNotFound):
			// No deletion intent recorded for this conversation.
		default:
			p.config.Logger.Warn("deletion spec lookup failed, pruning without it",
				"conversation_id", conversationID, "error", err)
		}
	}
	return p.Prune(ctx, conv, spec)
}

// emitSnapshot sends the final conversation to the debug sink. Best effort:
// failures are logged, never raised.
func (p *Pruner) emitSnapshot(ctx context.Context, spec *types.DeletionSpec, conv types.Conversation) {
	conversationID := ""
	if spec != nil {
		conversationID = spec.ConversationID
	}
	if err := p.config.Sink.Emit(ctx, snapshot.New(conversationID, conv)); err != nil {
		p.config.Logger.Error("snapshot emission failed",
			"conversation_id", conversationID, "error", errors.Join(ErrSinkFailure, err))
	}
}
