// Package prunekit keeps multi-turn LLM conversations inside a fixed token
// budget.
//
// A conversation is a role-tagged message log exchanged between a user, an
// assistant, and tool invocations. When it outgrows its budget, prunekit
// trims it in two phases: deleting messages the caller explicitly targeted
// by short ID (with request/response pairing preserved), then progressively
// clearing oversized tool payloads until the conversation fits, subject to a
// safety floor. Messages are never reordered and the conversation is always
// returned usable, even when the budget cannot be met.
//
// # Quick Start
//
// One-off pruning with defaults:
//
//	pruned, stats, err := prunekit.Prune(ctx, conversation, "50k")
//
// A configured engine with a deletion-spec store and hooks:
//
//	registry := hooks.NewRegistry()
//	hooks.DefaultLoggingHooks().Register(registry)
//
//	engine, err := prunekit.New(
//	    &prune.Config{
//	        Budget: 0.5,                          // half the model's context window
//	        Model:  "claude-3-5-haiku-20241022",
//	        Sink:   snapshot.NewFileSink("/tmp/prunekit"),
//	    },
//	    prunekit.WithStore(storage.NewFileStore("/var/lib/prunekit/specs.json")),
//	    prunekit.WithHooks(registry),
//	)
//
//	pruned, stats, err := engine.PruneConversation(ctx, conversationID, conversation)
//
// # Packages
//
//   - prune: the trimming engine and its configuration
//   - types: message, conversation, and deletion-spec data model
//   - msgid: canonical message ID extraction
//   - tooltag: tool markup detection
//   - tokens: token counting (estimation and Anthropic API)
//   - budget: budget value resolution
//   - storage: deletion-spec persistence (file, Postgres)
//   - snapshot: debug snapshots of pruned conversations
//   - hooks: observation callbacks
//   - maintenance: stale-spec cleanup
package prunekit
