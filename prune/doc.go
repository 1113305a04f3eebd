// Package prune keeps a multi-turn conversation inside a fixed token budget
// without discarding messages the caller wants kept and without breaking the
// structural invariants an LLM call requires.
//
// # Pipeline
//
// A prune runs two phases, each skipped as soon as the conversation fits its
// budget:
//
//  1. ID-based deletion: messages named by an optional DeletionSpec are
//     removed, after validating the requested 8-character IDs against the
//     conversation and expanding the set so a user turn and its directly
//     following assistant turn are deleted together or not at all.
//
//  2. Tool-content sanitization: oversized tool-call and tool-result
//     payloads are replaced in place with short placeholders, oldest first,
//     recounting tokens after every replacement. Sanitization never removes
//     a message and always leaves a floor of untouched candidates.
//
// If the conversation still exceeds its budget, an escalation hint is merged
// into the last user message asking the model to issue an explicit deletion
// request next turn. Prune never fails for being over budget.
//
// # Usage
//
// Create a Pruner with your configuration:
//
//	pruner := prune.New(&prune.Config{
//	    Budget: "50k",
//	    Model:  "claude-3-5-haiku-20241022",
//	})
//
//	pruned, stats, err := pruner.Prune(ctx, conversation, spec)
//
// The budget accepts an integer, a unit-suffixed string ("50k", "2mb"), an
// arithmetic expression ("50*1024"), or a fraction of the model's context
// window (0.5). Unresolvable values fall back to a fixed default rather than
// failing.
//
// # Guarantees
//
// After every call: surviving messages keep their relative order; ID-based
// deletion never splits a preserved pair; sanitization never changes the
// message count and never increases the token count; a conversation already
// within budget is returned byte-for-byte unchanged; and pruning an already
// pruned conversation with the same budget changes nothing.
//
// # Error handling
//
// Unresolvable budgets degrade to a default silently. Lenient ID validation
// (the default) downgrades unknown IDs to warnings on the statistics object.
// Only strict-mode validation returns an error, and the original untouched
// conversation accompanies it. Debug-sink failures are logged and swallowed.
package prune
