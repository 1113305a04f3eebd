package prune

import (
	"fmt"

	"github.com/prunekit/prunekit/msgid"
)

// ValidationOutcome is the result of checking a requested deletion list
// against the IDs actually present in a conversation.
type ValidationOutcome struct {
	// Valid reports whether the ID phase may proceed.
	Valid bool

	// NormalizedIDs is the validated deletion set: lowercased, truncated
	// to 8 characters, deduplicated, and (in lenient mode) intersected
	// with the IDs present in the conversation. Request order is kept.
	NormalizedIDs []string

	// Warnings are human-readable notes about dropped or truncated IDs.
	Warnings []string

	// Err carries the validation failure when Valid is false.
	Err error
}

// validateIDs normalizes and checks requested deletion IDs.
//
// Rules: IDs shorter than 8 characters fail validation outright; longer IDs
// are truncated to 8 with a warning; duplicates collapse to the first
// occurrence. Unknown IDs are dropped with a warning in lenient mode and
// fail the whole validation in strict mode. An empty request is always a
// validation failure.
func validateIDs(requested []string, present map[string]bool, strict bool) ValidationOutcome {
	if len(requested) == 0 {
		return ValidationOutcome{Err: ErrEmptyDeletionSpec}
	}

	outcome := ValidationOutcome{}
	seen := make(map[string]bool, len(requested))

	for _, raw := range requested {
		id := msgid.Normalize(raw)
		if len(id) < msgid.IDLength {
			outcome.Err = fmt.Errorf("%w: id %q is shorter than %d characters",
				ErrValidationFailed, raw, msgid.IDLength)
			return outcome
		}
		if len(id) > msgid.IDLength {
			id = id[:msgid.IDLength]
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("id %q truncated to %q", raw, id))
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		if !present[id] {
			if strict {
				outcome.Err = fmt.Errorf("%w: %q", ErrUnknownMessageID, id)
				return outcome
			}
			outcome.Warnings = append(outcome.Warnings,
				fmt.Sprintf("id %q not found in conversation, skipped", id))
			continue
		}
		outcome.NormalizedIDs = append(outcome.NormalizedIDs, id)
	}

	outcome.Valid = true
	return outcome
}
