package prune

import (
	"github.com/prunekit/prunekit/msgid"
	"github.com/prunekit/prunekit/types"
)

// idPruner removes messages by validated, pair-expanded ID set.
type idPruner struct {
	extractor *msgid.Extractor
	strict    bool
}

// idPruneResult is the outcome of the ID-based deletion phase.
type idPruneResult struct {
	conversation types.Conversation
	removed      int
	warnings     []string
}

// apply validates the spec against the conversation, expands the deletion
// set for pair preservation, and removes matching messages in a single pass
// that keeps the relative order of the rest.
//
// On validation failure the original conversation is returned untouched
// along with the validation error; the caller decides whether that is fatal
// (strict mode) or a skipped phase (lenient mode).
func (p *idPruner) apply(conv types.Conversation, spec *types.DeletionSpec) (idPruneResult, error) {
	ids := p.extractor.ExtractAll(conv)
	present := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id != "" {
			present[id] = true
		}
	}

	outcome := validateIDs(spec.MessageIDs, present, p.strict)
	if !outcome.Valid {
		return idPruneResult{conversation: conv, warnings: outcome.Warnings}, outcome.Err
	}

	deletion := make(map[string]bool, len(outcome.NormalizedIDs))
	for _, id := range outcome.NormalizedIDs {
		deletion[id] = true
	}

	warnings := outcome.Warnings
	if spec.PreservePairs {
		warnings = append(warnings, expandForPairs(conv, ids, deletion)...)
	}

	if len(deletion) == 0 {
		return idPruneResult{conversation: conv, warnings: warnings}, nil
	}

	kept := make(types.Conversation, 0, len(conv))
	removed := 0
	for i, msg := range conv {
		if ids[i] != "" && deletion[ids[i]] {
			removed++
			continue
		}
		kept = append(kept, msg)
	}

	return idPruneResult{conversation: kept, removed: removed, warnings: warnings}, nil
}
