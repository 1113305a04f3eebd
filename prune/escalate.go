package prune

import (
	"strings"

	"github.com/prunekit/prunekit/types"
)

// EscalationHint is merged into the conversation when it still exceeds its
// budget after both trimming phases. It asks the model to issue an explicit
// deletion request on the next turn.
const EscalationHint = "NOTICE: this conversation still exceeds its token budget after automatic trimming. " +
	"Reply with an explicit deletion request listing the [[message_id: xxxxxxxx]] values of messages that are no longer needed."

// appendEscalationHint merges the hint into the content of the last user
// message, or appends a new trailing user message when none exists. The
// merge is idempotent: a conversation that already carries the hint is left
// alone, so repeated prunes of an over-budget conversation converge.
//
// Returns whether the conversation was modified.
func appendEscalationHint(conv *types.Conversation) bool {
	idx := conv.LastIndexOfRole(types.RoleUser)
	if idx >= 0 {
		if strings.Contains((*conv)[idx].Content, EscalationHint) {
			return false
		}
		(*conv)[idx].Content += "\n\n" + EscalationHint
		return true
	}

	*conv = append(*conv, &types.Message{
		Role:    types.RoleUser,
		Content: EscalationHint,
	})
	return true
}
