package prune

import (
	"fmt"

	"github.com/prunekit/prunekit/types"
)

// turnPair is a user turn and its directly following assistant turn: the
// next assistant message after the user message with no intervening user
// message. Both sides carry an ID; messages without an ID cannot form a
// pair and are never pulled into a deletion by pair expansion.
type turnPair struct {
	userID      string
	assistantID string
}

// findPairs scans the conversation left to right and collects turn pairs.
// ids is index-aligned with the conversation (see msgid.Extractor.ExtractAll).
func findPairs(conv types.Conversation, ids []string) []turnPair {
	var pairs []turnPair
	for i := 0; i < len(conv); i++ {
		if conv[i].Role != types.RoleUser || ids[i] == "" {
			continue
		}
		for j := i + 1; j < len(conv); j++ {
			if conv[j].Role == types.RoleUser {
				break
			}
			if conv[j].Role == types.RoleAssistant {
				if ids[j] != "" {
					pairs = append(pairs, turnPair{userID: ids[i], assistantID: ids[j]})
				}
				break
			}
		}
	}
	return pairs
}

// expandForPairs grows the deletion set so that no detected pair is deleted
// on one side only. For every pair with exactly one side in the set, the
// other side is added with a warning explaining the forced inclusion.
func expandForPairs(conv types.Conversation, ids []string, deletion map[string]bool) []string {
	var warnings []string
	for _, p := range findPairs(conv, ids) {
		userIn := deletion[p.userID]
		assistantIn := deletion[p.assistantID]
		switch {
		case userIn && !assistantIn:
			deletion[p.assistantID] = true
			warnings = append(warnings, fmt.Sprintf(
				"assistant message %s removed together with its paired user message %s",
				p.assistantID, p.userID))
		case assistantIn && !userIn:
			deletion[p.userID] = true
			warnings = append(warnings, fmt.Sprintf(
				"user message %s removed together with its paired assistant message %s",
				p.userID, p.assistantID))
		}
	}
	return warnings
}
