package prune

// Stats describes what one prune call did to a conversation.
type Stats struct {
	// OriginalMessageCount is the message count before pruning.
	OriginalMessageCount int `json:"original_message_count"`

	// FinalMessageCount is the message count after pruning.
	FinalMessageCount int `json:"final_message_count"`

	// OriginalTokens is the serialized token count before pruning.
	OriginalTokens int `json:"original_tokens"`

	// FinalTokens is the serialized token count after pruning.
	FinalTokens int `json:"final_tokens"`

	// BudgetTokens is the resolved token budget the conversation was
	// measured against.
	BudgetTokens int `json:"budget_tokens"`

	// MessagesRemovedByIDPruning is how many messages the ID phase deleted.
	MessagesRemovedByIDPruning int `json:"messages_removed_by_id_pruning"`

	// MessagesSanitized is how many messages had tool payloads replaced.
	MessagesSanitized int `json:"messages_sanitized"`

	// EscalationAdded reports whether the escalation hint was merged into
	// the conversation because it still exceeded the budget.
	EscalationAdded bool `json:"escalation_added"`

	// Warnings collects human-readable notes from ID validation and pair
	// expansion (dropped IDs, truncations, forced pair inclusions).
	Warnings []string `json:"warnings,omitempty"`
}

// CompressionRatio returns final tokens over original tokens. An empty
// original conversation has ratio 1.
func (s *Stats) CompressionRatio() float64 {
	if s.OriginalTokens == 0 {
		return 1
	}
	return float64(s.FinalTokens) / float64(s.OriginalTokens)
}

// WithinBudget reports whether the final conversation fits the budget.
func (s *Stats) WithinBudget() bool {
	return s.FinalTokens <= s.BudgetTokens
}
