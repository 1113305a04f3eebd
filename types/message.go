package types

import (
	"encoding/json"
	"time"
)

// Role represents the message role.
type Role string

const (
	// RoleSystem represents a system message.
	RoleSystem Role = "system"

	// RoleUser represents a user message (including tool results).
	RoleUser Role = "user"

	// RoleAssistant represents an assistant message (including tool calls).
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message represents one conversation turn or tool artifact.
//
// Role and MessageID are immutable once a message is created; Content may be
// rewritten in place by sanitization. The engine never assigns MessageID, it
// only reads it. A message without a resolvable ID cannot be targeted by
// ID-based deletion.
type Message struct {
	// Role is the message role: system, user, or assistant.
	Role Role `json:"role"`

	// Content is the message text. It may embed structured tool tags and
	// message ID hints.
	Content string `json:"content"`

	// MessageID is the optional canonical 8-character lowercase identifier.
	// When empty, the ID may still be derivable from hints embedded in
	// Content (see the msgid package).
	MessageID string `json:"message_id,omitempty"`
}

// Clone returns a copy of the message.
func (m *Message) Clone() *Message {
	cp := *m
	return &cp
}

// Conversation is an ordered sequence of messages. Order is semantically
// significant (turn sequence) and is preserved by every engine operation;
// messages are never reordered or deduplicated, only deleted or rewritten.
type Conversation []*Message

// Clone returns a deep copy of the conversation. Engine phases that mutate
// content operate on a clone so callers keep their original untouched.
func (c Conversation) Clone() Conversation {
	if c == nil {
		return nil
	}
	out := make(Conversation, len(c))
	for i, m := range c {
		out[i] = m.Clone()
	}
	return out
}

// Serialize returns the canonical JSON wire form of the conversation:
// an array of {"role", "content", "message_id"?} objects. Token budgets
// are measured against this serialization.
func (c Conversation) Serialize() string {
	data, err := json.Marshal([]*Message(c))
	if err != nil {
		// A Message contains only strings; Marshal cannot fail on it.
		return ""
	}
	return string(data)
}

// LastIndexOfRole returns the index of the last message with the given role,
// or -1 if none exists.
func (c Conversation) LastIndexOfRole(role Role) int {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Role == role {
			return i
		}
	}
	return -1
}

// DeletionSpec is a caller intent object requesting deletion of specific
// messages from one conversation. The engine treats it as read-only input
// for a single prune call; the storage package owns persistence.
type DeletionSpec struct {
	// ConversationID identifies the conversation this spec applies to.
	ConversationID string `json:"conversation_id"`

	// MessageIDs is the ordered list of requested IDs, pre-normalization.
	MessageIDs []string `json:"message_ids"`

	// PreservePairs requests that a user turn and its directly following
	// assistant turn are deleted together or not at all. Defaults to true
	// when the spec is built with NewDeletionSpec.
	PreservePairs bool `json:"preserve_pairs"`

	// Description is free text explaining why the deletion was requested.
	Description string `json:"description"`

	// CreatedAt is when the spec record was first persisted.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the spec record was last written.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewDeletionSpec creates a DeletionSpec with pair preservation enabled.
func NewDeletionSpec(conversationID string, messageIDs []string, description string) *DeletionSpec {
	return &DeletionSpec{
		ConversationID: conversationID,
		MessageIDs:     messageIDs,
		PreservePairs:  true,
		Description:    description,
	}
}

// Clone returns a copy of the spec with its own ID slice.
func (s *DeletionSpec) Clone() *DeletionSpec {
	if s == nil {
		return nil
	}
	cp := *s
	cp.MessageIDs = append([]string(nil), s.MessageIDs...)
	return &cp
}
