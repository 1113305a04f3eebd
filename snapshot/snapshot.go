// Package snapshot captures final conversation states for diagnostics.
//
// The engine emits one snapshot per prune, fire-and-forget: a sink failure is
// logged by the caller and never fails the prune. FileSink writes raw JSON
// for machine inspection; HTMLSink renders a human-readable transcript.
package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/prunekit/prunekit/types"
)

// Snapshot is one captured conversation state.
type Snapshot struct {
	// ID uniquely identifies this capture.
	ID uuid.UUID `json:"id"`

	// ConversationID identifies the conversation, when known.
	ConversationID string `json:"conversation_id,omitempty"`

	// CapturedAt is when the snapshot was taken.
	CapturedAt time.Time `json:"captured_at"`

	// Messages is the final conversation.
	Messages types.Conversation `json:"messages"`
}

// New creates a snapshot of the conversation, stamped now.
func New(conversationID string, conv types.Conversation) *Snapshot {
	return &Snapshot{
		ID:             uuid.New(),
		ConversationID: conversationID,
		CapturedAt:     time.Now().UTC(),
		Messages:       conv,
	}
}

// Sink accepts conversation snapshots for diagnostic logging.
type Sink interface {
	Emit(ctx context.Context, snap *Snapshot) error
}

// NopSink discards snapshots.
type NopSink struct{}

// Emit discards the snapshot.
func (NopSink) Emit(ctx context.Context, snap *Snapshot) error { return nil }
