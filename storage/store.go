// Package storage persists deletion specs keyed by conversation ID.
//
// The engine itself only reads specs; an agent loop writes them when the
// model issues an explicit deletion request. Implementations: FileStore
// (single JSON file with advisory locking and backup rotation) and
// PostgresStore (pgx). A database/sql variant lives in the sqlstore
// subpackage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/prunekit/prunekit/types"
)

// ErrSpecNotFound indicates no deletion spec exists for the conversation.
var ErrSpecNotFound = errors.New("deletion spec not found")

// Store defines the deletion-spec persistence interface.
type Store interface {
	// SaveSpec creates or replaces the spec for its conversation.
	// CreatedAt is preserved on replace; UpdatedAt is always refreshed.
	SaveSpec(ctx context.Context, spec *types.DeletionSpec) error

	// GetSpec retrieves the spec for a conversation.
	// Returns ErrSpecNotFound if none exists.
	GetSpec(ctx context.Context, conversationID string) (*types.DeletionSpec, error)

	// DeleteSpec removes the spec for a conversation. Deleting a missing
	// spec is not an error.
	DeleteSpec(ctx context.Context, conversationID string) error

	// ListSpecs returns all stored specs.
	ListSpecs(ctx context.Context) ([]*types.DeletionSpec, error)

	// PurgeOlderThan removes specs last updated before the cutoff and
	// returns how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
