// Package sqlstore implements the deletion-spec store over database/sql.
//
// It targets PostgreSQL through the lib/pq driver and shares the table shape
// of storage.PostgresStore, so the two implementations are interchangeable
// against the same database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/prunekit/prunekit/storage"
	"github.com/prunekit/prunekit/types"
)

// Store implements storage.Store using database/sql with lib/pq.
type Store struct {
	db *sql.DB
}

// New creates a store backed by the given database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSchema applies the table schema. Safe to call repeatedly.
func (s *Store) CreateSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, storage.Schema); err != nil {
		return fmt.Errorf("create deletion spec schema: %w", err)
	}
	return nil
}

// SaveSpec creates or replaces the spec for its conversation.
func (s *Store) SaveSpec(ctx context.Context, spec *types.DeletionSpec) error {
	if spec == nil || spec.ConversationID == "" {
		return fmt.Errorf("save spec: conversation_id is required")
	}

	messageIDs := spec.MessageIDs
	if messageIDs == nil {
		messageIDs = []string{}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO prunekit_deletion_specs
			(id, conversation_id, message_ids, preserve_pairs, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (conversation_id) DO UPDATE SET
			message_ids    = EXCLUDED.message_ids,
			preserve_pairs = EXCLUDED.preserve_pairs,
			description    = EXCLUDED.description,
			updated_at     = NOW()
	`, uuid.New(), spec.ConversationID, pq.Array(messageIDs), spec.PreservePairs, spec.Description)
	if err != nil {
		return fmt.Errorf("save spec for conversation %s: %w", spec.ConversationID, err)
	}
	return nil
}

// GetSpec retrieves the spec for a conversation.
func (s *Store) GetSpec(ctx context.Context, conversationID string) (*types.DeletionSpec, error) {
	spec := &types.DeletionSpec{}
	err := s.db.QueryRowContext(ctx, `
		SELECT conversation_id, message_ids, preserve_pairs, description, created_at, updated_at
		FROM prunekit_deletion_specs
		WHERE conversation_id = $1
	`, conversationID).Scan(
		&spec.ConversationID,
		pq.Array(&spec.MessageIDs),
		&spec.PreservePairs,
		&spec.Description,
		&spec.CreatedAt,
		&spec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, storage.ErrSpecNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spec for conversation %s: %w", conversationID, err)
	}
	return spec, nil
}

// DeleteSpec removes the spec for a conversation.
func (s *Store) DeleteSpec(ctx context.Context, conversationID string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM prunekit_deletion_specs WHERE conversation_id = $1
	`, conversationID)
	if err != nil {
		return fmt.Errorf("delete spec for conversation %s: %w", conversationID, err)
	}
	return nil
}

// ListSpecs returns all stored specs ordered by creation time.
func (s *Store) ListSpecs(ctx context.Context) ([]*types.DeletionSpec, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT conversation_id, message_ids, preserve_pairs, description, created_at, updated_at
		FROM prunekit_deletion_specs
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	defer rows.Close()

	var specs []*types.DeletionSpec
	for rows.Next() {
		spec := &types.DeletionSpec{}
		if err := rows.Scan(
			&spec.ConversationID,
			pq.Array(&spec.MessageIDs),
			&spec.PreservePairs,
			&spec.Description,
			&spec.CreatedAt,
			&spec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan spec: %w", err)
		}
		specs = append(specs, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list specs: %w", err)
	}
	return specs, nil
}

// PurgeOlderThan removes specs last updated before the cutoff.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM prunekit_deletion_specs WHERE updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge specs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}
