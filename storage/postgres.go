package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prunekit/prunekit/types"
)

// Schema is the DDL for the deletion-spec table. Apply it once per database
// (CreateSchema does this idempotently).
const Schema = `
CREATE TABLE IF NOT EXISTS prunekit_deletion_specs (
    id              UUID PRIMARY KEY,
    conversation_id TEXT NOT NULL UNIQUE,
    message_ids     TEXT[] NOT NULL DEFAULT '{}',
    preserve_pairs  BOOLEAN NOT NULL DEFAULT TRUE,
    description     TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS prunekit_deletion_specs_updated_at_idx
    ON prunekit_deletion_specs (updated_at);
`

// querier is a common interface for pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore implements Store using PostgreSQL with pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CreateSchema applies the table schema. Safe to call repeatedly.
func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create deletion spec schema: %w", err)
	}
	return nil
}

// txContextKey is the context key for storing pgx.Tx.
type txContextKey struct{}

// WithTx returns a new context carrying the given transaction. Store calls
// made with this context run inside the transaction.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

// q returns the transaction bound to ctx, or the pool.
func (s *PostgresStore) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txContextKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

// SaveSpec creates or replaces the spec for its conversation.
func (s *PostgresStore) SaveSpec(ctx context.Context, spec *types.DeletionSpec) error {
	if spec == nil || spec.ConversationID == "" {
		return fmt.Errorf("save spec: conversation_id is required")
	}

	messageIDs := spec.MessageIDs
	if messageIDs == nil {
		messageIDs = []string{}
	}

	_, err := s.q(ctx).Exec(ctx, `
		INSERT INTO prunekit_deletion_specs
			(id, conversation_id, message_ids, preserve_pairs, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (conversation_id) DO UPDATE SET
			message_ids    = EXCLUDED.message_ids,
			preserve_pairs = EXCLUDED.preserve_pairs,
			description    = EXCLUDED.description,
			updated_at     = NOW()
	`, uuid.New(), spec.ConversationID, messageIDs, spec.PreservePairs, spec.Description)
	if err != nil {
		return fmt.Errorf("save spec for conversation %s: %w", spec.ConversationID, err)
	}
	return nil
}

// GetSpec retrieves the spec for a conversation.
func (s *PostgresStore) GetSpec(ctx context.Context, conversationID string) (*types.DeletionSpec, error) {
	spec := &types.DeletionSpec{}
	err := s.q(ctx).QueryRow(ctx, `
		SELECT conversation_id, message_ids, preserve_pairs, description, created_at, updated_at
		FROM prunekit_deletion_specs
		WHERE conversation_id = $1
	`, conversationID).Scan(
		&spec.ConversationID,
		&spec.MessageIDs,
		&spec.PreservePairs,
		&spec.Description,
		&spec.CreatedAt,
		&spec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrSpecNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get spec for conversation %s: %w", conversationID, err)
	}
	return spec, nil
}

// DeleteSpec removes the spec for a conversation.
func (s *PostgresStore) DeleteSpec(ctx context.Context, conversationID string) error {
	_, err := s.q(ctx).Exec(ctx, `
		DELETE FROM prunekit_deletion_specs WHERE conversation_id = $1
	`, conversationID)
	if err != nil {
		return fmt.Errorf("delete spec for conversation %s: %w", conversationID, err)
	}
	return nil
}

// ListSpecs returns all stored specs ordered by creation time.
func (s *PostgresStore) ListSpecs(ctx context.Context) ([]*types.DeletionSpec, error) {
	rows, err := s.q(ctx).Query(ctx, `
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
			&spec.MessageIDs,
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
func (s *PostgresStore) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.q(ctx).Exec(ctx, `
		DELETE FROM prunekit_deletion_specs WHERE updated_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge specs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
