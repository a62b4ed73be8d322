package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/underwriting/pkg/events"
	pgutil "github.com/bibbank/underwriting/pkg/postgres"
)

// OutboxRepository implements events.OutboxRepository using PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new PostgreSQL-backed OutboxRepository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Store writes entries outside of any aggregate transaction.
func (r *OutboxRepository) Store(ctx context.Context, entries []events.OutboxEntry) error {
	return insertOutbox(ctx, r.pool, entries)
}

// FetchUnpublished returns the oldest unpublished entries.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	const query = `
		SELECT id, aggregate_id, aggregate_type, tenant_id, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`
	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.TenantID, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkPublished stamps the given entries as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `UPDATE outbox SET published_at = $2 WHERE id = ANY($1) AND published_at IS NULL`
	if _, err := r.pool.Exec(ctx, query, ids, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// insertOutbox writes entries through q, which is a pool or an open transaction.
func insertOutbox(ctx context.Context, q pgutil.Querier, entries []events.OutboxEntry) error {
	const insertOutboxSQL = `
		INSERT INTO outbox (id, aggregate_id, aggregate_type, tenant_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, e := range entries {
		if _, err := q.Exec(ctx, insertOutboxSQL,
			e.ID, e.AggregateID, e.AggregateType, e.TenantID, e.EventType, e.Payload, e.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert outbox event %s: %w", e.EventType, err)
		}
	}
	return nil
}
