package outbox

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/tumbleweedd/two_services_system/order_inventory/internal/domain/models"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/databases/postgres"
	"github.com/tumbleweedd/two_services_system/order_inventory/pkg/logger"
)

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

// DispatchBatch locks up to limit unsent rows in id order and hands them to
// publish one by one. It stops at the first publish error, marks the rows
// published so far as sent and commits. The publish error is returned
// together with the number of rows marked.
//
// SKIP LOCKED lets several dispatchers drain the same table without handing
// out a row twice.
func (r *Repository) DispatchBatch(
	ctx context.Context,
	limit int,
	publish func(ctx context.Context, msg models.OutboxMessage) error,
) (int, error) {
	const op = "repository.outbox.DispatchBatch"

	var (
		sent       []int64
		publishErr error
	)

	err := postgres.WithTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		const selectQuery = `
			SELECT id, event_uuid, event_type, order_id, payload, created_at
				FROM outbox
				WHERE sent = FALSE
				ORDER BY id
				LIMIT $1
				FOR UPDATE SKIP LOCKED
		`

		var messages []models.OutboxMessage
		if err := tx.SelectContext(ctx, &messages, selectQuery, limit); err != nil {
			return fmt.Errorf("select outbox: %w", err)
		}

		for _, msg := range messages {
			if publishErr = publish(ctx, msg); publishErr != nil {
				break
			}
			sent = append(sent, msg.ID)
		}

		if len(sent) == 0 {
			return nil
		}

		const updateQuery = `UPDATE outbox SET sent = TRUE, sent_at = now() WHERE id = ANY($1)`

		if _, err := tx.ExecContext(ctx, updateQuery, pq.Array(sent)); err != nil {
			return fmt.Errorf("mark outbox sent: %w", err)
		}

		return nil
	})
	if err != nil {
		r.log.ErrorContext(ctx, op, logger.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if publishErr != nil {
		return len(sent), fmt.Errorf("%s: publish: %w", op, publishErr)
	}

	return len(sent), nil
}
