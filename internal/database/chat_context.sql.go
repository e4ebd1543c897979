package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const getChatContext = `-- name: GetChatContext :one
SELECT session_id, cv_ids, updated_at FROM chat_context WHERE session_id=$1
`

func (q *Queries) GetChatContext(ctx context.Context, sessionID uuid.UUID) (ChatContext, error) {
	row := q.db.QueryRowContext(ctx, getChatContext, sessionID)
	var i ChatContext
	err := row.Scan(&i.SessionID, pq.Array(&i.CvIds), &i.UpdatedAt)
	return i, err
}

const upsertChatContext = `-- name: UpsertChatContext :exec
INSERT INTO chat_context (
session_id, cv_ids)
VALUES ( $1, $2)
ON CONFLICT (session_id)
DO UPDATE SET
    cv_ids = EXCLUDED.cv_ids,
    updated_at = CURRENT_TIMESTAMP
`

type UpsertChatContextParams struct {
	SessionID uuid.UUID
	CvIds     []string
}

func (q *Queries) UpsertChatContext(ctx context.Context, arg UpsertChatContextParams) error {
	_, err := q.db.ExecContext(ctx, upsertChatContext, arg.SessionID, pq.Array(arg.CvIds))
	return err
}
