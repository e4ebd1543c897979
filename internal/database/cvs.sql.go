package database

import (
	"context"

	"github.com/google/uuid"
)

const updateCvStatus = `-- name: UpdateCvStatus :exec
UPDATE cvs
SET upload_status=$1
WHERE id=$2
`

type UpdateCvStatusParams struct {
	UploadStatus string
	ID           uuid.UUID
}

func (q *Queries) UpdateCvStatus(ctx context.Context, arg UpdateCvStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateCvStatus, arg.UploadStatus, arg.ID)
	return err
}
