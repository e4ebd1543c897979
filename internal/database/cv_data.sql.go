package database

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

const createCvData = `-- name: CreateCvData :exec
INSERT INTO cv_data (
cv_id, personal_info, education, work_experience, skills, projects, certifications)
VALUES ( $1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (cv_id)
DO UPDATE SET
    personal_info = EXCLUDED.personal_info,
    education = EXCLUDED.education,
    work_experience = EXCLUDED.work_experience,
    skills = EXCLUDED.skills,
    projects = EXCLUDED.projects,
    certifications = EXCLUDED.certifications
`

type CreateCvDataParams struct {
	CvID           uuid.UUID
	PersonalInfo   json.RawMessage
	Education      json.RawMessage
	WorkExperience json.RawMessage
	Skills         json.RawMessage
	Projects       json.RawMessage
	Certifications json.RawMessage
}

func (q *Queries) CreateCvData(ctx context.Context, arg CreateCvDataParams) error {
	_, err := q.db.ExecContext(ctx, createCvData,
		arg.CvID,
		arg.PersonalInfo,
		arg.Education,
		arg.WorkExperience,
		arg.Skills,
		arg.Projects,
		arg.Certifications,
	)
	return err
}

const listCvData = `-- name: ListCvData :many
SELECT d.id, d.cv_id, d.personal_info, d.education, d.work_experience, d.skills, d.projects, d.certifications, d.created_at
FROM cv_data d
JOIN cvs c ON c.id = d.cv_id
ORDER BY c.created_at, c.id
`

func (q *Queries) ListCvData(ctx context.Context) ([]CvDatum, error) {
	rows, err := q.db.QueryContext(ctx, listCvData)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CvDatum
	for rows.Next() {
		var i CvDatum
		if err := rows.Scan(
			&i.ID,
			&i.CvID,
			&i.PersonalInfo,
			&i.Education,
			&i.WorkExperience,
			&i.Skills,
			&i.Projects,
			&i.Certifications,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
