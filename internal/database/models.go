package database

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Cv struct {
	ID               uuid.UUID
	OriginalFilename string
	Mime             string
	SizeBytes        int64
	ObjectKey        string
	UploadStatus     string
	CreatedAt        time.Time
	SessionID        uuid.UUID
}

type CvDatum struct {
	ID             uuid.UUID
	CvID           uuid.UUID
	PersonalInfo   json.RawMessage
	Education      json.RawMessage
	WorkExperience json.RawMessage
	Skills         json.RawMessage
	Projects       json.RawMessage
	Certifications json.RawMessage
	CreatedAt      time.Time
}

type ChatContext struct {
	SessionID uuid.UUID
	CvIds     []string
	UpdatedAt time.Time
}
