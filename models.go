package main

import (
	"context"

	"github.com/google/uuid"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
	"github.com/muhammadolammi/cvqueryworker/internal/extract"
	"github.com/muhammadolammi/cvqueryworker/internal/query"
)

type R2Config struct {
	AccountID string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Store is the part of the database the worker reads and writes.
type Store interface {
	CreateCvData(ctx context.Context, arg database.CreateCvDataParams) error
	UpdateCvStatus(ctx context.Context, arg database.UpdateCvStatusParams) error
	UpdateSessionStatus(ctx context.Context, arg database.UpdateSessionStatusParams) error
	ListCvData(ctx context.Context) ([]database.CvDatum, error)
	GetChatContext(ctx context.Context, sessionID uuid.UUID) (database.ChatContext, error)
	UpsertChatContext(ctx context.Context, arg database.UpsertChatContextParams) error
}

type WorkerConfig struct {
	DB          Store
	RABBITMQUrl string
	Extractor   *extract.Extractor
	Resolver    *query.Resolver

	// Download fetches an uploaded object by key.
	Download func(ctx context.Context, key string) ([]byte, error)
	// Publish sends a status or answer update for a session.
	Publish func(sessionID string, update map[string]any) error
}

// UploadMessage is queued by the upload API for every stored CV file.
type UploadMessage struct {
	CvID      uuid.UUID `json:"cv_id"`
	SessionID uuid.UUID `json:"session_id"`
	ObjectKey string    `json:"object_key"`
	Filename  string    `json:"filename"`
	Mime      string    `json:"mime"`
}

// QueryMessage is a recruiter question asked in a chat session.
type QueryMessage struct {
	SessionID uuid.UUID `json:"session_id"`
	Query     string    `json:"query"`
}
