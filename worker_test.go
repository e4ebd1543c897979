package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
	"github.com/muhammadolammi/cvqueryworker/internal/extract"
	"github.com/muhammadolammi/cvqueryworker/internal/query"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
	"github.com/muhammadolammi/cvqueryworker/mocks"
)

const janeCV = "Jane Doe\njane@example.com\nSkills\nGo\nPython"

func noRetryDelay(t *testing.T) {
	t.Helper()
	prev := retryBaseDelay
	retryBaseDelay = 0
	t.Cleanup(func() { retryBaseDelay = prev })
}

func newTestWorker(store *mocks.MockStore, pages []string) *WorkerConfig {
	reader := new(mocks.MockPageReader)
	reader.On("ReadPages", mock.Anything).Return(pages, nil)

	return &WorkerConfig{
		DB:        store,
		Extractor: extract.New(extract.WithPageReader(reader), extract.WithRecognizer(nil)),
		Resolver:  query.NewResolver(nil, zerolog.Nop()),
		Download: func(_ context.Context, _ string) ([]byte, error) {
			return []byte("%PDF-test"), nil
		},
		Publish: func(string, map[string]any) error { return nil },
	}
}

func row(t *testing.T, id uuid.UUID, rec resume.Record) database.CvDatum {
	t.Helper()
	params, err := cvDataParams(id, rec)
	require.NoError(t, err)
	return database.CvDatum{
		ID:             uuid.New(),
		CvID:           id,
		PersonalInfo:   params.PersonalInfo,
		Education:      params.Education,
		WorkExperience: params.WorkExperience,
		Skills:         params.Skills,
		Projects:       params.Projects,
		Certifications: params.Certifications,
	}
}

func TestProcessUploadStoresParsedRecord(t *testing.T) {
	noRetryDelay(t)
	cvID := uuid.New()

	store := new(mocks.MockStore)
	store.On("CreateCvData", mock.Anything, mock.MatchedBy(func(p database.CreateCvDataParams) bool {
		return p.CvID == cvID && string(p.Skills) == `["Go","Python"]`
	})).Return(nil)

	wc := newTestWorker(store, []string{janeCV})
	rec, err := processUpload(context.Background(), UploadMessage{
		CvID:      cvID,
		SessionID: uuid.New(),
		ObjectKey: "cvs/jane.pdf",
		Filename:  "jane.pdf",
		Mime:      "application/pdf",
	}, wc)

	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", rec.PersonalInfo[resume.FieldName])
	assert.Equal(t, "jane@example.com", rec.PersonalInfo[resume.FieldEmail])
	assert.Equal(t, []string{"Go", "Python"}, rec.Skills)
	store.AssertExpectations(t)
}

func TestProcessUploadRejectsUnsupportedFormat(t *testing.T) {
	noRetryDelay(t)
	store := new(mocks.MockStore)
	wc := newTestWorker(store, nil)

	_, err := processUpload(context.Background(), UploadMessage{
		CvID:     uuid.New(),
		Filename: "notes.txt",
		Mime:     "text/plain",
	}, wc)

	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)
	store.AssertNotCalled(t, "CreateCvData", mock.Anything, mock.Anything)
}

func TestProcessUploadRetriesStorage(t *testing.T) {
	noRetryDelay(t)
	store := new(mocks.MockStore)
	store.On("CreateCvData", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Times(3)

	wc := newTestWorker(store, []string{janeCV})
	_, err := processUpload(context.Background(), UploadMessage{CvID: uuid.New(), Filename: "jane.pdf"}, wc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	store.AssertNumberOfCalls(t, "CreateCvData", 3)
}

func TestProcessUploadDownloadFailure(t *testing.T) {
	noRetryDelay(t)
	store := new(mocks.MockStore)
	wc := newTestWorker(store, nil)
	calls := 0
	wc.Download = func(context.Context, string) ([]byte, error) {
		calls++
		return nil, errors.New("no such key")
	}

	_, err := processUpload(context.Background(), UploadMessage{CvID: uuid.New(), Filename: "jane.pdf"}, wc)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "file download error")
	assert.Equal(t, 3, calls)
}

func TestAnswerQueryWithoutCVs(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("ListCvData", mock.Anything).Return([]database.CvDatum{}, nil)

	resp, err := answerQuery(context.Background(), QueryMessage{SessionID: uuid.New(), Query: "skills"}, newTestWorker(store, nil))

	require.NoError(t, err)
	assert.Equal(t, noCVsResponse, resp)
	store.AssertNotCalled(t, "GetChatContext", mock.Anything, mock.Anything)
}

func TestAnswerQuerySavesScope(t *testing.T) {
	sessionID := uuid.New()
	annID, bobID := uuid.New(), uuid.New()

	ann := resume.NewRecord()
	ann.Skills = []string{"Go", "SQL"}
	bob := resume.NewRecord()
	bob.Skills = []string{"Python"}

	store := new(mocks.MockStore)
	store.On("ListCvData", mock.Anything).Return([]database.CvDatum{row(t, annID, ann), row(t, bobID, bob)}, nil)
	store.On("GetChatContext", mock.Anything, sessionID).Return(database.ChatContext{}, sql.ErrNoRows)
	store.On("UpsertChatContext", mock.Anything, database.UpsertChatContextParams{
		SessionID: sessionID,
		CvIds:     []string{annID.String()},
	}).Return(nil)

	resp, err := answerQuery(context.Background(), QueryMessage{SessionID: sessionID, Query: "Skill SQL"}, newTestWorker(store, nil))

	require.NoError(t, err)
	assert.Equal(t, "Found 1 candidates with skill sql", resp)
	store.AssertExpectations(t)
}

func TestAnswerQueryFollowUpUsesStoredScope(t *testing.T) {
	sessionID := uuid.New()
	annID, bobID := uuid.New(), uuid.New()

	ann := resume.NewRecord()
	ann.WorkExperience = []string{"Banking analyst, 2019-2021"}
	bob := resume.NewRecord()
	bob.WorkExperience = []string{"Banking consultant, 2020-2022"}

	store := new(mocks.MockStore)
	store.On("ListCvData", mock.Anything).Return([]database.CvDatum{row(t, annID, ann), row(t, bobID, bob)}, nil)
	store.On("GetChatContext", mock.Anything, sessionID).
		Return(database.ChatContext{SessionID: sessionID, CvIds: []string{annID.String()}}, nil)
	store.On("UpsertChatContext", mock.Anything, database.UpsertChatContextParams{
		SessionID: sessionID,
		CvIds:     []string{annID.String()},
	}).Return(nil)

	resp, err := answerQuery(context.Background(),
		QueryMessage{SessionID: sessionID, Query: "What about experience in banking"}, newTestWorker(store, nil))

	require.NoError(t, err)
	assert.Equal(t, "Found 1 candidates with experience in banking", resp)
	store.AssertExpectations(t)
}

func TestAnswerQueryListFailure(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("ListCvData", mock.Anything).Return(nil, errors.New("db down"))

	_, err := answerQuery(context.Background(), QueryMessage{SessionID: uuid.New(), Query: "skills"}, newTestWorker(store, nil))
	assert.ErrorContains(t, err, "db down")
}

func TestHandleUploadPublishesFailure(t *testing.T) {
	noRetryDelay(t)
	store := new(mocks.MockStore)
	store.On("UpdateCvStatus", mock.Anything, mock.Anything).Return(nil)
	store.On("UpdateSessionStatus", mock.Anything, mock.Anything).Return(nil)

	var statuses []string
	wc := newTestWorker(store, nil)
	wc.Publish = func(_ string, update map[string]any) error {
		statuses = append(statuses, update["status"].(string))
		return nil
	}

	body, err := json.Marshal(UploadMessage{CvID: uuid.New(), SessionID: uuid.New(), Filename: "cv.txt", Mime: "text/plain"})
	require.NoError(t, err)
	wc.handleUpload(1, body)

	assert.Equal(t, []string{"processing", "failed"}, statuses)
	store.AssertCalled(t, "UpdateCvStatus", mock.Anything, mock.MatchedBy(func(p database.UpdateCvStatusParams) bool {
		return p.UploadStatus == "failed"
	}))
}

func TestDocumentForPrefersMime(t *testing.T) {
	doc, err := documentFor(UploadMessage{Filename: "cv.bin", Mime: "application/pdf"}, []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, extract.FormatPDF, doc.Format)

	doc, err = documentFor(UploadMessage{Filename: "cv.docx", Mime: "application/octet-stream"}, nil)
	require.NoError(t, err)
	assert.Equal(t, extract.FormatDOCX, doc.Format)
}

func TestCollectionFromRows(t *testing.T) {
	id := uuid.New()
	rec := resume.Parse(janeCV)

	c, err := collectionFromRows([]database.CvDatum{row(t, id, rec)})
	require.NoError(t, err)
	require.Len(t, c, 1)
	assert.Equal(t, id.String(), c[0].ID)
	assert.Equal(t, rec, c[0].Record)

	_, err = recordFromRow(database.CvDatum{CvID: id, Skills: json.RawMessage(`{"bad":`)})
	assert.Error(t, err)
}

func TestRecordFromRowToleratesNull(t *testing.T) {
	rec, err := recordFromRow(database.CvDatum{Skills: json.RawMessage("null")})
	require.NoError(t, err)
	assert.NotNil(t, rec.Skills)
	assert.Empty(t, rec.Skills)
}

func TestRetry(t *testing.T) {
	noRetryDelay(t)
	calls := 0
	got, err := retry(3, func() (int, error) {
		calls++
		if calls < 2 {
			return 0, errors.New("flaky")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, calls)
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"DB_URL":         "postgres://localhost/cv",
		"RABBITMQ_URL":   "amqp://localhost",
		"R2_ACCCOUNT_ID": "acct",
		"R2_BUCKET":      "cvs",
		"R2_ACCESS_KEY":  "key",
		"R2_SECRET_KEY":  "secret",
	}
	getenv := func(k string) string { return env[k] }

	cfg, err := loadConfig(getenv)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "tesseract", cfg.TesseractPath)
	assert.Equal(t, "cvs", cfg.R2.Bucket)

	env["WORKERS"] = "8"
	cfg, err = loadConfig(getenv)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Workers)

	env["WORKERS"] = "zero"
	_, err = loadConfig(getenv)
	assert.ErrorContains(t, err, "WORKERS")

	delete(env, "DB_URL")
	delete(env, "R2_BUCKET")
	_, err = loadConfig(getenv)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "DB_URL") && strings.Contains(err.Error(), "R2_BUCKET"))
}
