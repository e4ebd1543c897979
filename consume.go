package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

const (
	uploadsQueue = "cv_uploads"
	queriesQueue = "cv_queries"

	noCVsResponse = "You should upload a CV"
)

// retryBaseDelay is the wait after the first failed attempt; it grows
// linearly with every further attempt.
var retryBaseDelay = 500 * time.Millisecond

// retry retries a function up to `attempts` times with a growing delay.
func retry[T any](attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i < attempts-1 {
			time.Sleep(retryBaseDelay * time.Duration(i+1))
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

// processUpload downloads one CV, extracts and parses its text and stores
// the record. Only an unusable upload (download failure, unsupported
// format) or a storage failure is an error; a document that yields no text
// is stored as an empty record.
func processUpload(ctx context.Context, msg UploadMessage, wc *WorkerConfig) (resume.Record, error) {
	fileBytes, err := retry(3, func() ([]byte, error) {
		return wc.Download(ctx, msg.ObjectKey)
	})
	if err != nil {
		return resume.Record{}, fmt.Errorf("file download error: %w", err)
	}

	doc, err := documentFor(msg, fileBytes)
	if err != nil {
		return resume.Record{}, err
	}

	text, err := wc.Extractor.Extract(ctx, doc)
	if err != nil {
		return resume.Record{}, fmt.Errorf("text extraction error: %w", err)
	}

	record := resume.Parse(text)
	params, err := cvDataParams(msg.CvID, record)
	if err != nil {
		return record, err
	}

	_, err = retry(3, func() (any, error) {
		return nil, wc.DB.CreateCvData(ctx, params)
	})
	if err != nil {
		return record, fmt.Errorf("failed to save cv data after retries: %w", err)
	}
	return record, nil
}

// answerQuery resolves a chat question against every stored CV, scoped by
// the candidates the session discussed last, and saves the new scope.
func answerQuery(ctx context.Context, msg QueryMessage, wc *WorkerConfig) (string, error) {
	rows, err := wc.DB.ListCvData(ctx)
	if err != nil {
		return "", fmt.Errorf("error listing cv data: %w", err)
	}
	if len(rows) == 0 {
		return noCVsResponse, nil
	}

	all, err := collectionFromRows(rows)
	if err != nil {
		return "", err
	}

	var scope []string
	chat, err := wc.DB.GetChatContext(ctx, msg.SessionID)
	switch {
	case err == nil:
		scope = chat.CvIds
	case errors.Is(err, sql.ErrNoRows):
	default:
		log.Warn().Err(err).Str("session_id", msg.SessionID.String()).Msg("failed to load chat context, answering unscoped")
	}

	answer, newScope := wc.Resolver.Resolve(ctx, msg.Query, all, scope)

	if newScope == nil {
		newScope = []string{}
	}
	if err := wc.DB.UpsertChatContext(ctx, database.UpsertChatContextParams{
		SessionID: msg.SessionID,
		CvIds:     newScope,
	}); err != nil {
		log.Warn().Err(err).Str("session_id", msg.SessionID.String()).Msg("failed to save chat context")
	}

	return answer.Response(), nil
}

func (wc *WorkerConfig) publish(sessionID uuid.UUID, update map[string]any) {
	update["session_id"] = sessionID
	update["timestamp"] = time.Now()
	if err := wc.Publish(sessionID.String(), update); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("failed to publish update")
	}
}

func (wc *WorkerConfig) setStatuses(ctx context.Context, msg UploadMessage, status string) {
	if err := wc.DB.UpdateCvStatus(ctx, database.UpdateCvStatusParams{UploadStatus: status, ID: msg.CvID}); err != nil {
		log.Error().Err(err).Str("cv_id", msg.CvID.String()).Msg("failed to update cv status")
	}
	if err := wc.DB.UpdateSessionStatus(ctx, database.UpdateSessionStatusParams{Status: status, ID: msg.SessionID}); err != nil {
		log.Error().Err(err).Str("session_id", msg.SessionID.String()).Msg("failed to update session status")
	}
}

func (wc *WorkerConfig) handleUpload(workerID int, body []byte) {
	ctx := context.Background()

	msg := UploadMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error().Err(err).Msg("error unmarshalling upload message")
		return
	}
	logger := log.With().Int("worker", workerID).Str("cv_id", msg.CvID.String()).Str("object_key", msg.ObjectKey).Logger()
	logger.Info().Msg("processing cv upload")

	wc.setStatuses(ctx, msg, "processing")
	wc.publish(msg.SessionID, map[string]any{
		"type":    "upload",
		"cv_id":   msg.CvID,
		"status":  "processing",
		"message": "cv parsing started",
	})

	record, err := processUpload(ctx, msg, wc)
	if err != nil {
		logger.Error().Err(err).Msg("cv processing failed")
		wc.setStatuses(ctx, msg, "failed")
		wc.publish(msg.SessionID, map[string]any{
			"type":    "upload",
			"cv_id":   msg.CvID,
			"status":  "failed",
			"message": err.Error(),
		})
		return
	}

	logger.Info().
		Str("name", record.PersonalInfo[resume.FieldName]).
		Int("skills", len(record.Skills)).
		Int("experience", len(record.WorkExperience)).
		Msg("cv parsed")
	wc.setStatuses(ctx, msg, "completed")
	wc.publish(msg.SessionID, map[string]any{
		"type":    "upload",
		"cv_id":   msg.CvID,
		"status":  "completed",
		"message": "cv processed successfully",
	})
}

func (wc *WorkerConfig) handleQuery(workerID int, body []byte) {
	ctx := context.Background()

	msg := QueryMessage{}
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error().Err(err).Msg("error unmarshalling query message")
		return
	}
	log.Info().Int("worker", workerID).Str("session_id", msg.SessionID.String()).Str("query", msg.Query).Msg("answering query")

	response, err := answerQuery(ctx, msg, wc)
	if err != nil {
		log.Error().Err(err).Str("session_id", msg.SessionID.String()).Msg("query failed")
		response = "Could not process query due to service issues"
	}
	wc.publish(msg.SessionID, map[string]any{
		"type":     "answer",
		"query":    msg.Query,
		"response": response,
	})
}

func declareAndConsume(ch *amqp.Channel, queue string) (<-chan amqp.Delivery, error) {
	_, err := ch.QueueDeclare(
		queue, // queue name
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return ch.Consume(
		queue, // queue name
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // arguments
	)
}

func worker(id int, workerConfig *WorkerConfig, wg *sync.WaitGroup) {
	defer wg.Done()
	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("error dialling rabbitmq")
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to rabbitmq channel")
	}
	defer ch.Close()

	uploads, err := declareAndConsume(ch, uploadsQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("error consuming uploads")
	}
	queries, err := declareAndConsume(ch, queriesQueue)
	if err != nil {
		log.Fatal().Err(err).Msg("error consuming queries")
	}

	for uploads != nil || queries != nil {
		select {
		case msg, ok := <-uploads:
			if !ok {
				uploads = nil
				continue
			}
			workerConfig.handleUpload(id+1, msg.Body)
		case msg, ok := <-queries:
			if !ok {
				queries = nil
				continue
			}
			workerConfig.handleQuery(id+1, msg.Body)
		}
	}
	log.Info().Int("worker", id+1).Msg("delivery channels closed, worker stopping")
}

func (wc *WorkerConfig) StartConsumerWorkerPool(numWorkers int) {
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for i := range numWorkers {
		log.Info().Int("worker", i+1).Msg("worker started")
		go worker(i, wc, &wg)
	}
	wg.Wait() // block until all workers finish
}
