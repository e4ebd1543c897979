package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
	"github.com/muhammadolammi/cvqueryworker/internal/extract"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

// --- File Download ---

func DownloadFromR2(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	buf := new(bytes.Buffer)
	_, err = io.Copy(buf, out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

func newR2Client(cfg aws.Config, r2 *R2Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
}

// documentFor picks the document format from the upload's MIME type and
// falls back to the file extension.
func documentFor(msg UploadMessage, data []byte) (extract.Document, error) {
	format, err := extract.FormatFromMime(msg.Mime)
	if err != nil {
		format, err = extract.FormatFromFilename(msg.Filename)
		if err != nil {
			return extract.Document{}, err
		}
	}
	return extract.Document{Name: msg.Filename, Format: format, Data: data}, nil
}

func cvDataParams(cvID uuid.UUID, rec resume.Record) (database.CreateCvDataParams, error) {
	fields := []any{rec.PersonalInfo, rec.Education, rec.WorkExperience, rec.Skills, rec.Projects, rec.Certifications}
	encoded := make([]json.RawMessage, len(fields))
	for i, f := range fields {
		data, err := json.Marshal(f)
		if err != nil {
			return database.CreateCvDataParams{}, fmt.Errorf("failed to encode cv data: %w", err)
		}
		encoded[i] = data
	}
	return database.CreateCvDataParams{
		CvID:           cvID,
		PersonalInfo:   encoded[0],
		Education:      encoded[1],
		WorkExperience: encoded[2],
		Skills:         encoded[3],
		Projects:       encoded[4],
		Certifications: encoded[5],
	}, nil
}

func recordFromRow(row database.CvDatum) (resume.Record, error) {
	rec := resume.NewRecord()
	targets := []struct {
		raw json.RawMessage
		dst any
	}{
		{row.PersonalInfo, &rec.PersonalInfo},
		{row.Education, &rec.Education},
		{row.WorkExperience, &rec.WorkExperience},
		{row.Skills, &rec.Skills},
		{row.Projects, &rec.Projects},
		{row.Certifications, &rec.Certifications},
	}
	for _, t := range targets {
		if len(t.raw) == 0 || string(t.raw) == "null" {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return rec, fmt.Errorf("failed to decode cv data %s: %w", row.CvID, err)
		}
	}
	return rec, nil
}

func collectionFromRows(rows []database.CvDatum) (resume.Collection, error) {
	c := make(resume.Collection, 0, len(rows))
	for _, row := range rows {
		rec, err := recordFromRow(row)
		if err != nil {
			return nil, err
		}
		c = append(c, resume.Candidate{ID: row.CvID.String(), Record: rec})
	}
	return c, nil
}

func publishSessionUpdate(rabbitConn *amqp.Connection, sessionID string, update map[string]any) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	routingKey := fmt.Sprintf("session.%s", sessionID)

	return ch.Publish(
		"session_updates", // exchange
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
