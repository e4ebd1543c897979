package main

import (
	"context"
	"database/sql"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/cvqueryworker/internal/database"
	"github.com/muhammadolammi/cvqueryworker/internal/extract"
	"github.com/muhammadolammi/cvqueryworker/internal/generator"
	"github.com/muhammadolammi/cvqueryworker/internal/query"
)

func main() {
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Getenv)
	setupLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("error opening db")
	}
	dbqueries := database.New(db)

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating aws config")
	}
	r2Client := newR2Client(awsConfig, &cfg.R2)

	gen, err := generator.Select(context.Background(), generator.Settings{
		HuggingFaceAPIKey:   cfg.HuggingFaceAPIKey,
		HuggingFaceModelURL: cfg.HuggingFaceModelURL,
		GoogleAPIKey:        cfg.GoogleAPIKey,
		GeminiModel:         cfg.GeminiModel,
	}, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generator")
	}

	extractor := extract.New(
		extract.WithRecognizer(&extract.Tesseract{
			PdftoppmPath:  cfg.PdftoppmPath,
			TesseractPath: cfg.TesseractPath,
			DPI:           300,
			Language:      "eng",
		}),
		extract.WithLogger(log.Logger.With().Str("component", "extract").Logger()),
	)
	analyzer := query.NewAnalyzer(gen, query.WithLogger(log.Logger.With().Str("component", "analyzer").Logger()))
	resolver := query.NewResolver(analyzer, log.Logger.With().Str("component", "resolver").Logger())

	conn, err := amqp.Dial(cfg.RabbitMQUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to RabbitMQ")
	}

	workerConfig := WorkerConfig{
		DB:          dbqueries,
		RABBITMQUrl: cfg.RabbitMQUrl,
		Extractor:   extractor,
		Resolver:    resolver,
		Download: func(ctx context.Context, key string) ([]byte, error) {
			return DownloadFromR2(ctx, r2Client, cfg.R2.Bucket, key)
		},
		Publish: func(sessionID string, update map[string]any) error {
			return publishSessionUpdate(conn, sessionID, update)
		},
	}

	log.Info().Int("workers", cfg.Workers).Msg("starting consumer worker pool")
	workerConfig.StartConsumerWorkerPool(cfg.Workers)
}
