package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DBUrl       string
	RabbitMQUrl string
	R2          R2Config

	HuggingFaceAPIKey   string
	HuggingFaceModelURL string
	GoogleAPIKey        string
	GeminiModel         string

	TesseractPath string
	PdftoppmPath  string

	Workers   int
	LogLevel  string
	LogFormat string
}

// loadConfig reads the worker configuration from the environment. Missing
// required values are reported together.
func loadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		DBUrl:       getenv("DB_URL"),
		RabbitMQUrl: getenv("RABBITMQ_URL"),
		R2: R2Config{
			AccountID: getenv("R2_ACCCOUNT_ID"),
			Bucket:    getenv("R2_BUCKET"),
			AccessKey: getenv("R2_ACCESS_KEY"),
			SecretKey: getenv("R2_SECRET_KEY"),
		},
		HuggingFaceAPIKey:   getenv("HUGGINGFACE_API_KEY"),
		HuggingFaceModelURL: getenv("HUGGINGFACE_MODEL_URL"),
		GoogleAPIKey:        getenv("GOOGLE_API_KEY"),
		GeminiModel:         getenv("GEMINI_MODEL"),
		TesseractPath:       orDefault(getenv("TESSERACT_PATH"), "tesseract"),
		PdftoppmPath:        orDefault(getenv("PDFTOPPM_PATH"), "pdftoppm"),
		Workers:             3,
		LogLevel:            orDefault(getenv("LOG_LEVEL"), "info"),
		LogFormat:           orDefault(getenv("LOG_FORMAT"), "json"),
	}

	required := map[string]string{
		"DB_URL":         cfg.DBUrl,
		"RABBITMQ_URL":   cfg.RabbitMQUrl,
		"R2_ACCCOUNT_ID": cfg.R2.AccountID,
		"R2_BUCKET":      cfg.R2.Bucket,
		"R2_ACCESS_KEY":  cfg.R2.AccessKey,
		"R2_SECRET_KEY":  cfg.R2.SecretKey,
	}
	var missing []string
	for _, key := range []string{"DB_URL", "RABBITMQ_URL", "R2_ACCCOUNT_ID", "R2_BUCKET", "R2_ACCESS_KEY", "R2_SECRET_KEY"} {
		if required[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return cfg, fmt.Errorf("empty %v in environment", missing)
	}

	if raw := getenv("WORKERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return cfg, fmt.Errorf("invalid WORKERS %q", raw)
		}
		cfg.Workers = n
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func setupLogger(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339

	var out io.Writer = os.Stdout
	if format == "pretty" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
