// Command cvctl runs the CV pipeline locally: it parses a PDF or DOCX file
// into a record, or answers a query against a JSON file of records.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/muhammadolammi/cvqueryworker/internal/extract"
	"github.com/muhammadolammi/cvqueryworker/internal/generator"
	"github.com/muhammadolammi/cvqueryworker/internal/query"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

type options struct {
	file    string
	records string
	query   string
	scope   string
	noOCR   bool
	verbose bool
}

// queryOutput is what a query run prints.
type queryOutput struct {
	Response string   `json:"response"`
	Scope    []string `json:"scope"`
}

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "cvctl:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("cvctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.file, "file", "f", "", "PDF or DOCX file to parse")
	fs.StringVarP(&opts.records, "records", "r", "", "JSON file holding a list of {id, record} candidates")
	fs.StringVarP(&opts.query, "query", "q", "", "query to answer against --records")
	fs.StringVar(&opts.scope, "scope", "", "comma separated candidate ids from a previous answer")
	fs.BoolVar(&opts.noOCR, "no-ocr", false, "never fall back to OCR")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := zerolog.Nop()
	if opts.verbose {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	}

	switch {
	case opts.file != "":
		return parseFile(ctx, opts, logger, stdout)
	case opts.records != "" && opts.query != "":
		return answer(ctx, opts, logger, stdout)
	default:
		return errors.New("either --file or --records with --query is required")
	}
}

func parseFile(ctx context.Context, opts options, logger zerolog.Logger, stdout io.Writer) error {
	format, err := extract.FormatFromFilename(opts.file)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(opts.file)
	if err != nil {
		return err
	}

	extractorOpts := []extract.Option{extract.WithLogger(logger)}
	if opts.noOCR {
		extractorOpts = append(extractorOpts, extract.WithRecognizer(nil))
	}
	text, err := extract.New(extractorOpts...).Extract(ctx, extract.Document{
		Name:   filepath.Base(opts.file),
		Format: format,
		Data:   data,
	})
	if err != nil {
		return err
	}

	return writeJSON(stdout, resume.Parse(text))
}

func answer(ctx context.Context, opts options, logger zerolog.Logger, stdout io.Writer) error {
	data, err := os.ReadFile(opts.records)
	if err != nil {
		return err
	}
	var all resume.Collection
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decoding %s: %w", opts.records, err)
	}

	gen, err := generator.Select(ctx, settingsFromEnv(os.Getenv), logger)
	if err != nil {
		return err
	}
	resolver := query.NewResolver(query.NewAnalyzer(gen, query.WithLogger(logger)), logger)

	ans, scope := resolver.Resolve(ctx, opts.query, all, splitScope(opts.scope))
	if scope == nil {
		scope = []string{}
	}
	return writeJSON(stdout, queryOutput{Response: ans.Response(), Scope: scope})
}

// settingsFromEnv reads the same generator keys as the worker.
func settingsFromEnv(getenv func(string) string) generator.Settings {
	return generator.Settings{
		HuggingFaceAPIKey:   getenv("HUGGINGFACE_API_KEY"),
		HuggingFaceModelURL: getenv("HUGGINGFACE_MODEL_URL"),
		GoogleAPIKey:        getenv("GOOGLE_API_KEY"),
		GeminiModel:         getenv("GEMINI_MODEL"),
	}
}

func splitScope(s string) []string {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
