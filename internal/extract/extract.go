// Package extract turns uploaded CV documents into plain text.
//
// Extraction never fails because of a bad document: a PDF that can't be
// read or recognised yields whatever text was recovered, possibly "". The
// only error Extract returns is ErrUnsupportedFormat.
package extract

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// DefaultMinTextLength is the amount of embedded PDF text below which a
// document is treated as scanned and sent through OCR.
const DefaultMinTextLength = 50

var ErrUnsupportedFormat = errors.New("unsupported file format")

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// FormatFromFilename picks the format from the file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

func FormatFromMime(mime string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mime)
	}
}

// Document is a raw upload. It is read once by the Extractor.
type Document struct {
	Name   string
	Format Format
	Data   []byte
}

// PageReader returns the embedded text of each page of a PDF. On failure it
// returns the pages read so far together with the error.
type PageReader interface {
	ReadPages(data []byte) ([]string, error)
}

// Recognizer runs OCR over every page of a PDF and returns the page texts in
// page order. On failure it returns the pages recognised so far.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) ([]string, error)
}

type Extractor struct {
	pages         PageReader
	ocr           Recognizer
	minTextLength int
	logger        zerolog.Logger
}

type Option func(*Extractor)

func WithPageReader(r PageReader) Option {
	return func(e *Extractor) { e.pages = r }
}

// WithRecognizer sets the OCR fallback. A nil recognizer disables OCR.
func WithRecognizer(r Recognizer) Option {
	return func(e *Extractor) { e.ocr = r }
}

func WithMinTextLength(n int) Option {
	return func(e *Extractor) { e.minTextLength = n }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

func New(opts ...Option) *Extractor {
	e := &Extractor{
		pages:         PDFReader{},
		ocr:           NewTesseract(),
		minTextLength: DefaultMinTextLength,
		logger:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the plain text of doc.
func (e *Extractor) Extract(ctx context.Context, doc Document) (string, error) {
	start := time.Now()
	var text string

	switch doc.Format {
	case FormatPDF:
		text = e.extractPDF(ctx, doc)
	case FormatDOCX:
		text = e.extractDOCX(doc)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, doc.Format)
	}

	e.logger.Debug().
		Str("document", doc.Name).
		Str("format", string(doc.Format)).
		Int("chars", utf8.RuneCountInString(text)).
		Dur("took", time.Since(start)).
		Msg("text extracted")
	return text, nil
}

func (e *Extractor) extractPDF(ctx context.Context, doc Document) string {
	var b strings.Builder

	pages, err := e.pages.ReadPages(doc.Data)
	if err != nil {
		e.logger.Warn().Err(err).Str("document", doc.Name).Int("pages_read", len(pages)).Msg("embedded text extraction failed")
	}
	for _, page := range pages {
		if page == "" {
			continue
		}
		b.WriteString(page)
		b.WriteString("\n")
	}

	if !e.needsOCR(b.String()) {
		return b.String()
	}
	if e.ocr == nil {
		e.logger.Warn().Str("document", doc.Name).Msg("too little embedded text and no OCR configured")
		return b.String()
	}

	e.logger.Info().Str("document", doc.Name).Msg("falling back to OCR")
	scanned, err := e.ocr.Recognize(ctx, doc.Data)
	for _, page := range scanned {
		b.WriteString(page)
		b.WriteString("\n")
	}
	if err != nil {
		e.logger.Warn().Err(err).Str("document", doc.Name).Int("pages_recognized", len(scanned)).Msg("OCR failed, keeping text recovered so far")
	}
	return b.String()
}

func (e *Extractor) extractDOCX(doc Document) string {
	text, err := docxText(doc.Data)
	if err != nil {
		e.logger.Warn().Err(err).Str("document", doc.Name).Msg("docx extraction failed")
	}
	return text
}

func (e *Extractor) needsOCR(text string) bool {
	return strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) < e.minTextLength
}
