package query

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/muhammadolammi/cvqueryworker/internal/generator"
	"github.com/muhammadolammi/cvqueryworker/internal/resume"
)

// maxSnapshotChars caps the CV data embedded in a generator prompt.
const maxSnapshotChars = 2000

// RetryPolicy controls how often a failing generator is retried. The delay
// starts at InitialDelay and is multiplied after every failed attempt.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   int
}

var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  5,
	InitialDelay: 2 * time.Second,
	Multiplier:   2,
}

// outcome tags what came back from the generator.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeExhausted
	outcomeInvalid
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeExhausted:
		return "exhausted"
	default:
		return "invalid"
	}
}

type serviceResult struct {
	outcome outcome
	payload Payload
}

// relevantKeywords make a free-text generator reply acceptable as a summary.
var relevantKeywords = []string{"years", "education", "skills"}

// Analyzer answers analytical questions, first through the generator and
// then, if that gives nothing usable, with local comparisons.
type Analyzer struct {
	gen    generator.Generator
	retry  RetryPolicy
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	logger zerolog.Logger
}

type AnalyzerOption func(*Analyzer)

func WithRetryPolicy(p RetryPolicy) AnalyzerOption {
	return func(a *Analyzer) { a.retry = p }
}

func WithClock(now func() time.Time) AnalyzerOption {
	return func(a *Analyzer) { a.now = now }
}

func WithLogger(l zerolog.Logger) AnalyzerOption {
	return func(a *Analyzer) { a.logger = l }
}

// NewAnalyzer builds an analyzer around gen. A nil gen skips straight to the
// local comparisons.
func NewAnalyzer(gen generator.Generator, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		gen:    gen,
		retry:  DefaultRetryPolicy,
		now:    time.Now,
		sleep:  sleepContext,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze always produces a payload; generator failures only change which
// path produced it.
func (a *Analyzer) Analyze(ctx context.Context, q string, c resume.Collection) Payload {
	q = strings.ToLower(strings.TrimSpace(q))

	res := a.callService(ctx, q, c)
	if res.outcome == outcomeSuccess {
		return res.payload
	}

	a.logger.Info().Str("outcome", res.outcome.String()).Str("query", q).Msg("using local comparison")
	return localAnswer(q, c, a.now())
}

func (a *Analyzer) callService(ctx context.Context, q string, c resume.Collection) serviceResult {
	if a.gen == nil {
		return serviceResult{outcome: outcomeExhausted}
	}

	prompt := buildPrompt(q, c)
	delay := a.retry.InitialDelay

	for attempt := 1; attempt <= a.retry.MaxAttempts; attempt++ {
		text, err := a.gen.Generate(ctx, prompt)
		if err == nil {
			if p, ok := acceptResponse(text); ok {
				return serviceResult{outcome: outcomeSuccess, payload: p}
			}
			a.logger.Warn().Int("attempt", attempt).Msg("generator response has no usable answer")
			return serviceResult{outcome: outcomeInvalid}
		}
		if errors.Is(err, generator.ErrMalformedResponse) {
			a.logger.Warn().Err(err).Int("attempt", attempt).Msg("generator returned malformed response")
			return serviceResult{outcome: outcomeInvalid}
		}

		a.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", delay).Msg("generator call failed")
		if attempt == a.retry.MaxAttempts {
			break
		}
		if err := a.sleep(ctx, delay); err != nil {
			break
		}
		delay *= time.Duration(a.retry.Multiplier)
	}
	return serviceResult{outcome: outcomeExhausted}
}

// acceptResponse takes a JSON object carrying all three sections. Text that
// is not a JSON object is accepted when it at least talks about years,
// education or skills; an object missing a section is rejected.
func acceptResponse(text string) (Payload, bool) {
	cleaned := generator.CleanJSON(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err == nil {
		summary, ok1 := fields["summary"]
		strengths, ok2 := fields["strengths"]
		recommendations, ok3 := fields["recommendations"]
		if !ok1 || !ok2 || !ok3 {
			return Payload{}, false
		}
		return Payload{
			Summary:         rawString(summary),
			Strengths:       rawString(strengths),
			Recommendations: rawString(recommendations),
		}, true
	}

	lower := strings.ToLower(text)
	for _, kw := range relevantKeywords {
		if strings.Contains(lower, kw) {
			return Payload{
				Summary:         text,
				Strengths:       "Extracted from LLM response",
				Recommendations: "Further analysis may refine results",
			}, true
		}
	}
	return Payload{}, false
}

// rawString returns a JSON string value unquoted and anything else as its
// JSON text.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

type promptSnapshot struct {
	Query    string                   `json:"query"`
	Database map[string]resume.Record `json:"database"`
}

func buildPrompt(q string, c resume.Collection) string {
	snap := promptSnapshot{Query: q, Database: make(map[string]resume.Record, len(c))}
	for _, cand := range c {
		snap.Database[cand.ID] = cand.Record
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		data = []byte("{}")
	}

	return fmt.Sprintf(
		"Given this CV data, analyze and %s. Return a JSON object with 'summary', 'strengths', and 'recommendations' sections:\n%s",
		q, truncateRunes(string(data), maxSnapshotChars),
	)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
