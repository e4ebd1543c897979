package generator

import (
	"context"

	"github.com/rs/zerolog"
)

const defaultAgentName = "cv comparer"

// Settings names the credentials for every supported service. Empty keys
// leave a service out.
type Settings struct {
	HuggingFaceAPIKey   string
	HuggingFaceModelURL string
	GoogleAPIKey        string
	GeminiModel         string
	AgentName           string
}

// Select prefers the Hugging Face inference API and falls back to a Gemini
// agent. With neither key set it returns a nil Generator, and callers answer
// with local comparisons only.
func Select(ctx context.Context, s Settings, logger zerolog.Logger) (Generator, error) {
	switch {
	case s.HuggingFaceAPIKey != "":
		logger.Info().Str("generator", "huggingface").Msg("text generation enabled")
		return NewHuggingFace(s.HuggingFaceModelURL, s.HuggingFaceAPIKey), nil
	case s.GoogleAPIKey != "":
		name := s.AgentName
		if name == "" {
			name = defaultAgentName
		}
		logger.Info().Str("generator", "gemini").Msg("text generation enabled")
		agent, err := NewAgent(ctx, s.GoogleAPIKey, s.GeminiModel, name)
		if err != nil {
			return nil, err
		}
		return agent, nil
	default:
		logger.Warn().Msg("no generator api key set, answering with local comparisons only")
		return nil, nil
	}
}
