package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/gpt2"
	defaultMaxLength      = 400
)

// HuggingFace calls a text-generation model on the Hugging Face inference API.
type HuggingFace struct {
	URL       string
	Token     string
	MaxLength int
	HTTP      *http.Client
}

func NewHuggingFace(url, token string) *HuggingFace {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	return &HuggingFace{
		URL:       url,
		Token:     token,
		MaxLength: defaultMaxLength,
		HTTP:      &http.Client{Timeout: 60 * time.Second},
	}
}

type hfRequest struct {
	Inputs    string `json:"inputs"`
	MaxLength int    `json:"max_length"`
}

type hfGeneration struct {
	GeneratedText *string `json:"generated_text"`
}

func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(hfRequest{Inputs: prompt, MaxLength: h.MaxLength})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.Token)

	resp, err := h.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", h.URL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("huggingface returned status %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var generations []hfGeneration
	if err := json.Unmarshal(raw, &generations); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(generations) == 0 || generations[0].GeneratedText == nil {
		return "", fmt.Errorf("%w: no generated_text in response", ErrMalformedResponse)
	}
	return strings.TrimSpace(*generations[0].GeneratedText), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
