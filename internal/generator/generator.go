// Package generator talks to the external text generation services used to
// answer free-form questions about candidates.
package generator

import (
	"context"
	"errors"
	"strings"
)

// ErrMalformedResponse means the service answered, but not in the shape we
// expect. Any other error from Generate is a transport failure.
var ErrMalformedResponse = errors.New("malformed generator response")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// CleanJSON removes a surrounding markdown code fence from model output.
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
