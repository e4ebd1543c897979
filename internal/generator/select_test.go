package generator

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectPrefersHuggingFace(t *testing.T) {
	gen, err := Select(context.Background(), Settings{
		HuggingFaceAPIKey: "hf-token",
		GoogleAPIKey:      "google-key",
	}, zerolog.Nop())
	require.NoError(t, err)

	hf, ok := gen.(*HuggingFace)
	require.True(t, ok)
	assert.Equal(t, DefaultHuggingFaceURL, hf.URL)
	assert.Equal(t, "hf-token", hf.Token)
}

func TestSelectWithoutKeys(t *testing.T) {
	gen, err := Select(context.Background(), Settings{}, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, gen)
}
