package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiUnsupportedCapabilities(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), "test-key", "")
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "gemini", client.Name())

	_, err = client.GenerateImage(context.Background(), ImageRequest{Prompt: "a cat"})
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = client.Synthesize(context.Background(), SpeechRequest{Text: "hi"})
	assert.ErrorIs(t, err, ErrUnsupported)
}
