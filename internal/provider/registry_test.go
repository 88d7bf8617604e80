package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleoai/cleo/internal/config"
	"github.com/cleoai/cleo/internal/logging"
)

func TestNewDefaultsToOpenAI(t *testing.T) {
	log := logging.New(nil, "silent")

	client, err := New(context.Background(), config.ProviderConfig{}, log)
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())

	client, err = New(context.Background(), config.ProviderConfig{Name: "openai"}, log)
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestNewUnknownProvider(t *testing.T) {
	log := logging.New(nil, "silent")

	_, err := New(context.Background(), config.ProviderConfig{Name: "skynet"}, log)
	assert.ErrorContains(t, err, `unknown provider "skynet"`)
}

func TestMockClientDefaults(t *testing.T) {
	mock := &MockClient{}
	ctx := context.Background()

	assert.Equal(t, "mock", mock.Name())

	reply, err := mock.Complete(ctx, CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, reply)

	img, err := mock.GenerateImage(ctx, ImageRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, img.Ref())

	audio, err := mock.Synthesize(ctx, SpeechRequest{Text: "hi"})
	require.NoError(t, err)
	assert.NotEmpty(t, audio)
}
