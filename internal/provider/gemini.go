package provider

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient backs text completion with the Gemini API. Image generation
// and speech synthesis are not offered by this backend and return
// ErrUnsupported.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini client for the given model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: creating client: %w", err)
	}
	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(model),
	}, nil
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Complete generates a text completion for the prompt. Attached image
// references are ignored; Gemini prompts here are text-only.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", fmt.Errorf("gemini: generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: empty response")
	}

	var out string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out += string(text)
		}
	}
	if out == "" {
		return "", fmt.Errorf("gemini: no text in response")
	}
	return out, nil
}

// GenerateImage is not available on this backend.
func (c *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	return nil, fmt.Errorf("gemini: image generation: %w", ErrUnsupported)
}

// Synthesize is not available on this backend.
func (c *GeminiClient) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	return nil, fmt.Errorf("gemini: speech synthesis: %w", ErrUnsupported)
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
