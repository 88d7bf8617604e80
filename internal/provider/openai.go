package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient is a direct HTTP client for the OpenAI API (and compatible
// endpoints). It covers all three gateway capabilities: chat completions,
// image generation, and speech synthesis.
type OpenAIClient struct {
	apiKey      string
	orgID       string
	baseURL     string
	model       string
	imageModel  string
	speechModel string
	voice       string
	client      *http.Client
}

// OpenAIOptions configures an OpenAIClient. Zero-value fields fall back to
// stock models.
type OpenAIOptions struct {
	APIKey      string
	OrgID       string
	BaseURL     string
	Model       string
	ImageModel  string
	SpeechModel string
	Voice       string
}

// NewOpenAIClient creates a new OpenAI API client.
func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	c := &OpenAIClient{
		apiKey:      opts.APIKey,
		orgID:       opts.OrgID,
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		model:       opts.Model,
		imageModel:  opts.ImageModel,
		speechModel: opts.SpeechModel,
		voice:       opts.Voice,
		client:      &http.Client{Timeout: 120 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = defaultOpenAIBaseURL
	}
	if c.model == "" {
		c.model = "gpt-4o"
	}
	if c.imageModel == "" {
		c.imageModel = "dall-e-3"
	}
	if c.speechModel == "" {
		c.speechModel = "tts-1"
	}
	if c.voice == "" {
		c.voice = "alloy"
	}
	return c
}

// Name returns the provider name.
func (c *OpenAIClient) Name() string {
	return "openai"
}

// Complete sends a chat completion request. An attached image reference
// becomes an image_url content part on the user message.
func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var content any = req.Prompt
	if req.ImageURL != "" {
		content = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": req.ImageURL}},
		}
	}

	body := map[string]any{
		"model": c.model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
		"user": req.User,
	}

	var result openAIChatResponse
	if err := c.post(ctx, "/chat/completions", body, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("openai: empty completion response")
	}
	return result.Choices[0].Message.Content, nil
}

// GenerateImage requests a single image for the prompt.
func (c *OpenAIClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	body := map[string]any{
		"model":           c.imageModel,
		"prompt":          req.Prompt,
		"n":               1,
		"response_format": "url",
		"user":            req.User,
	}

	var result openAIImageResponse
	if err := c.post(ctx, "/images/generations", body, &result); err != nil {
		return nil, err
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("openai: empty image response")
	}
	return &ImageResult{URL: result.Data[0].URL}, nil
}

// Synthesize converts text to audio bytes.
func (c *OpenAIClient) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	voice := req.Voice
	if voice == "" {
		voice = c.voice
	}
	body := map[string]any{
		"model": c.speechModel,
		"input": req.Text,
		"voice": voice,
	}

	resp, err := c.do(ctx, "/audio/speech", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: reading audio response: %w", err)
	}
	return audio, nil
}

// post sends a JSON request and decodes a JSON response into out.
func (c *OpenAIClient) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("openai: reading response: %w", err)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("openai: parsing response: %w", err)
	}
	return nil
}

// do sends a JSON request and returns the raw response after status checks.
func (c *OpenAIClient) do(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("openai: marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(string(payload)))
	if err != nil {
		return nil, fmt.Errorf("openai: creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.orgID != "" {
		httpReq.Header.Set("OpenAI-Organization", c.orgID)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("openai: API error (%d): %s", resp.StatusCode, string(respBody))
	}
	return resp, nil
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type openAIImageResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}
