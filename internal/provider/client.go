// Package provider defines the generation-provider interface the gateway
// dispatches to, plus the concrete backends. A provider turns a validated
// request into completion text, an image reference, or audio bytes.
package provider

import (
	"context"
	"errors"
)

// ErrUnsupported is returned when a provider does not implement a
// capability (e.g. image generation on a text-only backend).
var ErrUnsupported = errors.New("capability not supported by provider")

// CompletionRequest is the input to a text completion call.
type CompletionRequest struct {
	// User is a per-user correlation token passed through to the provider;
	// the gateway uses the connection ID.
	User string

	Prompt string

	// ImageURL optionally attaches an image reference for a multimodal
	// prompt. Providers without multimodal support ignore it.
	ImageURL string
}

// ImageRequest is the input to an image generation call.
type ImageRequest struct {
	User   string
	Prompt string
}

// ImageResult is an image reference: a hosted URL or inline bytes,
// whichever the backend returns.
type ImageResult struct {
	URL  string
	Data []byte
}

// Ref returns the result as a single reference string.
func (r *ImageResult) Ref() string {
	if r.URL != "" {
		return r.URL
	}
	return string(r.Data)
}

// SpeechRequest is the input to a speech synthesis call.
type SpeechRequest struct {
	Text  string
	Voice string
}

// Client is the interface all generation providers implement. Calls block
// until the provider responds or ctx expires.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error)
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
	Name() string
}
