package provider

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName      string
	CompleteFunc      func(ctx context.Context, req CompletionRequest) (string, error)
	GenerateImageFunc func(ctx context.Context, req ImageRequest) (*ImageResult, error)
	SynthesizeFunc    func(ctx context.Context, req SpeechRequest) ([]byte, error)
}

func (m *MockClient) Name() string {
	if m.ProviderName != "" {
		return m.ProviderName
	}
	return "mock"
}

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "mock completion", nil
}

func (m *MockClient) GenerateImage(ctx context.Context, req ImageRequest) (*ImageResult, error) {
	if m.GenerateImageFunc != nil {
		return m.GenerateImageFunc(ctx, req)
	}
	return &ImageResult{URL: "https://images.example/mock.png"}, nil
}

func (m *MockClient) Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, req)
	}
	return []byte("mock audio"), nil
}
