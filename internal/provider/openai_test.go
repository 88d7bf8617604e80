package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOpenAI records the last request and serves canned responses per path.
type fakeOpenAI struct {
	*httptest.Server
	lastPath string
	lastAuth string
	lastOrg  string
	lastBody map[string]any
}

func newFakeOpenAI(t *testing.T, handler func(path string, w http.ResponseWriter)) *fakeOpenAI {
	t.Helper()
	f := &fakeOpenAI{}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.lastPath = r.URL.Path
		f.lastAuth = r.Header.Get("Authorization")
		f.lastOrg = r.Header.Get("OpenAI-Organization")
		f.lastBody = map[string]any{}
		json.NewDecoder(r.Body).Decode(&f.lastBody)
		handler(r.URL.Path, w)
	}))
	t.Cleanup(f.Server.Close)
	return f
}

func TestOpenAIComplete(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "hello from the model"}},
			},
		})
	})

	client := NewOpenAIClient(OpenAIOptions{
		APIKey:  "sk-test",
		OrgID:   "org-42",
		BaseURL: fake.URL,
	})

	reply, err := client.Complete(context.Background(), CompletionRequest{
		User:   "conn-1",
		Prompt: "say hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", reply)

	assert.Equal(t, "/chat/completions", fake.lastPath)
	assert.Equal(t, "Bearer sk-test", fake.lastAuth)
	assert.Equal(t, "org-42", fake.lastOrg)
	assert.Equal(t, "gpt-4o", fake.lastBody["model"])
	assert.Equal(t, "conn-1", fake.lastBody["user"])
}

func TestOpenAICompleteMultimodal(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "a cat"}},
			},
		})
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Prompt:   "what is this?",
		ImageURL: "https://cdn.example/cat.png",
	})
	require.NoError(t, err)

	// Content becomes text + image_url parts.
	messages := fake.lastBody["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "text", content[0].(map[string]any)["type"])
	assert.Equal(t, "image_url", content[1].(map[string]any)["type"])
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL})
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorContains(t, err, "empty completion response")
}

func TestOpenAIAPIError(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limited"}}`))
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL})
	_, err := client.Complete(context.Background(), CompletionRequest{Prompt: "hi"})
	assert.ErrorContains(t, err, "API error (429)")
}

func TestOpenAIGenerateImage(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://images.example/out.png"}},
		})
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL})
	img, err := client.GenerateImage(context.Background(), ImageRequest{Prompt: "a lighthouse"})
	require.NoError(t, err)
	assert.Equal(t, "https://images.example/out.png", img.URL)

	assert.Equal(t, "/images/generations", fake.lastPath)
	assert.Equal(t, "dall-e-3", fake.lastBody["model"])
	assert.Equal(t, float64(1), fake.lastBody["n"])
}

func TestOpenAISynthesize(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		w.Write([]byte("raw mp3 bytes"))
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL})
	audio, err := client.Synthesize(context.Background(), SpeechRequest{Text: "read me"})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw mp3 bytes"), audio)

	assert.Equal(t, "/audio/speech", fake.lastPath)
	assert.Equal(t, "tts-1", fake.lastBody["model"])
	assert.Equal(t, "read me", fake.lastBody["input"])
	assert.Equal(t, "alloy", fake.lastBody["voice"])
}

func TestOpenAISynthesizeVoiceOverride(t *testing.T) {
	fake := newFakeOpenAI(t, func(path string, w http.ResponseWriter) {
		w.Write([]byte("audio"))
	})

	client := NewOpenAIClient(OpenAIOptions{APIKey: "sk-test", BaseURL: fake.URL, Voice: "nova"})
	_, err := client.Synthesize(context.Background(), SpeechRequest{Text: "hi", Voice: "echo"})
	require.NoError(t, err)
	assert.Equal(t, "echo", fake.lastBody["voice"])
}

func TestOpenAIDefaults(t *testing.T) {
	client := NewOpenAIClient(OpenAIOptions{})
	assert.Equal(t, "openai", client.Name())
	assert.Equal(t, defaultOpenAIBaseURL, client.baseURL)
	assert.Equal(t, "gpt-4o", client.model)
	assert.Equal(t, "dall-e-3", client.imageModel)
	assert.Equal(t, "tts-1", client.speechModel)
	assert.Equal(t, "alloy", client.voice)
}

func TestImageResultRef(t *testing.T) {
	assert.Equal(t, "https://x/y.png", (&ImageResult{URL: "https://x/y.png"}).Ref())
	assert.Equal(t, "data:image/png;base64,abc", (&ImageResult{Data: []byte("data:image/png;base64,abc")}).Ref())
}
