package gateway

import (
	"encoding/json"

	"github.com/cleoai/cleo/internal/domain"
)

// Inbound capability events.
const (
	EventSendMessage   = "send-message"
	EventGenerateImage = "generate-image"
	EventTextToSpeech  = "text-to-speech"
	EventFetchMessages = "fetch-messages"
)

// Outbound events.
const (
	EventConnected       = "connected"
	EventDisconnected    = "disconnected"
	EventMessageResponse = "message-response"
	EventImageResponse   = "image-response"
	EventAudioResponse   = "audio-response"
	EventChatHistory     = "chat-history"
	EventError           = "error"
)

// Frame is the envelope for all WebSocket messages, both directions: an
// event name plus a JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewFrame creates a frame with a marshaled payload.
func NewFrame(event string, payload any) (Frame, error) {
	if payload == nil {
		return Frame{Event: event}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: raw}, nil
}

// ErrorPayload is the data of an "error" event, and doubles as the JSON
// body of failed HTTP requests.
type ErrorPayload struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// NoticePayload is the data of "connected" / "disconnected" events.
type NoticePayload struct {
	Message string `json:"message"`
}

// ChatPayload is the data of the capability response events: the user turn
// and the assistant turn produced by one request.
type ChatPayload struct {
	UserMessage *domain.HistoryEntry `json:"userMessage"`
	AIMessage   *domain.HistoryEntry `json:"aiMessage"`
}

// HistoryPayload is the data of a "chat-history" event.
type HistoryPayload struct {
	ChatHistory []domain.HistoryEntry `json:"chatHistory"`
}

// SendMessageParams is the payload of a "send-message" request.
type SendMessageParams struct {
	Prompt string `json:"prompt"`
	URL    string `json:"url,omitempty"`
}

// GenerateImageParams is the payload of a "generate-image" request.
type GenerateImageParams struct {
	Prompt string `json:"prompt"`
}

// TextToSpeechParams is the payload of a "text-to-speech" request.
type TextToSpeechParams struct {
	Text string `json:"text,omitempty"`
}

// UploadResponse is the body returned by the upload endpoint.
type UploadResponse struct {
	URL string `json:"url"`
}
