// Package domain holds the core data types shared across the gateway.
package domain

import "time"

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "ai"
)

// MessageContent is the payload of a single conversation turn. A turn
// carries text, an asset reference, audio, or text plus an asset
// reference for multimodal prompts. Unused fields stay empty.
type MessageContent struct {
	Text  string `json:"content,omitempty"`
	URL   string `json:"url,omitempty"`
	Audio []byte `json:"audio,omitempty"` // base64 on the wire
}

// HistoryEntry is one turn in a conversation. Entries are immutable once
// appended to a session's history.
type HistoryEntry struct {
	Role      Role           `json:"role"`
	Message   MessageContent `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
}

// HasText reports whether the entry carries non-empty textual content.
func (e HistoryEntry) HasText() bool {
	return e.Message.Text != ""
}
