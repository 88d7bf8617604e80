package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cleoai/cleo/internal/domain"
	"github.com/cleoai/cleo/internal/provider"
	"github.com/cleoai/cleo/internal/session"
	"github.com/cleoai/cleo/internal/validate"
)

// registerHandlers wires the capability handlers into the dispatch table.
func (s *Server) registerHandlers() {
	s.handlers[EventSendMessage] = s.handleSendMessage
	s.handlers[EventGenerateImage] = s.handleGenerateImage
	s.handlers[EventTextToSpeech] = s.handleTextToSpeech
	s.handlers[EventFetchMessages] = s.handleFetchMessages
}

// lookupSession is the universal precondition: every capability requires a
// registered session. Emits a not-found error on miss.
func (s *Server) lookupSession(c *Client, capability string) (*session.Session, bool) {
	sess, ok := s.sessions.Lookup(c.ID())
	if !ok {
		s.emitError(c, capability, http.StatusNotFound, "Client not connected")
		return nil, false
	}
	return sess, true
}

// stale reports whether the session disappeared while a provider call was
// in flight (disconnect or eviction). Late results are dropped rather than
// resurrecting the session.
func (s *Server) stale(c *Client) bool {
	_, ok := s.sessions.Lookup(c.ID())
	return !ok
}

func (s *Server) handleSendMessage(c *Client, data json.RawMessage) {
	sess, ok := s.lookupSession(c, EventSendMessage)
	if !ok {
		return
	}

	var p SendMessageParams
	if err := unmarshalParams(data, &p); err != nil {
		s.emitError(c, EventSendMessage, http.StatusBadRequest, "Invalid payload")
		return
	}

	if rej := validate.TextPrompt(p.Prompt, p.URL, s.limits); rej != nil {
		s.emitError(c, EventSendMessage, rej.Status, rej.Message)
		return
	}

	userEntry := domain.HistoryEntry{
		Role:      domain.RoleUser,
		Message:   domain.MessageContent{Text: p.Prompt, URL: p.URL},
		CreatedAt: time.Now(),
	}
	sess.History.Append(userEntry)

	ctx, cancel := s.providerCtx()
	defer cancel()
	reply, err := s.provider.Complete(ctx, provider.CompletionRequest{
		User:     c.ID(),
		Prompt:   p.Prompt,
		ImageURL: p.URL,
	})
	if err != nil {
		s.log.Error().Err(err).Str("connId", c.ID()).Msg("completion failed")
		s.emitError(c, EventSendMessage, http.StatusUnprocessableEntity, "Failed to generate a response")
		return
	}
	if s.stale(c) {
		return
	}

	aiEntry := domain.HistoryEntry{
		Role:      domain.RoleAssistant,
		Message:   domain.MessageContent{Text: reply},
		CreatedAt: time.Now(),
	}
	sess.History.Append(aiEntry)

	if err := c.Emit(EventMessageResponse, ChatPayload{UserMessage: &userEntry, AIMessage: &aiEntry}); err != nil {
		s.log.Debug().Err(err).Str("connId", c.ID()).Msg("message response emit failed")
	}
}

func (s *Server) handleGenerateImage(c *Client, data json.RawMessage) {
	sess, ok := s.lookupSession(c, EventGenerateImage)
	if !ok {
		return
	}

	var p GenerateImageParams
	if err := unmarshalParams(data, &p); err != nil {
		s.emitError(c, EventGenerateImage, http.StatusBadRequest, "Invalid payload")
		return
	}

	if rej := validate.ImagePrompt(p.Prompt, s.limits); rej != nil {
		s.emitError(c, EventGenerateImage, rej.Status, rej.Message)
		return
	}

	userEntry := domain.HistoryEntry{
		Role:      domain.RoleUser,
		Message:   domain.MessageContent{Text: p.Prompt},
		CreatedAt: time.Now(),
	}
	sess.History.Append(userEntry)

	ctx, cancel := s.providerCtx()
	defer cancel()
	img, err := s.provider.GenerateImage(ctx, provider.ImageRequest{
		User:   c.ID(),
		Prompt: p.Prompt,
	})
	if err != nil {
		s.log.Error().Err(err).Str("connId", c.ID()).Msg("image generation failed")
		s.emitError(c, EventGenerateImage, http.StatusUnprocessableEntity, "Failed to generate an image")
		return
	}
	if s.stale(c) {
		return
	}

	aiEntry := domain.HistoryEntry{
		Role:      domain.RoleAssistant,
		Message:   domain.MessageContent{URL: img.Ref()},
		CreatedAt: time.Now(),
	}
	sess.History.Append(aiEntry)

	if err := c.Emit(EventImageResponse, ChatPayload{UserMessage: &userEntry, AIMessage: &aiEntry}); err != nil {
		s.log.Debug().Err(err).Str("connId", c.ID()).Msg("image response emit failed")
	}
}

func (s *Server) handleTextToSpeech(c *Client, data json.RawMessage) {
	sess, ok := s.lookupSession(c, EventTextToSpeech)
	if !ok {
		return
	}

	var p TextToSpeechParams
	if err := unmarshalParams(data, &p); err != nil {
		s.emitError(c, EventTextToSpeech, http.StatusBadRequest, "Invalid payload")
		return
	}

	// Empty text falls back to the most recent turn's textual content.
	var last *domain.HistoryEntry
	if entry, ok := sess.History.Last(); ok {
		last = &entry
	}
	text, rej := validate.SpeechText(p.Text, last, s.limits)
	if rej != nil {
		s.emitError(c, EventTextToSpeech, rej.Status, rej.Message)
		return
	}

	userEntry := domain.HistoryEntry{
		Role:      domain.RoleUser,
		Message:   domain.MessageContent{Text: text},
		CreatedAt: time.Now(),
	}
	sess.History.Append(userEntry)

	ctx, cancel := s.providerCtx()
	defer cancel()
	audio, err := s.provider.Synthesize(ctx, provider.SpeechRequest{Text: text})
	if err != nil {
		s.log.Error().Err(err).Str("connId", c.ID()).Msg("speech synthesis failed")
		s.emitError(c, EventTextToSpeech, http.StatusUnprocessableEntity, "Failed to synthesize speech")
		return
	}
	if s.stale(c) {
		return
	}

	aiEntry := domain.HistoryEntry{
		Role:      domain.RoleAssistant,
		Message:   domain.MessageContent{Audio: audio},
		CreatedAt: time.Now(),
	}
	sess.History.Append(aiEntry)

	if err := c.Emit(EventAudioResponse, ChatPayload{UserMessage: &userEntry, AIMessage: &aiEntry}); err != nil {
		s.log.Debug().Err(err).Str("connId", c.ID()).Msg("audio response emit failed")
	}
}

func (s *Server) handleFetchMessages(c *Client, data json.RawMessage) {
	sess, ok := s.lookupSession(c, EventFetchMessages)
	if !ok {
		return
	}

	if err := c.Emit(EventChatHistory, HistoryPayload{ChatHistory: sess.History.Snapshot()}); err != nil {
		s.log.Debug().Err(err).Str("connId", c.ID()).Msg("chat history emit failed")
	}
}

// unmarshalParams decodes a request payload; absent payloads decode as
// zero values.
func unmarshalParams(data json.RawMessage, target any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, target)
}
