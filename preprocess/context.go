package preprocess

import (
	"sync"
	"time"

	"github.com/quanterra/finassist/config"
)

// Message is one conversation turn held in session state.
type Message struct {
	Text      string
	Timestamp time.Time
	Role      string
}

// ConversationContext is the per-session mutable state. A context is
// created on a session's first message and reset (history discarded,
// timestamps reinitialized) when the gap since the last update exceeds
// the session timeout. Entries are never proactively evicted: the map
// grows for the process lifetime, an accepted trade-off of the lazy
// reset-on-expiry design.
type ConversationContext struct {
	SessionID      string
	Messages       []Message
	PreviousIntent string
	CreatedAt      time.Time
	LastUpdated    time.Time
}

// ContextInfo is the snapshot Extract returns to the pipeline.
type ContextInfo struct {
	SessionID      string
	PreviousIntent string
	MessageCount   int
}

type session struct {
	mu  sync.Mutex
	ctx *ConversationContext
}

// ContextExtractor owns the session map. Calls for distinct session ids
// run fully concurrently; calls for the same session id serialize on a
// per-session lock.
type ContextExtractor struct {
	mu         sync.Mutex
	sessions   map[string]*session
	maxHistory int
	timeout    time.Duration
}

// NewContextExtractor creates an empty extractor.
func NewContextExtractor(cfg config.ContextConfig) *ContextExtractor {
	return &ContextExtractor{
		sessions:   make(map[string]*session),
		maxHistory: cfg.MaxHistory,
		timeout:    cfg.SessionTimeout(),
	}
}

func (e *ContextExtractor) getSession(sessionID string) *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[sessionID]
	if !ok {
		s = &session{ctx: newConversationContext(sessionID)}
		e.sessions[sessionID] = s
	}
	return s
}

func newConversationContext(sessionID string) *ConversationContext {
	now := time.Now()
	return &ConversationContext{
		SessionID:   sessionID,
		CreatedAt:   now,
		LastUpdated: now,
	}
}

// Extract appends the message to the session's history, resetting the
// session first when it has expired, and trims the history to the most
// recent 2x max-history entries, oldest first.
func (e *ContextExtractor) Extract(text, sessionID string) ContextInfo {
	s := e.getSession(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if now.Sub(s.ctx.LastUpdated) > e.timeout {
		s.ctx = newConversationContext(sessionID)
	}

	s.ctx.Messages = append(s.ctx.Messages, Message{
		Text:      text,
		Timestamp: now,
		Role:      "user",
	})

	if limit := e.maxHistory * 2; len(s.ctx.Messages) > limit {
		s.ctx.Messages = s.ctx.Messages[len(s.ctx.Messages)-limit:]
	}

	s.ctx.LastUpdated = now

	userCount := 0
	for _, m := range s.ctx.Messages {
		if m.Role == "user" {
			userCount++
		}
	}

	return ContextInfo{
		SessionID:      sessionID,
		PreviousIntent: s.ctx.PreviousIntent,
		MessageCount:   userCount,
	}
}

// SetPreviousIntent records the classified intent so the next turn in the
// same session can see it.
func (e *ContextExtractor) SetPreviousIntent(sessionID, intent string) {
	s := e.getSession(sessionID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx.PreviousIntent = intent
}
