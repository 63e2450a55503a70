// Package events defines the agent lifecycle events the capture service
// observes, and an in-process bus for delivering them.
//
// DESIGN: The bus is the subscription surface an embedding runtime uses to
// drive capture. Handlers run synchronously in registration order. Payload
// structs are copied per handler and the message slice is re-cloned for
// each delivery, so replacing or reassigning a message in one handler is
// invisible to later ones; block contents beneath a message are still
// shared, and handlers must treat payloads as read-only. A panicking
// handler is recovered and logged - the host pipeline must continue
// unaffected regardless of what a subscriber does.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-capture/internal/monitoring"
)

// Name identifies a lifecycle event.
type Name string

const (
	// BeforePromptStart fires when a prompt has been assembled but before
	// any pre-processing hooks run.
	BeforePromptStart Name = "before_prompt_start"

	// AgentEnd fires when the agent turn ends, carrying the exact text (or
	// message history) that was sent to the model.
	AgentEnd Name = "agent_end"
)

// BeforePromptStartEvent is the payload for BeforePromptStart.
type BeforePromptStartEvent struct {
	SessionKey string
	Prompt     string
}

// AgentEndEvent is the payload for AgentEnd.
//
// FinalPrompt, when non-empty, is the exact text sent to the model.
// Messages is the conversation history for reconstruction when the runtime
// does not supply FinalPrompt directly.
type AgentEndEvent struct {
	SessionKey  string
	FinalPrompt string
	Messages    []Message
}

// Message is one record of the conversation history.
type Message struct {
	Role    string         `json:"role"`
	Content MessageContent `json:"content"`
}

// ContentBlock is one typed segment of a structured message content value.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// MessageContent is a tagged variant: either plain text or an ordered
// sequence of content blocks. Agent runtimes use both shapes for the same
// field, so unmarshaling accepts either.
type MessageContent struct {
	Plain  string
	Blocks []ContentBlock
	IsText bool
}

// UnmarshalJSON accepts a JSON string or an array of {type, text} blocks.
// Any other shape is an error; callers treat it as "no text".
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Plain = s
		c.Blocks = nil
		c.IsText = true
		return nil
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(data, &blocks); err == nil {
		c.Plain = ""
		c.Blocks = blocks
		c.IsText = false
		return nil
	}

	return fmt.Errorf("message content is neither string nor block array")
}

// MarshalJSON emits the same shape that was parsed.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.IsText {
		return json.Marshal(c.Plain)
	}
	return json.Marshal(c.Blocks)
}

// TextContent builds a plain-text content value.
func TextContent(s string) MessageContent {
	return MessageContent{Plain: s, IsText: true}
}

// BlockContent builds a block-sequence content value.
func BlockContent(blocks ...ContentBlock) MessageContent {
	return MessageContent{Blocks: blocks}
}

// Handler receives an event payload. The payload type depends on the event
// name (BeforePromptStartEvent or AgentEndEvent).
type Handler func(ctx context.Context, payload any)

// Bus delivers named events to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[Name][]Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[Name][]Handler)}
}

// Subscribe registers a handler for an event name.
func (b *Bus) Subscribe(name Name, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[name] = append(b.subscribers[name], h)
}

// Emit delivers the payload to every subscriber of name, in registration
// order. Panics from handlers are recovered and logged as warnings.
func (b *Bus) Emit(ctx context.Context, name Name, payload any) {
	b.mu.RLock()
	handlers := b.subscribers[name]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.invoke(ctx, name, h, payload)
	}
}

func (b *Bus) invoke(ctx context.Context, name Name, h Handler, payload any) {
	// Each handler gets its own copy of the message slice so in-place
	// reassignment cannot leak into later deliveries.
	if ev, ok := payload.(AgentEndEvent); ok {
		ev.Messages = slices.Clone(ev.Messages)
		payload = ev
	}

	defer func() {
		if r := recover(); r != nil {
			log.Warn().
				Str("event", string(name)).
				Str("session_key", monitoring.SessionKeyFromContext(ctx)).
				Interface("panic", r).
				Msg("event handler panicked")
		}
	}()
	h(ctx, payload)
}
