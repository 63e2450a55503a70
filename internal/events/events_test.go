package events_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compresr/prompt-capture/internal/events"
)

// =============================================================================
// MESSAGE CONTENT VARIANT
// =============================================================================

func TestMessageContent_UnmarshalPlainString(t *testing.T) {
	var msg events.Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user","content":"hello"}`), &msg))

	assert.Equal(t, "user", msg.Role)
	assert.True(t, msg.Content.IsText)
	assert.Equal(t, "hello", msg.Content.Plain)
}

func TestMessageContent_UnmarshalBlockArray(t *testing.T) {
	raw := `{"role":"user","content":[{"type":"text","text":"one"},{"type":"image"},{"type":"text","text":"two"}]}`

	var msg events.Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))

	assert.False(t, msg.Content.IsText)
	require.Len(t, msg.Content.Blocks, 3)
	assert.Equal(t, "one", msg.Content.Blocks[0].Text)
	assert.Equal(t, "image", msg.Content.Blocks[1].Type)
}

func TestMessageContent_UnmarshalRejectsOtherShapes(t *testing.T) {
	var msg events.Message
	err := json.Unmarshal([]byte(`{"role":"user","content":{"nested":"object"}}`), &msg)
	assert.Error(t, err)
}

func TestMessageContent_MarshalRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`{"role":"user","content":"plain"}`,
		`{"role":"user","content":[{"type":"text","text":"block"}]}`,
	} {
		var msg events.Message
		require.NoError(t, json.Unmarshal([]byte(raw), &msg))
		out, err := json.Marshal(msg)
		require.NoError(t, err)
		assert.JSONEq(t, raw, string(out))
	}
}

// =============================================================================
// BUS DELIVERY
// =============================================================================

func TestBus_DeliversInRegistrationOrder(t *testing.T) {
	bus := events.NewBus()
	var order []int

	bus.Subscribe(events.BeforePromptStart, func(context.Context, any) { order = append(order, 1) })
	bus.Subscribe(events.BeforePromptStart, func(context.Context, any) { order = append(order, 2) })

	bus.Emit(context.Background(), events.BeforePromptStart, events.BeforePromptStartEvent{})
	assert.Equal(t, []int{1, 2}, order)
}

func TestBus_PayloadReachesSubscriber(t *testing.T) {
	bus := events.NewBus()
	var got events.BeforePromptStartEvent

	bus.Subscribe(events.BeforePromptStart, func(_ context.Context, payload any) {
		got = payload.(events.BeforePromptStartEvent)
	})

	bus.Emit(context.Background(), events.BeforePromptStart, events.BeforePromptStartEvent{
		SessionKey: "s", Prompt: "p",
	})
	assert.Equal(t, "s", got.SessionKey)
	assert.Equal(t, "p", got.Prompt)
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := events.NewBus()
	delivered := false

	bus.Subscribe(events.AgentEnd, func(context.Context, any) { panic("boom") })
	bus.Subscribe(events.AgentEnd, func(context.Context, any) { delivered = true })

	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), events.AgentEnd, events.AgentEndEvent{})
	})
	assert.True(t, delivered, "a panicking handler must not stop delivery")
}

func TestBus_MessageReassignmentNotVisibleToLaterHandlers(t *testing.T) {
	bus := events.NewBus()
	var seen string

	bus.Subscribe(events.AgentEnd, func(_ context.Context, payload any) {
		ev := payload.(events.AgentEndEvent)
		ev.Messages[0] = events.Message{Role: "user", Content: events.TextContent("tampered")}
	})
	bus.Subscribe(events.AgentEnd, func(_ context.Context, payload any) {
		ev := payload.(events.AgentEndEvent)
		seen = ev.Messages[0].Content.Plain
	})

	original := events.AgentEndEvent{
		Messages: []events.Message{{Role: "user", Content: events.TextContent("original")}},
	}
	bus.Emit(context.Background(), events.AgentEnd, original)

	assert.Equal(t, "original", seen)
	assert.Equal(t, "original", original.Messages[0].Content.Plain,
		"the emitted payload itself must stay untouched")
}

func TestBus_EmitWithNoSubscribers(t *testing.T) {
	bus := events.NewBus()
	assert.NotPanics(t, func() {
		bus.Emit(context.Background(), events.AgentEnd, events.AgentEndEvent{})
	})
}
