package capture

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/compresr/prompt-capture/internal/config"
	"github.com/compresr/prompt-capture/internal/events"
	"github.com/compresr/prompt-capture/internal/monitoring"
	"github.com/compresr/prompt-capture/internal/paths"
)

// tempDirName is the subdirectory of the platform temp dir used when no
// cache_dir is configured or the configured one cannot be resolved.
const tempDirName = "prompt-capture"

// Handler observes the agent lifecycle and writes prompt capture files.
//
// State machine per session key: NoPending -> Pending (before event, when
// before-capture is enabled and prompt text is present) -> Consumed (end
// event removes the entry whether or not the write succeeds). A key with
// no before event goes straight to after-only handling with a synthesized
// timestamp.
type Handler struct {
	cfg     config.CaptureConfig
	dir     string
	pending *PendingStore
}

// NewHandler creates a handler writing into the configured cache dir.
// An unset or unresolvable cache_dir falls back to the platform temp
// directory with a logged warning; capture itself keeps working.
func NewHandler(cfg config.CaptureConfig) *Handler {
	dir := filepath.Join(os.TempDir(), tempDirName)
	if cfg.CacheDir != "" {
		resolved, err := paths.ExpandDir(cfg.CacheDir)
		if err != nil {
			log.Warn().
				Err(err).
				Str("cache_dir", cfg.CacheDir).
				Str("fallback", dir).
				Msg("cannot resolve capture directory, using temp dir")
		} else {
			dir = resolved
		}
	}

	return &Handler{
		cfg:     cfg,
		dir:     dir,
		pending: NewPendingStore(),
	}
}

// Dir returns the resolved capture directory.
func (h *Handler) Dir() string { return h.dir }

// Register subscribes the handler to both lifecycle events on the bus.
func (h *Handler) Register(bus *events.Bus) {
	bus.Subscribe(events.BeforePromptStart, func(ctx context.Context, payload any) {
		if ev, ok := payload.(events.BeforePromptStartEvent); ok {
			h.HandleBeforePromptStart(ctx, ev)
		}
	})
	bus.Subscribe(events.AgentEnd, func(ctx context.Context, payload any) {
		if ev, ok := payload.(events.AgentEndEvent); ok {
			h.HandleAgentEnd(ctx, ev)
		}
	})
}

// HandleBeforePromptStart records the assembled prompt and its timestamp,
// keyed by session, for pairing with the eventual end event. With
// write_before_immediately set it also fires a detached best-effort write;
// that write is supplementary and never on the critical path of event
// delivery.
func (h *Handler) HandleBeforePromptStart(_ context.Context, ev events.BeforePromptStartEvent) {
	if !h.cfg.BeforeEnabled() || ev.Prompt == "" {
		return
	}

	key := ev.SessionKey
	if key == "" {
		key = fallbackSessionKey
	}

	now := time.Now().UnixMilli()
	h.pending.Put(key, PendingEntry{Prompt: ev.Prompt, CapturedAt: now})

	monitoring.LogBefore(monitoring.BeforeInfo{
		SessionKey: key,
		PromptLen:  len(ev.Prompt),
		Tokens:     monitoring.CountTokens(ev.Prompt),
		Timestamp:  now,
	})

	if h.cfg.WriteBeforeImmediately {
		go h.writeStage(key, now, StageBefore, ev.Prompt)
	}
}

// HandleAgentEnd consumes the pending entry for the session (if any),
// writes the before-stage file from it, resolves the final prompt per the
// configured strategy, and writes the after-stage file. Both files share
// the timestamp captured at before-time; without a pending entry a fresh
// timestamp is synthesized.
func (h *Handler) HandleAgentEnd(_ context.Context, ev events.AgentEndEvent) {
	if !h.cfg.IsEnabled() {
		return
	}

	key := ev.SessionKey
	if key == "" {
		key = fallbackSessionKey
	}

	// Consume regardless of what happens below: the entry is paired with
	// exactly one turn end.
	entry, paired := h.pending.Take(key)

	timestamp := entry.CapturedAt
	if !paired {
		timestamp = time.Now().UnixMilli()
	}

	if paired && h.cfg.BeforeEnabled() {
		h.writeStage(key, timestamp, StageBefore, entry.Prompt)
	}

	if !h.cfg.AfterEnabled() {
		return
	}

	text, source, ok := ExtractFinalPrompt(h.cfg.Strategy, ev.FinalPrompt, ev.Messages)
	monitoring.LogAfter(monitoring.AfterInfo{
		SessionKey: key,
		Source:     source,
		PromptLen:  len(text),
		Timestamp:  timestamp,
		Paired:     paired,
	})
	if !ok {
		// Nothing to save - malformed or empty content is not an error.
		return
	}

	h.writeStage(key, timestamp, StageAfter, text)
}

// writeStage performs one capture write, logging failure as a warning with
// session and stage context. Errors never propagate to the event pipeline.
func (h *Handler) writeStage(sessionKey string, timestamp int64, stage Stage, text string) {
	path, err := WriteCapture(h.dir, sessionKey, timestamp, stage, text)
	if err != nil {
		log.Warn().
			Err(err).
			Str("session_key", sessionKey).
			Str("stage", string(stage)).
			Msg("prompt capture write failed")
		return
	}

	monitoring.LogWrite(monitoring.WriteInfo{
		SessionKey: sessionKey,
		Stage:      string(stage),
		Path:       path,
		Bytes:      len(text),
	})
}
