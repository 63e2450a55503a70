// Package listener bridges external agent runtimes to the event bus.
//
// DESIGN: Runtimes that cannot embed the capture library in-process deliver
// hook events as JSON frames over a websocket:
//
//	{"event": "before_prompt_start", "session_key": "...", "prompt": "..."}
//	{"event": "agent_end", "session_key": "...", "final_prompt": "...",
//	 "messages": [{"role": "user", "content": ...}, ...]}
//
// Each frame is decoded, emitted on the bus, and answered with a small ack.
// Malformed frames are acked with ok=false and logged; they never close the
// connection or disturb the pipeline.
package listener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/compresr/prompt-capture/internal/config"
	"github.com/compresr/prompt-capture/internal/events"
	"github.com/compresr/prompt-capture/internal/monitoring"
)

// hooksPath is the websocket endpoint runtimes connect to.
const hooksPath = "/v1/hooks"

// Listener accepts websocket connections and feeds decoded hook events to
// the bus.
type Listener struct {
	cfg config.ListenerConfig
	bus *events.Bus
	srv *http.Server
}

// New creates a listener for the given bus.
func New(cfg config.ListenerConfig, bus *events.Bus) *Listener {
	l := &Listener{cfg: cfg, bus: bus}

	mux := http.NewServeMux()
	mux.HandleFunc(hooksPath, l.serveWS)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	l.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		WriteTimeout: cfg.WriteTimeout,
	}

	return l
}

// Start serves until the context is canceled, then shuts down gracefully.
func (l *Listener) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := l.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info().Str("addr", l.srv.Addr).Str("path", hooksPath).Msg("hook listener started")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return l.srv.Shutdown(shutdownCtx)
	}
}

// serveWS handles one runtime connection for its lifetime.
func (l *Listener) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket accept failed")
		return
	}

	connID := uuid.NewString()
	log.Info().Str("conn_id", connID).Str("remote", r.RemoteAddr).Msg("runtime connected")
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	for {
		readCtx := ctx
		var cancel context.CancelFunc
		if l.cfg.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, l.cfg.ReadTimeout)
		}
		_, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				log.Info().Str("conn_id", connID).Msg("runtime disconnected")
			} else {
				log.Warn().Err(err).Str("conn_id", connID).Msg("websocket read failed")
			}
			return
		}

		ack := l.handleFrame(ctx, connID, data)
		if err := conn.Write(ctx, websocket.MessageText, ack); err != nil {
			log.Warn().Err(err).Str("conn_id", connID).Msg("websocket ack failed")
			return
		}
	}
}

// handleFrame decodes one frame, emits it on the bus, and builds the ack.
func (l *Listener) handleFrame(ctx context.Context, connID string, data []byte) []byte {
	name, payload, err := DecodeFrame(data)
	if err != nil {
		log.Warn().Err(err).Str("conn_id", connID).Msg("dropping malformed hook frame")
		return buildAck(name, err)
	}

	ctx = monitoring.WithSessionKeyContext(ctx, gjson.GetBytes(data, "session_key").String())
	l.bus.Emit(ctx, name, payload)
	return buildAck(name, nil)
}

// DecodeFrame parses a hook frame into its event name and typed payload.
func DecodeFrame(data []byte) (events.Name, any, error) {
	if !gjson.ValidBytes(data) {
		return "", nil, fmt.Errorf("frame is not valid JSON")
	}

	name := events.Name(gjson.GetBytes(data, "event").String())
	sessionKey := gjson.GetBytes(data, "session_key").String()

	switch name {
	case events.BeforePromptStart:
		return name, events.BeforePromptStartEvent{
			SessionKey: sessionKey,
			Prompt:     gjson.GetBytes(data, "prompt").String(),
		}, nil

	case events.AgentEnd:
		ev := events.AgentEndEvent{
			SessionKey:  sessionKey,
			FinalPrompt: gjson.GetBytes(data, "final_prompt").String(),
		}
		if raw := gjson.GetBytes(data, "messages"); raw.Exists() {
			// Messages with unrecognized content shapes are dropped rather
			// than failing the whole frame; capture treats them as no text.
			var msgs []json.RawMessage
			if err := json.Unmarshal([]byte(raw.Raw), &msgs); err != nil {
				return name, nil, fmt.Errorf("malformed messages array: %w", err)
			}
			for _, rawMsg := range msgs {
				var msg events.Message
				if err := json.Unmarshal(rawMsg, &msg); err != nil {
					continue
				}
				ev.Messages = append(ev.Messages, msg)
			}
		}
		return name, ev, nil

	default:
		return name, nil, fmt.Errorf("unknown event: %q", name)
	}
}

// buildAck constructs the per-frame acknowledgment.
func buildAck(name events.Name, frameErr error) []byte {
	ack := []byte(`{"ok":true}`)
	ack, _ = sjson.SetBytes(ack, "event", string(name))
	if frameErr != nil {
		ack, _ = sjson.SetBytes(ack, "ok", false)
		ack, _ = sjson.SetBytes(ack, "error", frameErr.Error())
	}
	return ack
}
