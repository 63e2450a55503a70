// Package monitoring - capture_logger.go logs the prompt capture lifecycle.
//
// DESIGN: Structured logging for capture tracing at DEBUG level:
//   - LogBefore:  Prompt observed at the before-start event
//   - LogAfter:   Final prompt resolved at the end event
//   - LogWrite:   Capture file written to disk
//
// Failures are logged at WARN by the capture handler itself; this logger
// only records the happy path.
package monitoring

import "github.com/rs/zerolog/log"

// BeforeInfo describes a before-stage observation.
type BeforeInfo struct {
	SessionKey string
	PromptLen  int
	Tokens     int
	Timestamp  int64
}

// LogBefore logs a before-stage prompt observation.
func LogBefore(info BeforeInfo) {
	log.Debug().
		Str("session_key", info.SessionKey).
		Int("prompt_len", info.PromptLen).
		Int("tokens", info.Tokens).
		Int64("ts", info.Timestamp).
		Msg("before prompt observed")
}

// AfterInfo describes an after-stage resolution.
type AfterInfo struct {
	SessionKey string
	Source     string // "final_prompt", "messages", or "none"
	PromptLen  int
	Timestamp  int64
	Paired     bool // true when matched to a pending before-stage entry
}

// LogAfter logs resolution of the final prompt at turn end.
func LogAfter(info AfterInfo) {
	log.Debug().
		Str("session_key", info.SessionKey).
		Str("source", info.Source).
		Int("prompt_len", info.PromptLen).
		Int64("ts", info.Timestamp).
		Bool("paired", info.Paired).
		Msg("after prompt resolved")
}

// WriteInfo describes a completed capture write.
type WriteInfo struct {
	SessionKey string
	Stage      string
	Path       string
	Bytes      int
}

// LogWrite logs a completed capture file write.
func LogWrite(info WriteInfo) {
	log.Info().
		Str("session_key", info.SessionKey).
		Str("stage", info.Stage).
		Str("path", info.Path).
		Int("bytes", info.Bytes).
		Msg("prompt captured")
}
