package capture

import (
	"strings"

	"github.com/compresr/prompt-capture/internal/config"
	"github.com/compresr/prompt-capture/internal/events"
)

// roleUser is the only role considered when reconstructing the prompt.
const roleUser = "user"

// messageText extracts the text of a single message. Plain-string content
// is used verbatim; block content concatenates the text of "text"-typed
// blocks joined by newline. Returns false when no text is present.
func messageText(msg events.Message) (string, bool) {
	if msg.Content.IsText {
		if msg.Content.Plain == "" {
			return "", false
		}
		return msg.Content.Plain, true
	}

	var parts []string
	for _, block := range msg.Content.Blocks {
		if block.Type == "text" && block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, "\n"), true
}

// ExtractFinalPrompt resolves the best available representation of the
// prompt sent to the model.
//
// Both strategies prefer a non-empty (after trimming) explicit finalPrompt
// field - when the runtime tells us the exact text, messages are only a
// reconstruction. They differ in how the message history is scanned:
//
//   - last_only: the most recent user message with text wins.
//   - first_and_last: the last non-empty user message text, falling back
//     to the first when the last turn carried no text.
//
// The returned source is "final_prompt", "messages", or "none" for logging.
func ExtractFinalPrompt(strategy string, finalPrompt string, messages []events.Message) (text, source string, ok bool) {
	if trimmed := strings.TrimSpace(finalPrompt); trimmed != "" {
		return finalPrompt, "final_prompt", true
	}

	switch strategy {
	case config.StrategyLastOnly:
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role != roleUser {
				continue
			}
			if text, ok := messageText(messages[i]); ok {
				return text, "messages", true
			}
		}

	case config.StrategyFirstAndLast:
		first, last := "", ""
		for _, msg := range messages {
			if msg.Role != roleUser {
				continue
			}
			text, ok := messageText(msg)
			if !ok {
				continue
			}
			if first == "" {
				first = text
			}
			last = text
		}
		if last != "" {
			return last, "messages", true
		}
		if first != "" {
			return first, "messages", true
		}
	}

	return "", "none", false
}
