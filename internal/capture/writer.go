package capture

import (
	"fmt"
	"os"
	"path/filepath"
)

// Stage identifies which lifecycle point a capture file belongs to.
type Stage string

const (
	StageBefore Stage = "before"
	StageAfter  Stage = "after"
)

// WriteCapture writes text as a capture artifact named
// {sanitizedKey}_{timestampMillis}_{stage}.txt under dir, creating the
// directory if needed. The write replaces any existing file of the same
// name (last write wins). Returns the resolved file path.
func WriteCapture(dir, sessionKey string, timestamp int64, stage Stage, text string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create capture directory '%s': %w", dir, err)
	}

	name := fmt.Sprintf("%s_%d_%s.txt", SanitizeSessionKey(sessionKey), timestamp, stage)
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(text), 0600); err != nil {
		return "", fmt.Errorf("failed to write capture file '%s': %w", path, err)
	}

	return path, nil
}
