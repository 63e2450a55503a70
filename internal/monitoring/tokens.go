// Package monitoring - tokens.go provides approximate token counting for
// captured prompts, for debug-level size reporting only.
//
// DESIGN: Capture must never touch the network, so the default tiktoken
// loader (which downloads rank data on first use) is replaced with a
// cache-only loader before the encoding is built. Rank data is read from
// the standard tiktoken cache locations if a previous consumer populated
// them; otherwise counting is unavailable and CountTokens reports 0.
// Counting is also skipped entirely unless debug logging is enabled, since
// the count only ever appears in debug events.
package monitoring

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// encodingCL100kBase approximates token counts for current chat models.
const encodingCL100kBase = "cl100k_base"

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// CountTokens returns the approximate token count of text using the
// cl100k_base encoding. Returns 0 when debug logging is off or when no
// cached rank data is available; token counts are informational and never
// worth a network fetch or failing a capture over.
func CountTokens(text string) int {
	if text == "" || !log.Debug().Enabled() {
		return 0
	}

	encoderOnce.Do(func() {
		tiktoken.SetBpeLoader(cacheOnlyBpeLoader{})
		enc, err := tiktoken.GetEncoding(encodingCL100kBase)
		if err != nil {
			log.Debug().Err(err).Msg("token counting unavailable")
			return
		}
		encoder = enc
	})

	if encoder == nil {
		return 0
	}
	return len(encoder.Encode(text, nil, nil))
}

// cacheOnlyBpeLoader satisfies tiktoken.BpeLoader without ever fetching
// rank data remotely. It reads the same on-disk cache the default loader
// writes (keyed by the SHA-1 of the rank file URL) and fails when the
// cache is cold.
type cacheOnlyBpeLoader struct{}

func (cacheOnlyBpeLoader) LoadTiktokenBpe(tiktokenBpeFile string) (map[string]int, error) {
	path := cachedBpePath(tiktokenBpeFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no cached BPE ranks for %s: %w", tiktokenBpeFile, err)
	}
	return parseBpeRanks(data)
}

// cachedBpePath mirrors the default loader's cache layout so rank files
// downloaded by other tiktoken consumers on the machine are found.
func cachedBpePath(url string) string {
	cacheDir := os.Getenv("TIKTOKEN_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = os.Getenv("DATA_GYM_CACHE_DIR")
	}
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "data-gym-cache")
	}
	sum := sha1.Sum([]byte(url))
	return filepath.Join(cacheDir, hex.EncodeToString(sum[:]))
}

// parseBpeRanks parses the tiktoken rank file format: one line per token,
// base64-encoded token followed by a space and an integer rank.
func parseBpeRanks(data []byte) (map[string]int, error) {
	ranks := make(map[string]int, 100000)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var encoded string
		var rank int
		if _, err := fmt.Sscanf(line, "%s %d", &encoded, &rank); err != nil {
			continue
		}
		token, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode BPE token: %w", err)
		}
		ranks[string(token)] = rank
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return ranks, nil
}
