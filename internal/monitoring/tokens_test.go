package monitoring_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"

	"github.com/compresr/prompt-capture/internal/monitoring"
)

func TestCountTokens_ZeroWhenDebugDisabled(t *testing.T) {
	prev := log.Logger
	log.Logger = log.Logger.Level(zerolog.InfoLevel)
	defer func() { log.Logger = prev }()

	assert.Equal(t, 0, monitoring.CountTokens("some prompt text"))
}

func TestCountTokens_ColdCacheStaysLocal(t *testing.T) {
	// Point the rank cache at an empty directory: the cache-only loader
	// must fail fast instead of fetching rank data remotely.
	t.Setenv("TIKTOKEN_CACHE_DIR", t.TempDir())

	prev := log.Logger
	log.Logger = log.Logger.Level(zerolog.DebugLevel)
	defer func() { log.Logger = prev }()

	start := time.Now()
	got := monitoring.CountTokens("some prompt text")
	elapsed := time.Since(start)

	assert.Equal(t, 0, got)
	assert.Less(t, elapsed, 2*time.Second, "cold-cache counting must not wait on I/O")
}

func TestCountTokens_EmptyText(t *testing.T) {
	assert.Equal(t, 0, monitoring.CountTokens(""))
}
