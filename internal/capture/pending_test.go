package capture_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/compresr/prompt-capture/internal/capture"
)

func TestPendingStore_PutTake(t *testing.T) {
	s := capture.NewPendingStore()
	s.Put("sess", capture.PendingEntry{Prompt: "hello", CapturedAt: 1234})

	entry, ok := s.Take("sess")
	assert.True(t, ok)
	assert.Equal(t, "hello", entry.Prompt)
	assert.Equal(t, int64(1234), entry.CapturedAt)
}

func TestPendingStore_TakeConsumes(t *testing.T) {
	s := capture.NewPendingStore()
	s.Put("sess", capture.PendingEntry{Prompt: "hello", CapturedAt: 1})

	_, ok := s.Take("sess")
	assert.True(t, ok)

	_, ok = s.Take("sess")
	assert.False(t, ok, "second take must find nothing")
	assert.Equal(t, 0, s.Len())
}

func TestPendingStore_SecondPutOverwrites(t *testing.T) {
	s := capture.NewPendingStore()
	s.Put("sess", capture.PendingEntry{Prompt: "first", CapturedAt: 1})
	s.Put("sess", capture.PendingEntry{Prompt: "second", CapturedAt: 2})

	entry, ok := s.Take("sess")
	assert.True(t, ok)
	assert.Equal(t, "second", entry.Prompt)
	assert.Equal(t, int64(2), entry.CapturedAt)
	assert.Equal(t, 0, s.Len())
}

func TestPendingStore_MissingKey(t *testing.T) {
	s := capture.NewPendingStore()
	_, ok := s.Take("never-stored")
	assert.False(t, ok)
}

func TestPendingStore_ConcurrentAccess(t *testing.T) {
	s := capture.NewPendingStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Put("key", capture.PendingEntry{Prompt: "p", CapturedAt: 1})
		}()
		go func() {
			defer wg.Done()
			s.Take("key")
		}()
	}
	wg.Wait()
}
