// Package capture persists agent prompts to disk at two lifecycle points:
// once when the prompt is assembled (before pre-processing hooks) and once
// when the turn ends (the exact text sent to the model).
//
// DESIGN: Purely observational. The handler never mutates event payloads,
// never blocks the host pipeline, and treats every failure as a logged
// warning. The only state is an in-memory map pairing a before-stage
// observation with its eventual after-stage counterpart.
package capture

import "sync"

// PendingEntry links a before-stage prompt to its eventual after-stage
// counterpart via session key and timestamp.
type PendingEntry struct {
	Prompt     string
	CapturedAt int64 // unix millis; shared by both files of the pair
}

// PendingStore maps session keys to pending before-stage entries.
//
// Access is mutex-guarded: the handler may be driven from multiple
// goroutines (one per websocket connection). The contract is last write
// wins on Put, and consume-at-most-once on Take - a second concurrent
// turn-end for the same key finds nothing and synthesizes a fresh
// timestamp, which is documented behavior.
type PendingStore struct {
	mu      sync.Mutex
	entries map[string]PendingEntry
}

// NewPendingStore creates an empty store.
func NewPendingStore() *PendingStore {
	return &PendingStore{entries: make(map[string]PendingEntry)}
}

// Put stores the entry for sessionKey, overwriting any existing one.
// Sessions are non-reentrant at this component's scope: a new before-stage
// observation replaces the previous prompt and timestamp.
func (s *PendingStore) Put(sessionKey string, entry PendingEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionKey] = entry
}

// Take returns and removes the entry for sessionKey.
func (s *PendingStore) Take(sessionKey string) (PendingEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionKey]
	if ok {
		delete(s.entries, sessionKey)
	}
	return entry, ok
}

// Len reports the number of pending entries.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
