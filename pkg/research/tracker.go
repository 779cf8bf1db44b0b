package research

import (
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Tracker records which transcript messages belong to which research job,
// so that closing a job can purge exactly its messages.
type Tracker struct {
	mu   sync.Mutex
	tags map[string]map[string]bool // request id -> message id set
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

func NewTracker() *Tracker {
	return &Tracker{tags: make(map[string]map[string]bool)}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Tag associates a message with a job.
func (t *Tracker) Tag(requestID, messageID string) {
	if requestID == "" || messageID == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tags[requestID] == nil {
		t.tags[requestID] = make(map[string]bool)
	}
	t.tags[requestID][messageID] = true
}

// Tagged reports whether a message belongs to a job.
func (t *Tracker) Tagged(requestID, messageID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tags[requestID][messageID]
}

// Drop forgets a job and returns the set of message ids that belonged to
// it.
func (t *Tracker) Drop(requestID string) map[string]bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := t.tags[requestID]
	delete(t.tags, requestID)
	return ids
}

// Reset forgets every job.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tags = make(map[string]map[string]bool)
}
