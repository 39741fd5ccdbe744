package agent

import (
	"sync"

	"github.com/RicardoNiepel/frontier-agents-workshop/model"
)

// Thread is the ordered, append-only transcript of one conversation session.
// Message order is causal: a tool result always follows the assistant message
// that requested it and precedes the assistant reply that consumes it. A
// thread is owned by exactly one Agent and is never shared across sessions.
// Its lock is held only for the in-memory mutation itself, so the transcript
// stays readable while a turn is blocked on model or tool I/O.
type Thread struct {
	mu       sync.Mutex
	messages []model.Message
}

// NewThread creates an empty conversation thread.
func NewThread() *Thread {
	return &Thread{}
}

// Append adds messages to the end of the thread.
func (t *Thread) Append(messages ...model.Message) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, messages...)
}

// Messages returns a copy of the transcript in causal order.
func (t *Thread) Messages() []model.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages in the thread.
func (t *Thread) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Snapshot returns a marker for the current end of the thread. Passing it to
// Rollback discards everything appended after the marker was taken, so a
// failed turn never leaves a half-written transcript behind.
func (t *Thread) Snapshot() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.messages)
}

// Rollback truncates the thread back to a marker taken with Snapshot.
func (t *Thread) Rollback(marker int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if marker < 0 || marker > len(t.messages) {
		return
	}
	t.messages = t.messages[:marker]
}
