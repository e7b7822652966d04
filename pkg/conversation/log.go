package conversation

import (
	"fmt"
	"iter"
	"sync"

	"github.com/google/uuid"
)

// Log is the ordered sequence of messages in one conversation. It is the
// single source of truth the presentation layer renders from. Messages are
// appended at the end and mutated in place as a turn advances; the only
// removal supported is dropping a transient loading message that has been
// superseded by a confirmation for the same turn.
type Log struct {
	mu       sync.RWMutex
	seq      int64
	messages []*Message
	index    map[string]*Message
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{index: make(map[string]*Message)}
}

// Append inserts the message at the end of the log and returns its
// identifier. A missing identifier is assigned; the sequence number is always
// assigned by the log.
func (l *Log) Append(msg Message) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	msg.CreatedAt = l.seq
	l.seq++

	stored := msg
	l.messages = append(l.messages, &stored)
	l.index[stored.ID] = &stored
	return stored.ID
}

// Get returns a copy of the message with the given identifier.
func (l *Log) Get(id string) (Message, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	msg, ok := l.index[id]
	if !ok {
		return Message{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	return *msg, nil
}

// Mutate applies updater to the message with the given identifier. The
// updater receives a copy; the log swaps the result in atomically so no
// reader ever observes a half-updated message. Identifier, author and
// sequence number are immutable, and kind changes must follow the message
// state rules.
func (l *Log) Mutate(id string, updater func(*Message)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, ok := l.index[id]
	if !ok {
		return fmt.Errorf("mutate %s: %w", id, ErrNotFound)
	}

	updated := *msg
	updater(&updated)

	if !canTransition(msg.Kind, updated.Kind) {
		return fmt.Errorf("mutate %s: %s -> %s: %w", id, msg.Kind, updated.Kind, ErrInvalidTransition)
	}

	updated.ID = msg.ID
	updated.Author = msg.Author
	updated.CreatedAt = msg.CreatedAt
	*msg = updated
	return nil
}

// Remove drops a transient loading message from the log. This is the one
// exception to append-only semantics; removing any other kind is an invalid
// transition. Relative ordering of the remaining messages is preserved.
func (l *Log) Remove(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, ok := l.index[id]
	if !ok {
		return fmt.Errorf("remove %s: %w", id, ErrNotFound)
	}
	if msg.Kind != KindLoading {
		return fmt.Errorf("remove %s: kind %s: %w", id, msg.Kind, ErrInvalidTransition)
	}

	delete(l.index, id)
	for i, m := range l.messages {
		if m.ID == id {
			l.messages = append(l.messages[:i], l.messages[i+1:]...)
			break
		}
	}
	return nil
}

// All returns a restartable view of the messages in insertion order. The
// view iterates over a snapshot, so it is safe to call while the log is
// being appended to or mutated.
func (l *Log) All() iter.Seq[Message] {
	l.mu.RLock()
	snapshot := make([]Message, len(l.messages))
	for i, m := range l.messages {
		snapshot[i] = *m
	}
	l.mu.RUnlock()

	return func(yield func(Message) bool) {
		for _, m := range snapshot {
			if !yield(m) {
				return
			}
		}
	}
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}
