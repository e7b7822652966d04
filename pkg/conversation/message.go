package conversation

import (
	"errors"

	"github.com/google/uuid"
)

// Author identifies who produced a message.
type Author string

const (
	AuthorUser   Author = "user"
	AuthorSystem Author = "system"
)

// Kind is the variant tag of a message. A message's kind may change over its
// lifetime (a system reply evolves from loading to confirmation to result)
// but its ID and Author never do.
type Kind string

const (
	KindPlainText    Kind = "plain_text"
	KindLoading      Kind = "loading"
	KindConfirmation Kind = "confirmation"
	KindResult       Kind = "result"
	KindCancelled    Kind = "cancelled"
	KindFailed       Kind = "failed"
)

// IsTerminal reports whether a message of this kind may never change kind again.
func (k Kind) IsTerminal() bool {
	switch k {
	case KindResult, KindCancelled, KindFailed:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a message identifier does not resolve.
	// This is a programming error, not a user-facing condition.
	ErrNotFound = errors.New("message not found")

	// ErrInvalidTransition is returned when a mutation would change a
	// message's kind in a way the state rules forbid.
	ErrInvalidTransition = errors.New("invalid state transition")
)

// kindTransitions lists, per current kind, the kinds a mutation may move to.
// Mutations that keep the kind unchanged (text updates) are always allowed.
var kindTransitions = map[Kind][]Kind{
	KindLoading:      {KindConfirmation, KindResult, KindCancelled, KindFailed},
	KindConfirmation: {KindLoading, KindCancelled},
	KindPlainText:    {},
	KindResult:       {},
	KindCancelled:    {},
	KindFailed:       {},
}

// Message is one entry in the conversation. Payload fields are populated
// according to Kind: Text for plain/loading/cancelled messages, IntroText and
// Query for confirmations, Reason for failures, Artifact for results.
type Message struct {
	ID     string
	Author Author
	Kind   Kind

	Text      string
	IntroText string
	Query     string
	Reason    string
	Artifact  *Artifact

	// CreatedAt is the insertion sequence number assigned by the log.
	// Display order is insertion order; there is no reordering.
	CreatedAt int64
}

// NewMessage builds a message with a fresh identifier and the given text
// payload. Confirmation and result payloads are set by the caller afterwards.
func NewMessage(author Author, kind Kind, text string) Message {
	return Message{
		ID:     uuid.New().String(),
		Author: author,
		Kind:   kind,
		Text:   text,
	}
}

// canTransition reports whether a message of kind from may become kind to.
func canTransition(from, to Kind) bool {
	if from == to {
		return true
	}
	for _, k := range kindTransitions[from] {
		if k == to {
			return true
		}
	}
	return false
}
