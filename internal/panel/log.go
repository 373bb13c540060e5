package panel

import (
	"slices"

	"github.com/diogo/bookchat/internal/models"
)

// Log is the ordered record of rendered chat messages. Entries are appended
// at the end and never modified; they leave the log only through RemoveByID
// or Clear.
type Log struct {
	messages []models.Message
	revision uint64
}

// NewLog creates an empty log
func NewLog() *Log {
	return &Log{}
}

// Render appends a message to the end of the log
func (l *Log) Render(msg models.Message) {
	l.messages = append(l.messages, msg)
	l.revision++
}

// RemoveByID removes the earliest message tagged with id. It reports whether
// a message was removed; an empty id never matches.
func (l *Log) RemoveByID(id string) bool {
	if id == "" {
		return false
	}
	for i, msg := range l.messages {
		if msg.ID == id {
			l.messages = slices.Delete(l.messages, i, i+1)
			l.revision++
			return true
		}
	}
	return false
}

// Clear removes every message
func (l *Log) Clear() {
	l.messages = nil
	l.revision++
}

// Messages returns a copy of the current entries in render order
func (l *Log) Messages() []models.Message {
	out := make([]models.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of entries
func (l *Log) Len() int {
	return len(l.messages)
}

// Has reports whether a message tagged with id is present
func (l *Log) Has(id string) bool {
	for _, msg := range l.messages {
		if id != "" && msg.ID == id {
			return true
		}
	}
	return false
}

// LastFrom returns the most recent non-placeholder message from sender
func (l *Log) LastFrom(sender models.Sender) (models.Message, bool) {
	for i := len(l.messages) - 1; i >= 0; i-- {
		msg := l.messages[i]
		if msg.Sender == sender && !msg.IsPlaceholder() {
			return msg, true
		}
	}
	return models.Message{}, false
}

// Revision changes every time the log is mutated. Views compare it to decide
// whether to redraw and scroll to the newest entry.
func (l *Log) Revision() uint64 {
	return l.revision
}
