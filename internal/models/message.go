package models

// Sender identifies who a chat message is attributed to
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Label returns the display name for the sender
func (s Sender) Label() string {
	if s == SenderUser {
		return "You"
	}
	return "Bot"
}

// Message is a single entry of the chat log. Messages are never mutated
// after they are rendered.
type Message struct {
	Text   string
	Sender Sender
	// ID is set only on entries that will be removed later (placeholders)
	ID string
}

// IsPlaceholder reports whether the message carries a removal identifier
func (m Message) IsPlaceholder() bool {
	return m.ID != ""
}
