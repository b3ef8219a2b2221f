// Package bot routes Telegram updates through the report form and delivers
// finished reports to the rescuers' group.
package bot

import "context"

// Event is one inbound update reduced to what the bot acts on.
type Event struct {
	UpdateID  int
	UserID    int64
	ChatID    int64
	Username  string
	FirstName string
	// Command is the canonical command name ("/report") or empty for plain messages.
	Command  string
	Text     string
	PhotoRef string
}

// Mode selects how Telegram parses an outgoing text.
type Mode int

const (
	ModePlain Mode = iota
	ModeMarkdown
	ModeMarkdownNoPreview
)

// Message is an outgoing text.
type Message struct {
	Text     string
	Mode     Mode
	Keyboard [][]string
}

// Messenger sends messages to Telegram chats.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, msg Message) error
	SendPhoto(ctx context.Context, chatID int64, photoRef string) error
}
