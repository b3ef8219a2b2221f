package bot

import (
	"context"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/huellitas-unexpo/rescuebot/core/telegram/helpers"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/keyboard"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/sender"
)

// API is the part of *tele.Bot used to send messages.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// TelegramMessenger implements Messenger over telebot. Sends to the group are
// synchronous so their errors reach the caller; replies go through the queue.
type TelegramMessenger struct {
	api   API
	queue *sender.Queue
	group int64
}

func NewTelegramMessenger(api API, queue *sender.Queue, groupChatID int64) *TelegramMessenger {
	return &TelegramMessenger{api: api, queue: queue, group: groupChatID}
}

func (m *TelegramMessenger) SendText(ctx context.Context, chatID int64, msg Message) error {
	opts := sendOptions(msg.Mode)
	if chatID != m.group {
		opts.ReplyMarkup = keyboard.QuickAnswers(msg.Keyboard)
	}
	return m.do(ctx, chatID, "send.text", "sendMessage", func() error {
		_, err := m.api.Send(tele.ChatID(chatID), msg.Text, opts)
		return err
	})
}

func (m *TelegramMessenger) SendPhoto(ctx context.Context, chatID int64, photoRef string) error {
	photo := &tele.Photo{File: tele.File{FileID: photoRef}}
	return m.do(ctx, chatID, "send.photo", "sendPhoto", func() error {
		_, err := m.api.Send(tele.ChatID(chatID), photo)
		return err
	})
}

func (m *TelegramMessenger) do(ctx context.Context, chatID int64, action, endpoint string, run func() error) error {
	if chatID == m.group {
		return run()
	}
	return m.queue.Submit(ctx, action, endpoint, run)
}

func sendOptions(mode Mode) *tele.SendOptions {
	switch mode {
	case ModeMarkdown:
		return &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	case ModeMarkdownNoPreview:
		return &tele.SendOptions{ParseMode: tele.ModeMarkdown, DisableWebPagePreview: true}
	}
	return &tele.SendOptions{}
}

// EventFromContext reduces a telebot update to an Event. command is the
// canonical command already resolved by the router, if any.
func EventFromContext(c tele.Context, command string) Event {
	ev := Event{Command: command, UpdateID: c.Update().ID}
	if u := c.Sender(); u != nil {
		ev.UserID, ev.Username, ev.FirstName = u.ID, u.Username, u.FirstName
	}
	if ch := c.Chat(); ch != nil {
		ev.ChatID = ch.ID
	}
	if msg := c.Message(); msg != nil {
		if msg.Photo != nil {
			ev.PhotoRef = msg.Photo.FileID
		} else {
			ev.Text = msg.Text
		}
	}
	if ev.Command == "" {
		ev.Command = CommandName(ev.Text)
	}
	return ev
}

// CommandName returns the command a message starts with, without any
// "@botname" suffix, or "" when the text is not a command.
func CommandName(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name, _, _ := strings.Cut(text, " ")
	name, _, _ = strings.Cut(name, "@")
	return strings.ToLower(name)
}

// Handler adapts Handle to telebot for the given canonical command.
func (d *Dispatcher) Handler(command string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return d.Handle(helpers.BuildContext(c), EventFromContext(c, command))
	}
}
