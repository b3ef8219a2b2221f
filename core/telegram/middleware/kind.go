package middleware

import (
	"strings"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
)

// UpdateKind classifies an update as command, photo, message or other.
func UpdateKind(upd tele.Update) string {
	msg := upd.Message
	switch {
	case msg == nil:
		return "other"
	case msg.Photo != nil:
		return coreconfig.UpdatePhoto
	case strings.HasPrefix(strings.TrimSpace(msg.Text), "/"):
		return coreconfig.UpdateCommand
	}
	return coreconfig.UpdateMessage
}
