// Package commands describes slash commands registered with the bot.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command with its handler and menu entry.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// Hidden commands still work but are left out of the Telegram menu.
	Hidden  bool
	Aliases []string
}
