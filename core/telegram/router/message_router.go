package router

import (
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/huellitas-unexpo/rescuebot/core/telegram"
)

// MessageRoutes handles text and photo messages. Text naming a command alias
// (which telebot does not route by itself) goes to that command; everything
// else goes to handler.
func MessageRoutes(reg *tg.Registry, handler tele.HandlerFunc, obs Observer) []tg.Route {
	onText := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()
		if reg != nil && strings.HasPrefix(strings.TrimSpace(text), "/") {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				return handleWithSummary(c, obs, handlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
		}
		return handleWithSummary(c, obs, "message", start, func() error { return handler(c) })
	}
	onPhoto := func(c tele.Context) error {
		return handleWithSummary(c, obs, "photo", time.Now(), func() error { return handler(c) })
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: onText},
		{Endpoint: tele.OnPhoto, Handler: onPhoto},
	}
}
