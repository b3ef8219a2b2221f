package telegram

import (
	"time"

	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
	"github.com/huellitas-unexpo/rescuebot/core/telegram/middleware"
)

// MiddlewareHooks lets the application observe what the chain drops.
type MiddlewareHooks struct {
	// OnLimited answers a rate-limited update.
	OnLimited tele.HandlerFunc
	// OnDropped is called with "duplicate" or "rate_limited".
	OnDropped func(reason string)
	// ObserveUpdate receives the handling time of every update.
	ObserveUpdate func(kind string, took time.Duration)
}

// DefaultMiddlewares builds the shared middleware chain for the bot.
func DefaultMiddlewares(cfg *coreconfig.Config, hooks MiddlewareHooks) []Middleware {
	dropped := func(reason string) {
		if hooks.OnDropped != nil {
			hooks.OnDropped(reason)
		}
	}

	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
	}
	if window := time.Duration(cfg.Dedup.WindowSeconds) * time.Second; window > 0 {
		mws = append(mws, Middleware{
			Name: "dedup",
			Use:  middleware.DedupMiddleware(middleware.NewUpdateWindow(window), func() { dropped("duplicate") }),
		})
	}
	mws = append(mws, Middleware{Name: "logger", Use: middleware.LoggerMiddleware})

	if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
		exclude := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, kind := range cfg.RateLimit.ExcludeUpdates {
			exclude[kind] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: interval,
				Exclude:  exclude,
				OnLimited: func(c tele.Context) error {
					dropped("rate_limited")
					if hooks.OnLimited != nil {
						return hooks.OnLimited(c)
					}
					return nil
				},
			}),
		})
	}

	return append(mws, Middleware{Name: "metrics", Use: middleware.MetricsMiddleware(hooks.ObserveUpdate)})
}
