package middleware

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// MetricsMiddleware reports how long each update took, by update kind.
func MetricsMiddleware(observe func(kind string, took time.Duration)) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()
			err := next(c)
			if observe != nil {
				observe(UpdateKind(c.Update()), time.Since(start))
			}
			return err
		}
	}
}
