package middleware

import (
	"log/slog"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/huellitas-unexpo/rescuebot/core/logger"
	tghelpers "github.com/huellitas-unexpo/rescuebot/core/telegram/helpers"
)

// UpdateWindow remembers update ids for a fixed time.
type UpdateWindow struct {
	mu    sync.Mutex
	ttl   time.Duration
	seen  map[int]time.Time
	now   func() time.Time
	sweep time.Time
}

func NewUpdateWindow(ttl time.Duration) *UpdateWindow {
	return &UpdateWindow{ttl: ttl, seen: make(map[int]time.Time), now: time.Now}
}

// Seen records id and reports whether it was already recorded within the window.
func (w *UpdateWindow) Seen(id int) bool {
	now := w.now()
	w.mu.Lock()
	defer w.mu.Unlock()

	if now.Sub(w.sweep) > w.ttl {
		for k, at := range w.seen {
			if now.Sub(at) > w.ttl {
				delete(w.seen, k)
			}
		}
		w.sweep = now
	}
	if at, ok := w.seen[id]; ok && now.Sub(at) <= w.ttl {
		return true
	}
	w.seen[id] = now
	return false
}

// Len returns the number of remembered ids.
func (w *UpdateWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

// DedupMiddleware drops updates whose id was already handled within the window.
// Telegram redelivers an update when a webhook call times out.
func DedupMiddleware(w *UpdateWindow, onDrop func()) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			id := c.Update().ID
			if id == 0 || !w.Seen(id) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "update.duplicate",
				slog.String("status", "duplicate"),
				slog.Int("update_id", id),
			)
			if onDrop != nil {
				onDrop()
			}
			return nil
		}
	}
}
