package telegram

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	coreconfig "github.com/huellitas-unexpo/rescuebot/core/config"
)

func names(mws []Middleware) []string {
	out := make([]string, 0, len(mws))
	for _, mw := range mws {
		out = append(out, mw.Name)
	}
	return out
}

func TestDefaultMiddlewaresOrder(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Dedup.WindowSeconds = 60
	cfg.RateLimit.IntervalMS = 500
	assert.Equal(t, []string{"recover", "dedup", "logger", "rate_limit", "metrics"}, names(DefaultMiddlewares(cfg, MiddlewareHooks{})))

	cfg.Dedup.WindowSeconds = -1
	cfg.RateLimit.IntervalMS = 0
	assert.Equal(t, []string{"recover", "logger", "metrics"}, names(DefaultMiddlewares(cfg, MiddlewareHooks{})))
}

func TestBuildPoller(t *testing.T) {
	cfg := &coreconfig.Config{}
	cfg.Telegram.RunMode = coreconfig.RunModeLongpoll
	lp, ok := BuildPoller(cfg).(*tele.LongPoller)
	require.True(t, ok)
	assert.Equal(t, defaultLongPollTimeout, lp.Timeout)

	cfg.Telegram.LongPollTimeoutSeconds = 25
	lp = BuildPoller(cfg).(*tele.LongPoller)
	assert.Equal(t, 25*time.Second, lp.Timeout)

	cfg.Telegram.RunMode = "WEBHOOK"
	cfg.Webhook.Listen, cfg.Webhook.Port = "0.0.0.0", 8443
	cfg.Webhook.URL = "https://bot.example.org/hook"
	cfg.Webhook.SecretToken = "s3cret"
	wh, ok := BuildPoller(cfg).(*tele.Webhook)
	require.True(t, ok)
	assert.Equal(t, "0.0.0.0:8443", wh.Listen)
	assert.Equal(t, "s3cret", wh.SecretToken)
	assert.Equal(t, "https://bot.example.org/hook", wh.Endpoint.PublicURL)
}
