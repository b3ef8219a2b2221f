// Package state keeps per-conversation form sessions for Telegram bots.
// It is domain-agnostic: the session value type is supplied by the caller.
package state
