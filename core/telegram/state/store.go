package state

import "fmt"

// Key identifies one conversation: a user inside a chat.
type Key struct {
	UserID int64
	ChatID int64
}

// String renders the key for logs.
func (k Key) String() string {
	return fmt.Sprintf("%d@%d", k.UserID, k.ChatID)
}

// Store holds in-progress sessions keyed by conversation.
// Implementations must keep keys isolated: mutating one session never affects another.
type Store[S any] interface {
	Get(key Key) (S, bool)
	Put(key Key, session S)
	Clear(key Key)
	Len() int
}
