package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type form struct {
	Step   string
	Fields map[string]string
}

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore[form]()
	key := Key{UserID: 7, ChatID: 7}

	_, ok := store.Get(key)
	require.False(t, ok)

	store.Put(key, form{Step: "ask_location"})
	got, ok := store.Get(key)
	require.True(t, ok)
	assert.Equal(t, "ask_location", got.Step)
	assert.Equal(t, 1, store.Len())

	store.Clear(key)
	_, ok = store.Get(key)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreKeysIsolated(t *testing.T) {
	store := NewMemoryStore[form]()
	a := Key{UserID: 1, ChatID: 10}
	b := Key{UserID: 1, ChatID: 20}

	store.Put(a, form{Step: "confirm"})
	store.Put(b, form{Step: "ask_health"})
	store.Clear(a)

	got, ok := store.Get(b)
	require.True(t, ok)
	assert.Equal(t, "ask_health", got.Step)
}

func TestMemoryStoreValueCopy(t *testing.T) {
	store := NewMemoryStore[form]()
	key := Key{UserID: 3, ChatID: 3}
	store.Put(key, form{Step: "ask_photo"})

	got, _ := store.Get(key)
	got.Step = "idle"

	again, _ := store.Get(key)
	assert.Equal(t, "ask_photo", again.Step)
}

func TestMemoryStoreConcurrentKeys(t *testing.T) {
	store := NewMemoryStore[form]()
	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			key := Key{UserID: id, ChatID: id}
			store.Put(key, form{Step: "ask_animal_type"})
			store.Get(key)
			if id%2 == 0 {
				store.Clear(key)
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 25, store.Len())
}

func TestLocksSerializeSameKey(t *testing.T) {
	locks := NewLocks()
	key := Key{UserID: 5, ChatID: 5}

	unlock := locks.Lock(key)
	acquired := make(chan struct{})
	go func() {
		u := locks.Lock(key)
		close(acquired)
		u()
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the first was held")
	case <-time.After(50 * time.Millisecond):
	}
	unlock()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
	assert.Eventually(t, func() bool { return locks.size() == 0 }, time.Second, 5*time.Millisecond)
}

func TestLocksIndependentKeys(t *testing.T) {
	locks := NewLocks()
	unlockA := locks.Lock(Key{UserID: 1, ChatID: 1})
	defer unlockA()

	done := make(chan struct{})
	go func() {
		locks.Lock(Key{UserID: 2, ChatID: 2})()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different key blocked")
	}
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "42@-1001", Key{UserID: 42, ChatID: -1001}.String())
}
