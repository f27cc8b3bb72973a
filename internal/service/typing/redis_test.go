package typing

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + mr.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisStoreTypingLifecycle(t *testing.T) {
	store, _ := newTestRedisStore(t)

	if err := store.SetTyping("chat-1", "João Silva"); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}

	st, err := store.IsTyping("chat-1")
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if !st.Typing || st.UserName != "João Silva" {
		t.Errorf("status = %+v, want typing João Silva", st)
	}

	if err := store.ClearTyping("chat-1"); err != nil {
		t.Fatalf("ClearTyping: %v", err)
	}
	st, _ = store.IsTyping("chat-1")
	if st.Typing {
		t.Error("expected no typing after clear")
	}
}

func TestRedisStoreEntryExpires(t *testing.T) {
	store, mr := newTestRedisStore(t)

	store.SetTyping("chat-1", "Maria")

	mr.FastForward(Freshness + time.Second)

	st, err := store.IsTyping("chat-1")
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if st.Typing {
		t.Error("entry should expire with its TTL")
	}
}

func TestRedisStoreUnknownChat(t *testing.T) {
	store, _ := newTestRedisStore(t)

	st, err := store.IsTyping("chat-missing")
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if st.Typing {
		t.Error("unknown chat should read as not typing")
	}
}
