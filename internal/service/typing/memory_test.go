package typing

import (
	"testing"
	"time"
)

func TestMemoryStoreTypingLifecycle(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreAt(func() time.Time { return now })

	st, err := store.IsTyping("chat-1")
	if err != nil {
		t.Fatalf("IsTyping: %v", err)
	}
	if st.Typing {
		t.Error("expected no typing before any signal")
	}

	if err := store.SetTyping("chat-1", "João Silva"); err != nil {
		t.Fatalf("SetTyping: %v", err)
	}

	st, _ = store.IsTyping("chat-1")
	if !st.Typing {
		t.Error("expected typing right after signal")
	}
	if st.UserName != "João Silva" {
		t.Errorf("userName = %q, want João Silva", st.UserName)
	}

	if err := store.ClearTyping("chat-1"); err != nil {
		t.Fatalf("ClearTyping: %v", err)
	}
	st, _ = store.IsTyping("chat-1")
	if st.Typing {
		t.Error("expected no typing after explicit clear")
	}
}

func TestMemoryStoreEntryExpires(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreAt(func() time.Time { return now })

	store.SetTyping("chat-1", "Maria")

	now = now.Add(4999 * time.Millisecond)
	st, _ := store.IsTyping("chat-1")
	if !st.Typing {
		t.Error("entry should still be fresh just under the window")
	}

	now = now.Add(time.Millisecond)
	st, _ = store.IsTyping("chat-1")
	if st.Typing {
		t.Error("entry should read stale at the freshness boundary")
	}
}

func TestMemoryStoreSignalRenewsEntry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreAt(func() time.Time { return now })

	store.SetTyping("chat-1", "Maria")
	now = now.Add(4 * time.Second)
	store.SetTyping("chat-1", "Maria")
	now = now.Add(4 * time.Second)

	st, _ := store.IsTyping("chat-1")
	if !st.Typing {
		t.Error("renewed entry should still be fresh")
	}
}

func TestMemoryStorePurgeDropsStaleOnly(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreAt(func() time.Time { return now })

	store.SetTyping("chat-old", "Ana")
	now = now.Add(6 * time.Second)
	store.SetTyping("chat-new", "Bruno")

	store.purge()

	if _, ok := store.entries["chat-old"]; ok {
		t.Error("stale entry should be purged")
	}
	if _, ok := store.entries["chat-new"]; !ok {
		t.Error("fresh entry should survive the purge")
	}
}

func TestMemoryStoreChatsAreIndependent(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := newMemoryStoreAt(func() time.Time { return now })

	store.SetTyping("chat-1", "Ana")
	store.SetTyping("chat-2", "Bruno")
	store.ClearTyping("chat-1")

	st, _ := store.IsTyping("chat-2")
	if !st.Typing || st.UserName != "Bruno" {
		t.Errorf("chat-2 status = %+v, want typing Bruno", st)
	}
}
