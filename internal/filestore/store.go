// Package filestore persists the four record collections as JSON array
// files under a data directory. It is the default storage mode, intended
// for a single-process deployment; every mutation is a read-modify-write
// over the whole collection serialized by the store mutex.
package filestore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"autopier/internal/lib/sl"
)

const (
	ordersFile       = "orders.json"
	negotiationsFile = "negotiations.json"
	messagesFile     = "messages.json"
	chatSessionsFile = "chat_sessions.json"
)

type Store struct {
	dir string
	mu  sync.Mutex
	log *slog.Logger
}

func New(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{
		dir: dir,
		log: log.With(sl.Module("filestore")),
	}, nil
}

// readList loads a collection. Read errors degrade to an empty collection:
// a broken data file must never fail a chat read.
func readList[T any](s *Store, file string) []T {
	path := filepath.Join(s.dir, file)
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Error("read collection", slog.String("file", file), sl.Err(err))
		}
		return nil
	}

	var list []T
	if err := json.Unmarshal(data, &list); err != nil {
		s.log.Error("decode collection", slog.String("file", file), sl.Err(err))
		return nil
	}
	return list
}

func writeList[T any](s *Store, file string, list []T) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", file, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, file), data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}
	return nil
}
