// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/health-companion/internal/logger"
)

// DefaultQuotaBytes mirrors the ~5 MiB budget of a browser's local storage.
const DefaultQuotaBytes = 5 << 20

type fileKVStore struct {
	path     string
	inMemory bool
	quota    int64
	log      *logger.Logger

	mu    sync.Mutex
	items map[string]string
}

// NewFileKVStore opens a JSON-file-backed key-value store at path. An empty
// path yields a purely in-memory store that persists nothing, which is
// convenient in tests. A corrupt or unreadable file is treated as an empty
// store: the error is logged and swallowed because the cache is not a source
// of truth. quotaBytes <= 0 selects [DefaultQuotaBytes].
func NewFileKVStore(path string, quotaBytes int64, log *logger.Logger) KeyValueStore {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}

	s := &fileKVStore{
		path:     path,
		inMemory: path == "",
		quota:    quotaBytes,
		log:      log,
		items:    make(map[string]string),
	}
	s.load()
	return s
}

func (s *fileKVStore) load() {
	if s.inMemory {
		return
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Err(err).Str("func", "fileKVStore.load").Str("path", s.path).
				Msg("failed to read local cache file, starting empty")
		}
		return
	}

	items := make(map[string]string)
	if err = json.Unmarshal(data, &items); err != nil {
		s.log.Err(err).Str("func", "fileKVStore.load").Str("path", s.path).
			Msg("local cache file is corrupt, starting empty")
		return
	}

	s.items = items
}

func (s *fileKVStore) persist() error {
	if s.inMemory {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create local cache dir: %w", err)
		}
	}

	payload, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode local cache: %w", err)
	}

	if err = os.WriteFile(s.path, payload, 0o600); err != nil {
		return fmt.Errorf("write local cache file: %w", err)
	}

	return nil
}

func (s *fileKVStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[key]
	return v, ok, nil
}

func (s *fileKVStore) Set(key, value string) error {
	if int64(len(value)) > s.quota {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hadPrev := s.items[key]
	s.items[key] = value

	if err := s.persist(); err != nil {
		// roll back so memory and disk stay consistent
		if hadPrev {
			s.items[key] = prev
		} else {
			delete(s.items, key)
		}
		return err
	}

	return nil
}

func (s *fileKVStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[key]; !ok {
		return nil
	}
	delete(s.items, key)

	return s.persist()
}

func (s *fileKVStore) Close() error {
	return nil
}
