// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"time"

	"github.com/MKhiriev/health-companion/internal/logger"
)

const lastSyncKey = storageKeyPrefix + "last_sync"

// SyncStateStore keeps the per-collection timestamp of the last successful
// pull from the remote store. Per-record status lives on the records
// themselves; this store only stamps collection-level completion times.
type SyncStateStore struct {
	kv  KeyValueStore
	log *logger.Logger
}

func NewSyncStateStore(kv KeyValueStore, log *logger.Logger) *SyncStateStore {
	return &SyncStateStore{kv: kv, log: log}
}

// RecordSyncCompleted stamps the current time for collection. Persistence
// failures are logged and swallowed: a missing stamp only widens the next
// status snapshot, it never blocks a sync.
func (s *SyncStateStore) RecordSyncCompleted(collection string) {
	stamps := s.LastSync()
	stamps[collection] = time.Now().UTC()

	payload, err := json.Marshal(stamps)
	if err != nil {
		s.log.Err(err).Str("func", "SyncStateStore.RecordSyncCompleted").
			Str("collection", collection).Msg("failed to encode sync stamps")
		return
	}
	if err = s.kv.Set(lastSyncKey, string(payload)); err != nil {
		s.log.Err(err).Str("func", "SyncStateStore.RecordSyncCompleted").
			Str("collection", collection).Msg("failed to persist sync stamps")
	}
}

// LastSync returns the per-collection stamps of the last successful pulls.
// Absent or corrupt data yields an empty map.
func (s *SyncStateStore) LastSync() map[string]time.Time {
	stamps := make(map[string]time.Time)

	raw, ok, err := s.kv.Get(lastSyncKey)
	if err != nil || !ok || raw == "" {
		if err != nil {
			s.log.Err(err).Str("func", "SyncStateStore.LastSync").
				Msg("failed to read sync stamps")
		}
		return stamps
	}

	if err = json.Unmarshal([]byte(raw), &stamps); err != nil {
		s.log.Err(err).Str("func", "SyncStateStore.LastSync").
			Msg("sync stamps are corrupt, returning empty")
		return make(map[string]time.Time)
	}

	return stamps
}
