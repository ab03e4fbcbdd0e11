// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/models"
)

// storageKeyPrefix namespaces every cache key this application writes.
const storageKeyPrefix = "health_companion_"

// CollectionStore persists one record collection on the key-value substrate.
// The whole collection is serialized under a single key; callers always
// replace the full collection, never patch it partially. It is generic over
// the domain payload so prescriptions and reminders share one implementation.
type CollectionStore[F any] struct {
	kv   KeyValueStore
	name string
	log  *logger.Logger
}

func NewCollectionStore[F any](kv KeyValueStore, name string, log *logger.Logger) *CollectionStore[F] {
	return &CollectionStore[F]{kv: kv, name: name, log: log}
}

// Name returns the collection name, which doubles as the remote collection
// identifier.
func (c *CollectionStore[F]) Name() string {
	return c.name
}

func (c *CollectionStore[F]) key() string {
	return storageKeyPrefix + c.name
}

// Load deserializes the persisted collection. An absent or corrupt value
// yields an empty slice; corruption is logged and swallowed because the
// cache is rebuilt from the remote store on the next pull.
func (c *CollectionStore[F]) Load() []models.Record[F] {
	raw, ok, err := c.kv.Get(c.key())
	if err != nil {
		c.log.Err(err).Str("func", "CollectionStore.Load").Str("collection", c.name).
			Msg("failed to read collection from local cache")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var records []models.Record[F]
	if err = json.Unmarshal([]byte(raw), &records); err != nil {
		c.log.Err(err).Str("func", "CollectionStore.Load").Str("collection", c.name).
			Msg("persisted collection is corrupt, returning empty")
		return nil
	}

	return records
}

// Save serializes and persists the full collection. Persistence failures
// (quota, substrate errors) are logged and returned; callers treat the cache
// as best-effort and must not assume durability.
func (c *CollectionStore[F]) Save(records []models.Record[F]) error {
	payload, err := json.Marshal(records)
	if err != nil {
		c.log.Err(err).Str("func", "CollectionStore.Save").Str("collection", c.name).
			Msg("failed to encode collection")
		return fmt.Errorf("encode collection %s: %w", c.name, err)
	}

	if err = c.kv.Set(c.key(), string(payload)); err != nil {
		c.log.Err(err).Str("func", "CollectionStore.Save").Str("collection", c.name).
			Int("records", len(records)).
			Msg("failed to persist collection")
		return fmt.Errorf("persist collection %s: %w", c.name, err)
	}

	return nil
}

// LoadOwned returns only the records belonging to ownerID. The owner filter
// is applied at every read boundary; cross-owner reads never occur.
func (c *CollectionStore[F]) LoadOwned(ownerID string) []models.Record[F] {
	all := c.Load()

	owned := make([]models.Record[F], 0, len(all))
	for _, r := range all {
		if r.OwnerID == ownerID {
			owned = append(owned, r)
		}
	}
	return owned
}

// PendingOwned returns ownerID's records whose status is pending.
func (c *CollectionStore[F]) PendingOwned(ownerID string) []models.Record[F] {
	owned := c.LoadOwned(ownerID)

	pending := make([]models.Record[F], 0, len(owned))
	for _, r := range owned {
		if r.SyncStatus == models.SyncPending {
			pending = append(pending, r)
		}
	}
	return pending
}

// CountPending counts pending records across all owners, for the status
// snapshot. The count is computed by scanning; no running counters exist.
func (c *CollectionStore[F]) CountPending() int {
	n := 0
	for _, r := range c.Load() {
		if r.SyncStatus == models.SyncPending {
			n++
		}
	}
	return n
}

// ClearOwned removes every record belonging to ownerID, keeping records of
// other owners intact.
func (c *CollectionStore[F]) ClearOwned(ownerID string) error {
	all := c.Load()

	kept := make([]models.Record[F], 0, len(all))
	for _, r := range all {
		if r.OwnerID != ownerID {
			kept = append(kept, r)
		}
	}
	return c.Save(kept)
}
