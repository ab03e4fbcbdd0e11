// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"fmt"

	"github.com/MKhiriev/health-companion/internal/config"
	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/models"
)

// ClientStorages groups all local storage components into a single value
// that can be passed around the service layer. The two collection stores and
// the sync-state store share one key-value substrate.
type ClientStorages struct {
	// Prescriptions is the local prescription collection.
	Prescriptions *CollectionStore[models.PrescriptionFields]
	// Reminders is the local reminder collection.
	Reminders *CollectionStore[models.ReminderFields]
	// SyncState tracks per-collection last-pull timestamps.
	SyncState *SyncStateStore
	// KV is the shared substrate, exposed for auxiliary caches such as the
	// drug-label cache.
	KV KeyValueStore
}

// NewClientStorages initialises the local storage layer using the supplied
// configuration and logger. The substrate implementation is chosen by
// cfg.Driver: "file" (JSON file, the default) or "sqlite".
func NewClientStorages(cfg config.Storage, log *logger.Logger) (*ClientStorages, error) {
	log.Info().Str("driver", cfg.Driver).Str("path", cfg.CachePath).
		Msg("creating local storages...")

	var kv KeyValueStore
	var err error

	switch cfg.Driver {
	case "sqlite":
		kv, err = NewSQLiteKVStore(cfg.CachePath, cfg.QuotaBytes, log)
		if err != nil {
			return nil, fmt.Errorf("sqlite cache init error: %w", err)
		}
	default:
		kv = NewFileKVStore(cfg.CachePath, cfg.QuotaBytes, log)
	}

	return &ClientStorages{
		Prescriptions: NewCollectionStore[models.PrescriptionFields](kv, models.CollectionPrescriptions, log),
		Reminders:     NewCollectionStore[models.ReminderFields](kv, models.CollectionReminders, log),
		SyncState:     NewSyncStateStore(kv, log),
		KV:            kv,
	}, nil
}

// Close releases the underlying substrate.
func (s *ClientStorages) Close() error {
	return s.KV.Close()
}
