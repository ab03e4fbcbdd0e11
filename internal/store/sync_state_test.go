// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/models"
)

func TestSyncStateStore_StampsPerCollection(t *testing.T) {
	kv := NewFileKVStore("", 0, logger.Nop())
	s := NewSyncStateStore(kv, logger.Nop())

	assert.Empty(t, s.LastSync())

	before := time.Now().UTC()
	s.RecordSyncCompleted(models.CollectionPrescriptions)

	stamps := s.LastSync()
	require.Contains(t, stamps, models.CollectionPrescriptions)
	assert.False(t, stamps[models.CollectionPrescriptions].Before(before))
	assert.NotContains(t, stamps, models.CollectionReminders)

	s.RecordSyncCompleted(models.CollectionReminders)
	stamps = s.LastSync()
	assert.Len(t, stamps, 2)
}

func TestSyncStateStore_CorruptStampsYieldEmpty(t *testing.T) {
	kv := NewFileKVStore("", 0, logger.Nop())
	require.NoError(t, kv.Set(lastSyncKey, "not json"))

	s := NewSyncStateStore(kv, logger.Nop())
	assert.Empty(t, s.LastSync())
}
