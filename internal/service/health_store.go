package service

import (
	"context"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/store"
	"github.com/MKhiriev/health-companion/models"
)

// HealthStore is the application-facing facade over both cache-then-sync
// collections. It is the single entry point UI layers talk to: per-collection
// CRUD through the exported collection services, plus the cross-collection
// operations (status snapshot, forced sync, local wipe).
type HealthStore struct {
	Prescriptions *Collection[models.PrescriptionFields]
	Reminders     *Collection[models.ReminderFields]

	syncState *store.SyncStateStore
	conn      adapter.ConnectivityChecker
	log       *logger.Logger
}

func NewHealthStore(
	storages *store.ClientStorages,
	docs adapter.DocumentStore,
	blobs adapter.BlobStore,
	conn adapter.ConnectivityChecker,
	log *logger.Logger,
) *HealthStore {
	h := &HealthStore{
		syncState: storages.SyncState,
		conn:      conn,
		log:       log,
	}

	// each collection gets its own mutex; prescriptions and reminders never
	// contend with each other
	h.Prescriptions = newCollection(storages.Prescriptions, &collectionDeps{
		syncState: storages.SyncState,
		docs:      docs,
		blobs:     blobs,
		conn:      conn,
		log:       log,
	})
	h.Reminders = newCollection(storages.Reminders, &collectionDeps{
		syncState: storages.SyncState,
		docs:      docs,
		blobs:     blobs,
		conn:      conn,
		log:       log,
	})

	return h
}

// SyncStatus assembles the current snapshot: connectivity, pending counts per
// collection and the last successful pull stamps. Counts are computed by
// scanning the cache at call time, so the snapshot is always consistent with
// what a subsequent List would return.
func (h *HealthStore) SyncStatus() models.StatusSnapshot {
	snap := models.StatusSnapshot{
		Online:               h.conn.Online(),
		PendingPrescriptions: h.Prescriptions.CountPending(),
		PendingReminders:     h.Reminders.CountPending(),
		LastSync:             h.syncState.LastSync(),
	}
	snap.TotalPending = snap.PendingPrescriptions + snap.PendingReminders

	return snap
}

// ForceSyncAll pushes every pending record of ownerID in both collections,
// awaiting completion, and returns the per-collection tallies. It fails fast
// with ErrOffline when no connectivity is available; that is the only error
// it ever returns, individual push failures only show up in the tallies.
func (h *HealthStore) ForceSyncAll(ctx context.Context, ownerID string) (models.SyncOutcome, error) {
	if !h.conn.Online() {
		return models.SyncOutcome{}, ErrOffline
	}

	out := models.SyncOutcome{
		Prescriptions: h.Prescriptions.SyncOwned(ctx, ownerID),
		Reminders:     h.Reminders.SyncOwned(ctx, ownerID),
	}

	h.log.Info().Str("func", "HealthStore.ForceSyncAll").
		Int("prescriptions_ok", out.Prescriptions.Success).
		Int("prescriptions_failed", out.Prescriptions.Failed).
		Int("reminders_ok", out.Reminders.Success).
		Int("reminders_failed", out.Reminders.Failed).
		Msg("forced sync completed")
	return out, nil
}

// ClearLocal wipes ownerID's records from the local cache in both
// collections, typically on sign-out. Remote data is untouched and comes
// back on the next pull after sign-in.
func (h *HealthStore) ClearLocal(ownerID string) error {
	if err := h.Prescriptions.ClearOwned(ownerID); err != nil {
		return err
	}
	return h.Reminders.ClearOwned(ownerID)
}

// Wait blocks until every detached background sync in both collections has
// finished.
func (h *HealthStore) Wait() {
	h.Prescriptions.Wait()
	h.Reminders.Wait()
}
