package service

import (
	"context"
	"fmt"
	"sync"

	"dario.cat/mergo"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/store"
	"github.com/MKhiriev/health-companion/models"
)

// collectionDeps holds the dependencies shared by a collection service and
// its reconciler, including the mutex that serializes every read-modify-write
// of the persisted collection.
type collectionDeps struct {
	mu        sync.Mutex
	syncState *store.SyncStateStore
	docs      adapter.DocumentStore
	blobs     adapter.BlobStore
	conn      adapter.ConnectivityChecker
	log       *logger.Logger
}

// Collection is the cache-then-sync service for one record collection. Reads
// and writes complete synchronously against the local cache; when the device
// is online, each operation additionally fires a detached background sync
// that the caller never waits on.
type Collection[F any] struct {
	records *store.CollectionStore[F]
	rec     *Reconciler[F]
	deps    *collectionDeps

	// detached tracks in-flight background syncs so tests and shutdown can
	// wait for them to settle.
	detached sync.WaitGroup
}

func newCollection[F any](records *store.CollectionStore[F], deps *collectionDeps) *Collection[F] {
	return &Collection[F]{
		records: records,
		rec:     newReconciler(records, deps),
		deps:    deps,
	}
}

// List returns ownerID's records from the local cache, immediately. When
// online it also kicks off a detached pull so remote changes land in the
// cache for subsequent reads; the current call never reflects them.
func (c *Collection[F]) List(ctx context.Context, ownerID string) []models.Record[F] {
	c.deps.mu.Lock()
	owned := c.records.LoadOwned(ownerID)
	c.deps.mu.Unlock()

	if c.deps.conn.Online() {
		c.spawn(ctx, func(ctx context.Context) {
			_ = c.rec.Pull(ctx, ownerID) // failures logged inside Pull
		})
	}

	return owned
}

// Create stores a new record locally with a freshly generated local id and
// returns it at once. When online, a detached push uploads it; until that
// push succeeds the record stays pending and local-only.
func (c *Collection[F]) Create(ctx context.Context, ownerID string, fields F, attachment *models.Attachment) (models.Record[F], error) {
	rec := models.NewRecord(ownerID, fields, attachment)

	c.deps.mu.Lock()
	all := c.records.Load()
	all = append(all, rec)
	err := c.records.Save(all)
	c.deps.mu.Unlock()
	if err != nil {
		return rec, fmt.Errorf("create %s record: %w", c.records.Name(), err)
	}

	c.syncDetached(ctx, rec)
	return rec, nil
}

// Update merges patch into the record's domain fields: non-zero fields of
// patch overwrite, zero fields leave the current value alone. The record is
// stamped pending again and, when it has been synced before, re-pushed in
// the background. A still-local-only record is not re-pushed here; its
// pending create push or the next full sync covers it.
func (c *Collection[F]) Update(ctx context.Context, ownerID, id string, patch F) (models.Record[F], error) {
	c.deps.mu.Lock()
	all := c.records.Load()

	idx := -1
	for i := range all {
		if all[i].ID == id && all[i].OwnerID == ownerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.deps.mu.Unlock()
		return models.Record[F]{}, fmt.Errorf("update %s record %s: %w", c.records.Name(), id, store.ErrRecordNotFound)
	}

	if err := mergo.Merge(&all[idx].Fields, patch, mergo.WithOverride); err != nil {
		c.deps.mu.Unlock()
		return models.Record[F]{}, fmt.Errorf("update %s record %s: %w", c.records.Name(), id, err)
	}
	all[idx].Touch()
	updated := all[idx]

	err := c.records.Save(all)
	c.deps.mu.Unlock()
	if err != nil {
		return updated, fmt.Errorf("update %s record %s: %w", c.records.Name(), id, err)
	}

	if !updated.LocalOnly {
		c.syncDetached(ctx, updated)
	}
	return updated, nil
}

// Remove deletes the record from the local cache immediately. If the record
// had already reached the remote store, a detached best-effort cleanup
// removes the remote copy and its blob; cleanup failures are swallowed and
// the local deletion stands. Removing an unknown id is a no-op.
func (c *Collection[F]) Remove(ctx context.Context, ownerID, id string) error {
	c.deps.mu.Lock()
	all := c.records.Load()

	var removed *models.Record[F]
	kept := make([]models.Record[F], 0, len(all))
	for i := range all {
		if all[i].ID == id && all[i].OwnerID == ownerID {
			r := all[i]
			removed = &r
			continue
		}
		kept = append(kept, all[i])
	}
	if removed == nil {
		c.deps.mu.Unlock()
		return nil
	}

	err := c.records.Save(kept)
	c.deps.mu.Unlock()
	if err != nil {
		return fmt.Errorf("remove %s record %s: %w", c.records.Name(), id, err)
	}

	if !removed.LocalOnly && c.deps.conn.Online() {
		rec := *removed
		c.spawn(ctx, func(ctx context.Context) {
			c.rec.DeleteRemote(ctx, rec)
		})
	}
	return nil
}

// SyncOwned pushes every pending record of ownerID, awaiting each push, and
// returns the success/failure tally. Individual push failures are reflected
// in the tally and on the records themselves, never as an error.
func (c *Collection[F]) SyncOwned(ctx context.Context, ownerID string) models.CollectionOutcome {
	c.deps.mu.Lock()
	pending := c.records.PendingOwned(ownerID)
	c.deps.mu.Unlock()

	var out models.CollectionOutcome
	for _, rec := range pending {
		if _, err := c.rec.Push(ctx, rec); err != nil {
			out.Failed++
			continue
		}
		out.Success++
	}
	return out
}

// Pull runs one awaited pull of ownerID's remote records into the cache.
func (c *Collection[F]) Pull(ctx context.Context, ownerID string) error {
	return c.rec.Pull(ctx, ownerID)
}

// CountPending reports the number of pending records across all owners.
func (c *Collection[F]) CountPending() int {
	c.deps.mu.Lock()
	defer c.deps.mu.Unlock()
	return c.records.CountPending()
}

// ClearOwned drops all of ownerID's records from the local cache. The remote
// store is left untouched.
func (c *Collection[F]) ClearOwned(ownerID string) error {
	c.deps.mu.Lock()
	defer c.deps.mu.Unlock()
	return c.records.ClearOwned(ownerID)
}

// Wait blocks until all detached background syncs spawned so far have
// finished. Used by tests and graceful shutdown.
func (c *Collection[F]) Wait() {
	c.detached.Wait()
}

// syncDetached fires a background push for rec when online. The push is
// never awaited; its outcome is visible only through the record's sync
// status.
func (c *Collection[F]) syncDetached(ctx context.Context, rec models.Record[F]) {
	if !c.deps.conn.Online() {
		return
	}
	c.spawn(ctx, func(ctx context.Context) {
		_, _ = c.rec.Push(ctx, rec) // failures logged inside Push
	})
}

// spawn runs fn on a goroutine detached from the caller's cancellation:
// a background sync outlives the request that triggered it.
func (c *Collection[F]) spawn(ctx context.Context, fn func(context.Context)) {
	ctx = context.WithoutCancel(ctx)
	c.detached.Add(1)
	go func() {
		defer c.detached.Done()
		fn(ctx)
	}()
}
