package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/internal/store"
	"github.com/MKhiriev/health-companion/models"
)

// Reconciler moves one collection's records between the local cache and the
// remote document store. It owns the pull, push and remote-delete protocols;
// deciding when to run them is the collection service's job.
//
// All network calls run outside the collection mutex; only the local
// read-modify-write sequences hold it.
type Reconciler[F any] struct {
	records   *store.CollectionStore[F]
	syncState *store.SyncStateStore
	docs      adapter.DocumentStore
	blobs     adapter.BlobStore

	deps *collectionDeps
}

func newReconciler[F any](records *store.CollectionStore[F], deps *collectionDeps) *Reconciler[F] {
	return &Reconciler[F]{
		records:   records,
		syncState: deps.syncState,
		docs:      deps.docs,
		blobs:     deps.blobs,
		deps:      deps,
	}
}

// Pull fetches ownerID's documents from the remote store and merges them into
// the local cache. Merging is append-only and deduplicated by remote id:
// records already known locally are left untouched, so local pending edits
// always win over the remote copy. Pull is idempotent.
func (r *Reconciler[F]) Pull(ctx context.Context, ownerID string) error {
	log := r.deps.log
	collection := r.records.Name()

	remote, err := r.docs.QueryByOwner(ctx, collection, ownerID)
	if err != nil {
		log.Err(err).Str("func", "Reconciler.Pull").Str("collection", collection).
			Msg("remote query failed")
		return fmt.Errorf("pull %s: %w", collection, err)
	}

	r.deps.mu.Lock()
	defer r.deps.mu.Unlock()

	all := r.records.Load()
	known := make(map[string]struct{}, len(all))
	for _, rec := range all {
		if rec.RemoteID != "" {
			known[rec.RemoteID] = struct{}{}
		}
	}

	added := 0
	for _, doc := range remote {
		if _, ok := known[doc.ID]; ok {
			continue
		}
		all = append(all, documentToRecord[F](ownerID, doc))
		known[doc.ID] = struct{}{}
		added++
	}

	if added > 0 {
		if err = r.records.Save(all); err != nil {
			return fmt.Errorf("pull %s: %w", collection, err)
		}
	}

	r.syncState.RecordSyncCompleted(collection)
	log.Debug().Str("func", "Reconciler.Pull").Str("collection", collection).
		Int("remote", len(remote)).Int("merged", added).
		Msg("pull completed")
	return nil
}

// Push uploads one record to the remote store: the attachment blob first when
// it has never been uploaded, then the document itself, created or updated
// depending on whether the record already has a remote id. On success the
// local copy is marked synced; the local id is never rewritten. On failure
// the local copy is marked error and the error is returned.
func (r *Reconciler[F]) Push(ctx context.Context, rec models.Record[F]) (models.Record[F], error) {
	log := r.deps.log
	collection := r.records.Name()

	if rec.Attachment.PendingUpload() {
		if err := r.uploadAttachment(ctx, &rec); err != nil {
			r.markError(rec.ID)
			return rec, fmt.Errorf("push %s %s: %w", collection, rec.ID, err)
		}
	}

	doc, err := recordToDocument(rec)
	if err != nil {
		r.markError(rec.ID)
		return rec, fmt.Errorf("push %s %s: %w", collection, rec.ID, err)
	}

	remoteID := rec.RemoteID
	if remoteID == "" {
		remoteID, err = r.docs.CreateDocument(ctx, collection, doc)
	} else {
		err = r.docs.UpdateDocument(ctx, collection, remoteID, doc)
	}
	if err != nil {
		log.Err(err).Str("func", "Reconciler.Push").Str("collection", collection).
			Str("record_id", rec.ID).
			Msg("remote write failed")
		r.markError(rec.ID)
		return rec, fmt.Errorf("push %s %s: %w", collection, rec.ID, err)
	}

	rec.MarkSynced(remoteID)
	r.writeBack(rec)

	log.Debug().Str("func", "Reconciler.Push").Str("collection", collection).
		Str("record_id", rec.ID).Str("remote_id", remoteID).
		Msg("push completed")
	return rec, nil
}

// DeleteRemote removes a record's remote footprint: the blob first, then the
// document. Both calls are best-effort; failures are logged and swallowed
// because the local deletion has already happened and must not be undone. An
// orphaned remote copy reappears on a later pull, which is the accepted
// trade-off.
func (r *Reconciler[F]) DeleteRemote(ctx context.Context, rec models.Record[F]) {
	log := r.deps.log
	collection := r.records.Name()

	if att := rec.Attachment; att != nil && att.RemotePath != "" {
		if err := r.blobs.Delete(ctx, att.RemotePath); err != nil {
			log.Err(err).Str("func", "Reconciler.DeleteRemote").Str("collection", collection).
				Str("record_id", rec.ID).Str("blob_path", att.RemotePath).
				Msg("remote blob delete failed, continuing")
		}
	}

	if rec.RemoteID == "" {
		return
	}
	if err := r.docs.DeleteDocument(ctx, collection, rec.RemoteID); err != nil {
		log.Err(err).Str("func", "Reconciler.DeleteRemote").Str("collection", collection).
			Str("record_id", rec.ID).Str("remote_id", rec.RemoteID).
			Msg("remote document delete failed, record may reappear on pull")
	}
}

// uploadAttachment pushes the embedded attachment bytes to the blob store and
// fills in the durable URL and blob key on the record in place. The blob key
// follows `<collection>/<ownerId>/<timestamp>_<filename>`.
func (r *Reconciler[F]) uploadAttachment(ctx context.Context, rec *models.Record[F]) error {
	att := rec.Attachment

	data, contentType, err := att.Bytes()
	if err != nil {
		return fmt.Errorf("decode attachment %s: %w", att.FileName, err)
	}

	path := fmt.Sprintf("%s/%s/%d_%s", r.records.Name(), rec.OwnerID, time.Now().UnixMilli(), att.FileName)
	url, err := r.blobs.Upload(ctx, path, data, contentType)
	if err != nil {
		return fmt.Errorf("upload attachment %s: %w", att.FileName, err)
	}

	att.URL = url
	att.RemotePath = path
	return nil
}

// writeBack replaces the stored copy of rec, matched by local id. A record
// removed while its push was in flight stays removed.
func (r *Reconciler[F]) writeBack(rec models.Record[F]) {
	r.deps.mu.Lock()
	defer r.deps.mu.Unlock()

	all := r.records.Load()
	for i := range all {
		if all[i].ID == rec.ID {
			all[i] = rec
			_ = r.records.Save(all) // persistence failures are logged inside Save
			return
		}
	}
}

// markError flags the stored copy of the record as failed without touching
// anything else on it.
func (r *Reconciler[F]) markError(id string) {
	r.deps.mu.Lock()
	defer r.deps.mu.Unlock()

	all := r.records.Load()
	for i := range all {
		if all[i].ID == id {
			all[i].MarkError()
			_ = r.records.Save(all) // persistence failures are logged inside Save
			return
		}
	}
}
