package models

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// SyncStatus is the per-record synchronisation lifecycle flag.
type SyncStatus string

const (
	// SyncPending marks a record that was created or mutated locally and has
	// not yet completed a round-trip to the remote store.
	SyncPending SyncStatus = "pending"
	// SyncSynced marks a record whose latest local state is confirmed
	// persisted remotely.
	SyncSynced SyncStatus = "synced"
	// SyncError marks a record whose most recent push attempt failed. The
	// record stays fully usable locally and is retried on the next sync.
	SyncError SyncStatus = "error"
)

// Collection names shared between local storage keys and remote collections.
const (
	CollectionPrescriptions = "prescriptions"
	CollectionReminders     = "reminders"
)

// Record is the sync envelope wrapped around every locally cached entity.
// The domain payload F differs per collection (prescriptions, reminders);
// the bookkeeping fields are identical and are managed exclusively by the
// storage and sync layers.
type Record[F any] struct {
	// ID is the locally generated identifier. Assigned once at creation and
	// never reused, even after deletion.
	ID string `json:"id"`
	// RemoteID is the identifier assigned by the remote document store.
	// Empty until the first successful push.
	RemoteID string `json:"remoteId,omitempty"`
	// OwnerID scopes the record to the authenticated user. Every read and
	// write is filtered by it.
	OwnerID string `json:"ownerId"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	SyncStatus SyncStatus `json:"syncStatus"`
	// LocalOnly is true until RemoteID is assigned. It downgrades to false
	// exactly once and never reverts.
	LocalOnly bool `json:"localOnly"`

	Attachment *Attachment `json:"attachment,omitempty"`

	Fields F `json:"fields"`
}

// NewRecord builds a freshly created, not-yet-synced record owned by ownerID.
func NewRecord[F any](ownerID string, fields F, attachment *Attachment) Record[F] {
	now := time.Now().UTC()
	return Record[F]{
		ID:         NewLocalID(now),
		OwnerID:    ownerID,
		CreatedAt:  now,
		UpdatedAt:  now,
		SyncStatus: SyncPending,
		LocalOnly:  true,
		Attachment: attachment,
		Fields:     fields,
	}
}

// Touch stamps a local mutation: the record needs syncing again.
func (r *Record[F]) Touch() {
	r.UpdatedAt = time.Now().UTC()
	r.SyncStatus = SyncPending
}

// MarkSynced records a confirmed round-trip to the remote store.
func (r *Record[F]) MarkSynced(remoteID string) {
	if remoteID != "" {
		r.RemoteID = remoteID
	}
	r.SyncStatus = SyncSynced
	r.LocalOnly = false
}

// MarkError records a failed push attempt. RemoteID is kept as is.
func (r *Record[F]) MarkError() {
	r.SyncStatus = SyncError
}

const localIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewLocalID generates a client-side record identifier from a millisecond
// timestamp and a random suffix, matching the `local_<ts>_<suffix>` scheme.
func NewLocalID(now time.Time) string {
	suffix := make([]byte, 9)
	for i := range suffix {
		suffix[i] = localIDAlphabet[rand.IntN(len(localIDAlphabet))]
	}
	return fmt.Sprintf("local_%d_%s", now.UnixMilli(), suffix)
}
