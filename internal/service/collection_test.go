package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/internal/logger"
	"github.com/MKhiriev/health-companion/internal/mock"
	"github.com/MKhiriev/health-companion/internal/store"
	"github.com/MKhiriev/health-companion/models"
)

// flipConn is a connectivity stub whose answer can change mid-test, for
// offline-then-online scenarios.
type flipConn struct {
	mu     sync.Mutex
	online bool
}

func (f *flipConn) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *flipConn) set(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = online
}

func newTestStorages(t *testing.T) *store.ClientStorages {
	t.Helper()
	kv := store.NewFileKVStore("", 0, logger.Nop())
	return &store.ClientStorages{
		Prescriptions: store.NewCollectionStore[models.PrescriptionFields](kv, models.CollectionPrescriptions, logger.Nop()),
		Reminders:     store.NewCollectionStore[models.ReminderFields](kv, models.CollectionReminders, logger.Nop()),
		SyncState:     store.NewSyncStateStore(kv, logger.Nop()),
		KV:            kv,
	}
}

func newTestHealthStore(
	t *testing.T,
	ctrl *gomock.Controller,
	conn adapter.ConnectivityChecker,
) (*HealthStore, *mock.MockDocumentStore, *mock.MockBlobStore) {
	t.Helper()

	docs := mock.NewMockDocumentStore(ctrl)
	blobs := mock.NewMockBlobStore(ctrl)
	h := NewHealthStore(newTestStorages(t), docs, blobs, conn, logger.Nop())

	return h, docs, blobs
}

const owner = "owner-1"

// ── Create ───────────────────────────────────────────────────────────────────

func TestCollection_Create_Offline_ReadYourWrites(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(false))
	ctx := context.Background()

	rec, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(rec.ID, "local_"))
	assert.Equal(t, models.SyncPending, rec.SyncStatus)
	assert.True(t, rec.LocalOnly)
	assert.Empty(t, rec.RemoteID)

	// the new record is visible to the very next read, no sync needed
	listed := h.Prescriptions.List(ctx, owner)
	require.Len(t, listed, 1)
	assert.Equal(t, rec.ID, listed[0].ID)
}

func TestCollection_Create_Online_DetachedPushMarksSynced(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	docs.EXPECT().
		CreateDocument(gomock.Any(), models.CollectionPrescriptions, gomock.Any()).
		Return("remote-1", nil)

	rec, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)
	require.NoError(t, err)

	// the caller gets the optimistic copy back before the push settles
	assert.Equal(t, models.SyncPending, rec.SyncStatus)

	h.Prescriptions.Wait()

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID, "local id survives the push")
	assert.Equal(t, "remote-1", stored[0].RemoteID)
	assert.Equal(t, models.SyncSynced, stored[0].SyncStatus)
	assert.False(t, stored[0].LocalOnly)
}

func TestCollection_Create_Online_PushFailureMarksError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	docs.EXPECT().
		CreateDocument(gomock.Any(), models.CollectionPrescriptions, gomock.Any()).
		Return("", errors.New("server unavailable"))

	rec, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{MedicationName: "Aspirin"}, nil)
	require.NoError(t, err, "a failed push never fails the local write")

	h.Prescriptions.Wait()

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 1)
	assert.Equal(t, rec.ID, stored[0].ID)
	assert.Equal(t, models.SyncError, stored[0].SyncStatus)
	assert.True(t, stored[0].LocalOnly, "local-only downgrades only on success")
}

// ── Update ───────────────────────────────────────────────────────────────────

func TestCollection_Update_PatchesFieldsAndGoesPendingAgain(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	conn := &flipConn{}
	h, docs, _ := newTestHealthStore(t, ctrl, conn)
	ctx := context.Background()

	rec, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{
		MedicationName: "Metformin",
		Dosage:         "500mg",
		PrescribedBy:   "Dr. Lee",
	}, nil)
	require.NoError(t, err)

	conn.set(true)
	docs.EXPECT().
		UpdateDocument(gomock.Any(), models.CollectionPrescriptions, "remote-7", gomock.Any()).
		Return(nil)

	// simulate an earlier successful push so the update re-pushes
	all := h.Prescriptions.records.Load()
	all[0].MarkSynced("remote-7")
	require.NoError(t, h.Prescriptions.records.Save(all))

	updated, err := h.Prescriptions.Update(ctx, owner, rec.ID, models.PrescriptionFields{Dosage: "850mg"})
	require.NoError(t, err)

	assert.Equal(t, "850mg", updated.Fields.Dosage)
	assert.Equal(t, "Metformin", updated.Fields.MedicationName, "unpatched fields survive")
	assert.Equal(t, "Dr. Lee", updated.Fields.PrescribedBy)
	assert.Equal(t, models.SyncPending, updated.SyncStatus)
	assert.True(t, updated.UpdatedAt.After(rec.UpdatedAt) || updated.UpdatedAt.Equal(rec.UpdatedAt))

	h.Prescriptions.Wait()

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 1)
	assert.Equal(t, models.SyncSynced, stored[0].SyncStatus)
	assert.Equal(t, "remote-7", stored[0].RemoteID, "update never changes the remote id")
}

func TestCollection_Update_LocalOnlyRecordIsNotRePushed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(false))
	ctx := context.Background()

	rec, err := h.Reminders.Create(ctx, owner, models.ReminderFields{MedicineName: "Aspirin", Frequency: "daily"}, nil)
	require.NoError(t, err)

	// no document-store expectations: nothing may hit the network
	updated, err := h.Reminders.Update(ctx, owner, rec.ID, models.ReminderFields{Dosage: "100mg"})
	require.NoError(t, err)

	h.Reminders.Wait()
	assert.Equal(t, "100mg", updated.Fields.Dosage)
	assert.Equal(t, "daily", updated.Fields.Frequency)
	assert.True(t, updated.LocalOnly)
}

func TestCollection_Update_UnknownID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(false))

	_, err := h.Prescriptions.Update(context.Background(), owner, "nope", models.PrescriptionFields{})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestCollection_Update_OtherOwnersRecordIsInvisible(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(false))
	ctx := context.Background()

	rec, err := h.Prescriptions.Create(ctx, "owner-2", models.PrescriptionFields{MedicationName: "Aspirin"}, nil)
	require.NoError(t, err)

	_, err = h.Prescriptions.Update(ctx, owner, rec.ID, models.PrescriptionFields{Dosage: "wrong"})
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

// ── Remove ───────────────────────────────────────────────────────────────────

func TestCollection_Remove_LocalOnly_NoRemoteCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	// created while offline, so it never reached the remote store
	all := []models.Prescription{models.NewRecord(owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)}
	require.NoError(t, h.Prescriptions.records.Save(all))

	require.NoError(t, h.Prescriptions.Remove(ctx, owner, all[0].ID))
	h.Prescriptions.Wait()

	assert.Empty(t, h.Prescriptions.records.LoadOwned(owner))
}

func TestCollection_Remove_Synced_TriggersBestEffortRemoteDelete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	rec := models.NewRecord(owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)
	rec.MarkSynced("remote-3")
	require.NoError(t, h.Prescriptions.records.Save([]models.Prescription{rec}))

	docs.EXPECT().
		DeleteDocument(gomock.Any(), models.CollectionPrescriptions, "remote-3").
		Return(errors.New("remote rejected delete"))

	require.NoError(t, h.Prescriptions.Remove(ctx, owner, rec.ID), "remote failure is swallowed")
	h.Prescriptions.Wait()

	assert.Empty(t, h.Prescriptions.records.LoadOwned(owner), "local deletion stands")
}

func TestCollection_Remove_UnknownID_IsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))

	require.NoError(t, h.Prescriptions.Remove(context.Background(), owner, "never-existed"))
}

// ── Pull ─────────────────────────────────────────────────────────────────────

func TestCollection_Pull_MergesByRemoteID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	known := models.NewRecord(owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)
	known.MarkSynced("remote-1")
	require.NoError(t, h.Prescriptions.records.Save([]models.Prescription{known}))

	remote := []adapter.RemoteDocument{
		{ID: "remote-1", Fields: adapter.Document{"medicationName": "Ibuprofen HACKED"}},
		{ID: "remote-2", Fields: adapter.Document{"medicationName": "Aspirin", "ownerId": owner}},
	}
	docs.EXPECT().
		QueryByOwner(gomock.Any(), models.CollectionPrescriptions, owner).
		Return(remote, nil).
		Times(2)

	require.NoError(t, h.Prescriptions.Pull(ctx, owner))

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 2)

	byRemote := make(map[string]models.Prescription, len(stored))
	for _, r := range stored {
		byRemote[r.RemoteID] = r
	}
	assert.Equal(t, "Ibuprofen", byRemote["remote-1"].Fields.MedicationName,
		"local copy wins over the remote one")
	assert.Equal(t, "Aspirin", byRemote["remote-2"].Fields.MedicationName)
	assert.Equal(t, models.SyncSynced, byRemote["remote-2"].SyncStatus)
	assert.False(t, byRemote["remote-2"].LocalOnly)
	assert.Equal(t, "remote-2", byRemote["remote-2"].ID, "pulled records adopt the remote id locally")

	// pulling again must not duplicate anything
	require.NoError(t, h.Prescriptions.Pull(ctx, owner))
	assert.Len(t, h.Prescriptions.records.LoadOwned(owner), 2)

	assert.Contains(t, h.SyncStatus().LastSync, models.CollectionPrescriptions)
}

func TestCollection_Pull_QueryFailureLeavesCacheUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, _ := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	rec := models.NewRecord(owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, nil)
	require.NoError(t, h.Prescriptions.records.Save([]models.Prescription{rec}))

	docs.EXPECT().
		QueryByOwner(gomock.Any(), models.CollectionPrescriptions, owner).
		Return(nil, errors.New("network down"))

	require.Error(t, h.Prescriptions.Pull(ctx, owner))

	assert.Len(t, h.Prescriptions.records.LoadOwned(owner), 1)
	assert.NotContains(t, h.SyncStatus().LastSync, models.CollectionPrescriptions,
		"a failed pull is not stamped")
}

// ── Attachments ──────────────────────────────────────────────────────────────

func TestCollection_Push_UploadsAttachmentBeforeDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, blobs := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	att := models.NewAttachment("scan.pdf", "application/pdf", []byte("pdf-bytes"))

	gomock.InOrder(
		blobs.EXPECT().
			Upload(gomock.Any(), gomock.Any(), []byte("pdf-bytes"), "application/pdf").
			DoAndReturn(func(_ context.Context, path string, _ []byte, _ string) (string, error) {
				assert.True(t, strings.HasPrefix(path, models.CollectionPrescriptions+"/"+owner+"/"))
				assert.True(t, strings.HasSuffix(path, "_scan.pdf"))
				return "https://blobs.example.com/" + path, nil
			}),
		docs.EXPECT().
			CreateDocument(gomock.Any(), models.CollectionPrescriptions, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, doc adapter.Document) (string, error) {
				assert.Equal(t, "scan.pdf", doc["fileName"])
				assert.NotEmpty(t, doc["fileURL"])
				assert.NotEmpty(t, doc["filePath"])
				assert.NotContains(t, doc, "dataUri", "raw bytes never leave the device")
				return "remote-9", nil
			}),
	)

	_, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, att)
	require.NoError(t, err)
	h.Prescriptions.Wait()

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 1)
	require.NotNil(t, stored[0].Attachment)
	assert.NotEmpty(t, stored[0].Attachment.URL)
	assert.NotEmpty(t, stored[0].Attachment.RemotePath)
	assert.Equal(t, models.SyncSynced, stored[0].SyncStatus)
}

func TestCollection_Push_BlobFailureMarksErrorAndSkipsDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, _, blobs := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	blobs.EXPECT().
		Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return("", errors.New("bucket unavailable"))

	att := models.NewAttachment("scan.pdf", "application/pdf", []byte("pdf-bytes"))
	_, err := h.Prescriptions.Create(ctx, owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, att)
	require.NoError(t, err)
	h.Prescriptions.Wait()

	stored := h.Prescriptions.records.LoadOwned(owner)
	require.Len(t, stored, 1)
	assert.Equal(t, models.SyncError, stored[0].SyncStatus)
	assert.Empty(t, stored[0].RemoteID)
}

func TestCollection_Remove_DeletesBlobThenDocument(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h, docs, blobs := newTestHealthStore(t, ctrl, adapter.StaticConnectivity(true))
	ctx := context.Background()

	rec := models.NewRecord(owner, models.PrescriptionFields{MedicationName: "Ibuprofen"}, &models.Attachment{
		FileName:   "scan.pdf",
		URL:        "https://blobs.example.com/prescriptions/owner-1/1_scan.pdf",
		RemotePath: "prescriptions/owner-1/1_scan.pdf",
	})
	rec.MarkSynced("remote-4")
	require.NoError(t, h.Prescriptions.records.Save([]models.Prescription{rec}))

	gomock.InOrder(
		blobs.EXPECT().Delete(gomock.Any(), "prescriptions/owner-1/1_scan.pdf").Return(nil),
		docs.EXPECT().DeleteDocument(gomock.Any(), models.CollectionPrescriptions, "remote-4").Return(nil),
	)

	require.NoError(t, h.Prescriptions.Remove(ctx, owner, rec.ID))
	h.Prescriptions.Wait()
}
