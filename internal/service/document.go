package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MKhiriev/health-companion/internal/adapter"
	"github.com/MKhiriev/health-companion/models"
)

// Reserved field names of the remote document schema. Everything else in a
// document belongs to the collection's domain payload.
const (
	docFieldOwnerID   = "ownerId"
	docFieldCreatedAt = "createdAt"
	docFieldUpdatedAt = "updatedAt"
	docFieldFileName  = "fileName"
	docFieldFileURL   = "fileURL"
	docFieldFilePath  = "filePath"
)

// recordToDocument flattens a record into the opaque field mapping the
// remote document store expects: the domain fields plus owner and timestamp
// metadata and, when present, the attachment's remote references. Local
// bookkeeping (id, syncStatus, localOnly, embedded data URI) never leaves
// the device.
func recordToDocument[F any](rec models.Record[F]) (adapter.Document, error) {
	doc, err := fieldsToDocument(rec.Fields)
	if err != nil {
		return nil, err
	}

	doc[docFieldOwnerID] = rec.OwnerID
	doc[docFieldCreatedAt] = rec.CreatedAt.Format(time.RFC3339)
	doc[docFieldUpdatedAt] = rec.UpdatedAt.Format(time.RFC3339)

	if att := rec.Attachment; att != nil {
		if att.FileName != "" {
			doc[docFieldFileName] = att.FileName
		}
		if att.URL != "" {
			doc[docFieldFileURL] = att.URL
		}
		if att.RemotePath != "" {
			doc[docFieldFilePath] = att.RemotePath
		}
	}

	return doc, nil
}

// documentToRecord synthesizes a local-shaped record from a remote document:
// already synced, not local-only, carrying the remote identifier as both the
// local and the remote id.
func documentToRecord[F any](ownerID string, doc adapter.RemoteDocument) models.Record[F] {
	fields, err := documentToFields[F](doc.Fields)
	if err != nil {
		// a malformed remote document still yields a usable envelope; the
		// zero payload is better than dropping the record silently
		var zero F
		fields = zero
	}

	rec := models.Record[F]{
		ID:         doc.ID,
		RemoteID:   doc.ID,
		OwnerID:    ownerID,
		CreatedAt:  docTime(doc.Fields, docFieldCreatedAt),
		UpdatedAt:  docTime(doc.Fields, docFieldUpdatedAt),
		SyncStatus: models.SyncSynced,
		LocalOnly:  false,
		Fields:     fields,
	}

	fileName, _ := doc.Fields[docFieldFileName].(string)
	fileURL, _ := doc.Fields[docFieldFileURL].(string)
	filePath, _ := doc.Fields[docFieldFilePath].(string)
	if fileName != "" || fileURL != "" || filePath != "" {
		rec.Attachment = &models.Attachment{
			FileName:   fileName,
			URL:        fileURL,
			RemotePath: filePath,
		}
	}

	return rec
}

// fieldsToDocument converts a typed domain payload into an opaque field
// mapping via its JSON representation.
func fieldsToDocument[F any](fields F) (adapter.Document, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("encode domain fields: %w", err)
	}

	doc := make(adapter.Document)
	if err = json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode domain fields: %w", err)
	}
	return doc, nil
}

// documentToFields converts an opaque field mapping back into the typed
// domain payload, ignoring fields the payload does not declare.
func documentToFields[F any](doc adapter.Document) (F, error) {
	var fields F

	raw, err := json.Marshal(doc)
	if err != nil {
		return fields, fmt.Errorf("encode remote document: %w", err)
	}
	if err = json.Unmarshal(raw, &fields); err != nil {
		return fields, fmt.Errorf("decode remote document: %w", err)
	}
	return fields, nil
}

func docTime(doc adapter.Document, key string) time.Time {
	if s, ok := doc[key].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
