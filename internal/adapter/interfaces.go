// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for the remote
// collaborators the sync core depends on: the remote document store, the
// remote blob store, and the connectivity signal.
//
// The sync core only ever talks to these interfaces; the shipped
// implementations are an HTTP/REST document store ([NewHTTPDocumentStore])
// and an S3-compatible blob store ([NewS3BlobStore]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling.
package adapter

import "context"

//go:generate mockgen -destination=../mock/mock_adapter.go -package=mock github.com/MKhiriev/health-companion/internal/adapter DocumentStore,BlobStore,ConnectivityChecker

// Document is an opaque field mapping sent to or received from the remote
// document store. The core assumes nothing about the wire format beyond
// field names matching the record's domain fields.
type Document map[string]any

// RemoteDocument is a document together with the identifier the remote
// store assigned to it.
type RemoteDocument struct {
	ID     string   `json:"id"`
	Fields Document `json:"fields"`
}

// DocumentStore is the narrow contract against the remote document store.
type DocumentStore interface {
	// QueryByOwner returns all documents of collection owned by ownerID.
	QueryByOwner(ctx context.Context, collection, ownerID string) ([]RemoteDocument, error)

	// CreateDocument persists a new document and returns the identifier the
	// remote store assigned to it.
	CreateDocument(ctx context.Context, collection string, fields Document) (string, error)

	// UpdateDocument replaces the fields of the document identified by
	// remoteID.
	UpdateDocument(ctx context.Context, collection, remoteID string, fields Document) error

	// DeleteDocument removes the document identified by remoteID.
	DeleteDocument(ctx context.Context, collection, remoteID string) error
}

// BlobStore is the narrow contract against the remote blob store used for
// file attachments.
type BlobStore interface {
	// Upload stores data under the caller-constructed path
	// (`<collection>/<ownerId>/<timestamp>_<filename>`) and returns a durable
	// reference URL.
	Upload(ctx context.Context, path string, data []byte, contentType string) (string, error)

	// Delete removes the blob stored under path.
	Delete(ctx context.Context, path string) error
}

// ConnectivityChecker reports whether the device currently has network
// connectivity. It is consulted before each opportunistic sync trigger.
type ConnectivityChecker interface {
	Online() bool
}
