// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

//go:generate mockgen -destination=../mock/mock_store.go -package=mock github.com/MKhiriev/health-companion/internal/store KeyValueStore

// KeyValueStore is the synchronous string-keyed substrate backing the local
// record cache. Implementations enforce a practical per-value size quota and
// never suspend: every call runs to completion before returning.
type KeyValueStore interface {
	// Get returns the value stored under key. The second result is false when
	// the key is absent.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any previous value. Returns
	// [ErrQuotaExceeded] (wrapped) when value exceeds the store's quota.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is a no-op.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}
