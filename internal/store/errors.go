// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import "errors"

var (
	// ErrQuotaExceeded is returned by KeyValueStore.Set when a value is
	// larger than the substrate's size quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrRecordNotFound is returned when an id does not match any record in
	// the owner's collection.
	ErrRecordNotFound = errors.New("record not found")
)
