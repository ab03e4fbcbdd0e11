// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import "errors"

var (
	// ErrUnauthorized is returned when the remote store rejects the bearer
	// token.
	ErrUnauthorized = errors.New("client unauthorized")
	// ErrNotFound is returned when the addressed document does not exist
	// remotely.
	ErrNotFound = errors.New("remote document not found")
)
