// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	log := NewLogger("test-role")
	require.NotNil(t, log)

	// must not panic
	log.Debug().Msg("debug message")
	log.Info().Str("key", "value").Msg("info message")
}

func TestNop(t *testing.T) {
	log := Nop()
	require.NotNil(t, log)
	log.Error().Msg("discarded")
}

func TestFromContext_RoundTrip(t *testing.T) {
	log := Nop()
	ctx := log.WithContext(context.Background())

	got := FromContext(ctx)
	assert.NotNil(t, got)
}

func TestFromContext_NoLoggerAttached(t *testing.T) {
	got := FromContext(context.Background())
	require.NotNil(t, got)
	got.Info().Msg("global logger fallback")
}
