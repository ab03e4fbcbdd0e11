// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func parseFlagsWithArgs(t *testing.T, args ...string) *StructuredConfig {
	t.Helper()

	// Reset flag.CommandLine for each test
	flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ContinueOnError)

	oldArgs := os.Args
	os.Args = append([]string{"cmd"}, args...)
	t.Cleanup(func() { os.Args = oldArgs })

	return ParseFlags()
}

func TestParseFlags_AllFlags(t *testing.T) {
	cfg := parseFlagsWithArgs(t,
		"-cache-path", "/tmp/cache.json",
		"-storage-driver", "sqlite",
		"-remote-url", "https://sync.example.com",
		"-request-timeout", "30s",
		"-sync-interval", "2m",
		"-blob-bucket", "attachments",
		"-blob-region", "eu-west-1",
		"-blob-endpoint", "http://minio:9000",
		"-assistant-model", "claude-sonnet-4-0",
		"-labels-url", "https://api.fda.gov",
		"-config", "/path/to/config.json",
	)

	assert.Equal(t, "/tmp/cache.json", cfg.Storage.CachePath)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "https://sync.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, "attachments", cfg.Remote.Blob.Bucket)
	assert.Equal(t, "eu-west-1", cfg.Remote.Blob.Region)
	assert.Equal(t, "http://minio:9000", cfg.Remote.Blob.Endpoint)
	assert.Equal(t, "claude-sonnet-4-0", cfg.Assistant.Model)
	assert.Equal(t, "https://api.fda.gov", cfg.Labels.BaseURL)
	assert.Equal(t, "/path/to/config.json", cfg.JSONFilePath)
}

func TestParseFlags_ShortConfigAlias(t *testing.T) {
	cfg := parseFlagsWithArgs(t, "-c", "/short/config.json")

	assert.Equal(t, "/short/config.json", cfg.JSONFilePath)
}

func TestParseFlags_NoFlags(t *testing.T) {
	cfg := parseFlagsWithArgs(t)

	assert.Empty(t, cfg.Storage.CachePath)
	assert.Empty(t, cfg.Remote.BaseURL)
	assert.Zero(t, cfg.Workers.SyncInterval)
	assert.Empty(t, cfg.JSONFilePath)
}
