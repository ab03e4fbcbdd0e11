// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container for the
// health-companion client. It is populated by merging values from
// environment variables, command-line flags, and an optional JSON file.
//
// Struct tags:
//   - envPrefix — prefix applied to all nested env tag lookups (caarlos0/env).
//   - env       — direct environment variable name for scalar fields.
type StructuredConfig struct {
	// Storage holds the local cache substrate settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Remote holds the remote document store and blob store settings.
	Remote Remote `envPrefix:"REMOTE_"`

	// Workers holds background sync job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Assistant holds the generative completion API settings used by the
	// medicine assistant.
	Assistant Assistant `envPrefix:"ASSISTANT_"`

	// Labels holds the drug-label lookup API settings.
	Labels Labels `envPrefix:"LABELS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage holds settings for the local key-value cache substrate.
type Storage struct {
	// CachePath is the file path the local cache is persisted under. For the
	// sqlite driver it is the database file; for the file driver it is a
	// JSON file.
	// Env: STORAGE_CACHE_PATH
	CachePath string `env:"CACHE_PATH"`

	// Driver selects the substrate implementation: "file" or "sqlite".
	// Env: STORAGE_DRIVER
	Driver string `env:"DRIVER"`

	// QuotaBytes caps the serialized size of a single stored value. Writes
	// above the quota fail the same way a full browser storage would.
	// Zero means the default quota.
	// Env: STORAGE_QUOTA_BYTES
	QuotaBytes int64 `env:"QUOTA_BYTES"`
}

// Remote holds settings for the remote persistence collaborators.
type Remote struct {
	// BaseURL is the HTTP endpoint of the remote document store.
	// Env: REMOTE_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// RequestTimeout is the timeout for outbound remote-store requests
	// (e.g. "15s"). This layer imposes no other timeouts of its own.
	// Env: REMOTE_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// Blob holds the S3-compatible blob store settings.
	Blob Blob `envPrefix:"BLOB_"`
}

// Blob holds connection settings for the S3-compatible blob store used for
// prescription file attachments.
type Blob struct {
	// Region is the S3 region name.
	// Env: REMOTE_BLOB_REGION
	Region string `env:"REGION"`

	// Bucket is the bucket attachments are uploaded into.
	// Env: REMOTE_BLOB_BUCKET
	Bucket string `env:"BUCKET"`

	// Endpoint overrides the S3 endpoint for MinIO-style deployments.
	// Env: REMOTE_BLOB_ENDPOINT
	Endpoint string `env:"ENDPOINT"`

	// AccessKeyID / SecretAccessKey are static credentials for the bucket.
	// Env: REMOTE_BLOB_ACCESS_KEY_ID / REMOTE_BLOB_SECRET_ACCESS_KEY
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
}

// Workers holds configuration for the background sync job.
type Workers struct {
	// SyncInterval defines how often the background job reconciles the local
	// cache with the remote store (e.g. "5m").
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`
}

// Assistant holds settings for the generative completion API behind the
// medicine assistant.
type Assistant struct {
	// APIKey authenticates against the completion API.
	// Env: ASSISTANT_API_KEY
	APIKey string `env:"API_KEY"`

	// Model is the completion model identifier.
	// Env: ASSISTANT_MODEL
	Model string `env:"MODEL"`

	// MaxTokens caps the length of a single assistant reply.
	// Env: ASSISTANT_MAX_TOKENS
	MaxTokens int64 `env:"MAX_TOKENS"`
}

// Labels holds settings for the public drug-label API.
type Labels struct {
	// BaseURL is the openFDA endpoint. No API key is required.
	// Env: LABELS_BASE_URL
	BaseURL string `env:"BASE_URL"`
}

// GetConfig loads, merges, and validates the client configuration from all
// available sources in the following priority order (first non-zero value
// wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *StructuredConfig or an error if any source
// fails to load or the final config fails validation.
func GetConfig() (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
