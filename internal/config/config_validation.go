// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "time"

// Fallbacks applied by applyDefaults when a setting is absent from every
// source.
const (
	DefaultDriver         = "file"
	DefaultCachePath      = "health_companion_cache.json"
	DefaultRequestTimeout = 15 * time.Second
	DefaultSyncInterval   = 5 * time.Minute
	DefaultAssistantModel = "claude-sonnet-4-0"
	DefaultLabelsBaseURL  = "https://api.fda.gov"
)

func (cfg *StructuredConfig) applyDefaults() {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultDriver
	}
	if cfg.Storage.CachePath == "" {
		cfg.Storage.CachePath = DefaultCachePath
	}
	if cfg.Remote.RequestTimeout <= 0 {
		cfg.Remote.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Workers.SyncInterval <= 0 {
		cfg.Workers.SyncInterval = DefaultSyncInterval
	}
	if cfg.Assistant.Model == "" {
		cfg.Assistant.Model = DefaultAssistantModel
	}
	if cfg.Labels.BaseURL == "" {
		cfg.Labels.BaseURL = DefaultLabelsBaseURL
	}
}

// validate checks that the merged [StructuredConfig] satisfies the
// invariants the client depends on at startup.
func (cfg *StructuredConfig) validate() error {
	if cfg.Storage.Driver != "file" && cfg.Storage.Driver != "sqlite" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Storage.QuotaBytes < 0 {
		return ErrInvalidStorageConfigs
	}

	if cfg.Remote.BaseURL == "" {
		return ErrInvalidRemoteConfigs
	}

	if cfg.Workers.SyncInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
