// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] with json tags and the
// string-friendly [Duration] wrapper so durations can be written as "5m".
type StructuredJSONConfig struct {
	Storage struct {
		CachePath  string `json:"cache_path"`
		Driver     string `json:"driver"`
		QuotaBytes int64  `json:"quota_bytes"`
	} `json:"storage,omitempty"`

	Remote struct {
		BaseURL        string   `json:"base_url"`
		RequestTimeout Duration `json:"request_timeout"`
		Blob           struct {
			Region          string `json:"region"`
			Bucket          string `json:"bucket"`
			Endpoint        string `json:"endpoint"`
			AccessKeyID     string `json:"access_key_id"`
			SecretAccessKey string `json:"secret_access_key"`
		} `json:"blob,omitempty"`
	} `json:"remote,omitempty"`

	Workers struct {
		SyncInterval Duration `json:"sync_interval"`
	} `json:"workers,omitempty"`

	Assistant struct {
		APIKey    string `json:"api_key"`
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
	} `json:"assistant,omitempty"`

	Labels struct {
		BaseURL string `json:"base_url"`
	} `json:"labels,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		Storage: Storage{
			CachePath:  jsonCfg.Storage.CachePath,
			Driver:     jsonCfg.Storage.Driver,
			QuotaBytes: jsonCfg.Storage.QuotaBytes,
		},
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
			Blob: Blob{
				Region:          jsonCfg.Remote.Blob.Region,
				Bucket:          jsonCfg.Remote.Blob.Bucket,
				Endpoint:        jsonCfg.Remote.Blob.Endpoint,
				AccessKeyID:     jsonCfg.Remote.Blob.AccessKeyID,
				SecretAccessKey: jsonCfg.Remote.Blob.SecretAccessKey,
			},
		},
		Workers: Workers{
			SyncInterval: time.Duration(jsonCfg.Workers.SyncInterval),
		},
		Assistant: Assistant{
			APIKey:    jsonCfg.Assistant.APIKey,
			Model:     jsonCfg.Assistant.Model,
			MaxTokens: jsonCfg.Assistant.MaxTokens,
		},
		Labels: Labels{
			BaseURL: jsonCfg.Labels.BaseURL,
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
