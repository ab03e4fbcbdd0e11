// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSONConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_AllFields(t *testing.T) {
	path := writeJSONConfig(t, `{
		"storage": {"cache_path": "/tmp/cache.db", "driver": "sqlite", "quota_bytes": 2097152},
		"remote": {
			"base_url": "https://sync.example.com",
			"request_timeout": "20s",
			"blob": {"region": "us-east-1", "bucket": "attachments", "endpoint": "http://minio:9000", "access_key_id": "id", "secret_access_key": "secret"}
		},
		"workers": {"sync_interval": "10m"},
		"assistant": {"api_key": "sk-test", "model": "claude-sonnet-4-0", "max_tokens": 512},
		"labels": {"base_url": "https://api.fda.gov"}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/cache.db", cfg.Storage.CachePath)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, int64(2097152), cfg.Storage.QuotaBytes)
	assert.Equal(t, "https://sync.example.com", cfg.Remote.BaseURL)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "us-east-1", cfg.Remote.Blob.Region)
	assert.Equal(t, "attachments", cfg.Remote.Blob.Bucket)
	assert.Equal(t, 10*time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, "sk-test", cfg.Assistant.APIKey)
	assert.Equal(t, int64(512), cfg.Assistant.MaxTokens)
	assert.Equal(t, "https://api.fda.gov", cfg.Labels.BaseURL)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON("/no/such/config.json")
	assert.Error(t, err)
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeJSONConfig(t, `{"storage": `)

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"1h30m"`, want: 90 * time.Minute},
		{name: "seconds string", input: `"45s"`, want: 45 * time.Second},
		{name: "raw nanoseconds number", input: `5000000000`, want: 5 * time.Second},
		{name: "garbage string", input: `"not-a-duration"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.input), &d)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, `"1h30m0s"`, string(out))
}
