// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-cache-path local cache file path
//	-storage-driver local cache driver ("file" or "sqlite")
//	-remote-url remote document store base URL
//	-request-timeout remote request timeout (e.g., "15s")
//	-sync-interval background sync interval (e.g., "5m")
//	-blob-bucket blob store bucket name
//	-blob-region blob store region
//	-blob-endpoint blob store endpoint override
//	-assistant-model completion model identifier
//	-labels-url drug-label API base URL
//	-c/-config json file path with configs
func ParseFlags() *StructuredConfig {
	var cachePath string
	var storageDriver string
	var remoteURL string
	var requestTimeout time.Duration
	var syncInterval time.Duration
	var blobBucket string
	var blobRegion string
	var blobEndpoint string
	var assistantModel string
	var labelsURL string
	var jsonConfigPath string

	flag.StringVar(&cachePath, "cache-path", "", "Local cache file path")
	flag.StringVar(&storageDriver, "storage-driver", "", "Local cache driver (file or sqlite)")
	flag.StringVar(&remoteURL, "remote-url", "", "Remote document store base URL")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Remote request timeout (e.g., 15s)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync interval (e.g., 5m)")
	flag.StringVar(&blobBucket, "blob-bucket", "", "Blob store bucket")
	flag.StringVar(&blobRegion, "blob-region", "", "Blob store region")
	flag.StringVar(&blobEndpoint, "blob-endpoint", "", "Blob store endpoint override")
	flag.StringVar(&assistantModel, "assistant-model", "", "Completion model identifier")
	flag.StringVar(&labelsURL, "labels-url", "", "Drug-label API base URL")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")

	flag.Parse()

	return &StructuredConfig{
		Storage: Storage{
			CachePath: cachePath,
			Driver:    storageDriver,
		},
		Remote: Remote{
			BaseURL:        remoteURL,
			RequestTimeout: requestTimeout,
			Blob: Blob{
				Region:   blobRegion,
				Bucket:   blobBucket,
				Endpoint: blobEndpoint,
			},
		},
		Workers: Workers{
			SyncInterval: syncInterval,
		},
		Assistant: Assistant{
			Model: assistantModel,
		},
		Labels: Labels{
			BaseURL: labelsURL,
		},
		JSONFilePath: jsonConfigPath,
	}
}
