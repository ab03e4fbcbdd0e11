// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/health-companion/internal/logger"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS cache (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);`

const (
	getKVValue    = `SELECT value FROM cache WHERE key = ?;`
	upsertKVValue = `INSERT INTO cache (key, value) VALUES (?, ?)
                     ON CONFLICT(key) DO UPDATE SET value = excluded.value;`
	deleteKVValue = `DELETE FROM cache WHERE key = ?;`
)

type sqliteKVStore struct {
	db    *sql.DB
	quota int64
	log   *logger.Logger
}

// NewSQLiteKVStore opens (creating if necessary) an SQLite-backed key-value
// store at dbPath. It is the durable substrate option; the schema is a
// single key/value table. quotaBytes <= 0 selects [DefaultQuotaBytes].
func NewSQLiteKVStore(dbPath string, quotaBytes int64, log *logger.Logger) (KeyValueStore, error) {
	if quotaBytes <= 0 {
		quotaBytes = DefaultQuotaBytes
	}

	if err := createLocalDBFileIfNotExists(dbPath); err != nil {
		log.Err(err).Str("func", "NewSQLiteKVStore").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		log.Err(err).Str("func", "NewSQLiteKVStore").Msg("error opening database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	if _, err = db.Exec(createKVTable); err != nil {
		db.Close()
		log.Err(err).Str("func", "NewSQLiteKVStore").Msg("error creating cache table")
		return nil, fmt.Errorf("error creating cache table: %w", err)
	}

	return &sqliteKVStore{db: db, quota: quotaBytes, log: log}, nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	return nil
}

func (s *sqliteKVStore) Get(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow(getKVValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.log.Err(err).Str("func", "sqliteKVStore.Get").Str("key", key).
			Msg("failed to query cache value")
		return "", false, fmt.Errorf("query cache value %q: %w", key, err)
	}

	return value, true, nil
}

func (s *sqliteKVStore) Set(key, value string) error {
	if int64(len(value)) > s.quota {
		return fmt.Errorf("set %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
	}

	if _, err := s.db.Exec(upsertKVValue, key, value); err != nil {
		s.log.Err(err).Str("func", "sqliteKVStore.Set").Str("key", key).
			Msg("failed to upsert cache value")
		return fmt.Errorf("upsert cache value %q: %w", key, err)
	}

	return nil
}

func (s *sqliteKVStore) Delete(key string) error {
	if _, err := s.db.Exec(deleteKVValue, key); err != nil {
		s.log.Err(err).Str("func", "sqliteKVStore.Delete").Str("key", key).
			Msg("failed to delete cache value")
		return fmt.Errorf("delete cache value %q: %w", key, err)
	}

	return nil
}

func (s *sqliteKVStore) Close() error {
	return s.db.Close()
}
