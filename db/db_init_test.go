// SPDX-FileCopyrightText: 2026 Humaid Alqasimi
// SPDX-License-Identifier: Apache-2.0

package db

import (
	"errors"
	"os"
	"testing"
)

func TestInitRequiresDatabaseURL(t *testing.T) {
	if err := Init(testContext(), ""); !errors.Is(err, ErrDatabaseURLNotSet) {
		t.Fatalf("expected ErrDatabaseURLNotSet, got %v", err)
	}
}

func TestInitInvalidDatabaseURL(t *testing.T) {
	if err := Init(testContext(), "postgres://localhost:1/"); err == nil {
		t.Fatalf("expected error for invalid database url")
	}
}

func TestOpenMigratorRequiresURL(t *testing.T) {
	if _, err := OpenMigrator(""); !errors.Is(err, ErrDatabaseURLNotSet) {
		t.Fatalf("expected ErrDatabaseURLNotSet, got %v", err)
	}
}

func TestSyncSchemaRequiresPool(t *testing.T) {
	if integration {
		t.Skip("pool is initialized for integration tests")
	}

	if err := SyncSchema(testContext()); !errors.Is(err, ErrDatabaseConnectionNotInitialized) {
		t.Fatalf("expected ErrDatabaseConnectionNotInitialized, got %v", err)
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := GetEmbeddedMigrations().ReadDir(MigrationsDir)
	if err != nil {
		t.Fatalf("failed to read embedded migrations: %v", err)
	}

	if len(entries) == 0 {
		t.Fatalf("expected at least one migration")
	}
}

func TestSyncSchema(t *testing.T) {
	requireDatabase(t)

	searchPathURL, err := withSearchPath(os.Getenv("DATABASE_URL"), testSchemaName)
	if err != nil {
		t.Fatalf("withSearchPath failed: %v", err)
	}

	previous := databaseURL
	databaseURL = searchPathURL

	t.Cleanup(func() { databaseURL = previous })

	if err := SyncSchema(testContext()); err != nil {
		t.Fatalf("SyncSchema failed: %v", err)
	}
}
