package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is bumped whenever schema.sql changes. Older catalogs must be
// deleted; there are no migrations.
const schemaVersion = 1

// ErrSchemaMismatch indicates the catalog was created by a different schema version.
var ErrSchemaMismatch = errors.New("catalog schema version mismatch")

// initSchema creates the tables on first open and otherwise checks the
// recorded version. Both happen in one transaction so two processes opening a
// fresh catalog cannot both create it.
func (s *Store) initSchema(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		version, found, err := storedSchemaVersion(ctx, tx)
		if err != nil {
			return err
		}
		if !found {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
				return fmt.Errorf("record schema version: %w", err)
			}
			return nil
		}
		if version != schemaVersion {
			return fmt.Errorf("%w: database has version %d, expected %d (delete %s to start over)",
				ErrSchemaMismatch, version, schemaVersion, s.path)
		}
		return nil
	})
}

func storedSchemaVersion(ctx context.Context, tx *sql.Tx) (int, bool, error) {
	var tables int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, false, fmt.Errorf("check schema_version table: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}
	var version int
	switch err := tx.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, fmt.Errorf("%w: schema_version table is empty", ErrSchemaMismatch)
	case err != nil:
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, true, nil
}
