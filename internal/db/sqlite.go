package db

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"tandem/internal/names"
)

// OpenSQLite opens the local single-file store used for development and tests.
// The pool is pinned to one connection: writers are serialized and an
// in-memory database stays a single database.
func OpenSQLite(ctx context.Context, path string, log *zap.Logger) (*sql.DB, error) {
	if path == "" {
		path = "tandem.db"
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := InitSQLiteSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}

	log.Info("sqlite store ready", zap.String("path", path))
	return conn, nil
}

// InitSQLiteSchema mirrors the Postgres schema with SQLite types.
func InitSQLiteSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range sqliteSchema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	// databases created before name_key existed
	var hasKey int
	err := conn.QueryRowContext(ctx,
		`SELECT count(*) FROM pragma_table_info('pantry_items') WHERE name = 'name_key'`,
	).Scan(&hasKey)
	if err != nil {
		return fmt.Errorf("inspect pantry_items: %w", err)
	}
	if hasKey == 0 {
		if _, err := conn.ExecContext(ctx,
			`ALTER TABLE pantry_items ADD COLUMN name_key TEXT NOT NULL DEFAULT ''`,
		); err != nil {
			return fmt.Errorf("add name_key: %w", err)
		}
	}

	for _, stmt := range sqliteIndexes {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return backfillSQLiteNameKeys(ctx, conn)
}

type namedRow struct {
	id   string
	name string
}

func backfillSQLiteNameKeys(ctx context.Context, conn *sql.DB) error {
	rows, err := conn.QueryContext(ctx, `SELECT id, name FROM pantry_items WHERE name_key = ''`)
	if err != nil {
		return fmt.Errorf("select rows without name key: %w", err)
	}

	var pending []namedRow
	for rows.Next() {
		var r namedRow
		if err := rows.Scan(&r.id, &r.name); err != nil {
			rows.Close()
			return err
		}
		pending = append(pending, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, r := range pending {
		if _, err := conn.ExecContext(ctx,
			`UPDATE pantry_items SET name_key = ? WHERE id = ?`,
			names.Key(r.name), r.id,
		); err != nil {
			return fmt.Errorf("backfill name key for %s: %w", r.id, err)
		}
	}
	return nil
}

var sqliteIndexes = []string{
	`DROP INDEX IF EXISTS pantry_items_household_name_idx`,
	`CREATE INDEX IF NOT EXISTS pantry_items_household_name_key_idx
		ON pantry_items (household_id, name_key)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS households (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL REFERENCES households(id),
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'MEMBER',
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL,
		title TEXT NOT NULL,
		ingredients TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE TABLE IF NOT EXISTS meal_slots (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL,
		slot_date TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		recipe_id TEXT NULL,
		UNIQUE (household_id, slot_date, meal_type)
	)`,
	`CREATE TABLE IF NOT EXISTS pantry_items (
		id TEXT PRIMARY KEY,
		household_id TEXT NOT NULL,
		name TEXT NOT NULL,
		quantity TEXT NOT NULL DEFAULT '0',
		unit TEXT NOT NULL DEFAULT 'pcs',
		expiry_date TEXT NULL,
		location TEXT NOT NULL DEFAULT 'Pantry',
		category TEXT NOT NULL DEFAULT 'Other',
		category_source TEXT NOT NULL DEFAULT 'manual',
		name_key TEXT NOT NULL DEFAULT '',
		updated_by_user_id TEXT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_requests (
		household_id TEXT NOT NULL,
		idempotency_key TEXT NOT NULL,
		order_id TEXT NOT NULL,
		partner_id TEXT NOT NULL DEFAULT '',
		items_added INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (household_id, idempotency_key)
	)`,
}
