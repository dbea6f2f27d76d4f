package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestConnectPostgres(t *testing.T) {
	t.Run("missing DATABASE_URL is an error", func(t *testing.T) {
		_, err := ConnectPostgres(context.Background(), "", zaptest.NewLogger(t))
		if err == nil {
			t.Fatal("expected error for empty dsn")
		}
	})

	t.Run("valid DATABASE_URL should connect", func(t *testing.T) {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			t.Skip("DATABASE_URL not set, skipping integration test")
		}

		pool, err := ConnectPostgres(context.Background(), dsn, zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("connect: %v", err)
		}
		defer pool.Close()

		// schema is applied on every start
		if err := InitSchema(context.Background(), pool); err != nil {
			t.Fatalf("second schema run: %v", err)
		}
	})
}

func TestOpenSQLiteSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()

	conn, err := OpenSQLite(ctx, ":memory:", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	if err := InitSQLiteSchema(ctx, conn); err != nil {
		t.Fatalf("second schema run: %v", err)
	}

	var n int
	err = conn.QueryRowContext(ctx,
		`SELECT count(*) FROM sqlite_master WHERE type = 'table' AND name = 'pantry_items'`,
	).Scan(&n)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected pantry_items table, found %d", n)
	}
}

func TestSQLiteBackfillsNameKey(t *testing.T) {
	ctx := context.Background()

	conn, err := OpenSQLite(ctx, ":memory:", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, `
		INSERT INTO pantry_items (id, household_id, name, created_at, updated_at)
		VALUES ('row-1', 'hh-1', '  Updated ÄPFEL ', '2026-10-19', '2026-10-19')
	`)
	if err != nil {
		t.Fatalf("insert row: %v", err)
	}

	if err := InitSQLiteSchema(ctx, conn); err != nil {
		t.Fatalf("rerun schema: %v", err)
	}

	var key string
	if err := conn.QueryRowContext(ctx, `SELECT name_key FROM pantry_items WHERE id = 'row-1'`).Scan(&key); err != nil {
		t.Fatalf("read name_key: %v", err)
	}
	if key != "äpfel" {
		t.Fatalf("expected name_key %q, got %q", "äpfel", key)
	}
}

func TestOpenSQLiteUpgradesTableWithoutNameKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	_, err = legacy.ExecContext(ctx, `
		CREATE TABLE pantry_items (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			name TEXT NOT NULL,
			quantity TEXT NOT NULL DEFAULT '0',
			unit TEXT NOT NULL DEFAULT 'pcs',
			expiry_date TEXT NULL,
			location TEXT NOT NULL DEFAULT 'Pantry',
			category TEXT NOT NULL DEFAULT 'Other',
			category_source TEXT NOT NULL DEFAULT 'manual',
			updated_by_user_id TEXT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err == nil {
		_, err = legacy.ExecContext(ctx, `
			INSERT INTO pantry_items (id, household_id, name, created_at, updated_at)
			VALUES ('row-1', 'hh-1', 'Eggs', '2026-10-19', '2026-10-19')`)
	}
	legacy.Close()
	if err != nil {
		t.Fatalf("seed legacy table: %v", err)
	}

	conn, err := OpenSQLite(ctx, path, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("open upgraded sqlite: %v", err)
	}
	defer conn.Close()

	var key string
	if err := conn.QueryRowContext(ctx, `SELECT name_key FROM pantry_items WHERE id = 'row-1'`).Scan(&key); err != nil {
		t.Fatalf("read name_key: %v", err)
	}
	if key != "eggs" {
		t.Fatalf("expected name_key %q, got %q", "eggs", key)
	}
}
