package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tandem/internal/names"
)

// ConnectPostgres opens a pool against dsn, pings it and applies the schema.
func ConnectPostgres(ctx context.Context, dsn string, log *zap.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	log.Info("connected to postgres",
		zap.String("host", config.ConnConfig.Host),
		zap.String("database", config.ConnConfig.Database),
	)

	if err := InitSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	log.Info("schema initialized")
	return pool, nil
}

// InitSchema creates or updates the database schema. Every statement is
// idempotent so it runs on each start.
func InitSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return backfillNameKeys(ctx, pool)
}

// backfillNameKeys fills name_key for rows written before the column existed.
func backfillNameKeys(ctx context.Context, pool *pgxpool.Pool) error {
	rows, err := pool.Query(ctx, `SELECT id::text, name FROM pantry_items WHERE name_key = ''`)
	if err != nil {
		return fmt.Errorf("select rows without name key: %w", err)
	}
	pending, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (namedRow, error) {
		var r namedRow
		err := row.Scan(&r.id, &r.name)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("scan rows without name key: %w", err)
	}

	for _, r := range pending {
		if _, err := pool.Exec(ctx,
			`UPDATE pantry_items SET name_key = $2 WHERE id = $1`,
			r.id, names.Key(r.name),
		); err != nil {
			return fmt.Errorf("backfill name key for %s: %w", r.id, err)
		}
	}
	return nil
}

var postgresSchema = []string{
	// -------------------------------
	// HOUSEHOLDS + USERS
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS households (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id),
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password VARCHAR(255) NOT NULL,
		role VARCHAR(50) NOT NULL DEFAULT 'MEMBER',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,

	// -------------------------------
	// RECIPES + MEAL PLAN
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS recipes (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id),
		title VARCHAR(255) NOT NULL,
		ingredients TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS meal_slots (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id),
		slot_date DATE NOT NULL,
		meal_type VARCHAR(20) NOT NULL,
		recipe_id UUID NULL REFERENCES recipes(id) ON DELETE SET NULL,
		UNIQUE (household_id, slot_date, meal_type)
	)`,

	// -------------------------------
	// PANTRY
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS pantry_items (
		id UUID PRIMARY KEY,
		household_id UUID NOT NULL REFERENCES households(id),
		name VARCHAR(255) NOT NULL,
		quantity NUMERIC(14,3) NOT NULL DEFAULT 0,
		unit VARCHAR(50) NOT NULL DEFAULT 'pcs',
		expiry_date DATE NULL,
		location VARCHAR(50) NOT NULL DEFAULT 'Pantry',
		category VARCHAR(50) NOT NULL DEFAULT 'Other',
		updated_by_user_id UUID NULL,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		updated_at TIMESTAMP NOT NULL DEFAULT now()
	)`,
	// Rows created while the categorizer was down are repaired later.
	`ALTER TABLE pantry_items
		ADD COLUMN IF NOT EXISTS category_source VARCHAR(20) NOT NULL DEFAULT 'manual'`,
	// name_key holds names.Key(name); it is computed in Go so noise
	// prefixes and Unicode case folding match the rest of the app.
	`ALTER TABLE pantry_items
		ADD COLUMN IF NOT EXISTS name_key VARCHAR(255) NOT NULL DEFAULT ''`,
	`DROP INDEX IF EXISTS pantry_items_household_name_idx`,
	`CREATE INDEX IF NOT EXISTS pantry_items_household_name_key_idx
		ON pantry_items (household_id, name_key)`,
	`CREATE INDEX IF NOT EXISTS pantry_items_category_source_idx
		ON pantry_items (category_source)
		WHERE category_source = 'fallback'`,

	// -------------------------------
	// ORDER IDEMPOTENCY
	// -------------------------------
	`CREATE TABLE IF NOT EXISTS order_requests (
		household_id UUID NOT NULL,
		idempotency_key VARCHAR(128) NOT NULL,
		order_id UUID NOT NULL,
		partner_id VARCHAR(255) NOT NULL DEFAULT '',
		items_added INT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT now(),
		PRIMARY KEY (household_id, idempotency_key)
	)`,
}
