package pantry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tandem/internal/categorize"
	"tandem/internal/names"
)

// Timestamps are fixed-width UTC text so they compare correctly as strings.
const (
	sqliteDate = "2006-01-02"
	sqliteTime = "2006-01-02T15:04:05.000000Z07:00"
)

// SQLiteStore backs the pantry with the local development database. The
// connection pool is pinned to one connection, which serializes every
// unit of work.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const sqliteItemColumns = `
	id, household_id, name, quantity, unit, expiry_date,
	location, category, category_source, updated_by_user_id, created_at, updated_at`

func (s *SQLiteStore) WithinTx(ctx context.Context, householdID string, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(&sqliteTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context, householdID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT`+sqliteItemColumns+`
		FROM pantry_items
		WHERE household_id = ?
		ORDER BY lower(name), created_at
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanSQLiteItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// Put inserts a row outside of any order, for seeding and tests.
func (s *SQLiteStore) Put(ctx context.Context, item Item) error {
	return s.WithinTx(ctx, item.HouseholdID, func(tx Tx) error {
		return tx.Create(ctx, item)
	})
}

func (s *SQLiteStore) ClaimFallback(ctx context.Context, limit int) ([]categorize.Pending, error) {
	now := s.now().UTC()
	stale := now.Add(-staleClaim).Format(sqliteTime)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, household_id, name
		FROM pantry_items
		WHERE category_source = 'fallback'
		   OR (category_source = 'repairing' AND updated_at < ?)
		ORDER BY created_at
		LIMIT ?
	`, stale, limit)
	if err != nil {
		return nil, err
	}

	var out []categorize.Pending
	for rows.Next() {
		var p categorize.Pending
		if err := rows.Scan(&p.ID, &p.HouseholdID, &p.Name); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, p := range out {
		if _, err := tx.ExecContext(ctx, `
			UPDATE pantry_items
			SET category_source = 'repairing', updated_at = ?
			WHERE id = ?
		`, now.Format(sqliteTime), p.ID); err != nil {
			return nil, err
		}
	}

	return out, tx.Commit()
}

func (s *SQLiteStore) SetPlacement(ctx context.Context, id string, p categorize.Placement) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pantry_items
		SET category = ?, location = ?, category_source = 'categorizer', updated_at = ?
		WHERE id = ? AND category_source = 'repairing'
	`, p.Category, p.Location, s.now().UTC().Format(sqliteTime), id)
	return err
}

func (s *SQLiteStore) ReleaseFallback(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE pantry_items
		SET category_source = 'fallback'
		WHERE id = ? AND category_source = 'repairing'
	`, id)
	return err
}

type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) FindByKey(ctx context.Context, householdID, key string) (*Item, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT`+sqliteItemColumns+`
		FROM pantry_items
		WHERE household_id = ?
		  AND name_key = ?
		ORDER BY created_at
		LIMIT 1
	`, householdID, key)

	item, err := scanSQLiteItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// Increment reads and rewrites the quantity in Go because the column is
// TEXT; the single connection makes the read-modify-write safe.
func (t *sqliteTx) Increment(ctx context.Context, inc Increment) error {
	var current string
	err := t.tx.QueryRowContext(ctx, `SELECT quantity FROM pantry_items WHERE id = ?`, inc.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	amount, err := decimal.NewFromString(current)
	if err != nil {
		return fmt.Errorf("pantry item %s: bad quantity %q: %w", inc.ID, current, err)
	}

	_, err = t.tx.ExecContext(ctx, `
		UPDATE pantry_items
		SET quantity = ?,
		    updated_by_user_id = COALESCE(NULLIF(?, ''), updated_by_user_id),
		    expiry_date = COALESCE(expiry_date, ?),
		    updated_at = ?
		WHERE id = ?
	`, amount.Add(inc.By).String(), inc.ActorID, dateOnly(inc.ExpiryIfNull).Format(sqliteDate),
		inc.Now.UTC().Format(sqliteTime), inc.ID)
	return err
}

func (t *sqliteTx) Create(ctx context.Context, item Item) error {
	var expiry any
	if item.ExpiryDate != nil {
		expiry = item.ExpiryDate.UTC().Format(sqliteDate)
	}
	var actor any
	if item.UpdatedByUserID != nil {
		actor = *item.UpdatedByUserID
	}
	source := item.CategorySource
	if source == "" {
		source = SourceManual
	}

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO pantry_items (
			id, household_id, name, name_key, quantity, unit, expiry_date,
			location, category, category_source, updated_by_user_id, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID, item.HouseholdID, item.Name, names.Key(item.Name), item.Quantity.String(), item.Unit, expiry,
		item.Location, item.Category, source, actor,
		item.CreatedAt.UTC().Format(sqliteTime), item.UpdatedAt.UTC().Format(sqliteTime),
	)
	return err
}

func (t *sqliteTx) FindOrder(ctx context.Context, householdID, key string, since time.Time) (*OrderRecord, error) {
	rec := OrderRecord{HouseholdID: householdID, IdempotencyKey: key}
	var created string
	err := t.tx.QueryRowContext(ctx, `
		SELECT order_id, partner_id, items_added, created_at
		FROM order_requests
		WHERE household_id = ? AND idempotency_key = ?
	`, householdID, key).Scan(&rec.OrderID, &rec.PartnerID, &rec.ItemsAdded, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rec.CreatedAt, err = time.Parse(sqliteTime, created)
	if err != nil {
		return nil, err
	}
	if rec.CreatedAt.Before(since) {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (t *sqliteTx) SaveOrder(ctx context.Context, rec OrderRecord) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO order_requests (household_id, idempotency_key, order_id, partner_id, items_added, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (household_id, idempotency_key) DO UPDATE SET
			order_id = excluded.order_id,
			partner_id = excluded.partner_id,
			items_added = excluded.items_added,
			created_at = excluded.created_at
	`, rec.HouseholdID, rec.IdempotencyKey, rec.OrderID, rec.PartnerID, rec.ItemsAdded,
		rec.CreatedAt.UTC().Format(sqliteTime))
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteItem(row rowScanner) (*Item, error) {
	var (
		item             Item
		quantity         string
		expiry, actor    sql.NullString
		created, updated string
	)
	err := row.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &quantity, &item.Unit, &expiry,
		&item.Location, &item.Category, &item.CategorySource, &actor, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	if item.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("pantry item %s: bad quantity %q: %w", item.ID, quantity, err)
	}
	if expiry.Valid && expiry.String != "" {
		day, err := time.Parse(sqliteDate, expiry.String)
		if err != nil {
			return nil, fmt.Errorf("pantry item %s: bad expiry %q: %w", item.ID, expiry.String, err)
		}
		item.ExpiryDate = &day
	}
	if actor.Valid && actor.String != "" {
		a := actor.String
		item.UpdatedByUserID = &a
	}
	if item.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = time.Parse(sqliteTime, updated); err != nil {
		return nil, err
	}
	return &item, nil
}
