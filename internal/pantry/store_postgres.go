package pantry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"tandem/internal/categorize"
	"tandem/internal/names"
)

type PostgresStore struct {
	db *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

const itemColumns = `
	id::text, household_id::text, name, quantity::text, unit, expiry_date,
	location, category, category_source, updated_by_user_id::text, created_at, updated_at`

// --------------------------------------------------
// UNIT OF WORK (ONE HOUSEHOLD AT A TIME)
// --------------------------------------------------

func (s *PostgresStore) WithinTx(ctx context.Context, householdID string, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Serializes fulfillment per household; released on commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, householdID); err != nil {
		return fmt.Errorf("lock household: %w", err)
	}

	if err := fn(&postgresTx{tx: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) List(ctx context.Context, householdID string) ([]Item, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+itemColumns+`
		FROM pantry_items
		WHERE household_id = $1
		ORDER BY lower(name), created_at
	`, householdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// --------------------------------------------------
// REPAIR QUEUE (FALLBACK PLACEMENTS)
// --------------------------------------------------

func (s *PostgresStore) ClaimFallback(ctx context.Context, limit int) ([]categorize.Pending, error) {
	rows, err := s.db.Query(ctx, `
		UPDATE pantry_items
		SET category_source = 'repairing', updated_at = now()
		WHERE id IN (
			SELECT id
			FROM pantry_items
			WHERE category_source = 'fallback'
			   OR (category_source = 'repairing' AND updated_at < now() - make_interval(secs => $2))
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id::text, household_id::text, name
	`, limit, staleClaim.Seconds())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categorize.Pending
	for rows.Next() {
		var p categorize.Pending
		if err := rows.Scan(&p.ID, &p.HouseholdID, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) SetPlacement(ctx context.Context, id string, p categorize.Placement) error {
	_, err := s.db.Exec(ctx, `
		UPDATE pantry_items
		SET category = $2,
		    location = $3,
		    category_source = 'categorizer',
		    updated_at = now()
		WHERE id = $1
		  AND category_source = 'repairing'
	`, id, p.Category, p.Location)
	return err
}

func (s *PostgresStore) ReleaseFallback(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE pantry_items
		SET category_source = 'fallback'
		WHERE id = $1
		  AND category_source = 'repairing'
	`, id)
	return err
}

type postgresTx struct {
	tx pgx.Tx
}

func (t *postgresTx) FindByKey(ctx context.Context, householdID, key string) (*Item, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT`+itemColumns+`
		FROM pantry_items
		WHERE household_id = $1
		  AND name_key = $2
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE
	`, householdID, key)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

func (t *postgresTx) Increment(ctx context.Context, inc Increment) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE pantry_items
		SET quantity = quantity + $2::numeric,
		    updated_by_user_id = COALESCE(NULLIF($3, '')::uuid, updated_by_user_id),
		    expiry_date = COALESCE(expiry_date, $4::date),
		    updated_at = $5
		WHERE id = $1
	`, inc.ID, inc.By.String(), inc.ActorID, dateOnly(inc.ExpiryIfNull), inc.Now)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *postgresTx) Create(ctx context.Context, item Item) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO pantry_items (
			id, household_id, name, name_key, quantity, unit, expiry_date,
			location, category, category_source, updated_by_user_id, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		item.ID, item.HouseholdID, item.Name, names.Key(item.Name), item.Quantity.String(), item.Unit, item.ExpiryDate,
		item.Location, item.Category, item.CategorySource, item.UpdatedByUserID, item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (t *postgresTx) FindOrder(ctx context.Context, householdID, key string, since time.Time) (*OrderRecord, error) {
	rec := OrderRecord{HouseholdID: householdID, IdempotencyKey: key}
	err := t.tx.QueryRow(ctx, `
		SELECT order_id::text, partner_id, items_added, created_at
		FROM order_requests
		WHERE household_id = $1
		  AND idempotency_key = $2
		  AND created_at >= $3
	`, householdID, key, since).Scan(&rec.OrderID, &rec.PartnerID, &rec.ItemsAdded, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (t *postgresTx) SaveOrder(ctx context.Context, rec OrderRecord) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO order_requests (household_id, idempotency_key, order_id, partner_id, items_added, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (household_id, idempotency_key) DO UPDATE SET
			order_id = EXCLUDED.order_id,
			partner_id = EXCLUDED.partner_id,
			items_added = EXCLUDED.items_added,
			created_at = EXCLUDED.created_at
	`, rec.HouseholdID, rec.IdempotencyKey, rec.OrderID, rec.PartnerID, rec.ItemsAdded, rec.CreatedAt)
	return err
}

func scanItem(row pgx.Row) (*Item, error) {
	var (
		item     Item
		quantity string
	)
	err := row.Scan(
		&item.ID, &item.HouseholdID, &item.Name, &quantity, &item.Unit, &item.ExpiryDate,
		&item.Location, &item.Category, &item.CategorySource, &item.UpdatedByUserID,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Quantity, err = decimal.NewFromString(quantity)
	if err != nil {
		return nil, fmt.Errorf("pantry item %s: bad quantity %q: %w", item.ID, quantity, err)
	}
	return &item, nil
}
