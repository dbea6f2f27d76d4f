package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

var _ UserRepository = (*PostgresUserRepository)(nil)

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// --------------------------------------------------
// Household + owner in one transaction
// --------------------------------------------------

func (r *PostgresUserRepository) CreateHousehold(ctx context.Context, household *Household, owner *User) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if owner.ID == "" {
		owner.ID = uuid.New().String()
	}
	owner.HouseholdID = household.ID

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO households (id, name) VALUES ($1, $2)
	`, household.ID, household.Name); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO users (id, household_id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, owner.ID, owner.HouseholdID, owner.Name, owner.Email, owner.Password, owner.Role); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresUserRepository) Save(ctx context.Context, user *User) error {
	// Generate UUID if not already set
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	query := `
		INSERT INTO users (id, household_id, name, email, password, role)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.HouseholdID, user.Name, user.Email, user.Password, user.Role,
	)
	return err
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT 1 FROM users WHERE lower(email) = lower($1) LIMIT 1`

	var exists int
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id::text, household_id::text, name, email, password, role
		FROM users WHERE lower(email) = lower($1)
	`

	user := &User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.HouseholdID, &user.Name, &user.Email, &user.Password, &user.Role,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
