package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type SQLiteUserRepository struct {
	db *sql.DB
}

var _ UserRepository = (*SQLiteUserRepository)(nil)

func NewSQLiteUserRepository(db *sql.DB) *SQLiteUserRepository {
	return &SQLiteUserRepository{db: db}
}

func (r *SQLiteUserRepository) CreateHousehold(ctx context.Context, household *Household, owner *User) error {
	if household.ID == "" {
		household.ID = uuid.New().String()
	}
	if owner.ID == "" {
		owner.ID = uuid.New().String()
	}
	owner.HouseholdID = household.ID

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO households (id, name, created_at) VALUES (?, ?, ?)
	`, household.ID, household.Name, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, household_id, name, email, password, role)
		VALUES (?, ?, ?, ?, ?, ?)
	`, owner.ID, owner.HouseholdID, owner.Name, owner.Email, owner.Password, owner.Role); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *SQLiteUserRepository) Save(ctx context.Context, user *User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, household_id, name, email, password, role)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.HouseholdID, user.Name, user.Email, user.Password, user.Role)
	return err
}

func (r *SQLiteUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE lower(email) = lower(?) LIMIT 1`, email,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *SQLiteUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	user := &User{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, household_id, name, email, password, role
		FROM users WHERE lower(email) = lower(?)
	`, email).Scan(&user.ID, &user.HouseholdID, &user.Name, &user.Email, &user.Password, &user.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
