package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/telvora/customer-portal/internal/model"
)

// AccountRepo persists customer accounts in the `accounts` table.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts a new account row. The id and password hash are produced
// by the caller. Email uniqueness is enforced by the schema; a duplicate
// key violation surfaces as ErrEmailExists so the check-then-insert race
// is closed at the storage layer, not just in application logic.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, first_name, last_name, phone, role, is_active) VALUES (?,?,?,?,?,?,?,?)",
		a.ID, a.Email, a.PasswordHash, a.FirstName, a.LastName, a.Phone, a.Role, a.IsActive)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches an account by its exact email as stored.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,first_name,last_name,phone,role,is_active,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email))
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,first_name,last_name,phone,role,is_active,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id))
}

// TouchUpdated bumps updated_at, recording the latest successful login.
func (r *AccountRepo) TouchUpdated(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET updated_at=NOW() WHERE id=?", id)
	return err
}

// UpdateProfile replaces the mutable profile fields of an account.
func (r *AccountRepo) UpdateProfile(ctx context.Context, id, firstName, lastName string, phone *string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE accounts SET first_name=?, last_name=?, phone=?, updated_at=NOW() WHERE id=?",
		firstName, lastName, phone, id)
	return err
}

func (r *AccountRepo) scanOne(row *sql.Row) (*model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName,
		&a.Phone, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}
