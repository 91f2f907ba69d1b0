package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/telvora/customer-portal/internal/model"
)

// SessionRepo persists refresh-token sessions in the `sessions` table.
// Rows are only ever inserted or flipped to revoked; nothing is deleted,
// so revoked sessions remain visible for audit and replay detection.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Create inserts a session row. The token column carries a unique index,
// so an (astronomically unlikely) token collision fails the insert rather
// than silently sharing a session.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO sessions (id, account_id, token, expires_at, revoked) VALUES (?,?,?,?,?)",
		s.ID, s.AccountID, s.Token, s.ExpiresAt, s.Revoked)
	return err
}

// GetByToken returns the session matching a token string regardless of its
// revoked or expired state. Callers decide what each state means.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var s model.Session
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,account_id,token,expires_at,revoked,created_at FROM sessions WHERE token=? LIMIT 1",
		token).Scan(&s.ID, &s.AccountID, &s.Token, &s.ExpiresAt, &s.Revoked, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Consume atomically revokes a still-active session and reports whether
// this call was the one that flipped it. The conditional update is the
// serialization point for refresh rotation: of two concurrent exchanges of
// the same token, exactly one sees an affected row.
func (r *SessionRepo) Consume(ctx context.Context, id string) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked=1 WHERE id=? AND revoked=0", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Revoke marks a session revoked unconditionally. Revoking an already
// revoked session is a no-op, which keeps logout idempotent.
func (r *SessionRepo) Revoke(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked=1 WHERE id=?", id)
	return err
}

// RevokeAllForAccount revokes every active session of an account.
func (r *SessionRepo) RevokeAllForAccount(ctx context.Context, accountID string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE sessions SET revoked=1 WHERE account_id=? AND revoked=0", accountID)
	return err
}
