package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/telvora/customer-portal/internal/model"
	"github.com/telvora/customer-portal/internal/repository"
	"github.com/telvora/customer-portal/internal/utils"
)

// AccountStore is the account persistence surface the manager needs.
// *repository.AccountRepo implements it against MySQL; tests supply an
// in-memory fake.
type AccountStore interface {
	Create(ctx context.Context, a *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByID(ctx context.Context, id string) (*model.Account, error)
	TouchUpdated(ctx context.Context, id string) error
}

// SessionStore is the refresh-session persistence surface. Consume must
// be atomic per session: of two concurrent calls for the same id, exactly
// one may report true.
type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByToken(ctx context.Context, token string) (*model.Session, error)
	Consume(ctx context.Context, id string) (bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForAccount(ctx context.Context, accountID string) error
}

// TokenCodec signs access tokens, mints refresh tokens and verifies
// access tokens back to their subject.
type TokenCodec interface {
	NewAccessToken(accountID, email, role string) (utils.AccessToken, error)
	NewRefreshToken() (utils.RefreshToken, error)
	ParseAccessToken(raw string) (string, error)
}

var _ TokenCodec = (*utils.TokenCodec)(nil)

// RegisterInput carries the validated registration fields. Email is kept
// exactly as submitted; uniqueness is case-sensitive as stored.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     *string
}

// AccountInfo is the public-safe projection of an account returned with
// every token bundle. It never includes the password hash.
type AccountInfo struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
}

// TokenBundle is the result of Register, Login and Refresh: a signed
// access token with its expiry, the opaque refresh token, and the owning
// account's projection.
type TokenBundle struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	Account      AccountInfo `json:"account"`
}

// Service coordinates the account store, session store and token codec
// inside a single request/response cycle. It runs no background work.
type Service struct {
	accounts   AccountStore
	sessions   SessionStore
	tokens     TokenCodec
	bcryptCost int
}

func NewService(accounts AccountStore, sessions SessionStore, tokens TokenCodec, bcryptCost int) *Service {
	return &Service{accounts: accounts, sessions: sessions, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates an account and logs it straight in. Email uniqueness
// is left to the storage layer's unique constraint so a concurrent
// duplicate registration cannot slip between a check and the insert.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*TokenBundle, error) {
	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	acct := &model.Account{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
		Role:         "Customer",
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, acct); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	log.Printf("auth: account registered id=%s", acct.ID)
	return s.issueTokens(ctx, acct)
}

// Login verifies credentials and issues a fresh token pair. Unknown
// email, inactive account and wrong password all collapse into
// ErrUnauthenticated; bcrypt verification keeps the wrong-password path
// slow, which is the point.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenBundle, error) {
	acct, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !acct.IsActive {
		return nil, ErrUnauthenticated
	}
	if !utils.VerifyPassword(acct.PasswordHash, password) {
		return nil, ErrUnauthenticated
	}

	if err := s.accounts.TouchUpdated(ctx, acct.ID); err != nil {
		return nil, fmt.Errorf("touch account: %w", err)
	}

	log.Printf("auth: login id=%s", acct.ID)
	return s.issueTokens(ctx, acct)
}

// Refresh exchanges a valid refresh token for a new token pair, revoking
// the old session (rotation). Expiry is evaluated at read time and wins
// over the revoked flag; the Consume call is the serialization point
// that lets exactly one of two concurrent exchanges succeed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenBundle, error) {
	sess, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if time.Now().UTC().After(sess.ExpiresAt) {
		return nil, ErrUnauthenticated
	}
	if sess.Revoked {
		return nil, ErrUnauthenticated
	}

	acct, err := s.accounts.GetByID(ctx, sess.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("load account: %w", err)
	}
	if !acct.IsActive {
		return nil, ErrUnauthenticated
	}

	won, err := s.sessions.Consume(ctx, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("consume session: %w", err)
	}
	if !won {
		// Another request already rotated this token.
		return nil, ErrUnauthenticated
	}

	return s.issueTokens(ctx, acct)
}

// Revoke terminates the session matching a refresh token. It returns
// false when no session matches and true otherwise, even if the session
// was already revoked — logout is idempotent and never an error.
func (s *Service) Revoke(ctx context.Context, refreshToken string) (bool, error) {
	sess, err := s.sessions.GetByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load session: %w", err)
	}
	if err := s.sessions.Revoke(ctx, sess.ID); err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}
	log.Printf("auth: session revoked account=%s", sess.AccountID)
	return true, nil
}

// RevokeAll terminates every active session of an account, signing the
// customer out of all devices at once.
func (s *Service) RevokeAll(ctx context.Context, accountID string) error {
	if err := s.sessions.RevokeAllForAccount(ctx, accountID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	log.Printf("auth: all sessions revoked account=%s", accountID)
	return nil
}

// ValidateAccessToken reports whether an access token is currently good.
// It fails closed on anything malformed, mis-signed or expired, and then
// re-checks live account state: a signed, unexpired token for a
// deactivated account is rejected, so access tokens are not purely
// self-certifying.
func (s *Service) ValidateAccessToken(ctx context.Context, token string) bool {
	accountID, err := s.tokens.ParseAccessToken(token)
	if err != nil {
		return false
	}
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return false
	}
	return acct.IsActive
}

// issueTokens runs the shared issuance sequence: sign an access token,
// mint an opaque refresh token, persist the new session, and assemble
// the bundle with the account's public projection.
func (s *Service) issueTokens(ctx context.Context, acct *model.Account) (*TokenBundle, error) {
	access, err := s.tokens.NewAccessToken(acct.ID, acct.Email, acct.Role)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.tokens.NewRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("mint refresh token: %w", err)
	}
	if err := s.sessions.Create(ctx, &model.Session{
		ID:        uuid.NewString(),
		AccountID: acct.ID,
		Token:     refresh.Raw,
		ExpiresAt: refresh.Exp,
		Revoked:   false,
	}); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	return &TokenBundle{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw,
		ExpiresAt:    access.Exp,
		Account: AccountInfo{
			ID:        acct.ID,
			Email:     acct.Email,
			FirstName: acct.FirstName,
			LastName:  acct.LastName,
			Phone:     acct.Phone,
			Role:      acct.Role,
		},
	}, nil
}
