package utils // package utils provides token and password helpers for the auth service

import (
	"crypto/rand"  // secure random number generation for refresh tokens
	"encoding/hex" // hex encoding of random token bytes
	"errors"       // sentinel errors for parse failures
	"time"         // expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by ParseAccessToken for any token that does
// not verify: bad signature, wrong algorithm, expired, malformed, or a
// missing/empty subject claim. Callers get no further detail on purpose.
var ErrInvalidToken = errors.New("invalid access token")

// AccessToken represents a signed HS256 JWT along with its expiry. The
// Token field contains the serialized JWT string; Exp stores the UTC
// expiration instant. Access tokens are short-lived and carried in the
// Authorization header on protected endpoints.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// RefreshToken represents a long-lived opaque token exchanged for new
// access tokens. Raw is the token string returned to the client and
// stored in the sessions table; Exp records when it expires.
type RefreshToken struct {
	Raw string
	Exp time.Time
}

// TokenCodec signs and verifies access tokens and mints refresh tokens.
// The signing secret and both lifetimes are fixed at construction; the
// codec holds no other state, so signing and parsing are pure functions
// over their inputs plus this configuration.
type TokenCodec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenCodec builds a codec from the process-wide signing secret and
// the configured lifetimes (access in minutes, refresh in days).
func NewTokenCodec(secret string, accessTTLMin, refreshTTLDays int) *TokenCodec {
	return &TokenCodec{
		secret:     []byte(secret),
		accessTTL:  time.Duration(accessTTLMin) * time.Minute,
		refreshTTL: time.Duration(refreshTTLDays) * 24 * time.Hour,
	}
}

// NewAccessToken builds and signs an HS256 JWT for an account. The claims
// carry the account id as subject plus email and role, together with the
// standard exp and iat timestamps.
func (tc *TokenCodec) NewAccessToken(accountID, email, role string) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(tc.accessTTL)
	claims := jwt.MapClaims{
		"sub":   accountID,
		"email": email,
		"role":  role,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(tc.secret)
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// NewRefreshToken returns a cryptographically random opaque token and its
// expiration. 32 random bytes (256 bits) hex-encoded make the token
// unguessable; collisions are negligible so no uniqueness retry loop is
// needed on insert.
func (tc *TokenCodec) NewRefreshToken() (RefreshToken, error) {
	raw, err := randomHex(32)
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(tc.refreshTTL),
	}, nil
}

// ParseAccessToken verifies a serialized access token and returns its
// subject (the account id). Only HMAC-signed tokens are accepted; the jwt
// library enforces the exp claim during parsing. Every failure collapses
// into ErrInvalidToken so the verifier fails closed without leaking why.
func (tc *TokenCodec) ParseAccessToken(raw string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return tc.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
