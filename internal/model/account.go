package model

import "time"

// Account represents a registered portal customer as stored in the
// `accounts` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are used internally by the repository layer; handlers define
// separate response types with appropriate JSON tags. The password
// is only ever stored as a bcrypt hash.
//
// Fields:
//  ID           – UUID primary key of the account.
//  Email        – unique email address, stored as received.
//  PasswordHash – bcrypt hashed password.
//  FirstName    – given name.
//  LastName     – family name.
//  Phone        – optional phone number (nullable).
//  Role         – role name (e.g. Customer).
//  IsActive     – whether the account may authenticate.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update (touched on login).
type Account struct {
	ID           string    // accounts.id
	Email        string    // accounts.email
	PasswordHash string    // accounts.password_hash
	FirstName    string    // accounts.first_name
	LastName     string    // accounts.last_name
	Phone        *string   // accounts.phone (nullable)
	Role         string    // accounts.role
	IsActive     bool      // accounts.is_active
	CreatedAt    time.Time // accounts.created_at
	UpdatedAt    time.Time // accounts.updated_at
}

// Session models an entry in the `sessions` table. Each session
// belongs to an account and holds one opaque refresh token together
// with its expiry and revocation state. Sessions are never deleted
// in normal operation; revocation only flips the Revoked flag so
// the row remains available for audit and replay detection.
//
// Fields:
//  ID        – UUID primary key.
//  AccountID – owner of the session (FK, cascade on delete).
//  Token     – unique opaque refresh token string.
//  ExpiresAt – expiration timestamp, checked at read time.
//  Revoked   – whether the session has been revoked.
//  CreatedAt – timestamp of creation.
type Session struct {
	ID        string    // sessions.id
	AccountID string    // sessions.account_id
	Token     string    // sessions.token
	ExpiresAt time.Time // sessions.expires_at
	Revoked   bool      // sessions.revoked
	CreatedAt time.Time // sessions.created_at
}
