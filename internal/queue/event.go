// Package queue defines message payloads exchanged over the message broker.
package queue

// AccountRegisteredEvent is published after a successful registration.
// Downstream consumers (welcome notifications, analytics) get enough to
// act without querying the auth database. Timestamps are RFC 3339 strings
// so consumers in any language can parse them.
type AccountRegisteredEvent struct {
	AccountID    string `json:"account_id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Role         string `json:"role"`
	RegisteredAt string `json:"registered_at"`
}

// SessionRevokedEvent is published when a session is explicitly revoked
// via logout, so security tooling can correlate forced sign-outs.
type SessionRevokedEvent struct {
	AccountID string `json:"account_id"`
	RevokedAt string `json:"revoked_at"`
}
