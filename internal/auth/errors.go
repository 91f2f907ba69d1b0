// Package auth implements the credential and session manager of the
// customer portal: it verifies credentials, mints access and refresh
// tokens, rotates sessions and revokes them. Storage and token signing
// are collaborators passed in at construction; the package itself keeps
// no mutable state.
package auth

import "errors"

// ErrAlreadyExists is returned by Register when an account with the
// requested email already exists. Handlers map it to HTTP 400.
var ErrAlreadyExists = errors.New("account already exists")

// ErrUnauthenticated covers every credential failure: unknown email,
// wrong password, inactive account, and unknown/revoked/expired refresh
// tokens. One sentinel for all of them keeps responses indistinguishable
// so callers cannot probe which accounts exist. Handlers map it to 401.
var ErrUnauthenticated = errors.New("unauthenticated")
