// Package repository defines error values that are reused across
// repositories. These sentinel values let higher layers such as the
// auth service distinguish failure scenarios without importing
// database/sql: a missing row surfaces as ErrNotFound and a duplicate
// email insert as ErrEmailExists.
package repository

import "errors"

// ErrNotFound is returned when a lookup matches no row. The auth
// service folds it into its generic unauthenticated error so callers
// cannot probe which part of a credential was wrong.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned by AccountRepo.Create when the unique
// email constraint rejects the insert. Handlers translate this into
// an HTTP 400 on registration.
var ErrEmailExists = errors.New("email already exists")
