// Package repository is the MySQL persistence layer. Each repository
// wraps a *sql.DB; batch mutations that must be atomic run inside a
// single transaction. This file defines sentinel errors shared across
// repositories so handlers can classify failures with errors.Is.
package repository

import "errors"

// ErrEventNotFound is returned when an event id does not resolve to a
// row. Handlers translate this into an HTTP 404 response.
var ErrEventNotFound = errors.New("event not found")

// ErrEmailExists is returned when registering an email that is already
// taken. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
