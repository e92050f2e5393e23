// Package repository defines error types that are reused across the post
// store implementations.  These sentinel values let the HTTP layer tell a
// bad request apart from a store that is not there at all; every other
// error is a driver error and is passed through untouched.
package repository

import "errors"

// ErrInvalidID is returned when an identifier is not a 24 character hex
// string.  The store is never contacted in that case.  Handlers should
// translate this into an HTTP 400 response.
var ErrInvalidID = errors.New("invalid post id")

// ErrStoreUnavailable is returned by UnavailablePostStore, which is wired in
// when the database could not be reached at startup.  Handlers should
// translate this into an HTTP 503 response.
var ErrStoreUnavailable = errors.New("post store unavailable")
