package db

import "errors"

// ErrNotFound covers both a missing row and a row owned by someone else;
// callers must never be able to tell the two apart.
var ErrNotFound = errors.New("not found")

// ErrConflict signals a uniqueness or referential violation the caller can
// act on (duplicate mapping, category still in use).
var ErrConflict = errors.New("conflict")
