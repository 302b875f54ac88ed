// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the auth
// service to distinguish failure scenarios without inspecting driver
// errors. For example, ErrNotFound covers a missing row as well as a
// session row that exists but is revoked or expired, while ErrEmailExists
// signals a uniqueness conflict on the users table.
package repository

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a lookup matches no usable row. Session
// lookups fold "revoked" and "expired" into this same value so callers
// cannot tell the cases apart.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when inserting a user whose email is already
// taken.
var ErrEmailExists = errors.New("email already exists")

// ErrConflict is returned when a write loses a uniqueness race, such as two
// concurrent rotations of the same refresh session or two seed runs
// inserting the same membership triple. The loser observes this error
// rather than silently double-writing.
var ErrConflict = errors.New("conflict")

// isDuplicate reports whether the driver error is a MySQL duplicate-key
// violation (error 1062).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
