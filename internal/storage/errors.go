package storage

import "errors"

// ErrNotFound is returned when an exact-match lookup finds no row.
var ErrNotFound = errors.New("not found")

// ErrUsernameTaken is returned when a save would claim a username already
// held by a different profile.
var ErrUsernameTaken = errors.New("username already taken")

// ErrEmailTaken is returned when an account already exists for an email.
var ErrEmailTaken = errors.New("email already registered")
