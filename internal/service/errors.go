package service

import "errors"

var (
	// ErrNotFound means the requested record does not exist for the caller.
	// Records of other users are reported the same way.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail means an account with the email already exists.
	ErrDuplicateEmail = errors.New("email already in use")

	// ErrInvalidCredentials is returned for every failed login, whatever the
	// cause.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
