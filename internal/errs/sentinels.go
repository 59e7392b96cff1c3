// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates no progress record exists for the requested document.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the username is already registered.
	ErrAlreadyExists = errors.New("already exists")

	// ErrRegistrationDisabled indicates the server was started with registration turned off.
	ErrRegistrationDisabled = errors.New("registration disabled")

	// ErrUserNotFound indicates the request named a user that was never registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrBadCredentials indicates the supplied password hash does not match the stored one.
	ErrBadCredentials = errors.New("bad credentials")

	// ErrInvalidUsername indicates a username that is unsafe as a storage namespace.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidDocumentID indicates a document id that is unsafe as a storage key.
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrRateLimited indicates temporary login lock due to rate limiting.
	ErrRateLimited = errors.New("rate limited")
)
