package services

import (
	"errors"
	"fmt"
)

// Domain errors surfaced to handlers. Each maps to a stable HTTP status;
// none carry transport or credential detail.
var (
	// ErrEmailTaken is returned when a registration targets an email
	// that already has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountInactive is returned when a deactivated account
	// attempts to log in.
	ErrAccountInactive = errors.New("account is deactivated")

	// ErrInvalidRoles is returned when a role mutation names a role
	// outside the known enumeration.
	ErrInvalidRoles = errors.New("invalid roles")

	// ErrInvalidResetCode is returned when a recovery code fails
	// verification or has expired.
	ErrInvalidResetCode = errors.New("invalid or expired recovery code")

	// ErrNotOwner is returned when a caller requests a secure object
	// owned by a different user.
	ErrNotOwner = errors.New("access denied")

	// ErrUnsupportedFormat is returned for uploads with a disallowed
	// content type.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrFileTooLarge is returned for uploads over the size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for uploads carrying no bytes.
	ErrEmptyFile = errors.New("empty file")

	// ErrUpstream is returned when a collaborator (store, object
	// storage, queue) fails. The wrapped cause is for logs only and is
	// never written to a response.
	ErrUpstream = errors.New("upstream service unavailable")
)

func upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
