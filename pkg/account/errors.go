package account

import "errors"

var (
	// ErrMissingFields is returned when a required request field is empty
	ErrMissingFields = errors.New("missing required fields")

	// ErrEmailTaken is returned when registering an email that already exists
	ErrEmailTaken = errors.New("user already exists with this email address")

	// ErrInvalidCredentials is returned on login failure without disclosing
	// whether the email or the password was wrong
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound is returned when no record exists for the identity
	ErrUserNotFound = errors.New("user not found")

	// ErrAlreadyVerified is returned when requesting verification for a
	// verified account
	ErrAlreadyVerified = errors.New("account already verified")

	// ErrOTPExpired is returned when no live code is stored for the purpose
	ErrOTPExpired = errors.New("otp expired or invalid")

	// ErrOTPMismatch is returned when the supplied code differs from the
	// stored live code
	ErrOTPMismatch = errors.New("invalid otp")
)
