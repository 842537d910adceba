package otp

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"
)

// Purpose scopes a one-time code to the flow it was issued for, so a
// verification code cannot authorize a password reset and vice versa.
type Purpose string

const (
	// PurposeVerify is the email ownership verification flow.
	PurposeVerify Purpose = "verify"
	// PurposeReset is the self-service password reset flow.
	PurposeReset Purpose = "reset"
)

// CodeLength is the number of decimal digits in a generated code.
const CodeLength = 6

var (
	// ErrExpired is returned when no code is stored or the stored code is past its expiry
	ErrExpired = errors.New("otp expired or not issued")

	// ErrMismatch is returned when a live code does not match the supplied code
	ErrMismatch = errors.New("otp does not match")
)

// TTL returns the lifetime policy for codes issued for this purpose.
func (p Purpose) TTL() time.Duration {
	switch p {
	case PurposeReset:
		return 15 * time.Minute
	default:
		return 24 * time.Hour
	}
}

var codeSpace = big.NewInt(1_000_000)

// GenerateCode returns a uniformly random 6-digit decimal code with leading
// zeros preserved, drawn from crypto/rand.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate otp code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Challenge is the stored half of an issued one-time code. The zero value
// means no code is outstanding.
type Challenge struct {
	Code      string
	ExpiresAt time.Time
}

// New issues a fresh challenge for the given purpose. Assigning the result
// over a previous challenge supersedes it; there is no grace overlap.
func New(purpose Purpose, now time.Time) (Challenge, error) {
	code, err := GenerateCode()
	if err != nil {
		return Challenge{}, err
	}
	return Challenge{
		Code:      code,
		ExpiresAt: now.Add(purpose.TTL()),
	}, nil
}

// Live reports whether the challenge holds a code that has not expired.
func (c Challenge) Live(now time.Time) bool {
	return c.Code != "" && now.Before(c.ExpiresAt)
}

// Match compares the supplied code against the stored one in constant time.
func (c Challenge) Match(code string) bool {
	return subtle.ConstantTimeCompare([]byte(c.Code), []byte(code)) == 1
}

// Consume validates a supplied code against a stored challenge. The caller
// must clear the stored challenge and apply the confirming side effect in the
// same record mutation, so the clear and the effect commit as one unit.
func Consume(c Challenge, supplied string, now time.Time) error {
	if !c.Live(now) {
		return ErrExpired
	}
	if !c.Match(supplied) {
		return ErrMismatch
	}
	return nil
}
