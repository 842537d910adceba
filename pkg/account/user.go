package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/raghavverse/simple-auth/pkg/otp"
)

// User is the credential record for one account. Email is the unique,
// case-sensitive lookup key; the id is store-assigned and immutable.
// At most one live OTP challenge exists per purpose.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsVerified   bool
	VerifyOTP    otp.Challenge
	ResetOTP     otp.Challenge
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
