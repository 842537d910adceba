package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the credential store. Implementations must guarantee email
// uniqueness at the storage layer and per-record atomic read-modify-write
// for the Update methods: fn runs while the record is exclusively held, and
// an fn error aborts the mutation without persisting anything. OTP issue and
// consume run inside fn so the code clear and its confirming side effect
// commit as one unit.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// Insert stores a new user and returns the stored record.
	// Returns ErrEmailTaken when the email already exists.
	Insert(ctx context.Context, user *User) (*User, error)

	// Save overwrites an existing record in full.
	Save(ctx context.Context, user *User) error

	// UpdateByID applies fn to the record under exclusive access.
	UpdateByID(ctx context.Context, id uuid.UUID, fn func(*User) error) error

	// UpdateByEmail applies fn to the record under exclusive access.
	UpdateByEmail(ctx context.Context, email string, fn func(*User) error) error
}
