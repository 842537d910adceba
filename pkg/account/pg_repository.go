package account

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/001_users.sql
var usersSchema string

const userColumns = `id, email, name, password_hash, is_verified,
	verify_otp, verify_otp_expires_at, reset_otp, reset_otp_expires_at,
	created_at, updated_at`

// PgRepository implements Repository on PostgreSQL. The Update methods run
// inside a transaction with SELECT ... FOR UPDATE, so concurrent mutations
// of the same record serialize at the row level.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewPgRepository creates a Postgres-backed credential store.
func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Migrate applies the users schema. Safe to run repeatedly.
func (r *PgRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, usersSchema); err != nil {
		return fmt.Errorf("failed to apply users schema: %w", err)
	}
	return nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PgRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *PgRepository) Insert(ctx context.Context, user *User) (*User, error) {
	stored := *user
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		stored.ID, stored.Email, stored.Name, stored.PasswordHash, stored.IsVerified,
		stored.VerifyOTP.Code, nullableTime(stored.VerifyOTP.ExpiresAt),
		stored.ResetOTP.Code, nullableTime(stored.ResetOTP.ExpiresAt),
		stored.CreatedAt, stored.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &stored, nil
}

func (r *PgRepository) Save(ctx context.Context, user *User) error {
	return r.save(ctx, r.pool, user)
}

func (r *PgRepository) UpdateByID(ctx context.Context, id uuid.UUID, fn func(*User) error) error {
	return r.update(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id, fn)
}

func (r *PgRepository) UpdateByEmail(ctx context.Context, email string, fn func(*User) error) error {
	return r.update(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email, fn)
}

func (r *PgRepository) update(ctx context.Context, query string, key interface{}, fn func(*User) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	user, err := scanUser(tx.QueryRow(ctx, query, key))
	if err != nil {
		return err
	}

	if err := fn(user); err != nil {
		return err
	}

	if err := r.save(ctx, tx, user); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// execer covers both pool and transaction for save.
type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func (r *PgRepository) save(ctx context.Context, db execer, user *User) error {
	user.UpdatedAt = time.Now().UTC()
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET email = $2, name = $3, password_hash = $4, is_verified = $5,
		     verify_otp = $6, verify_otp_expires_at = $7,
		     reset_otp = $8, reset_otp_expires_at = $9,
		     updated_at = $10
		 WHERE id = $1`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.IsVerified,
		user.VerifyOTP.Code, nullableTime(user.VerifyOTP.ExpiresAt),
		user.ResetOTP.Code, nullableTime(user.ResetOTP.ExpiresAt),
		user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var verifyExp, resetExp *time.Time
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsVerified,
		&u.VerifyOTP.Code, &verifyExp, &u.ResetOTP.Code, &resetExp,
		&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	if verifyExp != nil {
		u.VerifyOTP.ExpiresAt = *verifyExp
	}
	if resetExp != nil {
		u.ResetOTP.ExpiresAt = *resetExp
	}
	return &u, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
