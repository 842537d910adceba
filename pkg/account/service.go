package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/raghavverse/simple-auth/pkg/notification"
	"github.com/raghavverse/simple-auth/pkg/otp"
	"github.com/raghavverse/simple-auth/pkg/password"
	"github.com/raghavverse/simple-auth/pkg/token"
)

// Service orchestrates the credential and OTP lifecycle: registration,
// login, email verification and password reset. All durable state lives in
// the Repository; the service itself only holds injected dependencies.
type Service struct {
	repo     Repository
	hasher   password.Hasher
	tokens   *token.Service
	notifier notification.Notifier
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source. Tests use this to simulate OTP
// expiry without waiting.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates the account service with its collaborators.
func NewService(repo Repository, hasher password.Hasher, tokens *token.Service, notifier notification.Notifier, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Session is an issued session token with its embedded expiry, ready to be
// bound to the transport cookie.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// Register creates a new account and issues a session. The welcome email is
// best effort and never fails the operation.
func (s *Service) Register(ctx context.Context, name, email, plaintext string) (*User, Session, error) {
	if name == "" || email == "" || plaintext == "" {
		return nil, Session{}, ErrMissingFields
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return nil, Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.Insert(ctx, &User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, Session{}, err
	}

	session, err := s.issueSession(user.ID)
	if err != nil {
		return nil, Session{}, err
	}

	s.notify(ctx, notification.NoticeWelcome, notification.NotificationData{
		To: user.Email,
		Data: map[string]string{
			"Name":  user.Name,
			"Email": user.Email,
		},
	})

	return user, session, nil
}

// Login verifies credentials and issues a session. Unknown email and wrong
// password both return ErrInvalidCredentials so the response does not
// disclose which one was wrong.
func (s *Service) Login(ctx context.Context, email, plaintext string) (*User, Session, error) {
	if email == "" || plaintext == "" {
		return nil, Session{}, ErrMissingFields
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, Session{}, ErrInvalidCredentials
		}
		return nil, Session{}, err
	}

	match, err := s.hasher.Verify(plaintext, user.PasswordHash)
	if err != nil {
		return nil, Session{}, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, Session{}, ErrInvalidCredentials
	}

	session, err := s.issueSession(user.ID)
	if err != nil {
		return nil, Session{}, err
	}

	return user, session, nil
}

// SendVerifyOTP issues a fresh verification code for the authenticated user
// and emails it. Re-issuing supersedes any previous code and restarts the
// full TTL window. The email is best effort; the stored code is the
// critical step.
func (s *Service) SendVerifyOTP(ctx context.Context, userID uuid.UUID) error {
	var snapshot User
	var code string

	err := s.repo.UpdateByID(ctx, userID, func(user *User) error {
		if user.IsVerified {
			return ErrAlreadyVerified
		}

		challenge, err := otp.New(otp.PurposeVerify, s.now())
		if err != nil {
			return fmt.Errorf("failed to issue verification otp: %w", err)
		}
		user.VerifyOTP = challenge

		code = challenge.Code
		snapshot = *user
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, notification.NoticeVerifyOTP, notification.NotificationData{
		To: snapshot.Email,
		Data: map[string]string{
			"Email":       snapshot.Email,
			"OTP":         code,
			"ExpiryHours": strconv.Itoa(int(otp.PurposeVerify.TTL().Hours())),
		},
	})

	return nil
}

// VerifyEmail consumes the verification code and marks the account
// verified. The code clear and the verified flag commit in one repository
// mutation.
func (s *Service) VerifyEmail(ctx context.Context, userID uuid.UUID, code string) error {
	if code == "" {
		return ErrMissingFields
	}

	return s.repo.UpdateByID(ctx, userID, func(user *User) error {
		if err := s.consume(&user.VerifyOTP, code); err != nil {
			return err
		}
		user.IsVerified = true
		return nil
	})
}

// SendResetOTP issues a fresh password reset code for the given email and
// mails it. Returns ErrUserNotFound for unknown emails, matching the
// original behavior.
func (s *Service) SendResetOTP(ctx context.Context, email string) error {
	if email == "" {
		return ErrMissingFields
	}

	var snapshot User
	var code string

	err := s.repo.UpdateByEmail(ctx, email, func(user *User) error {
		challenge, err := otp.New(otp.PurposeReset, s.now())
		if err != nil {
			return fmt.Errorf("failed to issue reset otp: %w", err)
		}
		user.ResetOTP = challenge

		code = challenge.Code
		snapshot = *user
		return nil
	})
	if err != nil {
		return err
	}

	s.notify(ctx, notification.NoticeResetOTP, notification.NotificationData{
		To: snapshot.Email,
		Data: map[string]string{
			"Email":         snapshot.Email,
			"OTP":           code,
			"ExpiryMinutes": strconv.Itoa(int(otp.PurposeReset.TTL().Minutes())),
		},
	})

	return nil
}

// ResendResetOTP re-issues the reset code. The previous code is invalidated
// and the TTL window restarts.
func (s *Service) ResendResetOTP(ctx context.Context, email string) error {
	return s.SendResetOTP(ctx, email)
}

// ResetPassword consumes the reset code and overwrites the password. The
// code clear and the password change commit in one repository mutation.
func (s *Service) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if email == "" || code == "" || newPassword == "" {
		return ErrMissingFields
	}

	// Hash outside the record lock; bcrypt is deliberately slow.
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdateByEmail(ctx, email, func(user *User) error {
		if err := s.consume(&user.ResetOTP, code); err != nil {
			return err
		}
		user.PasswordHash = hash
		return nil
	})
}

// GetUser returns the record for the authenticated caller.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// consume validates the supplied code against the stored challenge and
// clears it on success.
func (s *Service) consume(challenge *otp.Challenge, code string) error {
	if err := otp.Consume(*challenge, code, s.now()); err != nil {
		switch {
		case errors.Is(err, otp.ErrExpired):
			return ErrOTPExpired
		case errors.Is(err, otp.ErrMismatch):
			return ErrOTPMismatch
		default:
			return err
		}
	}
	*challenge = otp.Challenge{}
	return nil
}

func (s *Service) issueSession(userID uuid.UUID) (Session, error) {
	tokenStr, expiresAt, err := s.tokens.Issue(userID.String())
	if err != nil {
		return Session{}, fmt.Errorf("failed to issue session token: %w", err)
	}
	return Session{Token: tokenStr, ExpiresAt: expiresAt}, nil
}

// notify delivers a notice best effort. Failures are logged and swallowed
// here, never propagated to the caller.
func (s *Service) notify(ctx context.Context, notice notification.NoticeType, data notification.NotificationData) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, notice, data); err != nil {
		slog.Warn("Failed to send notification", "notice", notice, "to", data.To, "err", err)
	}
}
