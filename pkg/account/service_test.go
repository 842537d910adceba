package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/raghavverse/simple-auth/pkg/notification"
	"github.com/raghavverse/simple-auth/pkg/password"
	"github.com/raghavverse/simple-auth/pkg/token"
)

// fakeClock lets tests simulate OTP expiry without waiting.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type testEnv struct {
	svc      *Service
	repo     *InMemoryRepository
	notifier *notification.MockNotifier
	clock    *fakeClock
}

func newTestEnv() *testEnv {
	repo := NewInMemoryRepository()
	notifier := &notification.MockNotifier{}
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	hasher := &password.BcryptHasher{Cost: bcrypt.MinCost}
	tokens := token.NewService("service-test-secret", "simple-auth")

	return &testEnv{
		svc:      NewService(repo, hasher, tokens, notifier, WithClock(clock.Now)),
		repo:     repo,
		notifier: notifier,
		clock:    clock,
	}
}

// storedOTP reads the stored challenge directly, bypassing the notifier.
func (e *testEnv) storedVerifyCode(t *testing.T, email string) string {
	t.Helper()
	user, err := e.repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.VerifyOTP.Code
}

func (e *testEnv) storedResetCode(t *testing.T, email string) string {
	t.Helper()
	user, err := e.repo.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	return user.ResetOTP.Code
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		env := newTestEnv()

		user, session, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsVerified, "new accounts start unverified")
		assert.NotEmpty(t, session.Token)
		assert.NotEqual(t, "pw123", user.PasswordHash)

		sent, ok := env.notifier.Last()
		require.True(t, ok)
		assert.Equal(t, notification.NoticeWelcome, sent.Notice)
		assert.Equal(t, "a@x.com", sent.Data.To)
	})

	t.Run("MissingFields", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "", "a@x.com", "pw123")
		assert.ErrorIs(t, err, ErrMissingFields)
		_, _, err = env.svc.Register(ctx, "A", "", "pw123")
		assert.ErrorIs(t, err, ErrMissingFields)
		_, _, err = env.svc.Register(ctx, "A", "a@x.com", "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		_, _, err = env.svc.Register(ctx, "B", "a@x.com", "other")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("NotifierFailureDoesNotFailRegistration", func(t *testing.T) {
		env := newTestEnv()
		env.notifier.Err = errors.New("smtp down")

		_, session, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err, "welcome email is best effort")
		assert.NotEmpty(t, session.Token)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("RegisterThenLogin", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		user, session, err := env.svc.Login(ctx, "a@x.com", "pw123")
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", user.Email)
		assert.False(t, user.IsVerified)
		assert.NotEmpty(t, session.Token)
	})

	t.Run("MissingFields", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Login(ctx, "", "pw123")
		assert.ErrorIs(t, err, ErrMissingFields)
		_, _, err = env.svc.Login(ctx, "a@x.com", "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("FailureDoesNotDiscloseCause", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		_, _, unknownEmailErr := env.svc.Login(ctx, "nobody@x.com", "pw123")
		_, _, wrongPasswordErr := env.svc.Login(ctx, "a@x.com", "wrong")

		assert.ErrorIs(t, unknownEmailErr, ErrInvalidCredentials)
		assert.ErrorIs(t, wrongPasswordErr, ErrInvalidCredentials)
		assert.Equal(t, unknownEmailErr.Error(), wrongPasswordErr.Error(),
			"unknown email and wrong password must be indistinguishable")
	})
}

func TestVerifyEmailFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("FullFlow", func(t *testing.T) {
		env := newTestEnv()

		user, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID))

		sent, ok := env.notifier.Last()
		require.True(t, ok)
		assert.Equal(t, notification.NoticeVerifyOTP, sent.Notice)
		code := sent.Data.Data["OTP"]
		require.Len(t, code, 6)
		assert.Equal(t, env.storedVerifyCode(t, "a@x.com"), code)

		// Wrong code: verification status unchanged.
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		err = env.svc.VerifyEmail(ctx, user.ID, wrong)
		assert.ErrorIs(t, err, ErrOTPMismatch)
		stored, err := env.repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsVerified)

		// Correct code: verified and challenge cleared in one unit.
		require.NoError(t, env.svc.VerifyEmail(ctx, user.ID, code))
		stored, err = env.repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, stored.IsVerified)
		assert.Empty(t, stored.VerifyOTP.Code)

		// Replay: the consumed code never works twice.
		err = env.svc.VerifyEmail(ctx, user.ID, code)
		assert.ErrorIs(t, err, ErrOTPExpired)

		// Further verification requests are rejected.
		err = env.svc.SendVerifyOTP(ctx, user.ID)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})

	t.Run("ReissueInvalidatesPreviousCode", func(t *testing.T) {
		env := newTestEnv()

		user, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID))
		first := env.storedVerifyCode(t, "a@x.com")

		second := first
		for i := 0; i < 10 && second == first; i++ {
			require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID))
			second = env.storedVerifyCode(t, "a@x.com")
		}
		require.NotEqual(t, first, second)

		err = env.svc.VerifyEmail(ctx, user.ID, first)
		assert.ErrorIs(t, err, ErrOTPMismatch)

		require.NoError(t, env.svc.VerifyEmail(ctx, user.ID, second))
	})

	t.Run("ExpiresAfter24Hours", func(t *testing.T) {
		env := newTestEnv()

		user, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID))
		code := env.storedVerifyCode(t, "a@x.com")

		env.clock.Advance(24*time.Hour + time.Minute)

		err = env.svc.VerifyEmail(ctx, user.ID, code)
		assert.ErrorIs(t, err, ErrOTPExpired)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		env := newTestEnv()

		err := env.svc.SendVerifyOTP(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("NotifierFailureDoesNotFailIssue", func(t *testing.T) {
		env := newTestEnv()

		user, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		env.notifier.Err = errors.New("smtp down")
		require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID), "stored code is the critical step")
		assert.NotEmpty(t, env.storedVerifyCode(t, "a@x.com"))
	})
}

func TestResetPasswordFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownEmail", func(t *testing.T) {
		env := newTestEnv()

		err := env.svc.SendResetOTP(ctx, "nobody@x.com")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("FullFlow", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendResetOTP(ctx, "a@x.com"))
		sent, ok := env.notifier.Last()
		require.True(t, ok)
		assert.Equal(t, notification.NoticeResetOTP, sent.Notice)
		code := sent.Data.Data["OTP"]
		require.Len(t, code, 6)

		// Wrong code rejected, stored challenge untouched.
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		err = env.svc.ResetPassword(ctx, "a@x.com", wrong, "newpw456")
		assert.ErrorIs(t, err, ErrOTPMismatch)

		require.NoError(t, env.svc.ResetPassword(ctx, "a@x.com", code, "newpw456"))

		_, _, err = env.svc.Login(ctx, "a@x.com", "pw123")
		assert.ErrorIs(t, err, ErrInvalidCredentials, "old password must stop working")
		_, _, err = env.svc.Login(ctx, "a@x.com", "newpw456")
		assert.NoError(t, err)

		// Replay of the consumed code.
		err = env.svc.ResetPassword(ctx, "a@x.com", code, "again789")
		assert.ErrorIs(t, err, ErrOTPExpired)
	})

	t.Run("ExpiresAfter15Minutes", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendResetOTP(ctx, "a@x.com"))
		code := env.storedResetCode(t, "a@x.com")

		env.clock.Advance(16 * time.Minute)

		err = env.svc.ResetPassword(ctx, "a@x.com", code, "newpw456")
		assert.ErrorIs(t, err, ErrOTPExpired)
	})

	t.Run("ResendRestartsTTLWindow", func(t *testing.T) {
		env := newTestEnv()

		_, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendResetOTP(ctx, "a@x.com"))
		env.clock.Advance(10 * time.Minute)

		require.NoError(t, env.svc.ResendResetOTP(ctx, "a@x.com"))
		code := env.storedResetCode(t, "a@x.com")

		// 20 minutes after the first issue, but only 10 after the resend.
		env.clock.Advance(10 * time.Minute)

		require.NoError(t, env.svc.ResetPassword(ctx, "a@x.com", code, "newpw456"))
	})

	t.Run("MissingFields", func(t *testing.T) {
		env := newTestEnv()

		err := env.svc.ResetPassword(ctx, "", "123456", "newpw")
		assert.ErrorIs(t, err, ErrMissingFields)
		err = env.svc.ResetPassword(ctx, "a@x.com", "", "newpw")
		assert.ErrorIs(t, err, ErrMissingFields)
		err = env.svc.ResetPassword(ctx, "a@x.com", "123456", "")
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("VerifyCodeCannotResetPassword", func(t *testing.T) {
		env := newTestEnv()

		user, _, err := env.svc.Register(ctx, "A", "a@x.com", "pw123")
		require.NoError(t, err)

		require.NoError(t, env.svc.SendVerifyOTP(ctx, user.ID))
		verifyCode := env.storedVerifyCode(t, "a@x.com")

		err = env.svc.ResetPassword(ctx, "a@x.com", verifyCode, "newpw456")
		assert.Error(t, err, "a verification code must not authorize a reset")
	})
}
