package notification

import "context"

// NoticeType identifies the message being sent so the notifier can pick the
// right subject and template.
type NoticeType string

const (
	NoticeWelcome   NoticeType = "welcome"
	NoticeVerifyOTP NoticeType = "verify_otp"
	NoticeResetOTP  NoticeType = "reset_otp"
)

// NotificationData carries the recipient and the template values for a
// single notice.
type NotificationData struct {
	To   string            // Recipient email address
	Data map[string]string // Template values (e.g. Name, OTP, Email)
}

// Notifier delivers notices out of band. Callers treat delivery as best
// effort: a Send failure must be catchable and never fatal to the owning
// operation.
type Notifier interface {
	Send(ctx context.Context, notice NoticeType, notification NotificationData) error
}
