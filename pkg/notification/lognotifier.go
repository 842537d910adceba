package notification

import (
	"context"
	"log/slog"
)

// LogNotifier writes notices to the log instead of delivering them. Useful
// for development environments without an SMTP server.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, notice NoticeType, notification NotificationData) error {
	slog.Info("Notification (log only)", "notice", notice, "to", notification.To, "data", notification.Data)
	return nil
}
