package notification

import (
	"context"
	"sync"
)

// SentNotice records a single Send call on a MockNotifier.
type SentNotice struct {
	Notice NoticeType
	Data   NotificationData
}

// MockNotifier records notices for tests and can be forced to fail.
type MockNotifier struct {
	mu   sync.Mutex
	Sent []SentNotice
	Err  error
}

func (m *MockNotifier) Send(ctx context.Context, notice NoticeType, notification NotificationData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentNotice{Notice: notice, Data: notification})
	return nil
}

// Last returns the most recently recorded notice.
func (m *MockNotifier) Last() (SentNotice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return SentNotice{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}
