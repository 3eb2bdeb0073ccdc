// Package email sends transactional mail. The real implementation uses
// Resend; local runs get a capturing mock.
package email

import (
	"context"
	"sync"

	"github.com/inkpad/inkpad/internal/obs"
)

// Service is the sender used by the signup flow.
type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
}

// SentEmail is a captured message.
type SentEmail struct {
	To      string
	Subject string
	HTML    string
}

// Mock captures emails instead of sending them.
type Mock struct {
	mu     sync.Mutex
	emails []SentEmail
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) SendWelcome(ctx context.Context, to, name string) error {
	subject, html := renderWelcome(name)
	m.mu.Lock()
	m.emails = append(m.emails, SentEmail{To: to, Subject: subject, HTML: html})
	m.mu.Unlock()

	obs.From(ctx).Info("mock_email_sent", "pkg", "email", "to", to, "subject", subject)
	return nil
}

// Sent returns a copy of the captured messages.
func (m *Mock) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentEmail(nil), m.emails...)
}

// LastEmail returns the most recent captured message, or the zero value.
func (m *Mock) LastEmail() SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.emails) == 0 {
		return SentEmail{}
	}
	return m.emails[len(m.emails)-1]
}

func (m *Mock) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.emails)
}
