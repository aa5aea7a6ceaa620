package testutil

import (
	"errors"
	"sync"
)

// SentEmail records one delivery through the stub mailer.
type SentEmail struct {
	To        string
	FirstName string
	VerifyURL string
}

// StubMailer is an in-memory mail transport for tests. It records every
// delivery and can be told to fail.
type StubMailer struct {
	mu   sync.Mutex
	sent []SentEmail

	// Fail makes every send return an error.
	Fail bool
}

// SendVerificationEmail records the delivery, or fails when Fail is set.
func (m *StubMailer) SendVerificationEmail(to, firstName, verifyURL string) error {
	if m.Fail {
		return errors.New("smtp unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, SentEmail{To: to, FirstName: firstName, VerifyURL: verifyURL})
	return nil
}

// Sent returns a copy of all recorded deliveries.
func (m *StubMailer) Sent() []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
