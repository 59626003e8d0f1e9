package mocks

import (
	"context"
	"errors"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"
)

// MockSessionVerifier implements services.SessionVerifier for testing.
// Sessions maps session tokens to the identity the provider would
// return.
type MockSessionVerifier struct {
	Sessions     map[string]*services.ExternalIdentity
	ShouldError  bool
	ErrorMessage string

	VerifyCalls []VerifySessionCall
}

type VerifySessionCall struct {
	SessionToken string
	Timestamp    time.Time
}

func NewMockSessionVerifier() *MockSessionVerifier {
	return &MockSessionVerifier{
		Sessions: make(map[string]*services.ExternalIdentity),
	}
}

func (m *MockSessionVerifier) AddSession(token string, identity *services.ExternalIdentity) {
	m.Sessions[token] = identity
}

func (m *MockSessionVerifier) VerifySession(ctx context.Context, sessionToken string) (*services.ExternalIdentity, error) {
	m.VerifyCalls = append(m.VerifyCalls, VerifySessionCall{
		SessionToken: sessionToken,
		Timestamp:    time.Now(),
	})

	if m.ShouldError {
		msg := m.ErrorMessage
		if msg == "" {
			msg = "identity provider unavailable"
		}
		return nil, errors.New(msg)
	}

	identity, ok := m.Sessions[sessionToken]
	if !ok {
		return nil, services.ErrPermissionDenied
	}
	return identity, nil
}
