package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/config"
)

// ExternalIdentity is the profile returned by the platform identity
// provider for a verified session.
type ExternalIdentity struct {
	ExternalID       string `json:"external_id"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	OrganizationSlug string `json:"organization_slug"`
}

// SessionVerifier checks a session token against the identity
// provider. Tests substitute a mock.
type SessionVerifier interface {
	VerifySession(ctx context.Context, sessionToken string) (*ExternalIdentity, error)
}

// IdentityService talks to the external identity provider over HTTP.
// Authentication is delegated: we never see credentials, only session
// tokens minted by the provider.
type IdentityService struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewIdentityService(cfg config.IdentityConfig) *IdentityService {
	return &IdentityService{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (s *IdentityService) VerifySession(ctx context.Context, sessionToken string) (*ExternalIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/sessions/verify", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+sessionToken)
	req.Header.Set("X-API-Key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("%w: session rejected by identity provider", ErrPermissionDenied)
	default:
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var identity ExternalIdentity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity response: %w", err)
	}
	if identity.ExternalID == "" || identity.Email == "" {
		return nil, fmt.Errorf("identity provider returned incomplete profile")
	}

	return &identity, nil
}

var _ SessionVerifier = (*IdentityService)(nil)
