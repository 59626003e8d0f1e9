package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"

	"gorm.io/gorm"
)

// AuthService exchanges identity-provider sessions for platform token
// pairs. Membership is established beforehand through invitations;
// login never provisions a user on its own.
type AuthService struct {
	db       database.Database
	verifier SessionVerifier
	jwt      *JWTService
	tokens   *TokenManager
}

func NewAuthService(db database.Database, verifier SessionVerifier, jwt *JWTService, tokens *TokenManager) *AuthService {
	return &AuthService{
		db:       db,
		verifier: verifier,
		jwt:      jwt,
		tokens:   tokens,
	}
}

type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

// Login verifies the provider session and issues a token pair for the
// matching member. Pending members become active on first login.
func (s *AuthService) Login(ctx context.Context, sessionToken string) (*TokenPair, error) {
	identity, err := s.verifier.VerifySession(ctx, sessionToken)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = s.db.DB().WithContext(ctx).
		Preload("Organization").
		Where("external_id = ? OR email = ?", identity.ExternalID, identity.Email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no membership for %s, ask an admin for an invitation", ErrPermissionDenied, identity.Email)
		}
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"last_login_at": now,
	}
	if user.ExternalID == nil || *user.ExternalID != identity.ExternalID {
		updates["external_id"] = identity.ExternalID
	}
	if user.Status == models.UserStatusPending {
		updates["status"] = models.UserStatusActive
	}
	if err := s.db.DB().WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	return s.issuePair(ctx, &user)
}

// Refresh rotates the refresh token and returns a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	active, err := s.tokens.IsRefreshTokenActive(ctx, claims.UserID, claims.ID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, fmt.Errorf("%w: refresh token has been revoked", ErrPermissionDenied)
	}

	var user models.User
	if err := s.db.DB().WithContext(ctx).
		Preload("Organization").
		First(&user, claims.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, claims.UserID)
		}
		return nil, err
	}

	pair, err := s.issueTokens(&user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.RotateRefreshToken(ctx, user.ID, claims.ID, pair.refreshJWTID, s.jwt.RefreshExpiry()); err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: pair.access, RefreshToken: pair.refresh, User: &user}, nil
}

// Logout revokes the presented refresh token. Invalid tokens are
// ignored so logout never fails loudly.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	return s.tokens.RevokeRefreshToken(ctx, claims.UserID, claims.ID)
}

type issuedTokens struct {
	access       string
	refresh      string
	refreshJWTID string
}

func (s *AuthService) issueTokens(user *models.User) (*issuedTokens, error) {
	access, err := s.jwt.GenerateToken(user.ID, user.OrganizationID, user.Email, user.Role, user.IsVerified)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	claims, err := s.jwt.ValidateRefreshToken(refresh)
	if err != nil {
		return nil, err
	}

	return &issuedTokens{access: access, refresh: refresh, refreshJWTID: claims.ID}, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, err := s.issueTokens(user)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.StoreRefreshToken(ctx, user.ID, pair.refreshJWTID, s.jwt.RefreshExpiry()); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: pair.access, RefreshToken: pair.refresh, User: user}, nil
}
