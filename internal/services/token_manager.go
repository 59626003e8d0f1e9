package services

import (
	"context"
	"fmt"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
)

// TokenManager tracks issued refresh tokens in Redis so they can be
// rotated and revoked. A refresh token is valid only while its JWT ID
// is still present under the issuing user's key.
type TokenManager struct {
	redis database.RedisClient
}

func NewTokenManager(redis database.RedisClient) *TokenManager {
	return &TokenManager{redis: redis}
}

func refreshTokenKey(userID uint, jwtID string) string {
	return fmt.Sprintf("refresh_token:%d:%s", userID, jwtID)
}

// StoreRefreshToken registers a freshly issued refresh token. The key
// expires together with the token itself.
func (tm *TokenManager) StoreRefreshToken(ctx context.Context, userID uint, jwtID string, ttl time.Duration) error {
	if err := tm.redis.Set(ctx, refreshTokenKey(userID, jwtID), "1", ttl); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// IsRefreshTokenActive reports whether the token was issued by us and
// has not been rotated or revoked since.
func (tm *TokenManager) IsRefreshTokenActive(ctx context.Context, userID uint, jwtID string) (bool, error) {
	count, err := tm.redis.Exists(ctx, refreshTokenKey(userID, jwtID))
	if err != nil {
		return false, fmt.Errorf("failed to check refresh token: %w", err)
	}
	return count > 0, nil
}

// RotateRefreshToken atomically replaces the old token registration
// with the new one. Presenting the old token afterwards fails.
func (tm *TokenManager) RotateRefreshToken(ctx context.Context, userID uint, oldJWTID, newJWTID string, ttl time.Duration) error {
	if err := tm.redis.Delete(ctx, refreshTokenKey(userID, oldJWTID)); err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return tm.StoreRefreshToken(ctx, userID, newJWTID, ttl)
}

// RevokeRefreshToken invalidates a single refresh token, used on
// logout.
func (tm *TokenManager) RevokeRefreshToken(ctx context.Context, userID uint, jwtID string) error {
	if err := tm.redis.Delete(ctx, refreshTokenKey(userID, jwtID)); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
