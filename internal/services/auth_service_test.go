package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/mocks"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authEnv struct {
	*testEnv
	auth     *services.AuthService
	jwt      *services.JWTService
	verifier *mocks.MockSessionVerifier
	redis    *mocks.MockRedisClient
}

func newAuthEnv(t *testing.T) *authEnv {
	env := newTestEnv(t)
	verifier := mocks.NewMockSessionVerifier()
	redis := mocks.NewMockRedisClient()
	jwtService := services.NewJWTService("test-secret", time.Hour, 0)
	tokens := services.NewTokenManager(redis)

	return &authEnv{
		testEnv:  env,
		auth:     services.NewAuthService(env.db, verifier, jwtService, tokens),
		jwt:      jwtService,
		verifier: verifier,
		redis:    redis,
	}
}

func TestLogin(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	user := env.createUser(t, org, "member@acme.example", models.RoleMember, true)
	env.verifier.AddSession("session-abc", &services.ExternalIdentity{
		ExternalID: "idp-user-1",
		Email:      "member@acme.example",
		FirstName:  "Test",
		LastName:   "User",
	})

	pair, err := env.auth.Login(ctx, "session-abc")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, user.ID, pair.User.ID)

	claims, err := env.jwt.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, org.ID, claims.OrganizationID)
	assert.Equal(t, models.RoleMember, claims.Role)
	assert.True(t, claims.IsVerified)

	// The external ID binds on first login.
	reloaded := env.reloadUser(t, user.ID)
	require.NotNil(t, reloaded.ExternalID)
	assert.Equal(t, "idp-user-1", *reloaded.ExternalID)
	assert.NotNil(t, reloaded.LastLoginAt)
}

func TestLoginWithoutMembership(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	env.verifier.AddSession("session-abc", &services.ExternalIdentity{
		ExternalID: "idp-stranger",
		Email:      "stranger@elsewhere.example",
	})

	_, err := env.auth.Login(ctx, "session-abc")
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// An unknown session token fails at the provider.
	_, err = env.auth.Login(ctx, "bogus-session")
	assert.ErrorIs(t, err, services.ErrPermissionDenied)
	assert.Len(t, env.verifier.VerifyCalls, 2)
}

func TestLoginActivatesPendingUser(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	user := env.createUser(t, org, "pending@acme.example", models.RoleMember, false)
	require.NoError(t, env.db.DB().Model(user).
		Update("status", models.UserStatusPending).Error)

	env.verifier.AddSession("session-abc", &services.ExternalIdentity{
		ExternalID: "idp-user-2",
		Email:      "pending@acme.example",
	})

	_, err := env.auth.Login(ctx, "session-abc")
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusActive, env.reloadUser(t, user.ID).Status)
}

func TestRefreshRotatesToken(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	env.createUser(t, org, "member@acme.example", models.RoleMember, false)
	env.verifier.AddSession("session-abc", &services.ExternalIdentity{
		ExternalID: "idp-user-1",
		Email:      "member@acme.example",
	})

	pair, err := env.auth.Login(ctx, "session-abc")
	require.NoError(t, err)

	next, err := env.auth.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// Rotation invalidates the previous refresh token.
	_, err = env.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// The new one keeps working.
	_, err = env.auth.Refresh(ctx, next.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsForgedToken(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	forged := services.NewJWTService("other-secret", time.Hour, 0)
	token, err := forged.GenerateRefreshToken(1, 1)
	require.NoError(t, err)

	_, err = env.auth.Refresh(ctx, token)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// A well-signed token we never stored is also rejected.
	token, err = env.jwt.GenerateRefreshToken(1, 1)
	require.NoError(t, err)
	_, err = env.auth.Refresh(ctx, token)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newAuthEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	env.createUser(t, org, "member@acme.example", models.RoleMember, false)
	env.verifier.AddSession("session-abc", &services.ExternalIdentity{
		ExternalID: "idp-user-1",
		Email:      "member@acme.example",
	})

	pair, err := env.auth.Login(ctx, "session-abc")
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, pair.RefreshToken))

	_, err = env.auth.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// Logout with garbage never errors.
	assert.NoError(t, env.auth.Logout(ctx, "not-a-jwt"))
}

func TestJWTRoundTrip(t *testing.T) {
	jwtService := services.NewJWTService("test-secret", time.Hour, 0)

	token, err := jwtService.GenerateToken(7, 3, "user@acme.example", models.RoleAdmin, true)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(3), claims.OrganizationID)
	assert.Equal(t, "user@acme.example", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.ID)

	_, err = jwtService.ValidateToken("garbage")
	assert.Error(t, err)

	other := services.NewJWTService("other-secret", time.Hour, 0)
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTExpiry(t *testing.T) {
	jwtService := services.NewJWTService("test-secret", -time.Minute, 0)

	token, err := jwtService.GenerateToken(1, 1, "user@acme.example", models.RoleMember, false)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTRefreshExpiryConfigurable(t *testing.T) {
	// An explicit refresh expiry wins; zero falls back to 7x access.
	custom := services.NewJWTService("test-secret", time.Hour, 30*24*time.Hour)
	assert.Equal(t, 30*24*time.Hour, custom.RefreshExpiry())

	fallback := services.NewJWTService("test-secret", time.Hour, 0)
	assert.Equal(t, 7*time.Hour, fallback.RefreshExpiry())
}
