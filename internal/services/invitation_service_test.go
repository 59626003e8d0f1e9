package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInvitationService(env *testEnv, ttl time.Duration) *services.InvitationService {
	return services.NewInvitationService(env.db, env.tenants, ttl)
}

func TestInvite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	member := env.createUser(t, org, "member@acme.example", models.RoleMember, false)

	invitation, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, invitation.Role)
	assert.Equal(t, models.InvitationStatusPending, invitation.Status)
	assert.Len(t, invitation.Token, 64)
	assert.True(t, invitation.ExpiresAt.After(time.Now()))

	// Members cannot invite.
	_, err = invitations.Invite(ctx, member, services.InviteInput{Email: "other@acme.example"})
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// Existing members and open invitations are conflicts.
	_, err = invitations.Invite(ctx, admin, services.InviteInput{Email: member.Email})
	assert.ErrorIs(t, err, services.ErrConflict)
	_, err = invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	assert.ErrorIs(t, err, services.ErrConflict)

	_, err = invitations.Invite(ctx, admin, services.InviteInput{Email: "not-an-email"})
	assert.ErrorIs(t, err, services.ErrValidation)
	_, err = invitations.Invite(ctx, admin, services.InviteInput{Email: "x@acme.example", Role: "owner"})
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestInviteSupersedesLapsedInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)

	stale, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)
	require.NoError(t, env.db.DB().Model(stale).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	fresh, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)
	assert.NotEqual(t, stale.Token, fresh.Token)

	var reloaded models.UserInvitation
	require.NoError(t, env.db.DB().First(&reloaded, stale.ID).Error)
	assert.Equal(t, models.InvitationStatusExpired, reloaded.Status)
}

func TestAcceptInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)

	invitation, err := invitations.Invite(ctx, admin, services.InviteInput{
		Email: "new@acme.example",
		Role:  models.RoleAdmin,
	})
	require.NoError(t, err)

	identity := &services.ExternalIdentity{
		ExternalID: "idp-user-42",
		Email:      "new@acme.example",
		FirstName:  "Nadia",
		LastName:   "Hassan",
	}

	user, err := invitations.Accept(ctx, invitation.Token, identity)
	require.NoError(t, err)
	assert.Equal(t, org.ID, user.OrganizationID)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.UserStatusActive, user.Status)
	require.NotNil(t, user.ExternalID)
	assert.Equal(t, "idp-user-42", *user.ExternalID)

	var reloaded models.UserInvitation
	require.NoError(t, env.db.DB().First(&reloaded, invitation.ID).Error)
	assert.Equal(t, models.InvitationStatusAccepted, reloaded.Status)
	assert.NotNil(t, reloaded.AcceptedAt)

	// The token is single use.
	_, err = invitations.Accept(ctx, invitation.Token, identity)
	assert.ErrorIs(t, err, services.ErrConflict)
}

func TestAcceptInvitationGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)

	invitation, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)

	_, err = invitations.Accept(ctx, "no-such-token", &services.ExternalIdentity{Email: "new@acme.example"})
	assert.ErrorIs(t, err, services.ErrNotFound)

	// The provider identity must carry the invited email.
	_, err = invitations.Accept(ctx, invitation.Token, &services.ExternalIdentity{
		ExternalID: "idp-user-1",
		Email:      "someone-else@acme.example",
	})
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	// Lapsed invitations are marked expired on the failed redeem.
	require.NoError(t, env.db.DB().Model(invitation).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	_, err = invitations.Accept(ctx, invitation.Token, &services.ExternalIdentity{
		ExternalID: "idp-user-1",
		Email:      "new@acme.example",
	})
	assert.ErrorIs(t, err, services.ErrInvitationExpired)

	var reloaded models.UserInvitation
	require.NoError(t, env.db.DB().First(&reloaded, invitation.ID).Error)
	assert.Equal(t, models.InvitationStatusExpired, reloaded.Status)
}

func TestAcceptInvitationSeatQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "tiny")
	require.NoError(t, env.db.DB().Model(org).Update("max_users", 2).Error)
	admin := env.createUser(t, org, "admin@tiny.example", models.RoleAdmin, true)
	env.createUser(t, org, "second@tiny.example", models.RoleMember, false)

	invitation, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "third@tiny.example"})
	require.NoError(t, err)

	_, err = invitations.Accept(ctx, invitation.Token, &services.ExternalIdentity{
		ExternalID: "idp-user-3",
		Email:      "third@tiny.example",
	})
	assert.ErrorIs(t, err, services.ErrQuotaExceeded)
}

func TestRevokeInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	member := env.createUser(t, org, "member@acme.example", models.RoleMember, false)

	invitation, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)

	err = invitations.Revoke(ctx, member, invitation.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	require.NoError(t, invitations.Revoke(ctx, admin, invitation.ID))

	err = invitations.Revoke(ctx, admin, invitation.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = invitations.Accept(ctx, invitation.Token, &services.ExternalIdentity{Email: "new@acme.example"})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestExpireLapsedInvitations(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invitations := newInvitationService(env, time.Hour)

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)

	lapsed, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "old@acme.example"})
	require.NoError(t, err)
	fresh, err := invitations.Invite(ctx, admin, services.InviteInput{Email: "new@acme.example"})
	require.NoError(t, err)

	require.NoError(t, env.db.DB().Model(lapsed).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	expired, err := invitations.ExpireLapsed(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, expired)

	var reloaded models.UserInvitation
	require.NoError(t, env.db.DB().First(&reloaded, lapsed.ID).Error)
	assert.Equal(t, models.InvitationStatusExpired, reloaded.Status)
	require.NoError(t, env.db.DB().First(&reloaded, fresh.ID).Error)
	assert.Equal(t, models.InvitationStatusPending, reloaded.Status)
}
