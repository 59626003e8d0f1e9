package services_test

import (
	"context"
	"testing"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminAdjustReputation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	member := env.createUser(t, org, "member@acme.example", models.RoleMember, false)

	require.NoError(t, env.reputation.AdminAdjust(ctx, admin, member.ID, 25, "helpful plant visit writeup"))
	require.NoError(t, env.reputation.AdminAdjust(ctx, admin, member.ID, -5, "correction"))

	score, err := env.reputation.GetScore(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, score)

	events, total, err := env.reputation.History(ctx, member.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, events, 2)
	for _, event := range events {
		assert.Equal(t, models.ReputationReasonAdminAdjustment, event.Reason)
		require.NotNil(t, event.ActorID)
		assert.Equal(t, admin.ID, *event.ActorID)
	}
}

func TestAdminAdjustGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	member := env.createUser(t, org, "member@acme.example", models.RoleMember, false)

	err := env.reputation.AdminAdjust(ctx, member, admin.ID, 10, "nope")
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	err = env.reputation.AdminAdjust(ctx, admin, member.ID, 0, "noop")
	assert.ErrorIs(t, err, services.ErrValidation)

	err = env.reputation.AdminAdjust(ctx, admin, 99999, 10, "ghost")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestScoreMatchesLedgerSum(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Ledger consistency check")
	answer := env.createReply(t, answerer, topic.ID, "an answer", nil)

	// Mix best-answer movement with manual adjustments.
	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)
	_, err = env.bestAnswers.Unmark(ctx, author, topic.ID)
	require.NoError(t, err)
	_, err = env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)
	require.NoError(t, env.reputation.AdminAdjust(ctx, admin, answerer.ID, 7, "bonus"))

	var ledgerSum int64
	require.NoError(t, env.db.DB().Model(&models.ReputationEvent{}).
		Where("user_id = ?", answerer.ID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&ledgerSum).Error)

	score, err := env.reputation.GetScore(ctx, answerer.ID)
	require.NoError(t, err)
	assert.EqualValues(t, ledgerSum, score)
	assert.Equal(t, models.BestAnswerBonus+7, score)
}
