package services_test

import (
	"context"
	"testing"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkBestAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Which PLC vendor for retrofits")
	answer := env.createReply(t, answerer, topic.ID, "Siemens S7 has worked well for us", nil)

	updated, err := env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)
	assert.True(t, updated.HasBestAnswer)
	require.NotNil(t, updated.BestAnswerReplyID)
	assert.Equal(t, answer.ID, *updated.BestAnswerReplyID)

	assert.True(t, env.reloadReply(t, answer.ID).IsBestAnswer)
	assert.Equal(t, models.BestAnswerBonus, env.reloadUser(t, answerer.ID).ReputationScore)
}

func TestMarkBestAnswerAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	admin := env.createUser(t, org, "admin@acme.example", models.RoleAdmin, true)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Author gate on best answer")
	answer := env.createReply(t, answerer, topic.ID, "an answer", nil)

	// Not even an admin can pick on the author's behalf.
	_, err := env.bestAnswers.Mark(ctx, admin, topic.ID, answer.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)

	_, err = env.bestAnswers.Mark(ctx, answerer, topic.ID, answer.ID)
	assert.ErrorIs(t, err, services.ErrPermissionDenied)
}

func TestReselectBestAnswerIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Idempotent reselect check")
	answer := env.createReply(t, answerer, topic.ID, "an answer", nil)

	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)

	_, err = env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)

	// No double credit and no extra ledger entries.
	assert.Equal(t, models.BestAnswerBonus, env.reloadUser(t, answerer.ID).ReputationScore)

	var events int64
	require.NoError(t, env.db.DB().Model(&models.ReputationEvent{}).
		Where("user_id = ?", answerer.ID).
		Count(&events).Error)
	assert.EqualValues(t, 1, events)
}

func TestSwitchBestAnswerMovesBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	first := env.createUser(t, org, "first@acme.example", models.RoleMember, false)
	second := env.createUser(t, org, "second@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Switching the selected answer")
	firstAnswer := env.createReply(t, first, topic.ID, "first answer", nil)
	secondAnswer := env.createReply(t, second, topic.ID, "second answer", nil)

	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, firstAnswer.ID)
	require.NoError(t, err)

	updated, err := env.bestAnswers.Mark(ctx, author, topic.ID, secondAnswer.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.BestAnswerReplyID)
	assert.Equal(t, secondAnswer.ID, *updated.BestAnswerReplyID)

	assert.False(t, env.reloadReply(t, firstAnswer.ID).IsBestAnswer)
	assert.True(t, env.reloadReply(t, secondAnswer.ID).IsBestAnswer)

	assert.Equal(t, 0, env.reloadUser(t, first.ID).ReputationScore)
	assert.Equal(t, models.BestAnswerBonus, env.reloadUser(t, second.ID).ReputationScore)
}

func TestCompetingMarksLeaveSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	first := env.createUser(t, org, "first@acme.example", models.RoleMember, false)
	second := env.createUser(t, org, "second@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Racing selections settle on one winner")
	firstAnswer := env.createReply(t, first, topic.ID, "first answer", nil)
	secondAnswer := env.createReply(t, second, topic.ID, "second answer", nil)

	// The topic row lock serializes competing marks; whichever lands
	// second wins, and the loser's bonus is revoked in the same
	// transaction. Two back-to-back marks exercise that interleaving.
	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, firstAnswer.ID)
	require.NoError(t, err)
	_, err = env.bestAnswers.Mark(ctx, author, topic.ID, secondAnswer.ID)
	require.NoError(t, err)

	// Exactly one reply flagged, and the topic points at it.
	var flagged int64
	require.NoError(t, env.db.DB().Model(&models.ForumReply{}).
		Where("topic_id = ? AND is_best_answer = ?", topic.ID, true).
		Count(&flagged).Error)
	assert.EqualValues(t, 1, flagged)

	reloaded := env.reloadTopic(t, topic.ID)
	require.NotNil(t, reloaded.BestAnswerReplyID)
	assert.Equal(t, secondAnswer.ID, *reloaded.BestAnswerReplyID)

	// The ledger records grant, revoke, grant: one net bonus paid out.
	var net int64
	require.NoError(t, env.db.DB().Model(&models.ReputationEvent{}).
		Where("organization_id = ?", org.ID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&net).Error)
	assert.EqualValues(t, models.BestAnswerBonus, net)

	var events int64
	require.NoError(t, env.db.DB().Model(&models.ReputationEvent{}).
		Where("organization_id = ?", org.ID).
		Count(&events).Error)
	assert.EqualValues(t, 3, events)
}

func TestUnmarkBestAnswer(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Unmark semantics check")
	answer := env.createReply(t, answerer, topic.ID, "an answer", nil)

	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	require.NoError(t, err)

	updated, err := env.bestAnswers.Unmark(ctx, author, topic.ID)
	require.NoError(t, err)
	assert.False(t, updated.HasBestAnswer)
	assert.Nil(t, updated.BestAnswerReplyID)

	assert.False(t, env.reloadReply(t, answer.ID).IsBestAnswer)
	assert.Equal(t, 0, env.reloadUser(t, answerer.ID).ReputationScore)

	// Unmarking with nothing selected is a no-op, not an error.
	_, err = env.bestAnswers.Unmark(ctx, author, topic.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, env.reloadUser(t, answerer.ID).ReputationScore)
}

func TestMarkBestAnswerRejectsDeletedReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	org := env.createOrganization(t, "acme")
	author := env.createUser(t, org, "author@acme.example", models.RoleMember, false)
	answerer := env.createUser(t, org, "answerer@acme.example", models.RoleMember, false)
	category := env.createCategory(t, "general", false)
	topic := env.createTopic(t, author, category, "Deleted replies cannot win")
	answer := env.createReply(t, answerer, topic.ID, "an answer", nil)

	require.NoError(t, env.topics.SoftDeleteReply(ctx, answerer, answer.ID))

	_, err := env.bestAnswers.Mark(ctx, author, topic.ID, answer.ID)
	assert.ErrorIs(t, err, services.ErrNotFound)
}
