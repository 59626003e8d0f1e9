package services

import (
	"context"
	"fmt"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"

	"gorm.io/gorm"
)

// ReputationService keeps the per-user reputation score as the sum of
// an append-only event ledger. Every delta writes an event row and
// bumps users.reputation_score in the same transaction, so the score
// never drifts from its history.
type ReputationService struct {
	db database.Database
}

func NewReputationService(db database.Database) *ReputationService {
	return &ReputationService{db: db}
}

// Apply appends a reputation event and updates the user's score inside
// the caller's transaction.
func (s *ReputationService) Apply(tx *gorm.DB, event *models.ReputationEvent) error {
	if event.Delta == 0 {
		return nil
	}

	if err := tx.Create(event).Error; err != nil {
		return err
	}

	result := tx.Model(&models.User{}).
		Where("id = ?", event.UserID).
		Update("reputation_score", gorm.Expr("reputation_score + ?", event.Delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, event.UserID)
	}
	return nil
}

// AwardBestAnswer credits the fixed best-answer bonus.
func (s *ReputationService) AwardBestAnswer(tx *gorm.DB, orgID, userID, topicID, replyID uint) error {
	return s.Apply(tx, &models.ReputationEvent{
		OrganizationID: orgID,
		UserID:         userID,
		Delta:          models.BestAnswerBonus,
		Reason:         models.ReputationReasonBestAnswerAwarded,
		TopicID:        &topicID,
		ReplyID:        &replyID,
	})
}

// RevokeBestAnswer removes a previously credited bonus.
func (s *ReputationService) RevokeBestAnswer(tx *gorm.DB, orgID, userID, topicID, replyID uint) error {
	return s.Apply(tx, &models.ReputationEvent{
		OrganizationID: orgID,
		UserID:         userID,
		Delta:          -models.BestAnswerBonus,
		Reason:         models.ReputationReasonBestAnswerRevoked,
		TopicID:        &topicID,
		ReplyID:        &replyID,
	})
}

// AdminAdjust applies a manual correction with an audit note.
func (s *ReputationService) AdminAdjust(ctx context.Context, actor *models.User, userID uint, delta int, note string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins may adjust reputation", ErrPermissionDenied)
	}
	if delta == 0 {
		return fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}

	var user models.User
	if err := s.db.DB().WithContext(ctx).First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return err
	}

	actorID := actor.ID
	return s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Apply(tx, &models.ReputationEvent{
			OrganizationID: user.OrganizationID,
			UserID:         user.ID,
			ActorID:        &actorID,
			Delta:          delta,
			Reason:         models.ReputationReasonAdminAdjustment,
			Note:           note,
		})
	})
}

func (s *ReputationService) GetScore(ctx context.Context, userID uint) (int, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).Select("reputation_score").First(&user, userID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return 0, err
	}
	return user.ReputationScore, nil
}

func (s *ReputationService) History(ctx context.Context, userID uint, page, limit int) ([]models.ReputationEvent, int64, error) {
	var total int64
	query := s.db.DB().WithContext(ctx).Model(&models.ReputationEvent{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var events []models.ReputationEvent
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&events).Error
	return events, total, err
}
