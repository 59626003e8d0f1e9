package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"

	"gorm.io/gorm"
)

// BestAnswerService owns the per-topic best-answer state machine:
// NoBestAnswer -> Selected(replyID) -> NoBestAnswer | Selected(other).
// All transitions run inside a transaction holding a row lock on the
// topic, so concurrent marks serialize and the bonus is credited
// exactly once per currently selected answer.
type BestAnswerService struct {
	db         database.Database
	reputation *ReputationService
}

func NewBestAnswerService(db database.Database, reputation *ReputationService) *BestAnswerService {
	return &BestAnswerService{db: db, reputation: reputation}
}

// Mark selects replyID as the best answer of the topic. Only the topic
// author may select; reselecting the current best answer is a no-op.
func (s *BestAnswerService) Mark(ctx context.Context, requester *models.User, topicID, replyID uint) (*models.ForumTopic, error) {
	var topic models.ForumTopic

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ?", topicID, requester.OrganizationID).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}

		if topic.IsDeleted() {
			return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
		}
		if topic.AuthorID != requester.ID {
			return fmt.Errorf("%w: only the topic author may select a best answer", ErrPermissionDenied)
		}

		// Reselecting the current answer must not move reputation.
		if topic.HasBestAnswer && topic.BestAnswerReplyID != nil && *topic.BestAnswerReplyID == replyID {
			return nil
		}

		var reply models.ForumReply
		if err := tx.Where("id = ? AND topic_id = ? AND is_deleted = ?", replyID, topicID, false).
			First(&reply).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: reply %d does not belong to topic %d", ErrNotFound, replyID, topicID)
			}
			return err
		}

		// Clear the previous selection and revoke its bonus before
		// crediting the new one, so a retried mark cannot double-credit.
		if topic.HasBestAnswer && topic.BestAnswerReplyID != nil {
			if err := s.clearCurrent(tx, &topic); err != nil {
				return err
			}
		}

		if err := tx.Model(&models.ForumReply{}).
			Where("id = ?", reply.ID).
			Update("is_best_answer", true).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.ForumTopic{}).
			Where("id = ?", topic.ID).
			Updates(map[string]interface{}{
				"has_best_answer":      true,
				"best_answer_reply_id": reply.ID,
			}).Error; err != nil {
			return err
		}

		if err := s.reputation.AwardBestAnswer(tx, topic.OrganizationID, reply.AuthorID, topic.ID, reply.ID); err != nil {
			return err
		}

		topic.HasBestAnswer = true
		topic.BestAnswerReplyID = &reply.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &topic, nil
}

// Unmark clears the current best answer and revokes the bonus once.
func (s *BestAnswerService) Unmark(ctx context.Context, requester *models.User, topicID uint) (*models.ForumTopic, error) {
	var topic models.ForumTopic

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).
			Where("id = ? AND organization_id = ?", topicID, requester.OrganizationID).
			First(&topic).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: topic %d", ErrNotFound, topicID)
			}
			return err
		}

		if topic.AuthorID != requester.ID {
			return fmt.Errorf("%w: only the topic author may unselect the best answer", ErrPermissionDenied)
		}

		if !topic.HasBestAnswer || topic.BestAnswerReplyID == nil {
			return nil
		}

		if err := s.clearCurrent(tx, &topic); err != nil {
			return err
		}

		topic.HasBestAnswer = false
		topic.BestAnswerReplyID = nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &topic, nil
}

// clearCurrent removes the selection recorded on the locked topic row
// and revokes the bonus from the previous answer's author.
func (s *BestAnswerService) clearCurrent(tx *gorm.DB, topic *models.ForumTopic) error {
	var previous models.ForumReply
	if err := tx.First(&previous, *topic.BestAnswerReplyID).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.ForumReply{}).
		Where("id = ?", previous.ID).
		Update("is_best_answer", false).Error; err != nil {
		return err
	}

	if err := tx.Model(&models.ForumTopic{}).
		Where("id = ?", topic.ID).
		Updates(map[string]interface{}{
			"has_best_answer":      false,
			"best_answer_reply_id": nil,
		}).Error; err != nil {
		return err
	}

	return s.reputation.RevokeBestAnswer(tx, topic.OrganizationID, previous.AuthorID, topic.ID, previous.ID)
}
