package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvitationService is the only path into an organization: admins
// invite by email, the invitee accepts with the single-use token after
// authenticating with the identity provider.
type InvitationService struct {
	db      database.Database
	tenants *TenantService
	ttl     time.Duration
}

func NewInvitationService(db database.Database, tenants *TenantService, ttl time.Duration) *InvitationService {
	return &InvitationService{db: db, tenants: tenants, ttl: ttl}
}

func generateInvitationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invitation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

type InviteInput struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role"`
}

// Invite creates a pending invitation. Re-inviting an email with an
// open invitation is a conflict; an expired one is superseded.
func (s *InvitationService) Invite(ctx context.Context, inviter *models.User, input InviteInput) (*models.UserInvitation, error) {
	if !inviter.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may invite members", ErrPermissionDenied)
	}
	if !utils.ValidateEmail(input.Email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrValidation)
	}
	role := input.Role
	if role == "" {
		role = models.RoleMember
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	var existingUser models.User
	err := s.db.DB().WithContext(ctx).
		Where("email = ? AND organization_id = ?", input.Email, inviter.OrganizationID).
		First(&existingUser).Error
	if err == nil {
		return nil, fmt.Errorf("%w: %s is already a member", ErrConflict, input.Email)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	token, err := generateInvitationToken()
	if err != nil {
		return nil, err
	}

	invitation := &models.UserInvitation{
		OrganizationID: inviter.OrganizationID,
		InvitedByID:    inviter.ID,
		Email:          input.Email,
		Role:           role,
		Token:          token,
		Status:         models.InvitationStatusPending,
		ExpiresAt:      time.Now().Add(s.ttl),
	}

	err = s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var open models.UserInvitation
		err := tx.Where("organization_id = ? AND email = ? AND status = ?",
			inviter.OrganizationID, input.Email, models.InvitationStatusPending).
			First(&open).Error
		switch {
		case err == nil:
			if !open.IsExpired() {
				return fmt.Errorf("%w: an open invitation for %s already exists", ErrConflict, input.Email)
			}
			// Supersede the lapsed invitation rather than leaving two around.
			if err := tx.Model(&open).Update("status", models.InvitationStatusExpired).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first invitation for this email
		default:
			return err
		}

		return tx.Create(invitation).Error
	})
	if err != nil {
		return nil, err
	}

	return invitation, nil
}

// Accept redeems the invitation token and creates the member. The
// identity must already be verified by the provider; its email has to
// match the invitation.
func (s *InvitationService) Accept(ctx context.Context, token string, identity *ExternalIdentity) (*models.User, error) {
	var user *models.User

	err := s.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invitation models.UserInvitation
		if err := lockForUpdate(tx).
			Where("token = ?", token).
			First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: invitation", ErrNotFound)
			}
			return err
		}

		if invitation.Status != models.InvitationStatusPending {
			return fmt.Errorf("%w: invitation has already been used", ErrConflict)
		}
		if invitation.IsExpired() {
			if err := tx.Model(&invitation).Update("status", models.InvitationStatusExpired).Error; err != nil {
				return err
			}
			return fmt.Errorf("%w: invitation for %s", ErrInvitationExpired, invitation.Email)
		}
		if identity.Email != invitation.Email {
			return fmt.Errorf("%w: invitation was issued for a different email", ErrPermissionDenied)
		}

		org, err := s.tenants.GetOrganization(ctx, invitation.OrganizationID)
		if err != nil {
			return err
		}

		var memberCount int64
		if err := tx.Model(&models.User{}).
			Where("organization_id = ?", org.ID).
			Count(&memberCount).Error; err != nil {
			return err
		}
		if org.MaxUsers > 0 && int(memberCount) >= org.MaxUsers {
			return fmt.Errorf("%w: organization has reached its %d user limit", ErrQuotaExceeded, org.MaxUsers)
		}

		externalID := identity.ExternalID
		user = &models.User{
			UUID:           uuid.New().String(),
			OrganizationID: invitation.OrganizationID,
			Email:          invitation.Email,
			FirstName:      identity.FirstName,
			LastName:       identity.LastName,
			Role:           invitation.Role,
			Status:         models.UserStatusActive,
			ExternalID:     &externalID,
		}
		if err := tx.Create(user).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&invitation).Updates(map[string]interface{}{
			"status":      models.InvitationStatusAccepted,
			"accepted_at": now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *InvitationService) List(ctx context.Context, requester *models.User, page, limit int) ([]models.UserInvitation, int64, error) {
	if !requester.IsAdmin() {
		return nil, 0, fmt.Errorf("%w: only admins may list invitations", ErrPermissionDenied)
	}

	query := s.db.DB().WithContext(ctx).Model(&models.UserInvitation{}).
		Where("organization_id = ?", requester.OrganizationID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invitations []models.UserInvitation
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invitations).Error
	return invitations, total, err
}

// Revoke withdraws a pending invitation.
func (s *InvitationService) Revoke(ctx context.Context, requester *models.User, invitationID uint) error {
	if !requester.IsAdmin() {
		return fmt.Errorf("%w: only admins may revoke invitations", ErrPermissionDenied)
	}

	result := s.db.DB().WithContext(ctx).
		Where("id = ? AND organization_id = ? AND status = ?",
			invitationID, requester.OrganizationID, models.InvitationStatusPending).
		Delete(&models.UserInvitation{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: pending invitation %d", ErrNotFound, invitationID)
	}
	return nil
}

// ExpireLapsed marks overdue pending invitations as expired. Run by
// the reconciler.
func (s *InvitationService) ExpireLapsed(ctx context.Context) (int64, error) {
	result := s.db.DB().WithContext(ctx).Model(&models.UserInvitation{}).
		Where("status = ? AND expires_at < ?", models.InvitationStatusPending, time.Now()).
		Update("status", models.InvitationStatusExpired)
	return result.RowsAffected, result.Error
}
