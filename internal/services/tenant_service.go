package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TenantService manages organizations and their members. The
// organization is the isolation boundary for all forum data.
type TenantService struct {
	db database.Database
}

func NewTenantService(db database.Database) *TenantService {
	return &TenantService{db: db}
}

type CreateOrganizationInput struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required"`
	Industry     string `json:"industry"`
}

func (s *TenantService) CreateOrganization(ctx context.Context, input CreateOrganizationInput) (*models.Organization, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: organization name is required", ErrValidation)
	}
	if !utils.ValidateEmail(input.ContactEmail) {
		return nil, fmt.Errorf("%w: invalid contact email", ErrValidation)
	}

	org := &models.Organization{
		UUID:             uuid.New().String(),
		Name:             input.Name,
		Slug:             utils.Slugify(input.Name),
		ContactEmail:     input.ContactEmail,
		Industry:         input.Industry,
		SubscriptionTier: models.TierFree,
	}

	var existing models.Organization
	err := s.db.DB().WithContext(ctx).
		Where("name = ? OR slug = ?", org.Name, org.Slug).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("%w: organization %q already exists", ErrConflict, org.Name)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.db.DB().WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

func (s *TenantService) GetOrganization(ctx context.Context, orgID uint) (*models.Organization, error) {
	var org models.Organization
	err := s.db.DB().WithContext(ctx).Where("id = ?", orgID).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organization %d", ErrNotFound, orgID)
		}
		return nil, err
	}
	return &org, nil
}

func (s *TenantService) GetOrganizationBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	err := s.db.DB().WithContext(ctx).Where("slug = ?", slug).First(&org).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: organization %q", ErrNotFound, slug)
		}
		return nil, err
	}
	return &org, nil
}

type UpdateOrganizationInput struct {
	Name         *string      `json:"name"`
	ContactEmail *string      `json:"contact_email"`
	Industry     *string      `json:"industry"`
	Settings     *models.JSON `json:"settings"`
}

// UpdateOrganization edits tenant metadata. Admin only; the slug is
// fixed at creation because it is part of external URLs.
func (s *TenantService) UpdateOrganization(ctx context.Context, actor *models.User, input UpdateOrganizationInput) (*models.Organization, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only admins may update the organization", ErrPermissionDenied)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		if *input.Name == "" {
			return nil, fmt.Errorf("%w: organization name cannot be empty", ErrValidation)
		}
		updates["name"] = *input.Name
	}
	if input.ContactEmail != nil {
		if !utils.ValidateEmail(*input.ContactEmail) {
			return nil, fmt.Errorf("%w: invalid contact email", ErrValidation)
		}
		updates["contact_email"] = *input.ContactEmail
	}
	if input.Industry != nil {
		updates["industry"] = *input.Industry
	}
	if input.Settings != nil {
		updates["settings"] = *input.Settings
	}

	if len(updates) > 0 {
		err := s.db.DB().WithContext(ctx).Model(&models.Organization{}).
			Where("id = ?", actor.OrganizationID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.GetOrganization(ctx, actor.OrganizationID)
}

func (s *TenantService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).
		Preload("Organization").
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %d", ErrNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}

func (s *TenantService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.DB().WithContext(ctx).
		Preload("Organization").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %q", ErrNotFound, email)
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser adds a member to the organization, enforcing the seat
// quota.
func (s *TenantService) CreateUser(ctx context.Context, user *models.User) error {
	org, err := s.GetOrganization(ctx, user.OrganizationID)
	if err != nil {
		return fmt.Errorf("invalid organization: %w", err)
	}

	var memberCount int64
	err = s.db.DB().WithContext(ctx).Model(&models.User{}).
		Where("organization_id = ?", org.ID).
		Count(&memberCount).Error
	if err != nil {
		return err
	}
	if org.MaxUsers > 0 && int(memberCount) >= org.MaxUsers {
		return fmt.Errorf("%w: organization has reached its %d user limit", ErrQuotaExceeded, org.MaxUsers)
	}

	if user.UUID == "" {
		user.UUID = uuid.New().String()
	}
	return s.db.DB().WithContext(ctx).Create(user).Error
}

type UpdateProfileInput struct {
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	JobTitle  *string      `json:"job_title"`
	Settings  *models.JSON `json:"settings"`
}

func (s *TenantService) UpdateProfile(ctx context.Context, userID uint, input UpdateProfileInput) (*models.User, error) {
	updates := map[string]interface{}{}
	if input.FirstName != nil {
		updates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		updates["last_name"] = *input.LastName
	}
	if input.JobTitle != nil {
		updates["job_title"] = *input.JobTitle
	}
	if input.Settings != nil {
		updates["settings"] = *input.Settings
	}

	if len(updates) > 0 {
		err := s.db.DB().WithContext(ctx).Model(&models.User{}).
			Where("id = ?", userID).
			Updates(updates).Error
		if err != nil {
			return nil, err
		}
	}

	return s.GetUser(ctx, userID)
}

func (s *TenantService) ListMembers(ctx context.Context, orgID uint, page, limit int) ([]models.User, int64, error) {
	query := s.db.DB().WithContext(ctx).Model(&models.User{}).
		Where("organization_id = ?", orgID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.User
	err := query.
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&members).Error
	return members, total, err
}

// SetUserRole promotes or demotes a member. Admin only.
func (s *TenantService) SetUserRole(ctx context.Context, actor *models.User, userID uint, role string) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins may change roles", ErrPermissionDenied)
	}
	if role != models.RoleMember && role != models.RoleAdmin {
		return fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	result := s.db.DB().WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND organization_id = ?", userID, actor.OrganizationID).
		Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}

// SetUserVerified flips the verification flag that gates posting into
// verification-required categories. Admin only.
func (s *TenantService) SetUserVerified(ctx context.Context, actor *models.User, userID uint, verified bool) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: only admins may verify users", ErrPermissionDenied)
	}

	result := s.db.DB().WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND organization_id = ?", userID, actor.OrganizationID).
		Update("is_verified", verified)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: user %d", ErrNotFound, userID)
	}
	return nil
}

// UserHasAccessToOrganization reports whether the user belongs to the
// organization.
func (s *TenantService) UserHasAccessToOrganization(userID uint, orgID uint) (bool, error) {
	var count int64
	err := s.db.DB().
		Model(&models.User{}).
		Where("id = ? AND organization_id = ?", userID, orgID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
