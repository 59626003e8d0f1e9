package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the service layer against an in-memory sqlite
// database. Each test gets an isolated database.
type testEnv struct {
	db          database.Database
	categories  *services.CategoryService
	topics      *services.TopicService
	bestAnswers *services.BestAnswerService
	engagement  *services.EngagementService
	reputation  *services.ReputationService
	search      *services.SearchService
	tenants     *services.TenantService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A unique name per test keeps the shared-cache databases isolated
	// while still letting the pool's connections see the same data.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.New().String())
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = gormDB.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.UserInvitation{},
		&models.ForumCategory{},
		&models.ForumTopic{},
		&models.ForumReply{},
		&models.ForumTopicLike{},
		&models.ForumReplyLike{},
		&models.ForumTopicView{},
		&models.ForumBookmark{},
		&models.ReputationEvent{},
		&models.Attachment{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := gormDB.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	db := database.NewGormAdapter(gormDB)
	categories := services.NewCategoryService(db)
	reputation := services.NewReputationService(db)
	tenants := services.NewTenantService(db)

	return &testEnv{
		db:          db,
		categories:  categories,
		topics:      services.NewTopicService(db, categories, reputation),
		bestAnswers: services.NewBestAnswerService(db, reputation),
		engagement:  services.NewEngagementService(db),
		reputation:  reputation,
		search:      services.NewSearchService(db),
		tenants:     tenants,
	}
}

func (e *testEnv) createOrganization(t *testing.T, name string) *models.Organization {
	t.Helper()

	org := &models.Organization{
		UUID:         uuid.New().String(),
		Name:         name,
		Slug:         fmt.Sprintf("%s-%s", name, uuid.New().String()[:8]),
		ContactEmail: fmt.Sprintf("contact@%s.example", name),
		MaxUsers:     25,
	}
	require.NoError(t, e.db.DB().Create(org).Error)
	return org
}

func (e *testEnv) createUser(t *testing.T, org *models.Organization, email, role string, verified bool) *models.User {
	t.Helper()

	user := &models.User{
		UUID:           uuid.New().String(),
		OrganizationID: org.ID,
		Email:          email,
		FirstName:      "Test",
		LastName:       "User",
		Role:           role,
		Status:         models.UserStatusActive,
		IsVerified:     verified,
	}
	require.NoError(t, e.db.DB().Create(user).Error)
	return user
}

func (e *testEnv) createCategory(t *testing.T, name string, requiresVerification bool) *models.ForumCategory {
	t.Helper()

	category := &models.ForumCategory{
		Name:                 name,
		Slug:                 fmt.Sprintf("%s-%s", name, uuid.New().String()[:8]),
		Type:                 models.CategoryGeneral,
		IsActive:             true,
		RequiresVerification: requiresVerification,
	}
	require.NoError(t, e.db.DB().Create(category).Error)
	return category
}

func (e *testEnv) createTopic(t *testing.T, author *models.User, category *models.ForumCategory, title string) *models.ForumTopic {
	t.Helper()

	topic, err := e.topics.CreateTopic(context.Background(), author, services.CreateTopicInput{
		CategoryID: category.ID,
		Title:      title,
		Body:       "This body text is comfortably over the minimum length for a topic.",
	})
	require.NoError(t, err)
	return topic
}

func (e *testEnv) createReply(t *testing.T, author *models.User, topicID uint, content string, parentID *uint) *models.ForumReply {
	t.Helper()

	reply, err := e.topics.CreateReply(context.Background(), author, topicID, services.CreateReplyInput{
		Content:       content,
		ParentReplyID: parentID,
	})
	require.NoError(t, err)
	return reply
}

func (e *testEnv) reloadTopic(t *testing.T, id uint) *models.ForumTopic {
	t.Helper()

	var topic models.ForumTopic
	require.NoError(t, e.db.DB().First(&topic, id).Error)
	return &topic
}

func (e *testEnv) reloadUser(t *testing.T, id uint) *models.User {
	t.Helper()

	var user models.User
	require.NoError(t, e.db.DB().First(&user, id).Error)
	return &user
}

func (e *testEnv) reloadCategory(t *testing.T, id uint) *models.ForumCategory {
	t.Helper()

	var category models.ForumCategory
	require.NoError(t, e.db.DB().First(&category, id).Error)
	return &category
}

func (e *testEnv) reloadReply(t *testing.T, id uint) *models.ForumReply {
	t.Helper()

	var reply models.ForumReply
	require.NoError(t, e.db.DB().First(&reply, id).Error)
	return &reply
}
