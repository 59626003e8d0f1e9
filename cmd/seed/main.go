package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/config"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/models"
	"github.com/IIoT-Solutions-SA/forum-platform-api/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	command := "categories"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "categories":
		seedCategories(db.DB())
	case "demo":
		seedCategories(db.DB())
		seedDemoOrganization(db.DB())
	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run cmd/seed/main.go [categories|demo]")
		os.Exit(1)
	}
}

func seedCategories(db *gorm.DB) {
	categories := []models.ForumCategory{
		{Name: "Automation & Robotics", Type: models.CategoryAutomation, Description: "PLC programming, robotics integration and line automation", Icon: "robot", SortOrder: 1},
		{Name: "Quality Management", Type: models.CategoryQuality, Description: "ISO compliance, SPC and inspection workflows", Icon: "check-circle", SortOrder: 2},
		{Name: "Maintenance & Reliability", Type: models.CategoryMaintenance, Description: "Predictive maintenance, spare parts and downtime reduction", Icon: "wrench", SortOrder: 3},
		{Name: "AI & Analytics", Type: models.CategoryAI, Description: "Machine learning on production data", Icon: "brain", RequiresVerification: true, SortOrder: 4},
		{Name: "IIoT & Connectivity", Type: models.CategoryIoT, Description: "Sensors, gateways, OPC UA and MQTT", Icon: "wifi", SortOrder: 5},
		{Name: "General Discussion", Type: models.CategoryGeneral, Description: "Everything else", Icon: "chat", SortOrder: 6},
	}

	for i := range categories {
		categories[i].Slug = utils.Slugify(categories[i].Name)
		categories[i].IsActive = true

		err := db.Where("slug = ?", categories[i].Slug).
			FirstOrCreate(&categories[i]).Error
		if err != nil {
			log.Fatalf("Failed to seed category %s: %v", categories[i].Name, err)
		}
	}

	fmt.Printf("Seeded %d categories\n", len(categories))
}

func seedDemoOrganization(db *gorm.DB) {
	org := models.Organization{
		UUID:             uuid.New().String(),
		Name:             "Alpha Gears Manufacturing",
		Slug:             "alpha-gears-manufacturing",
		ContactEmail:     "admin@alphagears.example",
		Industry:         "Industrial machinery",
		SubscriptionTier: models.TierStandard,
	}
	if err := db.Where("slug = ?", org.Slug).FirstOrCreate(&org).Error; err != nil {
		log.Fatalf("Failed to seed organization: %v", err)
	}

	users := []models.User{
		{Email: "admin@alphagears.example", FirstName: "Sara", LastName: "Nasser", Role: models.RoleAdmin, IsVerified: true},
		{Email: "engineer@alphagears.example", FirstName: "Omar", LastName: "Hadid", Role: models.RoleMember, IsVerified: true},
		{Email: "operator@alphagears.example", FirstName: "Lina", LastName: "Farouk", Role: models.RoleMember},
	}
	for i := range users {
		users[i].UUID = uuid.New().String()
		users[i].OrganizationID = org.ID
		users[i].Status = models.UserStatusActive

		err := db.Where("email = ? AND organization_id = ?", users[i].Email, org.ID).
			FirstOrCreate(&users[i]).Error
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", users[i].Email, err)
		}
	}

	var category models.ForumCategory
	if err := db.Where("type = ?", models.CategoryMaintenance).First(&category).Error; err != nil {
		log.Fatalf("Failed to load maintenance category: %v", err)
	}

	topic := models.ForumTopic{
		UUID:           uuid.New().String(),
		OrganizationID: org.ID,
		CategoryID:     category.ID,
		AuthorID:       users[1].ID,
		Title:          "Unplanned spindle stops on the CNC-340 line",
		Body:           "We are seeing intermittent spindle stops on the CNC-340 line since last week's firmware update. Vibration readings look normal. Has anyone correlated these stops with coolant pressure fluctuations?",
		Tags:           models.StringList{"cnc", "downtime"},
		Status:         models.TopicStatusActive,
		LastActivityAt: time.Now().UTC(),
	}
	if err := db.Where("uuid = ?", topic.UUID).FirstOrCreate(&topic).Error; err != nil {
		log.Fatalf("Failed to seed topic: %v", err)
	}

	fmt.Println("Seeded demo organization with members and a sample topic")
}
