package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/config"
	"github.com/IIoT-Solutions-SA/forum-platform-api/internal/database"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	flag.Parse()
	args := flag.Args()

	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	switch args[0] {
	case "up":
		fmt.Println("Running database migrations...")
		if err := database.RunMigrations(cfg.Database.URL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations completed successfully!")
	case "down":
		fmt.Println("Rolling back last migration...")
		if err := database.RollbackMigration(cfg.Database.URL); err != nil {
			log.Fatalf("Failed to roll back migration: %v", err)
		}
		fmt.Println("Rollback completed successfully!")
	case "create":
		if len(args) < 2 {
			fmt.Println("Error: migration name required")
			os.Exit(1)
		}
		if err := database.CreateMigration(args[1]); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
	default:
		fmt.Printf("Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: go run cmd/migrate/main.go <command> [arguments]

Commands:
  up                Run all pending migrations
  down              Roll back the most recent migration
  create <name>     Create a new migration with the specified name`)
}
