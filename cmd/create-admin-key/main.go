package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jafarshop/restaurant/internal/config"
	"github.com/jafarshop/restaurant/internal/repository/postgres"
	"github.com/jafarshop/restaurant/internal/service"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run cmd/create-admin-key/main.go <name> <api-key>")
		fmt.Println("Example: go run cmd/create-admin-key/main.go \"Front desk\" \"desk-key-12345\"")
		os.Exit(1)
	}

	name := os.Args[1]
	apiKey := os.Args[2]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StoragePostgres {
		fmt.Fprintf(os.Stderr, "Admin keys are only persisted with STORAGE_DRIVER=%s\n", config.StoragePostgres)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if err := postgres.Migrate(ctx, db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	key, err := service.NewAdminService(repos, "", logger).CreateKey(ctx, name, apiKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin key created\n\n")
	fmt.Printf("Key ID: %s\n", key.ID.String())
	fmt.Printf("Name: %s\n", key.Name)
	fmt.Printf("\nSave this API key securely, it cannot be shown again.\n")
	fmt.Printf("\nUse it in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
