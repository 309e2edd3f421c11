package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	auction "github.com/dumbledor90/lumi-auctions-webapp/internal/auctionService"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/config"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/repository"
	"github.com/dumbledor90/lumi-auctions-webapp/internal/server"
	user "github.com/dumbledor90/lumi-auctions-webapp/internal/userService"
	"github.com/dumbledor90/lumi-auctions-webapp/utils"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Warn("failed to load .env file", map[string]any{"error": err.Error()})
	}

	cfg := config.Load()

	repo, err := buildRepository(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up storage: %v\n", err)
		os.Exit(1)
	}

	auctionSvc := auction.NewAuctionService(repo)
	userSvc := user.NewUserService(repo)

	router := server.SetupRouter(auctionSvc, userSvc, []byte(cfg.SessionSecret), cfg.SessionTTL)

	fmt.Printf("Starting auction server on %s...\n", cfg.Addr)
	if err := router.Run(cfg.Addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}

// buildRepository selects Postgres when a DSN is configured, and the
// in-memory store otherwise.
func buildRepository(cfg *config.Config) (repository.AuctionDB, error) {
	if cfg.DatabaseDSN == "" {
		utils.Info("no DATABASE_DSN configured, using in-memory storage", nil)
		return repository.NewMemoryRepo(), nil
	}

	repo, err := repository.NewPostgresRepo(cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return repo, nil
}
