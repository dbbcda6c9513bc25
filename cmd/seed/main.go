// seed inserts development accounts for local testing.
// Idempotent: skips inserts if the dev account (alice) already exists.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"sessiongate/internal/account/domain"
	"sessiongate/internal/account/repository"
	"sessiongate/internal/config"
	"sessiongate/internal/db"
	"sessiongate/internal/security"
)

const devPassword = "password123"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := repository.NewPostgresRepository(conn)
	ctx := context.Background()

	existing, err := accounts.FindByUsername(ctx, "alice")
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (alice exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	seedAccounts := []*domain.Account{
		{
			ID:          uuid.New().String(),
			Username:    "alice",
			Roles:       []string{"admin"},
			Permissions: []string{"sessions:read", "sessions:revoke", "audit:read"},
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			Username:    "bob",
			Roles:       []string{"member"},
			Permissions: []string{"sessions:read"},
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
	for _, a := range seedAccounts {
		if err := accounts.Create(ctx, a, passwordHash); err != nil {
			log.Fatalf("create account %s: %v", a.Username, err)
		}
	}

	log.Println("Seed completed successfully.")
	fmt.Printf("Dev logins: alice / %s, bob / %s\n", devPassword, devPassword)
}
