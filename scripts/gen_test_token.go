package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/quota"
	"codeberg.org/promptfotos/server/promptfotos/users"
)

// creates (or reuses) a test account and prints a session token for it
func main() {
	email := flag.String("email", "test@promptgeminifotos.com", "email of the test user")
	pro := flag.Bool("pro", false, "give the test user a pro subscription")
	admin := flag.Bool("admin", false, "sign the token with the admin claim")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	dbConnString := os.Getenv("SUPABASE_CONNECTION_STRING")
	if dbConnString == "" {
		log.Fatal("SUPABASE_CONNECTION_STRING not set")
	}

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(dbConnString)
	if err != nil {
		log.Fatalf("Failed to parse database config: %v", err)
	}

	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbPool.Close()

	userRepo := users.NewRepository(dbPool)

	user, err := userRepo.UpsertFromProvider(ctx, users.ProviderProfile{
		Provider:   "test",
		ProviderID: "test-" + *email,
		Email:      *email,
		Name:       "Test User",
	})
	if err != nil {
		log.Fatalf("Failed to create test user: %v", err)
	}

	tier := quota.TierFree
	if *pro {
		tier = quota.TierPro
	}

	if err := userRepo.SetSubscriptionStatus(ctx, user.ID, tier); err != nil {
		log.Fatalf("Failed to set subscription status: %v", err)
	}

	fmt.Printf("Test user: %s (ID: %s, tier: %s)\n", user.Email, user.ID, tier)

	token, err := auth.GenerateJWT(user.ID, user.Email, *admin)
	if err != nil {
		log.Fatalf("Failed to generate JWT: %v", err)
	}

	fmt.Printf("\nTest JWT Token:\n%s\n\n", token)
	fmt.Printf("Export this token for testing:\nexport TEST_TOKEN=\"%s\"\n", token)
}
