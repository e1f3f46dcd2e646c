package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"account-service/config"
	"account-service/internal/repository"
	"account-service/pkg/database"
)

const usage = `
Account Service - Database CLI Tool

Usage:
  migrate [command] [flags]

Commands:
  up          Apply all embedded SQL migrations
  down        Roll back all embedded SQL migrations
  status      Show database connection status and table counts
  seed        Create the demo account if it does not exist

Flags:
  -seed-username string  Username for the seeded account (default "demo")
  -seed-email string     Email for the seeded account (default "demo@example.com")
  -seed-pass string      Password for the seeded account (default "Demo@123!")

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate seed -seed-email me@example.com
  go run ./cmd/migrate down
`

func main() {
	defaults := database.DefaultSeedConfig()
	seedUsername := flag.String("seed-username", defaults.Username, "Username for the seeded account")
	seedEmail := flag.String("seed-email", defaults.Email, "Email for the seeded account")
	seedPass := flag.String("seed-pass", defaults.Password, "Password for the seeded account")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	command := flag.Arg(0)

	ctx := context.Background()
	cfg := config.LoadConfig()
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer pool.Close()

	switch command {
	case database.MigrateUp, database.MigrateDown:
		log.Printf("Running migrations %s...", command)
		if err := database.ApplyMigrations(ctx, pool, command); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		log.Println("Migrations completed successfully")
	case "status":
		showStatus(ctx, pool)
	case "seed":
		seedCfg := defaults
		seedCfg.Username = *seedUsername
		seedCfg.Email = *seedEmail
		seedCfg.Password = *seedPass

		profile, err := database.Seed(ctx, repository.NewAccountRepository(pool), seedCfg)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
		log.Printf("Seed account ready: %s (ID: %s)", profile.Username, profile.ID)
	default:
		fmt.Printf("Unknown command: %s\n", command)
		flag.Usage()
		os.Exit(1)
	}
}

func showStatus(ctx context.Context, pool database.RowQuerier) {
	log.Println("Database connection: OK")

	for _, table := range []string{"accounts"} {
		exists, err := database.TableExists(ctx, pool, table)
		if err != nil {
			log.Printf("Error checking table %s: %v", table, err)
			continue
		}
		if !exists {
			log.Printf("Table %-12s does not exist", table)
			continue
		}
		count, err := database.TableCount(ctx, pool, table)
		if err != nil {
			log.Printf("Error counting table %s: %v", table, err)
			continue
		}
		log.Printf("Table %-12s exists (%d rows)", table, count)
	}
}
