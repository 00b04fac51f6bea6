package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"decryptzone/cmd"
	"decryptzone/database"
	"decryptzone/identity"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file found, reading environment variables directly")
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(os.Args[2:]); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "token":
			if err := handleTokenCommand(os.Args[2:]); err != nil {
				log.Fatal("Token error: ", err)
			}
			return
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: decryptzone migrate [up|down|status] [args...]")
	}

	switch args[0] {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(args) > 1 {
			steps = args[1]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", args[0])
	}
}

// handleTokenCommand prints a development session token signed with AUTH_JWT_SECRET
func handleTokenCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: decryptzone token <subject> [name] [nickname]")
	}

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}

	who := &identity.Identity{Subject: args[0]}
	if len(args) > 1 {
		who.Name = args[1]
	}
	if len(args) > 2 {
		who.Nickname = args[2]
	}

	token, err := identity.IssueToken(who, []byte(secret), 24*time.Hour)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
