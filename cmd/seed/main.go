// Command seed provisions accounts: by default it creates an ADMIN user from
// ADMIN_EMAIL / ADMIN_PASSWORD (prompting for anything missing), with -dev it
// creates the fixed development accounts instead.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/agencyhub/internal/flagx"
	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/config"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/agencyhub/internal/server/seed"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("%v", err)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()

	args := flagx.FilterArgs(os.Args[1:], []string{"-dev"})
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	dev := fs.Bool("dev", false, "create the fixed development accounts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()

	repos, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		return fmt.Errorf("repository init error: %w", err)
	}
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	seeder := seed.New(db, repos, cfg, logger)

	if *dev {
		return seeder.SeedDev(ctx)
	}

	email, password, err := adminCredentials()
	if err != nil {
		return err
	}
	return seeder.SeedAdmin(ctx, email, password)
}

// adminCredentials reads ADMIN_EMAIL / ADMIN_PASSWORD, prompting on the
// terminal for anything not set. The password prompt does not echo.
func adminCredentials() (string, string, error) {
	email := strings.TrimSpace(os.Getenv("ADMIN_EMAIL"))
	password := os.Getenv("ADMIN_PASSWORD")

	if email == "" {
		fmt.Print("Admin email: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("error reading email: %w", err)
		}
		email = strings.TrimSpace(line)
	}

	if password == "" {
		fmt.Print("Admin password: ")
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", "", fmt.Errorf("error reading password: %w", err)
		}
		password = string(raw)
	}

	return email, password, nil
}
