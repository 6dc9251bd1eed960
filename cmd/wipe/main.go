// Command wipe deletes all user data. It refuses to run in production; the
// environment gate lives in the seed package.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

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
	return seed.New(db, repos, cfg, logger).Wipe(ctx)
}
