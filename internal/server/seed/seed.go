// Package seed provisions initial accounts and provides the destructive
// database wipe used by local tooling.
package seed

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/agencyhub/internal/common"
	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
	"github.com/dmitrijs2005/agencyhub/internal/server/config"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/repomanager"
)

// Fixed development credentials. Never provisioned in deployed environments.
const (
	DevAdminEmail = "admin_user@email.com"
	DevUserEmail  = "user_local@email.com"
	DevPassword   = "password"
)

type Seeder struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	cfg    *config.Config
	logger logging.Logger
}

func New(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *Seeder {
	return &Seeder{db: db, repos: repos, cfg: cfg, logger: logger.With("module", "seed")}
}

// SeedAdmin creates an ADMIN account with the given credentials. It is a
// no-op when the email is already taken, so re-running is safe.
func (s *Seeder) SeedAdmin(ctx context.Context, email string, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("admin email and password are required")
	}
	return s.createIfAbsent(ctx, email, password, models.RoleAdmin)
}

// SeedDev provisions the fixed development accounts. Refused in deployed
// environments so the well-known credentials never reach staging or
// production.
func (s *Seeder) SeedDev(ctx context.Context) error {
	if s.cfg.IsDeployed() {
		return fmt.Errorf("dev seeding is not allowed in environment %q", s.cfg.Environment)
	}
	if err := s.createIfAbsent(ctx, DevAdminEmail, DevPassword, models.RoleAdmin); err != nil {
		return err
	}
	return s.createIfAbsent(ctx, DevUserEmail, DevPassword, models.RoleUser)
}

// Wipe removes every user and reset ticket row. Allowed only in
// environments where losing the data is acceptable; production always
// refuses. Tickets go first: password_resets.user_id references users.
func (s *Seeder) Wipe(ctx context.Context) error {
	if !s.cfg.IsWipeAllowed() {
		return fmt.Errorf("wipe is not allowed in environment %q", s.cfg.Environment)
	}
	if err := s.repos.ResetTickets(s.db).DeleteAll(ctx); err != nil {
		return fmt.Errorf("error wiping reset tickets: %w", err)
	}
	if err := s.repos.Users(s.db).DeleteAll(ctx); err != nil {
		return fmt.Errorf("error wiping users: %w", err)
	}
	s.logger.Info(ctx, "database wiped")
	return nil
}

func (s *Seeder) createIfAbsent(ctx context.Context, email string, password string, role models.Role) error {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		s.logger.Info(ctx, "account already exists, skipping", "email", email)
		return nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("error checking existing account: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, PasswordHash: &hash, Role: role})
	if err != nil {
		return fmt.Errorf("error creating account: %w", err)
	}

	s.logger.Info(ctx, "account created", "email", email, "role", string(role), "user_id", user.ID)
	return nil
}
