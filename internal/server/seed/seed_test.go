package seed

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/agencyhub/internal/common"
	"github.com/dmitrijs2005/agencyhub/internal/dbx"
	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
	"github.com/dmitrijs2005/agencyhub/internal/server/config"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/repomanager"
	resetticketsrepo "github.com/dmitrijs2005/agencyhub/internal/server/repositories/resettickets"
	usersrepo "github.com/dmitrijs2005/agencyhub/internal/server/repositories/users"
)

type memUsersRepo struct {
	seq  int
	byID map[string]*models.User
}

func newMemUsersRepo() *memUsersRepo {
	return &memUsersRepo{byID: map[string]*models.User{}}
}

func (m *memUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.byID {
		if existing.Email == u.Email {
			return nil, common.ErrConflict
		}
	}
	m.seq++
	clone := *u
	clone.ID = fmt.Sprintf("u-%d", m.seq)
	clone.CreatedAt = time.Now()
	m.byID[clone.ID] = &clone
	return &clone, nil
}

func (m *memUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.byID {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *memUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *memUsersRepo) List(ctx context.Context) ([]*models.User, error) {
	var result []*models.User
	for _, u := range m.byID {
		clone := *u
		result = append(result, &clone)
	}
	return result, nil
}

func (m *memUsersRepo) UpdatePasswordHash(ctx context.Context, userID string, hash string) error {
	u, ok := m.byID[userID]
	if !ok {
		return common.ErrNotFound
	}
	u.PasswordHash = &hash
	return nil
}

func (m *memUsersRepo) DeleteAll(ctx context.Context) error {
	m.byID = map[string]*models.User{}
	return nil
}

type memTicketsRepo struct {
	byToken map[string]*models.ResetTicket
}

func newMemTicketsRepo() *memTicketsRepo {
	return &memTicketsRepo{byToken: map[string]*models.ResetTicket{}}
}

func (m *memTicketsRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	m.byToken[token] = &models.ResetTicket{
		ID:        token,
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(validity),
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memTicketsRepo) FindActive(ctx context.Context, token string) (*models.ResetTicket, error) {
	ticket, ok := m.byToken[token]
	if !ok || ticket.Used || !ticket.ExpiresAt.After(time.Now()) {
		return nil, common.ErrNotFound
	}
	clone := *ticket
	return &clone, nil
}

func (m *memTicketsRepo) MarkUsed(ctx context.Context, id string) error {
	for _, ticket := range m.byToken {
		if ticket.ID == id {
			ticket.Used = true
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *memTicketsRepo) DeleteAll(ctx context.Context) error {
	m.byToken = map[string]*models.ResetTicket{}
	return nil
}

type memRepoManager struct {
	u *memUsersRepo
	r *memTicketsRepo
}

func (m *memRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memRepoManager) Users(dbx.DBTX) usersrepo.Repository          { return m.u }
func (m *memRepoManager) ResetTickets(dbx.DBTX) resetticketsrepo.Repository {
	return m.r
}

func newSeeder(env string) (*Seeder, *memRepoManager) {
	m := &memRepoManager{u: newMemUsersRepo(), r: newMemTicketsRepo()}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	cfg := &config.Config{Environment: env}
	return New(nil, m, cfg, logger), m
}

func TestSeedAdmin_CreatesAndIsIdempotent(t *testing.T) {
	s, m := newSeeder(config.EnvDevelopment)

	if err := s.SeedAdmin(context.Background(), "root@x.com", "secret"); err != nil {
		t.Fatalf("SeedAdmin error: %v", err)
	}

	admin, err := m.u.GetByEmail(context.Background(), "root@x.com")
	if err != nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("role = %s, want ADMIN", admin.Role)
	}
	if admin.PasswordHash == nil || !auth.CheckPassword("secret", *admin.PasswordHash) {
		t.Fatalf("stored hash does not match the password")
	}

	// second run must not fail or duplicate
	if err := s.SeedAdmin(context.Background(), "root@x.com", "other"); err != nil {
		t.Fatalf("second SeedAdmin error: %v", err)
	}
	if len(m.u.byID) != 1 {
		t.Fatalf("duplicate admin created: %d users", len(m.u.byID))
	}
}

func TestSeedAdmin_RequiresCredentials(t *testing.T) {
	s, _ := newSeeder(config.EnvDevelopment)

	if err := s.SeedAdmin(context.Background(), "", "secret"); err == nil {
		t.Fatalf("expected error for missing email")
	}
	if err := s.SeedAdmin(context.Background(), "root@x.com", ""); err == nil {
		t.Fatalf("expected error for missing password")
	}
}

func TestSeedDev_CreatesFixedAccounts(t *testing.T) {
	s, m := newSeeder(config.EnvDevelopment)

	if err := s.SeedDev(context.Background()); err != nil {
		t.Fatalf("SeedDev error: %v", err)
	}

	admin, err := m.u.GetByEmail(context.Background(), DevAdminEmail)
	if err != nil || admin.Role != models.RoleAdmin {
		t.Fatalf("dev admin missing or wrong role: %v %v", admin, err)
	}
	user, err := m.u.GetByEmail(context.Background(), DevUserEmail)
	if err != nil || user.Role != models.RoleUser {
		t.Fatalf("dev user missing or wrong role: %v %v", user, err)
	}
	if !auth.CheckPassword(DevPassword, *user.PasswordHash) {
		t.Fatalf("dev password does not verify")
	}
}

func TestSeedDev_RefusedWhenDeployed(t *testing.T) {
	for _, env := range []string{config.EnvStaging, config.EnvProduction} {
		t.Run(env, func(t *testing.T) {
			s, m := newSeeder(env)
			if err := s.SeedDev(context.Background()); err == nil {
				t.Fatalf("SeedDev must refuse in %s", env)
			}
			if len(m.u.byID) != 0 {
				t.Fatalf("accounts created despite refusal")
			}
		})
	}
}

func TestWipe_EnvironmentGate(t *testing.T) {
	tests := []struct {
		env     string
		allowed bool
	}{
		{config.EnvDevelopment, true},
		{config.EnvStaging, true},
		{config.EnvTesting, true},
		{config.EnvCI, true},
		{config.EnvProduction, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			s, m := newSeeder(tt.env)
			if err := s.SeedAdmin(context.Background(), "root@x.com", "secret"); err != nil {
				t.Fatalf("SeedAdmin error: %v", err)
			}

			err := s.Wipe(context.Background())
			if tt.allowed {
				if err != nil {
					t.Fatalf("Wipe error: %v", err)
				}
				if len(m.u.byID) != 0 {
					t.Fatalf("users remain after wipe")
				}
			} else {
				if err == nil {
					t.Fatalf("Wipe must refuse in %s", tt.env)
				}
				if len(m.u.byID) != 1 {
					t.Fatalf("users deleted despite refusal")
				}
			}
		})
	}
}

// Against the real repositories the ticket delete must come first:
// password_resets.user_id references users and does not cascade.
func TestWipe_DeletesTicketsBeforeUsers(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+password_resets`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE\s+FROM\s+users`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repos, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		t.Fatalf("NewPostgresRepositoryManager error: %v", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s := New(db, repos, &config.Config{Environment: config.EnvDevelopment}, logger)

	if err := s.Wipe(context.Background()); err != nil {
		t.Fatalf("Wipe error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestWipe_ClearsTickets(t *testing.T) {
	s, m := newSeeder(config.EnvDevelopment)

	if err := s.SeedAdmin(context.Background(), "root@x.com", "secret"); err != nil {
		t.Fatalf("SeedAdmin error: %v", err)
	}
	admin, err := m.u.GetByEmail(context.Background(), "root@x.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if err := m.r.Create(context.Background(), admin.ID, "tok", time.Hour); err != nil {
		t.Fatalf("ticket Create error: %v", err)
	}

	if err := s.Wipe(context.Background()); err != nil {
		t.Fatalf("Wipe with outstanding tickets error: %v", err)
	}
	if len(m.r.byToken) != 0 {
		t.Fatalf("tickets remain after wipe")
	}
	if len(m.u.byID) != 0 {
		t.Fatalf("users remain after wipe")
	}
}
