// Package services contains server-side business logic. This file implements
// AuthService, which orchestrates credential checking, token issuance, the
// password-reset flow, and role-gated admin operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/common"
	"github.com/dmitrijs2005/agencyhub/internal/dbx"
	"github.com/dmitrijs2005/agencyhub/internal/logging"
	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
	"github.com/dmitrijs2005/agencyhub/internal/server/config"
	"github.com/dmitrijs2005/agencyhub/internal/server/mail"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/repomanager"
)

// resetTokenBytes is the entropy of a reset ticket before hex encoding.
const resetTokenBytes = 32

// AuthResult bundles a user snapshot with a freshly issued session token.
type AuthResult struct {
	User  *models.User
	Token string
}

// SessionCheck is the outcome of a best-effort token verification. A failed
// check carries no detail: expired, forged and orphaned tokens all collapse
// to Authed=false.
type SessionCheck struct {
	Authed bool
	User   *models.User
	Token  string
}

// AuthService provides the authentication and authorization operations:
// registration, login, session verification, the password-reset flow, and
// the admin-gated user listing / impersonation.
type AuthService struct {
	db          *sql.DB
	repos       repomanager.RepositoryManager
	codec       *auth.Codec
	mailer      *mail.Service
	logger      logging.Logger
	environment string
	deployed    bool
	resetTTL    time.Duration

	// runAsync is a seam for the fire-and-forget notification sends;
	// tests replace it with a synchronous runner.
	runAsync func(fn func())
}

// NewAuthService constructs an AuthService using repositories, the token
// codec, the mail service, and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, codec *auth.Codec, mailer *mail.Service, cfg *config.Config, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repos:       m,
		codec:       codec,
		mailer:      mailer,
		logger:      logger.With("module", "auth_service"),
		environment: cfg.Environment,
		deployed:    cfg.IsDeployed(),
		resetTTL:    cfg.ResetTicketTTL,
		runAsync:    func(fn func()) { go fn() },
	}
}

// Register creates a new USER-role account and returns it with a session
// token. Registration of an already-taken email fails with
// common.ErrConflict. The welcome notification is sent after the creating
// transaction commits and never fails the registration.
func (s *AuthService) Register(ctx context.Context, email string, password string) (*AuthResult, error) {
	repo := s.repos.Users(s.db)

	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return nil, common.ErrConflict
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("error checking existing user: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{Email: email, PasswordHash: &hash, Role: models.RoleUser}
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created
		return nil
	}); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	// Notifications go out only after the transaction has committed; a
	// failed send must not fail the registration.
	s.runAsync(func() {
		ctx := context.Background()
		if err := s.mailer.SendWelcome(ctx, user.Email); err != nil {
			s.logger.Error(ctx, "welcome email failed", "email", user.Email, "error", err.Error())
		}
		if s.deployed {
			subject := fmt.Sprintf("[%s] New User Registered", s.environment)
			message := fmt.Sprintf("A new user %q has registered", user.Email)
			if err := s.mailer.SendAdminNotification(ctx, subject, message); err != nil {
				s.logger.Error(ctx, "admin notification failed", "error", err.Error())
			}
		}
	})

	token, err := s.issueFor(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Debug(ctx, "user registered", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies the credentials and returns the user with a fresh token.
// An unknown email yields common.ErrNotFound, a user without a usable
// password yields common.ErrInternal (data-integrity signal, not a user
// error), and a wrong password yields common.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, email string, password string) (*AuthResult, error) {
	repo := s.repos.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if user.PasswordHash == nil || *user.PasswordHash == "" {
		s.logger.Error(ctx, "user account has no password hash", "user_id", user.ID)
		return nil, common.ErrInternal
	}

	if !auth.CheckPassword(password, *user.PasswordHash) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.issueFor(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Debug(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// VerifySession checks a client-held token and, when valid, returns the
// current user snapshot with a renewed token (sliding expiry). It never
// returns an error: every failure collapses to an unauthenticated result.
// The underlying cause is only logged.
func (s *AuthService) VerifySession(ctx context.Context, token string) *SessionCheck {
	negative := &SessionCheck{}

	claims, err := s.codec.Verify(token)
	if err != nil {
		reason := "token_invalid"
		if errors.Is(err, common.ErrTokenExpired) {
			reason = "token_expired"
		}
		s.logger.Warn(ctx, "session check failed", "reason", reason)
		return negative
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, claims.UserID)
	if err != nil {
		reason := "lookup_failed"
		if errors.Is(err, common.ErrNotFound) {
			reason = "user_missing"
		}
		s.logger.Warn(ctx, "session check failed", "reason", reason, "user_id", claims.UserID)
		return negative
	}

	fresh, err := s.issueFor(user)
	if err != nil {
		s.logger.Warn(ctx, "session check failed", "reason", "issue_failed")
		return negative
	}

	return &SessionCheck{Authed: true, User: user, Token: fresh}
}

// RequestReset starts the forgot-password flow. It reports success whether
// or not the email belongs to a user, so callers cannot probe for
// registered addresses. The reset email goes to the requested address; a
// failed send is logged and does not change the outcome.
func (s *AuthService) RequestReset(ctx context.Context, email string) error {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.logger.Warn(ctx, "password reset requested for unknown email", "email", email)
			return nil
		}
		return common.ErrInternal
	}

	token, err := common.MakeRandHexString(resetTokenBytes)
	if err != nil {
		return common.ErrInternal
	}

	if err := s.repos.ResetTickets(s.db).Create(ctx, user.ID, token, s.resetTTL); err != nil {
		return fmt.Errorf("error creating reset ticket: %w", err)
	}

	if err := s.mailer.SendForgotPassword(ctx, email, token); err != nil {
		s.logger.Error(ctx, "reset email failed", "email", email, "error", err.Error())
	}

	return nil
}

// CompleteReset redeems a reset ticket: the new password is stored and the
// ticket is marked used in one transaction, so a ticket can never burn
// without the password actually changing. Missing, spent and expired
// tickets all fail with common.ErrInvalidOrExpired.
func (s *AuthService) CompleteReset(ctx context.Context, ticketToken string, newPassword string) (*AuthResult, error) {
	ticket, err := s.repos.ResetTickets(s.db).FindActive(ctx, ticketToken)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidOrExpired
		}
		return nil, fmt.Errorf("error searching reset ticket: %w", err)
	}

	user, err := s.repos.Users(s.db).GetByID(ctx, ticket.UserID)
	if err != nil {
		s.logger.Error(ctx, "reset ticket points to missing user", "ticket_id", ticket.ID)
		return nil, common.ErrInternal
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, common.ErrInternal
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Users(tx).UpdatePasswordHash(ctx, user.ID, hash); err != nil {
			return fmt.Errorf("error updating password: %w", err)
		}
		if err := s.repos.ResetTickets(tx).MarkUsed(ctx, ticket.ID); err != nil {
			return fmt.Errorf("error marking ticket used: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	user.PasswordHash = &hash

	token, err := s.issueFor(user)
	if err != nil {
		return nil, common.ErrInternal
	}

	s.logger.Debug(ctx, "password reset completed", "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// RequireRole is the role gate composed in front of protected operations:
// nil claims yield common.ErrUnauthenticated, a role mismatch yields
// common.ErrForbidden. Pure check, no side effects.
func (s *AuthService) RequireRole(claims *auth.Claims, role models.Role) error {
	if claims == nil {
		return common.ErrUnauthenticated
	}
	if claims.Role != role {
		return common.ErrForbidden
	}
	return nil
}

// Me returns the current user's record. The claim must be present; a user
// deleted since the token was issued yields common.ErrNotFound.
func (s *AuthService) Me(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if claims == nil {
		return nil, common.ErrUnauthenticated
	}
	return s.repos.Users(s.db).GetByID(ctx, claims.UserID)
}

// ListUsers returns all users ordered by creation time. ADMIN only.
func (s *AuthService) ListUsers(ctx context.Context, claims *auth.Claims) ([]*models.User, error) {
	if err := s.RequireRole(claims, models.RoleAdmin); err != nil {
		return nil, err
	}

	users, err := s.repos.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	s.logger.Debug(ctx, "users listed", "count", len(users))
	return users, nil
}

// LoginAs issues a token carrying the target user's identity. ADMIN only.
// No audit record is written for the impersonation; a production deployment
// should add one before exposing this more widely.
func (s *AuthService) LoginAs(ctx context.Context, claims *auth.Claims, targetUserID string) (*AuthResult, error) {
	if err := s.RequireRole(claims, models.RoleAdmin); err != nil {
		return nil, err
	}

	target, err := s.repos.Users(s.db).GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	token, err := s.issueFor(target)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &AuthResult{User: target, Token: token}, nil
}

// EmailPreviews renders the transactional templates with sample data for
// the admin preview page. ADMIN only.
func (s *AuthService) EmailPreviews(ctx context.Context, claims *auth.Claims, branding mail.Branding) ([]mail.TemplatePreview, error) {
	if err := s.RequireRole(claims, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.mailer.Previews(branding)
}

func (s *AuthService) issueFor(user *models.User) (string, error) {
	return s.codec.Issue(auth.Claim{UserID: user.ID, Email: user.Email, Role: user.Role})
}
