// Package httpapi exposes the authentication service over a JSON-RPC style
// HTTP surface: every operation is a POST under /rpc/ with a JSON body and a
// JSON response.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/agencyhub/internal/server/auth"
	"github.com/dmitrijs2005/agencyhub/internal/server/mail"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/dmitrijs2005/agencyhub/internal/server/services"
)

// AuthProvider is the slice of the service layer the transport needs.
// *services.AuthService satisfies it; tests substitute a fake.
type AuthProvider interface {
	Register(ctx context.Context, email string, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email string, password string) (*services.AuthResult, error)
	VerifySession(ctx context.Context, token string) *services.SessionCheck
	RequestReset(ctx context.Context, email string) error
	CompleteReset(ctx context.Context, ticketToken string, newPassword string) (*services.AuthResult, error)
	Me(ctx context.Context, claims *auth.Claims) (*models.User, error)
	ListUsers(ctx context.Context, claims *auth.Claims) ([]*models.User, error)
	LoginAs(ctx context.Context, claims *auth.Claims, targetUserID string) (*services.AuthResult, error)
	EmailPreviews(ctx context.Context, claims *auth.Claims, branding mail.Branding) ([]mail.TemplatePreview, error)
}
