package users

import (
	"context"

	"github.com/dmitrijs2005/agencyhub/internal/server/models"
)

// Repository is the access contract for persisted user records.
type Repository interface {
	// Create inserts a new user and returns it with the generated fields set.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the user with exactly the given email
	// (case-sensitive match), or common.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the user with the given id, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// List returns all users ordered by creation time, oldest first.
	List(ctx context.Context) ([]*models.User, error)

	// UpdatePasswordHash replaces the stored password hash of a user.
	UpdatePasswordHash(ctx context.Context, userID string, hash string) error

	// DeleteAll removes every user row. Used by the wipe tool only.
	DeleteAll(ctx context.Context) error
}
