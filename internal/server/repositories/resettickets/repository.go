package resettickets

import (
	"context"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/server/models"
)

// Repository is the access contract for password-reset tickets.
type Repository interface {
	// Create inserts a new ticket for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// FindActive returns the ticket with the given token that is not used
	// and not expired, or common.ErrNotFound. Missing, already-used and
	// expired tickets are indistinguishable to the caller.
	FindActive(ctx context.Context, token string) (*models.ResetTicket, error)

	// MarkUsed flips the used flag of a ticket.
	MarkUsed(ctx context.Context, id string) error

	// DeleteAll removes every ticket row. Used by the wipe tool only; it
	// must run before the users wipe because of the user_id foreign key.
	DeleteAll(ctx context.Context) error
}
