package models

import "time"

// ResetTicket is a single-use capability for the forgot-password flow.
// The Token field is a bearer secret; a ticket is redeemable at most once
// and only before ExpiresAt.
type ResetTicket struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}
