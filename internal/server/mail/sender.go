// Package mail renders transactional email templates and delivers them via a
// pluggable Sender. Delivery failures are reported to the caller but the auth
// flows treat them as best-effort.
package mail

import "context"

// Sender delivers a rendered HTML email to a single recipient.
type Sender interface {
	Send(ctx context.Context, to string, subject string, htmlBody string) error
}
