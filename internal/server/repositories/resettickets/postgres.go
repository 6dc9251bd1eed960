// Package resettickets provides a PostgreSQL-backed repository for the
// single-use, expiring tokens backing the forgot-password flow.
package resettickets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/agencyhub/internal/common"
	"github.com/dmitrijs2005/agencyhub/internal/dbx"
	"github.com/dmitrijs2005/agencyhub/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	query := `
		INSERT INTO password_resets (id, token, user_id, expires_at)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), token, userID, time.Now().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindActive(ctx context.Context, token string) (*models.ResetTicket, error) {
	query := `
		SELECT id, token, user_id, expires_at, used, created_at
		FROM password_resets
		WHERE token = $1 AND used = false AND expires_at > now()
	`

	ticket := &models.ResetTicket{}
	err := r.db.QueryRowContext(ctx, query, token).
		Scan(&ticket.ID, &ticket.Token, &ticket.UserID, &ticket.ExpiresAt, &ticket.Used, &ticket.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return ticket, nil
}

func (r *PostgresRepository) MarkUsed(ctx context.Context, id string) error {
	query := `
		UPDATE password_resets SET used = true
		WHERE id = $1
	`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM password_resets`); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
