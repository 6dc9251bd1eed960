package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/agencyhub/internal/dbx"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/resettickets"
	"github.com/dmitrijs2005/agencyhub/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	ResetTickets(db dbx.DBTX) resettickets.Repository
}
