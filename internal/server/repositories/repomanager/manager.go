package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/staticstore/internal/dbx"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/files"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/folders"
	"github.com/dmitrijs2005/staticstore/internal/server/repositories/warnings"
)

// RepositoryManager vends repositories bound to a DBTX, so the same code runs
// against the pool or inside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Folders(db dbx.DBTX) folders.Repository
	Files(db dbx.DBTX) files.Repository
	Warnings(db dbx.DBTX) warnings.Repository
}
