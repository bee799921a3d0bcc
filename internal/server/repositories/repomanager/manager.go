// Package repomanager wires concrete repositories over a shared database
// handle and owns schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/imagifine/internal/dbx"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/contacts"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/imagifine/internal/server/repositories/users"
)

// RepositoryManager builds repositories bound to db, which may be either
// *sql.DB or a transaction handle, so the same repositories work inside and
// outside atomic units.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Contacts(db dbx.DBTX) contacts.Repository
}
