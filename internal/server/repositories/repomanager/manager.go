package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/airpass/internal/dbx"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/airquality"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/exports"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/exposures"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/healthprofiles"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/airpass/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a DBTX, so services can use
// the same repository either directly on the pool or inside dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Sessions(db dbx.DBTX) sessions.Repository
	Profiles(db dbx.DBTX) profiles.Repository
	Exposures(db dbx.DBTX) exposures.Repository
	HealthProfiles(db dbx.DBTX) healthprofiles.Repository
	AirQuality(db dbx.DBTX) airquality.Repository
	Exports(db dbx.DBTX) exports.Repository
}
