package db

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // database/sql driver used by migrate's postgres driver
	"go.uber.org/zap"

	"github.com/axdbertuol/carford/apperror"
	"github.com/axdbertuol/carford/db/migrations"
)

// Direction selects which way migrations are applied.
type Direction int

const (
	Up Direction = iota
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// RunMigrations applies the embedded migrations against the database at dsn.
// Running with nothing to apply is not an error.
func RunMigrations(dsn string, dir Direction) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return apperror.NewMigrationError("failed to open embedded migrations", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return apperror.NewMigrationError("failed to create migrator", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			zap.L().Warn("closing migrator", zap.NamedError("source_error", srcErr), zap.NamedError("db_error", dbErr))
		}
	}()

	switch dir {
	case Down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations "+dir.String(), err)
	}

	version, dirty, vErr := m.Version()
	if vErr != nil && !errors.Is(vErr, migrate.ErrNilVersion) {
		return apperror.NewMigrationError("failed to read migration version", vErr)
	}
	zap.L().Info("migrations applied", zap.Stringer("direction", dir), zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
