package sqldb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed migrations
var migrationsFS embed.FS

// migrateUp brings the schema up to date on a dedicated connection, which is closed together with the migrator.
func migrateUp(logger *logrus.Logger, d *dialect, dsn string) error {
	src, err := iofs.New(migrationsFS, d.migrationsDir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		_ = src.Close()
		return fmt.Errorf("open migration connection: %w", err)
	}

	driver, err := d.migrateDriver(db)
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, d.name, driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return fmt.Errorf("create migrator: %w", err)
	}
	m.Log = &migrateLogger{logger: logger}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			logger.WithFields(logrus.Fields{
				"source_error":   srcErr,
				"database_error": dbErr,
			}).Warn("Failed to close schema migrator")
		}
	}()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("Catalog schema is up to date")

	return nil
}

// migrateLogger routes migrate's output through logrus.
type migrateLogger struct {
	logger *logrus.Logger
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.logger.Debugf("migrate: "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.logger.IsLevelEnabled(logrus.DebugLevel)
}
