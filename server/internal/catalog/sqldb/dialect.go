package sqldb

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/mattn/go-sqlite3"
)

const pgUniqueViolation = "23505"

// dialect captures what differs between the supported database engines.
type dialect struct {
	name              string
	driverName        string
	migrationsDir     string
	numberedParams    bool
	maxOpenConns      int
	isUniqueViolation func(err error) bool
	migrateDriver     func(db *sql.DB) (database.Driver, error)
}

var sqliteDialect = &dialect{
	name:          "sqlite3",
	driverName:    "sqlite3",
	migrationsDir: "migrations/sqlite",
	maxOpenConns:  4,
	isUniqueViolation: func(err error) bool {
		var se sqlite3.Error
		if !errors.As(err, &se) {
			return false
		}
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	},
	migrateDriver: func(db *sql.DB) (database.Driver, error) {
		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
	},
}

var postgresDialect = &dialect{
	name:           "pgx5",
	driverName:     "pgx",
	migrationsDir:  "migrations/postgres",
	numberedParams: true,
	maxOpenConns:   10,
	isUniqueViolation: func(err error) bool {
		var pgErr *pgconn.PgError
		return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
	},
	migrateDriver: func(db *sql.DB) (database.Driver, error) {
		return migratepgx.WithInstance(db, &migratepgx.Config{})
	},
}

// parseURL picks the dialect for a database URL and returns the DSN to hand to its driver.
// Supported forms are postgres://..., postgresql://..., sqlite://<path> and sqlite:<path>.
func parseURL(databaseURL string) (*dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return postgresDialect, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return sqliteDialect, sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite://")), nil
	case strings.HasPrefix(databaseURL, "sqlite:"):
		return sqliteDialect, sqliteDSN(strings.TrimPrefix(databaseURL, "sqlite:")), nil
	}

	scheme, _, _ := strings.Cut(databaseURL, ":")
	return nil, "", fmt.Errorf("unsupported database url scheme %q", scheme)
}

func sqliteDSN(path string) string {
	// immediate transactions take the write lock on BEGIN so concurrent inserts queue on the busy timeout
	// instead of failing on lock upgrade
	opts := "_busy_timeout=5000&_journal_mode=WAL&_txlock=immediate"
	if strings.Contains(path, "?") {
		return "file:" + path + "&" + opts
	}
	return "file:" + path + "?" + opts
}

// rebind rewrites ? placeholders into $n for engines that only understand numbered parameters.
func (d *dialect) rebind(query string) string {
	if !d.numberedParams {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}
