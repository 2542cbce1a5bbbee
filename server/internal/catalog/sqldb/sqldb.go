package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/catalog"
)

const (
	insertFileQuery = `INSERT INTO files (name, size, modification_date, creation_date) VALUES (?, ?, ?, ?)`
	listFilesQuery  = `SELECT name, size, creation_date, modification_date FROM files`
	getFileQuery    = `SELECT name, size, creation_date, modification_date FROM files WHERE name = ?`
)

// Catalog is the relational metadata catalog. All statements bind user input as parameters.
type Catalog struct {
	logger  *logrus.Logger
	db      *sql.DB
	dialect *dialect
}

// Open connects to the database behind databaseURL, applies pending schema migrations and returns a Catalog that
// owns the connection pool.
func Open(ctx context.Context, logger *logrus.Logger, databaseURL string) (*Catalog, error) {
	d, dsn, err := parseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	err = db.PingContext(pingCtx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	err = migrateUp(logger, d, dsn)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Catalog{
		logger:  logger,
		db:      db,
		dialect: d,
	}, nil
}

// Insert writes the record and runs publish inside the same transaction. The record is committed only if publish
// succeeds.
func (c *Catalog) Insert(ctx context.Context, rec *catalog.FileRecord, publish catalog.PublishFunc) error {
	logger := c.logger.WithContext(ctx).WithFields(logrus.Fields{
		"name":    rec.Name,
		"dialect": c.dialect.name,
	})

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		// no-op once committed
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, c.dialect.rebind(insertFileQuery), rec.Name, rec.Size, rec.ModifiedAt.UTC(), rec.CreatedAt.UTC())
	if err != nil {
		if c.dialect.isUniqueViolation(err) {
			return fmt.Errorf("insert %q: %w", rec.Name, catalog.ErrDuplicateKey)
		}
		logger.WithError(err).Error("Failed to insert file record")
		return fmt.Errorf("insert file record: %w", err)
	}

	if publish != nil {
		err = publish(ctx)
		if err != nil {
			return fmt.Errorf("publish: %w", err)
		}
	}

	err = tx.Commit()
	if err != nil {
		logger.WithError(err).Error("Failed to commit file record")
		return fmt.Errorf("commit file record: %w", err)
	}

	return nil
}

func (c *Catalog) List(ctx context.Context) ([]catalog.FileRecord, error) {
	rows, err := c.db.QueryContext(ctx, listFilesQuery)
	if err != nil {
		return nil, fmt.Errorf("query file records: %w", err)
	}
	defer rows.Close()

	records := []catalog.FileRecord{}
	for rows.Next() {
		var rec catalog.FileRecord
		err = rows.Scan(&rec.Name, &rec.Size, &rec.CreatedAt, &rec.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, normalise(rec))
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}

	return records, nil
}

func (c *Catalog) Get(ctx context.Context, name string) (*catalog.FileRecord, error) {
	var rec catalog.FileRecord
	err := c.db.QueryRowContext(ctx, c.dialect.rebind(getFileQuery), name).
		Scan(&rec.Name, &rec.Size, &rec.CreatedAt, &rec.ModifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get %q: %w", name, catalog.ErrNotFound)
		}
		return nil, fmt.Errorf("query file record: %w", err)
	}

	rec = normalise(rec)
	return &rec, nil
}

func (c *Catalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close tears down the connection pool.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func normalise(rec catalog.FileRecord) catalog.FileRecord {
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.ModifiedAt = rec.ModifiedAt.UTC()
	return rec
}
