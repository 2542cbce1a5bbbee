package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/contentstore"
	"github.com/hedisam/filedrop/server/internal/failure"
	"github.com/hedisam/filedrop/server/internal/interceptors"
)

const tracerName = "github.com/hedisam/filedrop/server/internal/retrieval"

//go:generate moq -out mocks/catalog.go -pkg mocks -skip-ensure . Catalog
//go:generate moq -out mocks/content_store.go -pkg mocks -skip-ensure . ContentStore

type Catalog interface {
	List(ctx context.Context) ([]catalog.FileRecord, error)
	Get(ctx context.Context, name string) (*catalog.FileRecord, error)
}

type ContentStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// File is a cataloged file together with its content.
type File struct {
	Record  *catalog.FileRecord
	Content []byte
}

// Service is the read path. The catalog decides what exists; content on disk without a record is never served.
type Service struct {
	logger  *logrus.Logger
	catalog Catalog
	store   ContentStore
	metrics *interceptors.Metrics
	timeout time.Duration
}

func New(logger *logrus.Logger, c Catalog, store ContentStore, metrics *interceptors.Metrics, timeout time.Duration) *Service {
	return &Service{
		logger:  logger,
		catalog: c,
		store:   store,
		metrics: metrics,
		timeout: timeout,
	}
}

func (s *Service) ListFiles(ctx context.Context) ([]catalog.FileRecord, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "list_files")
	defer span.End()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	records, err := s.catalog.List(ctx)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to list file records")
		err = failure.Wrap(failure.ErrCatalogUnavailable, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, failure.Label(err))
		return nil, err
	}

	span.SetAttributes(attribute.Int("file.count", len(records)))
	return records, nil
}

// FetchFile returns the named file if it's cataloged. A record whose content is gone or no longer matches is
// reported as such instead of being served.
func (s *Service) FetchFile(ctx context.Context, name string) (file *File, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "fetch_file")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", name))

	defer func() {
		s.metrics.FetchOutcome(failure.Label(err))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, failure.Label(err))
		}
	}()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	logger := s.logger.WithContext(ctx).WithField("name", name)

	rec, err := s.catalog.Get(ctx, name)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			logger.Debug("Requested file is not cataloged")
			return nil, failure.Wrap(failure.ErrNotFound, err)
		}
		logger.WithError(err).Error("Failed to look up file record")
		return nil, failure.Wrap(failure.ErrCatalogUnavailable, err)
	}

	// a row can be inserted behind our back, so the name is checked again before it goes anywhere near the disk
	err = contentstore.ValidateName(rec.Name)
	if err != nil {
		logger.WithError(err).Error("Cataloged file has an unsafe name")
		return nil, failure.Wrap(failure.ErrInvalidName, err)
	}

	content, err := s.store.Get(ctx, rec.Name)
	if err != nil {
		if errors.Is(err, contentstore.ErrNotFound) {
			logger.Error("Cataloged file is missing from storage")
			return nil, failure.Wrap(failure.ErrContentMissing, err)
		}
		logger.WithError(err).Error("Failed to read file content")
		return nil, failure.Wrap(failure.ErrContentMissing, err)
	}

	if int64(len(content)) != rec.Size {
		logger.WithFields(logrus.Fields{
			"record_size":  rec.Size,
			"content_size": len(content),
		}).Error("File content does not match its record")
		return nil, failure.Wrap(failure.ErrContentMismatch, fmt.Errorf("record size %d, content size %d", rec.Size, len(content)))
	}

	return &File{
		Record:  rec,
		Content: content,
	}, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}
