package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/im7mortal/kmutex"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/contentstore"
	"github.com/hedisam/filedrop/server/internal/failure"
	"github.com/hedisam/filedrop/server/internal/interceptors"
)

const (
	tracerName = "github.com/hedisam/filedrop/server/internal/ingest"

	// cleanup keeps running for a little while after the request deadline so a timed out ingest still tidies up.
	cleanupTimeout = 3 * time.Second
)

//go:generate moq -out mocks/content_store.go -pkg mocks -skip-ensure . ContentStore
//go:generate moq -out mocks/catalog.go -pkg mocks -skip-ensure . Catalog
//go:generate moq -out mocks/emitter.go -pkg mocks -skip-ensure . Emitter

type ContentStore interface {
	Stage(ctx context.Context, data []byte) (*contentstore.StagedObject, error)
	Publish(ctx context.Context, obj *contentstore.StagedObject, name string) error
	RemoveStaged(ctx context.Context, id string) error
	Remove(ctx context.Context, name string) error
}

type Catalog interface {
	Get(ctx context.Context, name string) (*catalog.FileRecord, error)
	Insert(ctx context.Context, rec *catalog.FileRecord, publish catalog.PublishFunc) error
}

type Emitter interface {
	Emit(ctx context.Context, orphan *contentstore.Orphan) error
}

// Pipeline accepts uploads. Content is staged first, the catalog record is written in a transaction and the content
// is published by an atomic rename just before that transaction commits, so a name is never visible in the catalog
// without its bytes on disk. Ingestion is serialised per name.
type Pipeline struct {
	logger  *logrus.Logger
	store   ContentStore
	catalog Catalog
	emitter Emitter
	metrics *interceptors.Metrics
	locks   *kmutex.Kmutex
	timeout time.Duration
}

func New(logger *logrus.Logger, store ContentStore, c Catalog, e Emitter, metrics *interceptors.Metrics, timeout time.Duration) *Pipeline {
	return &Pipeline{
		logger:  logger,
		store:   store,
		catalog: c,
		emitter: e,
		metrics: metrics,
		locks:   kmutex.New(),
		timeout: timeout,
	}
}

// Ingest stores data under name and records its metadata. Every returned error wraps one of the failure sentinels.
func (p *Pipeline) Ingest(ctx context.Context, name string, data []byte) (rec *catalog.FileRecord, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingest")
	defer span.End()
	span.SetAttributes(attribute.String("file.name", name), attribute.Int("file.size", len(data)))

	logger := p.logger.WithContext(ctx).WithFields(logrus.Fields{
		"name": name,
		"size": len(data),
	})

	defer func() {
		p.metrics.IngestOutcome(failure.Label(err))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, failure.Label(err))
		}
	}()

	if name == "" || len(data) == 0 {
		logger.Warn("Upload without a file name or content")
		return nil, failure.ErrNoFileProvided
	}
	err = contentstore.ValidateName(name)
	if err != nil {
		logger.WithError(err).Warn("Rejected upload with invalid file name")
		return nil, failure.Wrap(failure.ErrInvalidName, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	unlock, err := p.lockName(ctx, name)
	if err != nil {
		logger.WithError(err).Warn("Gave up waiting for another upload of the same name")
		return nil, failure.Wrap(failure.ErrCatalogUnavailable, err)
	}
	defer unlock()

	// check first so a duplicate never touches the disk
	_, err = p.catalog.Get(ctx, name)
	switch {
	case err == nil:
		logger.Debug("Rejected upload of an existing file")
		return nil, fmt.Errorf("%w: %q", failure.ErrDuplicateKey, name)
	case !errors.Is(err, catalog.ErrNotFound):
		logger.WithError(err).Error("Failed to look up file record before upload")
		return nil, failure.Wrap(failure.ErrCatalogUnavailable, err)
	}

	staged, err := p.store.Stage(ctx, data)
	if err != nil {
		logger.WithError(err).Error("Failed to stage file content")
		return nil, failure.Wrap(failure.ErrStorageWriteFailed, err)
	}
	logger = logger.WithField("staging_id", staged.ID)

	if staged.Size != int64(len(data)) {
		p.discard(ctx, logger, staged)
		logger.WithField("staged_size", staged.Size).Error("Staged file size does not match the upload")
		return nil, failure.Wrap(failure.ErrStorageWriteFailed, fmt.Errorf("staged %d of %d bytes", staged.Size, len(data)))
	}

	rec = &catalog.FileRecord{
		Name:       name,
		Size:       staged.Size,
		CreatedAt:  staged.CreatedAt,
		ModifiedAt: staged.ModifiedAt,
	}

	var published bool
	var publishErr error
	err = p.catalog.Insert(ctx, rec, func(ctx context.Context) error {
		publishErr = p.store.Publish(ctx, staged, name)
		if publishErr != nil {
			return publishErr
		}
		published = true
		return nil
	})
	if err == nil {
		logger.Debug("Successfully ingested file")
		return rec, nil
	}

	if published {
		return p.reconcile(ctx, logger, rec, err)
	}

	p.discard(ctx, logger, staged)
	switch {
	case publishErr != nil:
		logger.WithError(err).Error("Failed to publish staged file content")
		return nil, failure.Wrap(failure.ErrStorageWriteFailed, err)
	case errors.Is(err, catalog.ErrDuplicateKey):
		logger.Debug("Rejected upload of an existing file")
		return nil, failure.Wrap(failure.ErrDuplicateKey, err)
	default:
		logger.WithError(err).Error("Failed to insert file record")
		return nil, failure.Wrap(failure.ErrCatalogWriteFailed, err)
	}
}

// reconcile handles an insert that failed after the content was published, i.e. a failed commit. Whether the
// commit actually went through is unknown, so the catalog is asked before touching the published object.
func (p *Pipeline) reconcile(ctx context.Context, logger *logrus.Entry, rec *catalog.FileRecord, commitErr error) (*catalog.FileRecord, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	logger = logger.WithField("commit_error", commitErr.Error())

	_, err := p.catalog.Get(ctx, rec.Name)
	if err == nil {
		logger.Warn("Commit reported a failure but the file record exists, keeping content")
		return rec, nil
	}

	if errors.Is(err, catalog.ErrNotFound) {
		rmErr := p.store.Remove(ctx, rec.Name)
		if rmErr == nil {
			logger.Error("Failed to commit file record, removed published content")
			return nil, failure.Wrap(failure.ErrCatalogWriteFailed, commitErr)
		}
		logger.WithError(rmErr).Error("Failed to remove published content after a failed commit")
	} else {
		logger.WithError(err).Error("Could not confirm the file record after a failed commit")
	}

	p.emit(ctx, logger, &contentstore.Orphan{Name: rec.Name, Reason: "catalog commit failed"})
	return nil, failure.Wrap(failure.ErrCatalogWriteFailed, commitErr)
}

func (p *Pipeline) discard(ctx context.Context, logger *logrus.Entry, staged *contentstore.StagedObject) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	err := p.store.RemoveStaged(ctx, staged.ID)
	if err != nil {
		logger.WithError(err).Warn("Failed to discard staged content")
		p.emit(ctx, logger, &contentstore.Orphan{StagingID: staged.ID, Reason: "discard failed"})
	}
}

func (p *Pipeline) emit(ctx context.Context, logger *logrus.Entry, orphan *contentstore.Orphan) {
	err := p.emitter.Emit(ctx, orphan)
	if err != nil {
		logger.WithError(err).Error("Failed to hand orphaned content over to the janitor")
	}
}

// lockName takes the per-name lock, giving up once ctx is done. A lock that is only acquired after giving up is
// released right away.
func (p *Pipeline) lockName(ctx context.Context, name string) (func(), error) {
	acquired := make(chan struct{})
	go func() {
		p.locks.Lock(name)
		close(acquired)
	}()

	select {
	case <-acquired:
		return func() { p.locks.Unlock(name) }, nil
	case <-ctx.Done():
		go func() {
			<-acquired
			p.locks.Unlock(name)
		}()
		return nil, ctx.Err()
	}
}

// Reclaim removes an orphaned object. A published object is only removed if it still has no catalog record, which
// is checked under the same per-name lock ingestion uses.
func (p *Pipeline) Reclaim(ctx context.Context, orphan *contentstore.Orphan) error {
	if orphan.StagingID != "" {
		return p.store.RemoveStaged(ctx, orphan.StagingID)
	}

	unlock, err := p.lockName(ctx, orphan.Name)
	if err != nil {
		return fmt.Errorf("lock %q: %w", orphan.Name, err)
	}
	defer unlock()

	_, err = p.catalog.Get(ctx, orphan.Name)
	switch {
	case err == nil:
		// a later upload claimed the name
		return nil
	case !errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("look up file record: %w", err)
	}

	return p.store.Remove(ctx, orphan.Name)
}
