package async

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/hedisam/filedrop/lib/chans"
	"github.com/hedisam/filedrop/server/internal/contentstore"
)

//go:generate moq -out mocks/reclaimer.go -pkg mocks -skip-ensure . Reclaimer
//go:generate moq -out mocks/staging_store.go -pkg mocks -skip-ensure . StagingStore

type Reclaimer interface {
	Reclaim(ctx context.Context, orphan *contentstore.Orphan) error
}

type StagingStore interface {
	StagedObjects(ctx context.Context) ([]string, error)
	RemoveStaged(ctx context.Context, id string) error
}

// Janitor removes content that ended up on disk without a catalog record.
type Janitor struct {
	logger      *logrus.Logger
	reclaimer   Reclaimer
	staging     StagingStore
	retryWindow time.Duration
}

func NewJanitor(logger *logrus.Logger, reclaimer Reclaimer, staging StagingStore, retryWindow time.Duration) *Janitor {
	return &Janitor{
		logger:      logger,
		reclaimer:   reclaimer,
		staging:     staging,
		retryWindow: retryWindow,
	}
}

// SweepStaging removes everything left in the staging area by a previous run. It must be called before the server
// starts accepting uploads, otherwise it would race with in-flight ingestion.
func (j *Janitor) SweepStaging(ctx context.Context) error {
	logger := j.logger.WithContext(ctx)

	ids, err := j.staging.StagedObjects(ctx)
	if err != nil {
		return fmt.Errorf("list staged objects: %w", err)
	}

	var errs []error
	for _, id := range ids {
		err = j.staging.RemoveStaged(ctx, id)
		if err != nil {
			logger.WithError(err).WithField("staging_id", id).Error("Failed to remove leftover staged object")
			errs = append(errs, err)
		}
	}

	logger.WithFields(logrus.Fields{
		"found":  len(ids),
		"failed": len(errs),
	}).Info("Swept staging area")

	return errors.Join(errs...)
}

func (j *Janitor) Run(ctx context.Context, in <-chan *contentstore.Orphan) {
	j.logger.WithContext(ctx).Info("Running Janitor")

	for orphan := range chans.ReceiveOrDoneSeq(ctx, in) {
		j.cleanup(ctx, orphan)
	}
}

func (j *Janitor) cleanup(ctx context.Context, orphan *contentstore.Orphan) {
	ctx, span := otel.Tracer("").Start(ctx, "janitor")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.name", orphan.Name),
		attribute.String("file.staging_id", orphan.StagingID),
	)

	logger := j.logger.WithContext(ctx).WithFields(logrus.Fields{
		"name":       orphan.Name,
		"staging_id": orphan.StagingID,
		"reason":     orphan.Reason,
	})
	logger.Debug("Cleaning up orphaned object")

	bk := backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(j.retryWindow),
		backoff.WithMaxInterval(time.Second),
		backoff.WithInitialInterval(time.Millisecond*100),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0.2),
	)
	err := backoff.Retry(func() error {
		err := j.reclaimer.Reclaim(ctx, orphan)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				logger.WithError(err).Warn("Stopped cleaning up object due to context cancellation")
				return backoff.Permanent(err)
			}
			logger.WithError(err).Warn("Failed to clean up object, retrying")
			return err
		}

		return nil
	}, backoff.WithContext(bk, ctx))
	if err != nil {
		span.RecordError(err)
		logger.WithError(err).Error("Failed to clean up object in janitor")
		return
	}

	logger.Info("Cleaned up orphaned object")
}
