// Package drift watches the content root for changes made behind the service's back. The catalog stays the source
// of truth, so drift is only reported, the read path surfaces it as missing or mismatched content.
package drift

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/contentstore"
	"github.com/hedisam/filedrop/server/internal/interceptors"
)

type Catalog interface {
	Get(ctx context.Context, name string) (*catalog.FileRecord, error)
}

type Monitor struct {
	logger  *logrus.Logger
	watcher *fsnotify.Watcher
	catalog Catalog
	metrics *interceptors.Metrics
	rootDir string
}

func New(logger *logrus.Logger, c Catalog, metrics *interceptors.Metrics, rootDir string) (*Monitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	rootDir = filepath.Clean(rootDir)
	err = watcher.Add(rootDir)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("add root dir to watcher: %w", err)
	}

	logger.WithField("dir", rootDir).Debug("Watching content root for drift")

	return &Monitor{
		logger:  logger,
		watcher: watcher,
		catalog: c,
		metrics: metrics,
		rootDir: rootDir,
	}, nil
}

func (m *Monitor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			m.handle(ctx, event)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.WithError(err).Error("Received error from drift watcher")
		}
	}
}

func (m *Monitor) handle(ctx context.Context, event fsnotify.Event) {
	// the service only ever creates files in the root by renaming them out of the staging area, anything else
	// happening to a cataloged file was done by someone else.
	var change string
	switch {
	case event.Has(fsnotify.Remove):
		change = "removed"
	case event.Has(fsnotify.Rename):
		change = "renamed"
	case event.Has(fsnotify.Write):
		change = "modified"
	default:
		return
	}

	if filepath.Dir(event.Name) != m.rootDir {
		return
	}
	name := filepath.Base(event.Name)
	if name == contentstore.StagingDir {
		return
	}

	logger := m.logger.WithContext(ctx).WithFields(logrus.Fields{
		"name":   name,
		"change": change,
	})

	_, err := m.catalog.Get(ctx, name)
	if err != nil {
		if !errors.Is(err, catalog.ErrNotFound) {
			logger.WithError(err).Warn("Could not check file record for a changed file")
		}
		return
	}

	m.metrics.ContentDrift()
	logger.Warn("Cataloged file was changed outside of the service")
}

func (m *Monitor) Close() {
	_ = m.watcher.Close()
}
