package retrieval_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/catalog/memdb"
	"github.com/hedisam/filedrop/server/internal/contentstore"
	"github.com/hedisam/filedrop/server/internal/contentstore/filesystem"
	"github.com/hedisam/filedrop/server/internal/emitter"
	"github.com/hedisam/filedrop/server/internal/failure"
	"github.com/hedisam/filedrop/server/internal/ingest"
	"github.com/hedisam/filedrop/server/internal/interceptors"
	"github.com/hedisam/filedrop/server/internal/retrieval"
	"github.com/hedisam/filedrop/server/internal/retrieval/mocks"
)

func TestUploadThenFetch(t *testing.T) {
	ctx := context.Background()
	logger := logrus.New()
	dir := t.TempDir()

	fs, err := filesystem.New(logger, dir)
	require.NoError(t, err)
	defer fs.Close()
	c := memdb.NewCatalog()
	e := emitter.New(1)
	defer e.Close()

	pipeline := ingest.New(logger, fs, c, e, nil, time.Second)
	svc := retrieval.New(logger, c, fs, nil, time.Second)

	_, err = pipeline.Ingest(ctx, "report.txt", []byte("hello world"))
	require.NoError(t, err)

	file, err := svc.FetchFile(ctx, "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(file.Content))
	assert.Equal(t, "report.txt", file.Record.Name)

	records, err := svc.ListFiles(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "report.txt", records[0].Name)
	assert.EqualValues(t, 11, records[0].Size)

	_, err = svc.FetchFile(ctx, "missing.txt")
	require.ErrorIs(t, err, failure.ErrNotFound)

	t.Run("uncataloged content is not served", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sneaky.txt"), []byte("psst"), 0o644))

		_, err := svc.FetchFile(ctx, "sneaky.txt")
		require.ErrorIs(t, err, failure.ErrNotFound)
	})

	t.Run("content removed behind the catalog's back", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, "report.txt")))

		_, err := svc.FetchFile(ctx, "report.txt")
		require.ErrorIs(t, err, failure.ErrContentMissing)
	})
}

func TestFetchFile(t *testing.T) {
	errBoom := errors.New("boom")

	tests := map[string]struct {
		name        string
		getRecord   func(ctx context.Context, name string) (*catalog.FileRecord, error)
		getContent  func(ctx context.Context, name string) ([]byte, error)
		wantErr     error
		wantContent string
		wantReads   int
	}{
		"found": {
			name: "a.txt",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return &catalog.FileRecord{Name: name, Size: 5}, nil
			},
			getContent: func(context.Context, string) ([]byte, error) {
				return []byte("hello"), nil
			},
			wantContent: "hello",
			wantReads:   1,
		},
		"not cataloged": {
			name: "a.txt",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return nil, catalog.ErrNotFound
			},
			wantErr: failure.ErrNotFound,
		},
		"traversal never reaches the store": {
			name: "../../etc/passwd",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return nil, catalog.ErrNotFound
			},
			wantErr: failure.ErrNotFound,
		},
		"cataloged traversal name": {
			name: "../secret",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return &catalog.FileRecord{Name: name, Size: 6}, nil
			},
			wantErr: failure.ErrInvalidName,
		},
		"catalog unavailable": {
			name: "a.txt",
			getRecord: func(context.Context, string) (*catalog.FileRecord, error) {
				return nil, errBoom
			},
			wantErr: failure.ErrCatalogUnavailable,
		},
		"content missing": {
			name: "a.txt",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return &catalog.FileRecord{Name: name, Size: 5}, nil
			},
			getContent: func(context.Context, string) ([]byte, error) {
				return nil, contentstore.ErrNotFound
			},
			wantErr:   failure.ErrContentMissing,
			wantReads: 1,
		},
		"content truncated": {
			name: "a.txt",
			getRecord: func(_ context.Context, name string) (*catalog.FileRecord, error) {
				return &catalog.FileRecord{Name: name, Size: 5}, nil
			},
			getContent: func(context.Context, string) ([]byte, error) {
				return []byte("he"), nil
			},
			wantErr:   failure.ErrContentMismatch,
			wantReads: 1,
		},
		"timeout": {
			name: "a.txt",
			getRecord: func(ctx context.Context, _ string) (*catalog.FileRecord, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
			wantErr: failure.ErrTimeout,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := &mocks.CatalogMock{GetFunc: tc.getRecord}
			store := &mocks.ContentStoreMock{GetFunc: tc.getContent}

			svc := retrieval.New(logrus.New(), c, store, nil, 50*time.Millisecond)
			file, err := svc.FetchFile(context.Background(), tc.name)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, file)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantContent, string(file.Content))
			}

			assert.Len(t, store.GetCalls(), tc.wantReads)
		})
	}
}

func TestListFiles(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		svc := retrieval.New(logrus.New(), memdb.NewCatalog(), &mocks.ContentStoreMock{}, nil, time.Second)

		records, err := svc.ListFiles(context.Background())
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("catalog unavailable", func(t *testing.T) {
		c := &mocks.CatalogMock{
			ListFunc: func(context.Context) ([]catalog.FileRecord, error) {
				return nil, errors.New("connection refused")
			},
		}
		svc := retrieval.New(logrus.New(), c, &mocks.ContentStoreMock{}, nil, time.Second)

		_, err := svc.ListFiles(context.Background())
		require.ErrorIs(t, err, failure.ErrCatalogUnavailable)
	})
}

func TestFetchMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := &mocks.CatalogMock{
		GetFunc: func(context.Context, string) (*catalog.FileRecord, error) {
			return nil, catalog.ErrNotFound
		},
	}
	svc := retrieval.New(logrus.New(), c, &mocks.ContentStoreMock{}, interceptors.NewMetrics(reg), time.Second)

	_, err := svc.FetchFile(context.Background(), "a.txt")
	require.Error(t, err)

	want := `
# HELP filedrop_fetch_total Total file fetches processed, labeled by outcome
# TYPE filedrop_fetch_total counter
filedrop_fetch_total{outcome="not_found"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "filedrop_fetch_total"))
}
