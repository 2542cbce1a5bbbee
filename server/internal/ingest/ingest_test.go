package ingest_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
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
	"github.com/hedisam/filedrop/server/internal/ingest/mocks"
	"github.com/hedisam/filedrop/server/internal/interceptors"
)

type env struct {
	dir      string
	fs       *filesystem.FileSystem
	catalog  *memdb.Catalog
	pipeline *ingest.Pipeline
}

func newEnv(t *testing.T, metrics *interceptors.Metrics) *env {
	t.Helper()

	dir := t.TempDir()
	fs, err := filesystem.New(logrus.New(), dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })

	c := memdb.NewCatalog()
	e := emitter.New(8)
	t.Cleanup(e.Close)

	return &env{
		dir:      dir,
		fs:       fs,
		catalog:  c,
		pipeline: ingest.New(logrus.New(), fs, c, e, metrics, time.Second),
	}
}

func (e *env) assertNoStaged(t *testing.T) {
	t.Helper()

	ids, err := e.fs.StagedObjects(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	before := time.Now().Add(-time.Second)
	rec, err := e.pipeline.Ingest(ctx, "report.txt", []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "report.txt", rec.Name)
	assert.EqualValues(t, 11, rec.Size)
	assert.True(t, rec.ModifiedAt.After(before))
	assert.False(t, rec.CreatedAt.IsZero())

	data, err := e.fs.Get(ctx, "report.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	records, err := e.catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, *rec, records[0])

	e.assertNoStaged(t)
}

func TestIngestRejectsInput(t *testing.T) {
	tests := map[string]struct {
		name    string
		data    []byte
		wantErr error
	}{
		"empty name": {
			name:    "",
			data:    []byte("x"),
			wantErr: failure.ErrNoFileProvided,
		},
		"empty content": {
			name:    "a.txt",
			data:    []byte{},
			wantErr: failure.ErrNoFileProvided,
		},
		"nil content": {
			name:    "a.txt",
			wantErr: failure.ErrNoFileProvided,
		},
		"parent traversal": {
			name:    "../etc/passwd",
			data:    []byte("x"),
			wantErr: failure.ErrInvalidName,
		},
		"nested path": {
			name:    "a/b.txt",
			data:    []byte("x"),
			wantErr: failure.ErrInvalidName,
		},
		"absolute path": {
			name:    "/etc/passwd",
			data:    []byte("x"),
			wantErr: failure.ErrInvalidName,
		},
		"staging dir": {
			name:    contentstore.StagingDir,
			data:    []byte("x"),
			wantErr: failure.ErrInvalidName,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			// unconfigured mocks panic when called, so these also prove nothing was touched
			p := ingest.New(logrus.New(), &mocks.ContentStoreMock{}, &mocks.CatalogMock{}, &mocks.EmitterMock{}, nil, time.Second)

			rec, err := p.Ingest(context.Background(), tc.name, tc.data)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, rec)
		})
	}
}

func TestIngestDuplicate(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	first, err := e.pipeline.Ingest(ctx, "a.txt", []byte("first"))
	require.NoError(t, err)

	_, err = e.pipeline.Ingest(ctx, "a.txt", []byte("second version"))
	require.ErrorIs(t, err, failure.ErrDuplicateKey)

	data, err := e.fs.Get(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	records, err := e.catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []catalog.FileRecord{*first}, records)

	e.assertNoStaged(t)
}

func TestIngestConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t, nil)

	const n = 16
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.pipeline.Ingest(ctx, "same.txt", []byte(fmt.Sprintf("content %02d", i)))
		}()
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "more than one upload succeeded")
			winner = i
			continue
		}
		assert.ErrorIs(t, err, failure.ErrDuplicateKey)
	}
	require.NotEqual(t, -1, winner)

	data, err := e.fs.Get(ctx, "same.txt")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("content %02d", winner), string(data))

	e.assertNoStaged(t)
}

func TestIngestSameNameWaitIsBoundedByTimeout(t *testing.T) {
	holding := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	c := &mocks.CatalogMock{
		GetFunc: func(ctx context.Context, name string) (*catalog.FileRecord, error) {
			mu.Lock()
			calls++
			first := calls == 1
			mu.Unlock()
			if first {
				close(holding)
				<-release
			}
			return &catalog.FileRecord{Name: name}, nil
		},
	}
	p := ingest.New(logrus.New(), &mocks.ContentStoreMock{}, c, &mocks.EmitterMock{}, nil, 100*time.Millisecond)

	firstErr := make(chan error, 1)
	go func() {
		_, err := p.Ingest(context.Background(), "a.txt", []byte("first"))
		firstErr <- err
	}()
	<-holding

	start := time.Now()
	_, err := p.Ingest(context.Background(), "a.txt", []byte("second"))
	require.ErrorIs(t, err, failure.ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)

	close(release)
	require.ErrorIs(t, <-firstErr, failure.ErrDuplicateKey)

	// the lock given up on is released once acquired, so the name is usable again
	_, err = p.Ingest(context.Background(), "a.txt", []byte("third"))
	require.ErrorIs(t, err, failure.ErrDuplicateKey)
}

func TestIngestFailures(t *testing.T) {
	errBoom := errors.New("boom")
	staged := &contentstore.StagedObject{ID: "staged-1", Size: 5}

	tests := map[string]struct {
		setup   func(store *mocks.ContentStoreMock, c *mocks.CatalogMock, e *mocks.EmitterMock)
		wantErr error
		check   func(t *testing.T, store *mocks.ContentStoreMock, c *mocks.CatalogMock, e *mocks.EmitterMock)
	}{
		"catalog unavailable before staging": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.GetFunc = func(context.Context, string) (*catalog.FileRecord, error) {
					return nil, errBoom
				}
			},
			wantErr: failure.ErrCatalogUnavailable,
			check: func(t *testing.T, store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Empty(t, store.StageCalls())
				assert.Empty(t, c.InsertCalls())
			},
		},
		"stage fails": {
			setup: func(store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				store.StageFunc = func(context.Context, []byte) (*contentstore.StagedObject, error) {
					return nil, errBoom
				}
			},
			wantErr: failure.ErrStorageWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Empty(t, c.InsertCalls())
				assert.Empty(t, store.RemoveStagedCalls())
			},
		},
		"short write": {
			setup: func(store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				store.StageFunc = func(context.Context, []byte) (*contentstore.StagedObject, error) {
					return &contentstore.StagedObject{ID: staged.ID, Size: 3}, nil
				}
			},
			wantErr: failure.ErrStorageWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Empty(t, c.InsertCalls())
				require.Len(t, store.RemoveStagedCalls(), 1)
				assert.Equal(t, staged.ID, store.RemoveStagedCalls()[0].ID)
			},
		},
		"publish fails": {
			setup: func(store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				store.PublishFunc = func(context.Context, *contentstore.StagedObject, string) error {
					return errBoom
				}
			},
			wantErr: failure.ErrStorageWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				require.Len(t, store.RemoveStagedCalls(), 1)
				assert.Equal(t, staged.ID, store.RemoveStagedCalls()[0].ID)
				assert.Empty(t, store.RemoveCalls())
			},
		},
		"insert fails": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.InsertFunc = func(context.Context, *catalog.FileRecord, catalog.PublishFunc) error {
					return errBoom
				}
			},
			wantErr: failure.ErrCatalogWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Empty(t, store.PublishCalls())
				assert.Len(t, store.RemoveStagedCalls(), 1)
			},
		},
		"duplicate detected on insert": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.InsertFunc = func(context.Context, *catalog.FileRecord, catalog.PublishFunc) error {
					return fmt.Errorf("insert: %w", catalog.ErrDuplicateKey)
				}
			},
			wantErr: failure.ErrDuplicateKey,
			check: func(t *testing.T, store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Empty(t, store.PublishCalls())
				assert.Len(t, store.RemoveStagedCalls(), 1)
			},
		},
		"discard fails": {
			setup: func(store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.InsertFunc = func(context.Context, *catalog.FileRecord, catalog.PublishFunc) error {
					return errBoom
				}
				store.RemoveStagedFunc = func(context.Context, string) error {
					return errBoom
				}
			},
			wantErr: failure.ErrCatalogWriteFailed,
			check: func(t *testing.T, _ *mocks.ContentStoreMock, _ *mocks.CatalogMock, e *mocks.EmitterMock) {
				require.Len(t, e.EmitCalls(), 1)
				assert.Equal(t, staged.ID, e.EmitCalls()[0].Orphan.StagingID)
				assert.Empty(t, e.EmitCalls()[0].Orphan.Name)
			},
		},
		"commit fails but record exists": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.GetFunc = func(_ context.Context, name string) (*catalog.FileRecord, error) {
					if len(c.GetCalls()) == 1 {
						return nil, catalog.ErrNotFound
					}
					return &catalog.FileRecord{Name: name, Size: 5}, nil
				}
				c.InsertFunc = commitFails(errBoom)
			},
			check: func(t *testing.T, store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				assert.Len(t, c.GetCalls(), 2)
				assert.Empty(t, store.RemoveCalls())
			},
		},
		"commit fails and record is missing": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.InsertFunc = commitFails(errBoom)
			},
			wantErr: failure.ErrCatalogWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, _ *mocks.CatalogMock, e *mocks.EmitterMock) {
				require.Len(t, store.RemoveCalls(), 1)
				assert.Equal(t, "a.txt", store.RemoveCalls()[0].Name)
				assert.Empty(t, store.RemoveStagedCalls())
				assert.Empty(t, e.EmitCalls())
			},
		},
		"commit fails and removal fails": {
			setup: func(store *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.InsertFunc = commitFails(errBoom)
				store.RemoveFunc = func(context.Context, string) error {
					return errBoom
				}
			},
			wantErr: failure.ErrCatalogWriteFailed,
			check: func(t *testing.T, _ *mocks.ContentStoreMock, _ *mocks.CatalogMock, e *mocks.EmitterMock) {
				require.Len(t, e.EmitCalls(), 1)
				assert.Equal(t, "a.txt", e.EmitCalls()[0].Orphan.Name)
			},
		},
		"commit fails and record can't be confirmed": {
			setup: func(_ *mocks.ContentStoreMock, c *mocks.CatalogMock, _ *mocks.EmitterMock) {
				c.GetFunc = func(context.Context, string) (*catalog.FileRecord, error) {
					if len(c.GetCalls()) == 1 {
						return nil, catalog.ErrNotFound
					}
					return nil, errBoom
				}
				c.InsertFunc = commitFails(errBoom)
			},
			wantErr: failure.ErrCatalogWriteFailed,
			check: func(t *testing.T, store *mocks.ContentStoreMock, _ *mocks.CatalogMock, e *mocks.EmitterMock) {
				assert.Empty(t, store.RemoveCalls())
				require.Len(t, e.EmitCalls(), 1)
				assert.Equal(t, "a.txt", e.EmitCalls()[0].Orphan.Name)
			},
		},
		"timeout": {
			setup: func(store *mocks.ContentStoreMock, _ *mocks.CatalogMock, _ *mocks.EmitterMock) {
				store.StageFunc = func(ctx context.Context, _ []byte) (*contentstore.StagedObject, error) {
					<-ctx.Done()
					return nil, ctx.Err()
				}
			},
			wantErr: failure.ErrTimeout,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			store := &mocks.ContentStoreMock{
				StageFunc: func(context.Context, []byte) (*contentstore.StagedObject, error) {
					obj := *staged
					return &obj, nil
				},
				PublishFunc: func(context.Context, *contentstore.StagedObject, string) error {
					return nil
				},
				RemoveStagedFunc: func(context.Context, string) error {
					return nil
				},
				RemoveFunc: func(context.Context, string) error {
					return nil
				},
			}
			c := &mocks.CatalogMock{
				GetFunc: func(context.Context, string) (*catalog.FileRecord, error) {
					return nil, catalog.ErrNotFound
				},
				InsertFunc: func(ctx context.Context, _ *catalog.FileRecord, publish catalog.PublishFunc) error {
					return publish(ctx)
				},
			}
			e := &mocks.EmitterMock{
				EmitFunc: func(context.Context, *contentstore.Orphan) error {
					return nil
				},
			}
			tc.setup(store, c, e)

			p := ingest.New(logrus.New(), store, c, e, nil, 50*time.Millisecond)
			rec, err := p.Ingest(context.Background(), "a.txt", []byte("hello"))
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				assert.Nil(t, rec)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "a.txt", rec.Name)
			}

			if tc.check != nil {
				tc.check(t, store, c, e)
			}
		})
	}
}

// commitFails mimics a transaction whose commit fails after the publish hook went through.
func commitFails(err error) func(context.Context, *catalog.FileRecord, catalog.PublishFunc) error {
	return func(ctx context.Context, _ *catalog.FileRecord, publish catalog.PublishFunc) error {
		if pubErr := publish(ctx); pubErr != nil {
			return pubErr
		}
		return fmt.Errorf("commit: %w", err)
	}
}

func TestIngestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	e := newEnv(t, interceptors.NewMetrics(reg))
	ctx := context.Background()

	_, err := e.pipeline.Ingest(ctx, "a.txt", []byte("a"))
	require.NoError(t, err)
	_, err = e.pipeline.Ingest(ctx, "a.txt", []byte("a"))
	require.Error(t, err)
	_, err = e.pipeline.Ingest(ctx, "", nil)
	require.Error(t, err)

	want := `
# HELP filedrop_ingest_total Total uploads processed, labeled by outcome
# TYPE filedrop_ingest_total counter
filedrop_ingest_total{outcome="duplicate_key"} 1
filedrop_ingest_total{outcome="no_file_provided"} 1
filedrop_ingest_total{outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(want), "filedrop_ingest_total"))
}

func TestReclaim(t *testing.T) {
	ctx := context.Background()

	t.Run("staged orphan", func(t *testing.T) {
		e := newEnv(t, nil)
		obj, err := e.fs.Stage(ctx, []byte("leftover"))
		require.NoError(t, err)

		require.NoError(t, e.pipeline.Reclaim(ctx, &contentstore.Orphan{StagingID: obj.ID}))
		e.assertNoStaged(t)
	})

	t.Run("published orphan without record", func(t *testing.T) {
		e := newEnv(t, nil)
		path := filepath.Join(e.dir, "ghost.txt")
		require.NoError(t, os.WriteFile(path, []byte("boo"), 0o644))

		require.NoError(t, e.pipeline.Reclaim(ctx, &contentstore.Orphan{Name: "ghost.txt"}))
		assert.NoFileExists(t, path)
	})

	t.Run("published orphan claimed by a later upload", func(t *testing.T) {
		e := newEnv(t, nil)
		_, err := e.pipeline.Ingest(ctx, "kept.txt", []byte("keep me"))
		require.NoError(t, err)

		require.NoError(t, e.pipeline.Reclaim(ctx, &contentstore.Orphan{Name: "kept.txt"}))

		data, err := e.fs.Get(ctx, "kept.txt")
		require.NoError(t, err)
		assert.Equal(t, "keep me", string(data))
	})

	t.Run("catalog unavailable", func(t *testing.T) {
		store := &mocks.ContentStoreMock{}
		c := &mocks.CatalogMock{
			GetFunc: func(context.Context, string) (*catalog.FileRecord, error) {
				return nil, errors.New("db down")
			},
		}
		p := ingest.New(logrus.New(), store, c, &mocks.EmitterMock{}, nil, time.Second)

		require.Error(t, p.Reclaim(ctx, &contentstore.Orphan{Name: "x.txt"}))
		assert.Empty(t, store.RemoveCalls())
	})
}
