package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	asyncapi "github.com/hedisam/filedrop/server/api/async"
	restapi "github.com/hedisam/filedrop/server/api/rest"
	"github.com/hedisam/filedrop/server/internal/catalog"
	"github.com/hedisam/filedrop/server/internal/catalog/memdb"
	"github.com/hedisam/filedrop/server/internal/catalog/sqldb"
	"github.com/hedisam/filedrop/server/internal/config"
	"github.com/hedisam/filedrop/server/internal/contentstore/filesystem"
	"github.com/hedisam/filedrop/server/internal/drift"
	"github.com/hedisam/filedrop/server/internal/emitter"
	"github.com/hedisam/filedrop/server/internal/ingest"
	"github.com/hedisam/filedrop/server/internal/interceptors"
	"github.com/hedisam/filedrop/server/internal/retrieval"
)

const (
	appName = "filedrop-server"

	memoryDatabaseURL  = "memory:"
	orphanBufferSize   = 64
	janitorRetryWindow = 30 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// Catalog is everything the server needs from the catalog backend.
type Catalog interface {
	Insert(ctx context.Context, rec *catalog.FileRecord, publish catalog.PublishFunc) error
	Get(ctx context.Context, name string) (*catalog.FileRecord, error)
	List(ctx context.Context) ([]catalog.FileRecord, error)
	Ping(ctx context.Context) error
	Close() error
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.AddHook(&interceptors.TraceHook{})

	opts, err := config.Load(appName, os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		logger.WithError(err).Error("Invalid configuration")
		os.Exit(2)
	}
	if opts.Quiet {
		logger.SetLevel(logrus.InfoLevel)
	}

	err = run(logger, opts)
	if err != nil {
		logger.WithError(err).Fatal("Server failed with error")
	}
}

func run(logger *logrus.Logger, opts *config.Options) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracer, err := initTracer(opts.TraceStdout)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*3)
		defer cancel()
		if err := shutdownTracer(ctx); err != nil {
			logger.WithError(err).Error("Failed to shutdown tracer")
		}
	}()

	metrics := interceptors.NewMetrics(prometheus.DefaultRegisterer)

	cat, err := openCatalog(ctx, logger, opts.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() {
		if err := cat.Close(); err != nil {
			logger.WithError(err).Error("Failed to close catalog")
		}
	}()

	fileStorage, err := filesystem.New(logger, opts.StorageDir)
	if err != nil {
		return fmt.Errorf("initialize filesystem: %w", err)
	}
	defer fileStorage.Close()

	e := emitter.New(orphanBufferSize)
	defer e.Close()

	pipeline := ingest.New(logger, fileStorage, cat, e, metrics, opts.RequestTimeout)
	files := retrieval.New(logger, cat, fileStorage, metrics, opts.RequestTimeout)

	janitor := asyncapi.NewJanitor(logger, pipeline, fileStorage, janitorRetryWindow)
	err = janitor.SweepStaging(ctx)
	if err != nil {
		logger.WithError(err).Warn("Failed to sweep staging area, leftovers stay on disk")
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		janitor.Run(ctx, e.Chan())
	}()
	defer wg.Wait()

	monitor, err := drift.New(logger, cat, metrics, fileStorage.Dir())
	if err != nil {
		logger.WithError(err).Warn("Failed to start drift monitor, continuing without it")
	} else {
		defer monitor.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.Run(ctx)
		}()
	}

	mux := http.NewServeMux()
	restapi.RegisterRoutes(
		logger,
		mux,
		restapi.NewUploadServer(logger, pipeline, opts.MaxUploadBytes),
		restapi.NewFileServer(logger, files, cat),
	)
	// Expose the registered metrics via HTTP
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = otelhttp.NewHandler(mux, appName)
	handler = interceptors.InterceptWithDefaultMetrics(prometheus.DefaultRegisterer, handler)

	srv := &http.Server{
		Addr:              opts.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"addr":        opts.ListenAddr,
			"storage_dir": fileStorage.Dir(),
		}).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
	case err = <-errCh:
		cancel()
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen and serve: %w", err)
		}
		return nil
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	return nil
}

func openCatalog(ctx context.Context, logger *logrus.Logger, databaseURL string) (Catalog, error) {
	if databaseURL == memoryDatabaseURL {
		logger.Warn("Using in-memory catalog, file records won't survive a restart")
		return memdb.NewCatalog(), nil
	}

	c, err := sqldb.Open(ctx, logger, databaseURL)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func initTracer(toStdout bool) (func(context.Context) error, error) {
	var w io.Writer = io.Discard
	if toStdout {
		w = os.Stdout
	}

	exp, err := interceptors.NewSTDOUTExporter(w)
	if err != nil {
		return nil, fmt.Errorf("initialize STDOUT trace exporter: %w", err)
	}

	tp, err := interceptors.RegisterTraceProvider(appName, exp)
	if err != nil {
		return nil, fmt.Errorf("register trace provider: %w", err)
	}

	return tp.Shutdown, nil
}
