package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvListenAddr     = "LISTEN_ADDR"
	EnvStorageDir     = "STORAGE_DIR"
	EnvDatabaseURL    = "DATABASE_URL"
	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxUploadBytes = "MAX_UPLOAD_BYTES"
	EnvTraceStdout    = "TRACE_STDOUT"
)

// Options defines a set of config options.
type Options struct {
	ListenAddr     string
	StorageDir     string
	DatabaseURL    string
	RequestTimeout time.Duration
	MaxUploadBytes int64
	TraceStdout    bool
	Quiet          bool
}

// Load reads a .env file from the working directory, if there is one, and then parses args. Variables already set
// in the environment win over the .env file, and flags win over both.
func Load(name string, args []string) (*Options, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env file: %w", err)
	}

	return Parse(flag.NewFlagSet(name, flag.ContinueOnError), args, os.Getenv)
}

// Parse registers the options on flags, taking their defaults from getenv, and parses args.
func Parse(flags *flag.FlagSet, args []string, getenv func(string) string) (*Options, error) {
	env := envDefaults{getenv: getenv}

	opts := &Options{}
	flags.StringVar(&opts.ListenAddr, "addr", env.string(EnvListenAddr, ":8001"), "Address to listen on")
	flags.StringVar(&opts.StorageDir, "storage-dir", env.string(EnvStorageDir, "./files"), "Directory to store uploaded files in")
	flags.StringVar(&opts.DatabaseURL, "database-url", env.string(EnvDatabaseURL, "sqlite://database.db"), "Catalog database URL: sqlite://<path>, postgres://... or memory:")
	flags.DurationVar(&opts.RequestTimeout, "request-timeout", env.duration(EnvRequestTimeout, 10*time.Second), "Upper bound for storage and database work per request")
	flags.Int64Var(&opts.MaxUploadBytes, "max-upload-bytes", env.int64(EnvMaxUploadBytes, 32<<20), "Maximum upload request size in bytes")
	flags.BoolVar(&opts.TraceStdout, "trace-stdout", env.bool(EnvTraceStdout, false), "Print traces to stdout")
	flags.BoolVar(&opts.Quiet, "quiet", false, "Quiet output")

	if env.err != nil {
		return nil, env.err
	}

	err := flags.Parse(args)
	if err != nil {
		return nil, err
	}

	err = opts.Validate()
	if err != nil {
		return nil, err
	}

	return opts, nil
}

func (o *Options) Validate() error {
	var errs []error
	if o.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if o.StorageDir == "" {
		errs = append(errs, errors.New("storage dir is required"))
	}
	if o.DatabaseURL == "" {
		errs = append(errs, errors.New("database url is required"))
	}
	if o.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", o.RequestTimeout))
	}
	if o.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max upload bytes must be positive, got %d", o.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

// envDefaults reads flag defaults from the environment and remembers the first malformed value.
type envDefaults struct {
	getenv func(string) string
	err    error
}

func (e *envDefaults) string(key, fallback string) string {
	if v := e.getenv(key); v != "" {
		return v
	}
	return fallback
}

func (e *envDefaults) duration(key string, fallback time.Duration) time.Duration {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return d
}

func (e *envDefaults) int64(key string, fallback int64) int64 {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return n
}

func (e *envDefaults) bool(key string, fallback bool) bool {
	v := e.getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return fallback
	}
	return b
}

func (e *envDefaults) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
