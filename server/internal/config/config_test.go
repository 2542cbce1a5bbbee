package config_test

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedisam/filedrop/server/internal/config"
)

func TestParse(t *testing.T) {
	tests := map[string]struct {
		env     map[string]string
		args    []string
		want    *config.Options
		wantErr string
	}{
		"defaults": {
			want: &config.Options{
				ListenAddr:     ":8001",
				StorageDir:     "./files",
				DatabaseURL:    "sqlite://database.db",
				RequestTimeout: 10 * time.Second,
				MaxUploadBytes: 32 << 20,
			},
		},
		"environment": {
			env: map[string]string{
				config.EnvListenAddr:     "127.0.0.1:9000",
				config.EnvStorageDir:     "/srv/files",
				config.EnvDatabaseURL:    "postgres://filedrop@db/filedrop",
				config.EnvRequestTimeout: "3s",
				config.EnvMaxUploadBytes: "1024",
				config.EnvTraceStdout:    "true",
			},
			want: &config.Options{
				ListenAddr:     "127.0.0.1:9000",
				StorageDir:     "/srv/files",
				DatabaseURL:    "postgres://filedrop@db/filedrop",
				RequestTimeout: 3 * time.Second,
				MaxUploadBytes: 1024,
				TraceStdout:    true,
			},
		},
		"flags win over environment": {
			env: map[string]string{
				config.EnvStorageDir:  "/srv/files",
				config.EnvDatabaseURL: "postgres://filedrop@db/filedrop",
			},
			args: []string{"-storage-dir", "/tmp/files", "-database-url", "memory:", "-quiet"},
			want: &config.Options{
				ListenAddr:     ":8001",
				StorageDir:     "/tmp/files",
				DatabaseURL:    "memory:",
				RequestTimeout: 10 * time.Second,
				MaxUploadBytes: 32 << 20,
				Quiet:          true,
			},
		},
		"malformed environment value": {
			env:     map[string]string{config.EnvRequestTimeout: "ten seconds"},
			wantErr: "invalid REQUEST_TIMEOUT",
		},
		"non positive timeout": {
			args:    []string{"-request-timeout", "0s"},
			wantErr: "request timeout must be positive",
		},
		"empty storage dir": {
			args:    []string{"-storage-dir", ""},
			wantErr: "storage dir is required",
		},
		"unknown flag": {
			args:    []string{"-dest-dir", "/tmp"},
			wantErr: "flag provided but not defined",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			flags := flag.NewFlagSet("filedrop", flag.ContinueOnError)
			flags.SetOutput(io.Discard)

			opts, err := config.Parse(flags, tc.args, func(key string) string {
				return tc.env[key]
			})
			if tc.wantErr != "" {
				require.ErrorContains(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, opts)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORAGE_DIR=/from/dotenv\nLISTEN_ADDR=:7000\n"), 0o644))
	t.Chdir(dir)
	t.Setenv(config.EnvListenAddr, ":6000")
	// godotenv only fills in unset variables and writes them to the process environment, so make sure it's unset
	// and let t.Setenv restore it afterwards
	t.Setenv(config.EnvStorageDir, "")
	require.NoError(t, os.Unsetenv(config.EnvStorageDir))

	opts, err := config.Load("filedrop", nil)
	require.NoError(t, err)
	assert.Equal(t, "/from/dotenv", opts.StorageDir)
	assert.Equal(t, ":6000", opts.ListenAddr)
}
