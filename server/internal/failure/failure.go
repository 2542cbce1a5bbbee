// Package failure holds the failure taxonomy shared by ingestion and retrieval. Components wrap the underlying cause
// with one of these sentinels so the API layer can pick a response with errors.Is, without ever looking at the cause.
package failure

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoFileProvided     = errors.New("no file provided")
	ErrInvalidName        = errors.New("invalid file name")
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrCatalogWriteFailed = errors.New("catalog write failed")
	ErrDuplicateKey       = errors.New("file already exists")
	ErrNotFound           = errors.New("file not found")
	ErrContentMissing     = errors.New("file content missing")
	ErrContentMismatch    = errors.New("file content does not match its record")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrTimeout            = errors.New("operation timed out")
)

// Wrap tags err with kind, unless err is a deadline expiry in which case it's tagged as ErrTimeout instead.
func Wrap(kind, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		kind = ErrTimeout
	}
	return fmt.Errorf("%w: %w", kind, err)
}

var labels = []struct {
	err   error
	label string
}{
	{ErrTimeout, "timeout"},
	{ErrNoFileProvided, "no_file_provided"},
	{ErrInvalidName, "invalid_name"},
	{ErrDuplicateKey, "duplicate_key"},
	{ErrNotFound, "not_found"},
	{ErrContentMissing, "content_missing"},
	{ErrContentMismatch, "content_mismatch"},
	{ErrStorageWriteFailed, "storage_write_failed"},
	{ErrCatalogWriteFailed, "catalog_write_failed"},
	{ErrCatalogUnavailable, "catalog_unavailable"},
}

// Label returns a short, metrics-friendly name for the kind of err.
func Label(err error) string {
	if err == nil {
		return "success"
	}
	for _, l := range labels {
		if errors.Is(err, l.err) {
			return l.label
		}
	}
	return "internal"
}
