package catalog

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("file record not found")
	ErrDuplicateKey = errors.New("file record already exists")
)

// FileRecord describes one stored file. Name is the primary key and matches the object name in the content store.
type FileRecord struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// PublishFunc is run by Insert after the record has been written and before it's committed. Returning an error
// discards the record.
type PublishFunc func(ctx context.Context) error
