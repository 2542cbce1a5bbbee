package contentstore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// StagingDir is the directory, relative to the store root, where objects are written before they're published.
const StagingDir = ".staging"

const maxNameLength = 255

var (
	ErrNotFound    = errors.New("object not found")
	ErrInvalidName = errors.New("invalid object name")
)

// StagedObject is a fully written and flushed object that is not visible under any name yet.
type StagedObject struct {
	ID         string
	Size       int64
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Path returns the location of the staged object relative to the store root.
func (o *StagedObject) Path() string {
	return filepath.Join(StagingDir, o.ID)
}

// Orphan describes an object that exists on disk without a catalog record backing it.
// Exactly one of Name and StagingID is set.
type Orphan struct {
	Name      string
	StagingID string
	Reason    string
}

// ValidateName reports whether name can be used as a flat object name inside the store root.
// Names are untrusted input so anything that could resolve outside the root, or into the
// staging area, is rejected.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("empty name: %w", ErrInvalidName)
	case len(name) > maxNameLength:
		return fmt.Errorf("name exceeds %d bytes: %w", maxNameLength, ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("relative directory name %q: %w", name, ErrInvalidName)
	case name == StagingDir:
		return fmt.Errorf("reserved name %q: %w", name, ErrInvalidName)
	case strings.ContainsAny(name, "/\\\x00"):
		return fmt.Errorf("name contains a path separator or null byte: %w", ErrInvalidName)
	case filepath.IsAbs(name) || filepath.VolumeName(name) != "":
		return fmt.Errorf("absolute paths are not allowed: %w", ErrInvalidName)
	}

	return nil
}
