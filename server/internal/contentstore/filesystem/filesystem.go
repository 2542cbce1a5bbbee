package filesystem

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hedisam/filedrop/server/internal/contentstore"
)

// FileSystem is a flat content store confined to a single root directory. Every access goes through an os.Root so
// a name can never resolve outside of it, on top of the name validation done up front.
type FileSystem struct {
	logger  *logrus.Logger
	rootDir string
	dir     *os.Root
}

func New(logger *logrus.Logger, rootDir string) (*FileSystem, error) {
	logger.WithField("root_dir", rootDir).Info("Getting directory-limited filesystem access")

	err := os.MkdirAll(rootDir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create root dir: %w", err)
	}

	dir, err := os.OpenRoot(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open root dir: %w", err)
	}

	err = dir.Mkdir(contentstore.StagingDir, 0o700)
	if err != nil && !errors.Is(err, os.ErrExist) {
		_ = dir.Close()
		return nil, fmt.Errorf("create staging dir: %w", err)
	}

	return &FileSystem{
		logger:  logger,
		rootDir: filepath.Clean(rootDir),
		dir:     dir,
	}, nil
}

// Dir returns the root directory of the store.
func (fs *FileSystem) Dir() string {
	return fs.rootDir
}

func (fs *FileSystem) Close() error {
	return fs.dir.Close()
}

// Stage writes data to a new file in the staging area and flushes it to disk. The returned object carries the size
// and timestamps read back from the file once it's been fully written.
func (fs *FileSystem) Stage(ctx context.Context, data []byte) (*contentstore.StagedObject, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	obj := &contentstore.StagedObject{ID: mustUUIDV7()}
	logger := fs.logger.WithContext(ctx).WithField("staging_id", obj.ID)

	err := fs.writeStaged(obj.Path(), data)
	if err != nil {
		logger.WithError(err).Error("Could not write staged object to filesystem")
		_ = fs.dir.Remove(obj.Path())
		return nil, err
	}

	info, err := fs.dir.Stat(obj.Path())
	if err != nil {
		logger.WithError(err).Error("Could not stat staged object")
		_ = fs.dir.Remove(obj.Path())
		return nil, fmt.Errorf("stat staged object: %w", err)
	}

	obj.Size = info.Size()
	obj.CreatedAt, obj.ModifiedAt = fileTimes(info)

	return obj, nil
}

func (fs *FileSystem) writeStaged(path string, data []byte) error {
	f, err := fs.dir.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create staged object file: %w", err)
	}
	defer f.Close()

	_, err = f.Write(data)
	if err != nil {
		return fmt.Errorf("write to staged object file: %w", err)
	}

	err = f.Sync()
	if err != nil {
		return fmt.Errorf("sync staged object file: %w", err)
	}

	return f.Close()
}

// Publish atomically moves a staged object under the given name, replacing any uncataloged file of the same name.
func (fs *FileSystem) Publish(ctx context.Context, obj *contentstore.StagedObject, name string) error {
	logger := fs.logger.WithContext(ctx).WithFields(logrus.Fields{
		"staging_id": obj.ID,
		"name":       name,
	})

	err := contentstore.ValidateName(name)
	if err != nil {
		return err
	}

	err = fs.dir.Rename(obj.Path(), name)
	if err != nil {
		logger.WithError(err).Error("Could not publish staged object")
		return fmt.Errorf("rename staged object: %w", err)
	}

	err = fs.syncRoot()
	if err != nil {
		// the rename has already happened; a failed directory sync only weakens crash durability
		logger.WithError(err).Warn("Could not sync root directory after publishing object")
	}

	return nil
}

func (fs *FileSystem) syncRoot() error {
	d, err := fs.dir.Open(".")
	if err != nil {
		return err
	}
	defer d.Close()

	return d.Sync()
}

// Get reads the whole content of the named object.
func (fs *FileSystem) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	err := contentstore.ValidateName(name)
	if err != nil {
		return nil, err
	}

	data, err := fs.dir.ReadFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object %q: %w", name, contentstore.ErrNotFound)
		}
		fs.logger.WithContext(ctx).WithField("name", name).WithError(err).Error("Could not read object from filesystem")
		return nil, fmt.Errorf("read object file: %w", err)
	}

	return data, nil
}

// RemoveStaged drops the staged object with the given ID. It's a no-op if the object is already gone.
func (fs *FileSystem) RemoveStaged(ctx context.Context, id string) error {
	err := contentstore.ValidateName(id)
	if err != nil {
		return err
	}

	return fs.remove(ctx, filepath.Join(contentstore.StagingDir, id))
}

// Remove deletes a published object. Only compensation paths call it, the service never deletes cataloged content.
func (fs *FileSystem) Remove(ctx context.Context, name string) error {
	err := contentstore.ValidateName(name)
	if err != nil {
		return err
	}

	return fs.remove(ctx, name)
}

func (fs *FileSystem) remove(ctx context.Context, path string) error {
	err := fs.dir.Remove(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		fs.logger.WithContext(ctx).WithField("path", path).WithError(err).Error("Could not remove file from filesystem")
		return fmt.Errorf("remove object file: %w", err)
	}

	return nil
}

// StagedObjects lists the IDs of every object currently in the staging area.
func (fs *FileSystem) StagedObjects(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := fs.dir.Open(contentstore.StagingDir)
	if err != nil {
		return nil, fmt.Errorf("open staging dir: %w", err)
	}
	defer d.Close()

	entries, err := d.ReadDir(-1)
	if err != nil {
		return nil, fmt.Errorf("read staging dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			ids = append(ids, e.Name())
		}
	}

	return ids, nil
}

func mustUUIDV7() string {
	u, err := uuid.NewV7()
	if err != nil {
		panic(fmt.Errorf("failed to generate uuid: %v", err))
	}
	return u.String()
}
