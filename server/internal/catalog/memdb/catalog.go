package memdb

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hedisam/filedrop/server/internal/catalog"
)

// Catalog keeps file records in memory. Records are kept in insertion order next to a name index so listing
// returns them the same way a table scan would.
type Catalog struct {
	mu      sync.RWMutex
	records []*catalog.FileRecord
	byName  map[string]*catalog.FileRecord
	// names reserved by an Insert whose publish hook is still running
	pending map[string]struct{}
}

func NewCatalog() *Catalog {
	return &Catalog{
		byName:  make(map[string]*catalog.FileRecord),
		pending: make(map[string]struct{}),
	}
}

// Insert adds a record. The name is reserved before publish runs and the record only becomes visible once publish
// succeeded, so the record and its content show up together. The lock is not held while publish runs.
func (c *Catalog) Insert(ctx context.Context, rec *catalog.FileRecord, publish catalog.PublishFunc) error {
	if rec.Name == "" {
		return errors.New("name is required for storing a file record")
	}
	if rec.Size < 0 {
		return fmt.Errorf("negative size %d", rec.Size)
	}

	err := c.reserve(rec.Name)
	if err != nil {
		return err
	}

	if publish != nil {
		err = publish(ctx)
		if err != nil {
			c.release(rec.Name)
			return fmt.Errorf("publish: %w", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, rec.Name)
	stored := *rec
	c.records = append(c.records, &stored)
	c.byName[rec.Name] = &stored

	return nil
}

func (c *Catalog) reserve(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.byName[name]; ok {
		return fmt.Errorf("insert %q: %w", name, catalog.ErrDuplicateKey)
	}
	if _, ok := c.pending[name]; ok {
		return fmt.Errorf("insert %q: %w", name, catalog.ErrDuplicateKey)
	}
	c.pending[name] = struct{}{}

	return nil
}

func (c *Catalog) release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.pending, name)
}

func (c *Catalog) List(context.Context) ([]catalog.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]catalog.FileRecord, 0, len(c.records))
	for _, rec := range c.records {
		records = append(records, *rec)
	}
	return records, nil
}

func (c *Catalog) Get(_ context.Context, name string) (*catalog.FileRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("get %q: %w", name, catalog.ErrNotFound)
	}

	found := *rec
	return &found, nil
}

func (c *Catalog) Ping(context.Context) error {
	return nil
}

func (c *Catalog) Close() error {
	return nil
}
