// Package schema supplies the data keys of each document type: the fields a
// component can be bound to. Built-in lists ship with the binary and can be
// replaced per document type by a TOML file named <documentType>.toml.
package schema

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"docdesigner/internal/domain"
)

// Provider returns the data keys available for a document type.
type Provider interface {
	Keys(dt domain.DocumentType) []domain.DataKey
}

// File is the on-disk shape of a schema override:
//
//	[[keys]]
//	key   = "customer_name"
//	label = "Customer Name"
//	type  = "text"
type File struct {
	Keys []domain.DataKey `toml:"keys"`
}

// Catalog is the default Provider. Overrides loaded from disk take precedence
// over the built-in lists.
type Catalog struct {
	mu        sync.RWMutex
	builtin   map[domain.DocumentType][]domain.DataKey
	overrides map[domain.DocumentType][]domain.DataKey
}

func NewCatalog() *Catalog {
	return &Catalog{
		builtin:   builtins(),
		overrides: make(map[domain.DocumentType][]domain.DataKey),
	}
}

// Keys returns a copy of the key list for dt, or nil for an unknown type.
func (c *Catalog) Keys(dt domain.DocumentType) []domain.DataKey {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys, ok := c.overrides[dt]
	if !ok {
		keys = c.builtin[dt]
	}
	if keys == nil {
		return nil
	}
	return append([]domain.DataKey(nil), keys...)
}

// Set replaces the key list for dt.
func (c *Catalog) Set(dt domain.DocumentType, keys []domain.DataKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[dt] = append([]domain.DataKey(nil), keys...)
}

// Reset drops the override for dt, restoring the built-in list.
func (c *Catalog) Reset(dt domain.DocumentType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.overrides, dt)
}

// LoadDir loads every <documentType>.toml file in dir. A missing directory is
// not an error. Files for unknown document types are skipped.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".toml" {
			continue
		}
		if _, ok := DocumentTypeOf(e.Name()); !ok {
			continue
		}
		if _, err := c.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile parses a schema file and installs it as the override for the
// document type named by the file. It returns that document type.
func (c *Catalog) LoadFile(path string) (domain.DocumentType, error) {
	dt, ok := DocumentTypeOf(path)
	if !ok {
		return "", fmt.Errorf("load schema %s: unknown document type %q", path, dt)
	}
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return "", fmt.Errorf("load schema %s: %w", path, err)
	}
	for i, k := range f.Keys {
		if k.Key == "" {
			return "", fmt.Errorf("load schema %s: key %d has no name", path, i)
		}
		if !validType(k.Type) {
			return "", fmt.Errorf("load schema %s: key %q has unknown type %q", path, k.Key, k.Type)
		}
		if k.Label == "" {
			f.Keys[i].Label = k.Key
		}
	}
	c.Set(dt, f.Keys)
	return dt, nil
}

// DocumentTypeOf maps a schema file path to its document type.
func DocumentTypeOf(path string) (domain.DocumentType, bool) {
	dt := domain.DocumentType(strings.TrimSuffix(filepath.Base(path), ".toml"))
	return dt, dt.Valid()
}

func validType(t domain.DataKeyType) bool {
	switch t {
	case domain.DataText, domain.DataNumber, domain.DataDate, domain.DataImage, domain.DataTable, domain.DataBoolean:
		return true
	}
	return false
}
