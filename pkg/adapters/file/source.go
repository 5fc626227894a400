// Package file serves pathway documents from a file system, either a directory
// on disk or an embedded fs.FS.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

// CatalogFile is the optional manifest describing the pathways in a directory.
const CatalogFile = "catalog.yaml"

// extensions in lookup order; a JSON document shadows a YAML one with the same id.
var extensions = []struct {
	ext    string
	format string
}{
	{".json", "json"},
	{".yaml", "yaml"},
	{".yml", "yaml"},
}

// Source implements ports.Source and ports.Catalog over an fs.FS.
// Documents live at the root as <id>.json, <id>.yaml or <id>.yml.
type Source struct {
	fsys     fs.FS
	validate *validator.Validate
}

// New creates a Source over fsys.
func New(fsys fs.FS) *Source {
	return &Source{fsys: fsys, validate: validator.New()}
}

// NewDir creates a Source over a directory on disk.
func NewDir(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("pathway directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pathway directory: %s is not a directory", dir)
	}
	return New(os.DirFS(dir)), nil
}

// Fetch reads the document for a pathway id.
func (s *Source) Fetch(ctx context.Context, id string) (*ports.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", domain.ErrPathwayNotFound, id)
	}
	for _, e := range extensions {
		if id+e.ext == CatalogFile {
			continue
		}
		data, err := fs.ReadFile(s.fsys, id+e.ext)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read pathway %s: %w", id, err)
		}
		return &ports.Document{ID: id, Format: e.format, Data: data}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrPathwayNotFound, id)
}

// List returns the ids of every document at the root of the file system.
func (s *Source) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("list pathways: %w", err)
	}
	seen := make(map[string]bool)
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == CatalogFile {
			continue
		}
		id, ok := idOf(name)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

type manifest struct {
	Pathways []ports.CatalogEntry `yaml:"pathways"`
}

// Catalog reads catalog.yaml. A missing manifest yields no entries.
func (s *Source) Catalog(ctx context.Context) ([]ports.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, CatalogFile)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", CatalogFile, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", CatalogFile, err)
	}
	for i, entry := range m.Pathways {
		if err := s.validate.Struct(entry); err != nil {
			return nil, fmt.Errorf("%s entry %d: %w", CatalogFile, i, err)
		}
	}
	return m.Pathways, nil
}

func idOf(name string) (string, bool) {
	ext := path.Ext(name)
	for _, e := range extensions {
		if ext == e.ext {
			return strings.TrimSuffix(name, ext), true
		}
	}
	return "", false
}

func validID(id string) bool {
	return id != "" && fs.ValidPath(id) && !strings.Contains(id, "/") && id != "."
}
