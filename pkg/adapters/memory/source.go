package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

// Source implements ports.Source and ports.Catalog using an in-memory map.
// It is safe for concurrent use.
type Source struct {
	mu      sync.RWMutex
	docs    map[string]ports.Document
	catalog []ports.CatalogEntry
}

// NewSource creates a Source from raw documents keyed by pathway id.
// The format is sniffed: a leading '{' means JSON, anything else YAML.
func NewSource(data map[string]string) *Source {
	s := &Source{docs: make(map[string]ports.Document, len(data))}
	for id, raw := range data {
		s.docs[id] = ports.Document{ID: id, Format: sniff([]byte(raw)), Data: []byte(raw)}
	}
	return s
}

// NewFromDocuments creates a Source from prepared documents.
func NewFromDocuments(docs ...ports.Document) (*Source, error) {
	s := &Source{docs: make(map[string]ports.Document, len(docs))}
	for _, d := range docs {
		if err := s.Put(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Put adds or replaces a document.
func (s *Source) Put(d ports.Document) error {
	if d.ID == "" {
		return fmt.Errorf("document missing ID")
	}
	if d.Format == "" {
		d.Format = sniff(d.Data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[d.ID] = d
	return nil
}

// SetCatalog replaces the descriptive entries returned by Catalog.
func (s *Source) SetCatalog(entries ...ports.CatalogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = append([]ports.CatalogEntry(nil), entries...)
}

// Fetch retrieves a document by pathway id.
func (s *Source) Fetch(_ context.Context, id string) (*ports.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPathwayNotFound, id)
	}
	d.Data = bytes.Clone(d.Data)
	return &d, nil
}

// List returns all available pathway ids.
func (s *Source) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.docs))
	for id := range s.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Catalog returns the entries set with SetCatalog.
func (s *Source) Catalog(_ context.Context) ([]ports.CatalogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ports.CatalogEntry(nil), s.catalog...), nil
}

func sniff(data []byte) string {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		return "json"
	}
	return "yaml"
}
