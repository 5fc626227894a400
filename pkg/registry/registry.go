// Package registry keeps the catalog of available pathways and hands out
// compiled, immutable pathways on demand.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

// DefaultCacheSize bounds the number of compiled pathways kept in memory.
const DefaultCacheSize = 64

// Entry describes a registered pathway.
type Entry = ports.CatalogEntry

// Registry manages the available pathways.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int

	source    ports.Source
	compiler  *compiler.Compiler
	cache     *lru.Cache[string, *domain.Pathway]
	cacheSize int
	logger    *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger. It is also handed to the compiler.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithCacheSize sets how many compiled pathways are kept. Non-positive values use DefaultCacheSize.
func WithCacheSize(n int) Option {
	return func(r *Registry) {
		r.cacheSize = n
	}
}

// New creates a registry backed by src.
func New(src ports.Source, opts ...Option) (*Registry, error) {
	if src == nil {
		return nil, errors.New("registry: nil source")
	}
	r := &Registry{
		index:     make(map[string]int),
		source:    src,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.cacheSize <= 0 {
		r.cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *domain.Pathway](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("registry cache: %w", err)
	}
	r.cache = cache
	r.compiler = compiler.New(compiler.WithLogger(r.logger))
	return r, nil
}

// Register adds an entry to the catalog.
// If an entry with the same id exists, it is overwritten in place.
func (r *Registry) Register(e Entry) error {
	if e.ID == "" {
		return errors.New("registry: entry missing id")
	}
	if e.Title == "" {
		e.Title = e.ID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.index[e.ID]; ok {
		r.entries[i] = e
		return nil
	}
	r.index[e.ID] = len(r.entries)
	r.entries = append(r.entries, e)
	return nil
}

// Sync registers the source's catalog entries, then any listed pathway the catalog
// does not describe, in list order.
func (r *Registry) Sync(ctx context.Context) error {
	if c, ok := r.source.(ports.Catalog); ok {
		entries, err := c.Catalog(ctx)
		if err != nil {
			return fmt.Errorf("registry sync: %w", err)
		}
		for _, e := range entries {
			if err := r.Register(e); err != nil {
				return err
			}
		}
	}
	ids, err := r.source.List(ctx)
	if err != nil {
		return fmt.Errorf("registry sync: %w", err)
	}
	for _, id := range ids {
		if _, ok := r.Entry(id); ok {
			continue
		}
		if err := r.Register(Entry{ID: id}); err != nil {
			return err
		}
	}
	r.logger.Debug("registry synced", "entries", r.Len())
	return nil
}

// Entries returns the registered entries in registration order.
func (r *Registry) Entries() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Entry(nil), r.entries...)
}

// Entry returns the entry registered under id.
func (r *Registry) Entry(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.index[id]
	if !ok {
		return Entry{}, false
	}
	return r.entries[i], true
}

// Default returns the first registered entry.
func (r *Registry) Default() (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[0], true
}

// Len is the number of registered entries.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Lookup returns the compiled pathway for id, fetching and compiling it on a cache miss.
// Unknown ids yield an error wrapping domain.ErrPathwayNotFound; documents that fail to
// compile, or that declare a pathway id other than id, yield a *domain.MalformedError.
func (r *Registry) Lookup(ctx context.Context, id string) (*domain.Pathway, error) {
	if p, ok := r.cache.Get(id); ok {
		return p, nil
	}

	doc, err := r.source.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := r.compiler.Compile(doc.Data, compiler.Format(doc.Format))
	if err != nil {
		var malformed *domain.MalformedError
		if errors.As(err, &malformed) && malformed.PathwayID == "" {
			malformed.PathwayID = id
		}
		r.logger.Error("pathway failed to compile", "pathway", id, "error", err)
		return nil, err
	}
	if p.ID != id {
		err := &domain.MalformedError{PathwayID: id, Reason: fmt.Sprintf("document declares pathway %q", p.ID)}
		r.logger.Error("pathway failed to compile", "pathway", id, "error", err)
		return nil, err
	}

	r.cache.Add(id, p)
	return p, nil
}

// Invalidate drops a compiled pathway so the next Lookup reads the source again.
func (r *Registry) Invalidate(id string) {
	r.cache.Remove(id)
}

// Purge drops every compiled pathway.
func (r *Registry) Purge() {
	r.cache.Purge()
}
