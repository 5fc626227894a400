package ports

import "context"

// Document is a raw, uncompiled pathway document.
type Document struct {
	ID string
	// Format is "json" or "yaml".
	Format string
	Data   []byte
}

// Source defines how the registry retrieves pathway documents.
// This allows the storage layer (embedded FS, directory, memory, Redis) to be decoupled.
type Source interface {
	// Fetch returns the raw document for a pathway id.
	// It returns an error wrapping domain.ErrPathwayNotFound when the id is unknown.
	Fetch(ctx context.Context, id string) (*Document, error)

	// List returns the ids of every pathway the source can fetch, sorted.
	List(ctx context.Context) ([]string, error)
}

// Catalog is implemented by sources that ship descriptive metadata for their pathways.
type Catalog interface {
	Catalog(ctx context.Context) ([]CatalogEntry, error)
}

// CatalogEntry describes a pathway for selection screens and listings.
type CatalogEntry struct {
	ID            string   `json:"id" yaml:"id" validate:"required"`
	Title         string   `json:"title" yaml:"title" validate:"required"`
	Subtitle      string   `json:"subtitle,omitempty" yaml:"subtitle"`
	Summary       string   `json:"summary,omitempty" yaml:"summary"`
	AgeRange      string   `json:"ageRange,omitempty" yaml:"ageRange"`
	Setting       string   `json:"setting,omitempty" yaml:"setting"`
	Tags          []string `json:"tags,omitempty" yaml:"tags"`
	SummaryPoints []string `json:"summaryPoints,omitempty" yaml:"summaryPoints"`
}

// Invalidator is implemented by sources that cache documents and can drop them on demand.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...string) error
}
