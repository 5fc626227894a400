package tests

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/ports"
)

// RunSourceContract is a reusable test suite that verifies if an adapter complies with ports.Source.
// setupData maps every pathway id the source holds to its expected raw content.
func RunSourceContract(t *testing.T, src ports.Source, setupData map[string][]byte) {
	t.Helper()
	ctx := context.Background()

	t.Run("Fetch_Success", func(t *testing.T) {
		for id, expected := range setupData {
			doc, err := src.Fetch(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error fetching %s: %v", id, err)
			}
			if doc.ID != id {
				t.Errorf("document id mismatch: got %q, want %q", doc.ID, id)
			}
			if doc.Format != "json" && doc.Format != "yaml" {
				t.Errorf("unexpected format %q for %s", doc.Format, id)
			}
			if string(doc.Data) != string(expected) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, doc.Data, expected)
			}
		}
	})

	t.Run("Fetch_NotFound", func(t *testing.T) {
		_, err := src.Fetch(ctx, "non-existent-pathway")
		if !errors.Is(err, domain.ErrPathwayNotFound) {
			t.Errorf("expected ErrPathwayNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := src.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing pathways: %v", err)
		}
		if len(ids) != len(setupData) {
			t.Errorf("expected %d pathways, got %d", len(setupData), len(ids))
		}
		if !sort.StringsAreSorted(ids) {
			t.Errorf("list is not sorted: %v", ids)
		}
		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("pathway %s missing from list", id)
			}
		}
	})
}
