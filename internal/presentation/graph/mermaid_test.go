package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/pkg/domain"
)

func testPathway(t *testing.T) *domain.Pathway {
	t.Helper()
	days := 5
	p, err := domain.NewPathway("aom", "red-flags", []domain.Node{
		&domain.DecisionNode{
			ID:       "red-flags",
			Question: `Any "red" flags?`,
			Style:    domain.StyleBinary,
			Branches: []domain.Branch{{Label: "yes", Target: "refer"}, {Label: "no", Target: "info"}},
		},
		&domain.ActionNode{ID: "refer", Title: "Refer"},
		&domain.DecisionNode{ID: "info", Title: "Explain", Style: domain.StyleChild, Branches: []domain.Branch{{Target: "amoxicillin"}}},
		&domain.TreatmentNode{ID: "amoxicillin", Drug: "Amoxicillin", DurationDays: &days},
		&domain.TreatmentNode{ID: "amoxicillin.back-up", Inherits: "amoxicillin"},
	})
	if err != nil {
		t.Fatalf("NewPathway failed: %v", err)
	}
	return p
}

func TestGenerateMermaid(t *testing.T) {
	got := graph.GenerateMermaid(testPathway(t), nil)

	tests := []struct {
		name     string
		contains []string
	}{
		{"Decision Shape", []string{`red_flags{"red-flags <br/> Any 'red' flags?"}`}},
		{"Action Shape", []string{`refer["refer <br/> Refer"]`}},
		{"Treatment Shape", []string{`amoxicillin[["amoxicillin <br/> Amoxicillin"]]`}},
		{"Labelled Edges", []string{`red_flags -- "yes" --> refer`, `red_flags -- "no" --> info`}},
		{"Child Edge", []string{"info --> amoxicillin"}},
		{"Inherits Edge", []string{"amoxicillin_back_up -. inherits .-> amoxicillin"}},
		{"ID Sanitization", []string{`amoxicillin_back_up[["amoxicillin.back-up"]]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("expected output to contain %q, got:\n%s", want, got)
				}
			}
		})
	}

	if strings.Contains(got, "classDef") {
		t.Error("no overlay styles expected without an overlay")
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	cursor := &domain.Cursor{
		PathwayID:     "aom",
		CurrentNodeID: "amoxicillin",
		Path:          []string{"red-flags", "info", "amoxicillin", "info"},
	}
	got := graph.GenerateMermaid(testPathway(t), graph.OverlayFromCursor(cursor))

	for _, want := range []string{
		"classDef visited",
		"class red_flags visited;",
		"class amoxicillin current;",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, got)
		}
	}
	if n := strings.Count(got, "class info visited;"); n != 1 {
		t.Errorf("expected visited nodes to be deduplicated, found %d", n)
	}
	if graph.OverlayFromCursor(nil) != nil {
		t.Error("expected nil overlay for nil cursor")
	}
}
