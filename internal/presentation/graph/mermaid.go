package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

// GraphOverlay contains consultation state to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// OverlayFromCursor builds an overlay from a consultation cursor.
func OverlayFromCursor(c *domain.Cursor) *GraphOverlay {
	if c == nil {
		return nil
	}
	return &GraphOverlay{VisitedNodes: c.Path, CurrentNode: c.CurrentNodeID}
}

// GenerateMermaid produces a Mermaid flowchart of a pathway.
// It applies semantic styling:
// - Decision: {Rhombus}
// - Action: [Rectangle]
// - Treatment: [[Subroutine]]
// Branch labels annotate edges and inherits links are dotted.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(p *domain.Pathway, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range p.Nodes() {
		safeID := sanitizeMermaidID(node.NodeID())

		opener, closer := "[", "]"
		var title string
		switch n := node.(type) {
		case *domain.DecisionNode:
			opener, closer = "{", "}"
			title = n.Title
			if n.Question != "" {
				title = n.Question
			}
		case *domain.ActionNode:
			title = n.Title
		case *domain.TreatmentNode:
			opener, closer = "[[", "]]"
			title = n.Title
			if n.Drug != "" {
				title = n.Drug
			}
		}

		label := node.NodeID()
		if title != "" {
			label = fmt.Sprintf("%s <br/> %s", node.NodeID(), escape(title))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, label, closer))

		switch n := node.(type) {
		case *domain.DecisionNode:
			for _, b := range n.Branches {
				safeTo := sanitizeMermaidID(b.Target)
				if b.Label == "" {
					sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, safeTo))
					continue
				}
				sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n", safeID, escape(b.Label), safeTo))
			}
		case *domain.TreatmentNode:
			if n.Inherits != "" {
				sb.WriteString(fmt.Sprintf("    %s -. inherits .-> %s\n", safeID, sanitizeMermaidID(n.Inherits)))
			}
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentNode != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode)))
		}
	}

	return sb.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
