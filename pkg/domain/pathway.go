package domain

import (
	"encoding/json"
	"fmt"
)

// Metadata describes the provenance of a pathway document.
type Metadata struct {
	Version       string   `json:"version,omitempty"`
	LastUpdated   string   `json:"lastUpdated,omitempty"`
	Sources       []string `json:"sources,omitempty"`
	NICEGuideline string   `json:"niceGuideline,omitempty"`
}

// SelfCareAndSafetyNetting holds the free-text advice lists shown alongside a pathway.
type SelfCareAndSafetyNetting struct {
	SelfCare  []string `json:"selfCare,omitempty"`
	Education []string `json:"education,omitempty"`
	SafetyNet []string `json:"safetyNet,omitempty"`
	Referral  []string `json:"referral,omitempty"`
}

// Pathway is a compiled, read-only pathway document.
//
// The node arena is keyed by id and holds only effective nodes: branch encodings are
// canonical and treatment inheritance is already applied.
type Pathway struct {
	ID       string   `json:"pathway"`
	Metadata Metadata `json:"metadata"`
	Notes    []string `json:"notes"`
	RootID   string   `json:"root"`
	// PGDs are patient group directions keyed by name, kept as authored.
	PGDs     map[string]json.RawMessage `json:"pgds,omitempty"`
	SelfCare *SelfCareAndSafetyNetting  `json:"selfCareAndSafetyNetting,omitempty"`

	nodes map[string]Node
	order []string
}

// NewPathway builds the arena and checks its referential integrity.
// Nodes are expected in depth-first order from the root; that order is kept by Nodes.
func NewPathway(id, rootID string, nodes []Node) (*Pathway, error) {
	p := &Pathway{
		ID:     id,
		RootID: rootID,
		nodes:  make(map[string]Node, len(nodes)),
		order:  make([]string, 0, len(nodes)),
	}

	for _, n := range nodes {
		nid := n.NodeID()
		if nid == "" {
			return nil, &MalformedError{PathwayID: id, Reason: "node without id"}
		}
		if _, dup := p.nodes[nid]; dup {
			return nil, &MalformedError{PathwayID: id, NodeID: nid, Reason: "duplicate node id"}
		}
		p.nodes[nid] = n
		p.order = append(p.order, nid)
	}

	if _, ok := p.nodes[rootID]; !ok {
		return nil, &MalformedError{PathwayID: id, NodeID: rootID, Reason: "root node not found"}
	}

	for _, nid := range p.order {
		switch n := p.nodes[nid].(type) {
		case *DecisionNode:
			if len(n.Branches) == 0 {
				return nil, &MalformedError{PathwayID: id, NodeID: nid, Reason: "decision has no branches"}
			}
			for _, b := range n.Branches {
				if _, ok := p.nodes[b.Target]; !ok {
					return nil, &MalformedError{PathwayID: id, NodeID: nid, Reason: fmt.Sprintf("branch %q targets unknown node %q", b.Label, b.Target)}
				}
			}
		case *TreatmentNode:
			if n.Inherits != "" {
				if _, ok := p.nodes[n.Inherits]; !ok {
					return nil, &MalformedError{PathwayID: id, NodeID: nid, Reason: fmt.Sprintf("inherits unknown node %q", n.Inherits)}
				}
			}
		}
	}

	return p, nil
}

// Node returns the effective node with the given id.
func (p *Pathway) Node(id string) (Node, bool) {
	n, ok := p.nodes[id]
	return n, ok
}

// Root returns the root node.
func (p *Pathway) Root() Node {
	return p.nodes[p.RootID]
}

// Nodes returns every node in depth-first order from the root.
func (p *Pathway) Nodes() []Node {
	out := make([]Node, len(p.order))
	for i, id := range p.order {
		out[i] = p.nodes[id]
	}
	return out
}

// Len returns the number of nodes.
func (p *Pathway) Len() int { return len(p.order) }
