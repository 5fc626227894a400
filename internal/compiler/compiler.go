package compiler

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/schema"
)

// Compiler turns pathway documents into immutable domain.Pathway arenas.
//
// Compilation runs in fixed passes: parse, shape validation, depth-first collection with
// branch canonicalisation, inheritance resolution, then typed decoding. Any failure is
// a *domain.MalformedError and no partial pathway is returned.
type Compiler struct {
	logger *slog.Logger
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for load-time warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	return c
}

// Compile parses and compiles a serialised document.
func (c *Compiler) Compile(data []byte, format Format) (*domain.Pathway, error) {
	tree, err := Parse(data, format)
	if err != nil {
		return nil, &domain.MalformedError{Reason: err.Error()}
	}
	return c.CompileTree(tree)
}

// CompileTree compiles an already decoded document.
func (c *Compiler) CompileTree(tree map[string]any) (*domain.Pathway, error) {
	pathwayID, _ := tree["pathway"].(string)
	if err := schema.Validate(documentShape, tree); err != nil {
		return nil, &domain.MalformedError{PathwayID: pathwayID, Reason: err.Error()}
	}
	if strings.TrimSpace(pathwayID) == "" {
		return nil, &domain.MalformedError{Reason: "empty pathway identifier"}
	}

	a := &arena{
		pathwayID: pathwayID,
		nodes:     make(map[string]*rawNode),
		ids:       make(map[string]bool),
		logger:    c.logger.With("pathway", pathwayID),
	}
	rootID, err := a.collect(tree["decisionTree"].(map[string]any), false)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]map[string]any, len(a.nodes))
	for id, n := range a.nodes {
		fields[id] = n.fields
	}
	for _, chain := range inheritanceChains(fields) {
		a.logger.Warn("chained inherits resolved one level only", "chain", strings.Join(chain, " -> "))
	}
	effective, err := ResolveInheritance(fields)
	if err != nil {
		return nil, withPathway(err, pathwayID)
	}

	nodes := make([]domain.Node, 0, len(a.order))
	for _, id := range a.order {
		n, err := buildNode(a.nodes[id], effective[id])
		if err != nil {
			return nil, &domain.MalformedError{PathwayID: pathwayID, NodeID: id, Reason: err.Error()}
		}
		nodes = append(nodes, n)
	}

	p, err := domain.NewPathway(pathwayID, rootID, nodes)
	if err != nil {
		return nil, err
	}
	if err := decodeDocument(p, tree); err != nil {
		return nil, &domain.MalformedError{PathwayID: pathwayID, Reason: err.Error()}
	}

	c.logger.Debug("pathway compiled", "pathway", pathwayID, "nodes", p.Len())
	return p, nil
}

// rawNode is a node after shape validation and branch canonicalisation but before
// inheritance and typed decoding.
type rawNode struct {
	id       string
	kind     domain.NodeKind
	fields   map[string]any
	style    domain.BranchStyle
	branches []domain.Branch
}

type arena struct {
	pathwayID string
	nodes     map[string]*rawNode
	order     []string
	// ids covers every node in the document, shadowed subtrees included.
	ids    map[string]bool
	logger *slog.Logger
}

func (a *arena) malformed(nodeID, format string, args ...any) error {
	return &domain.MalformedError{PathwayID: a.pathwayID, NodeID: nodeID, Reason: fmt.Sprintf(format, args...)}
}

// collect validates m and its subtrees in pre-order. Nodes reached only through a
// shadowed encoding are checked and reserve their id but stay out of the arena.
func (a *arena) collect(m map[string]any, shadowed bool) (string, error) {
	id, _ := m[domain.KeyID].(string)
	if err := schema.Validate(nodeHeader, m); err != nil {
		return "", a.malformed(id, "%v", err)
	}
	if strings.TrimSpace(id) == "" {
		return "", a.malformed("", "node with empty id")
	}
	kind := domain.NodeKind(m[domain.KeyType].(string))
	if err := schema.Validate(nodeShapes[kind], m); err != nil {
		return "", a.malformed(id, "%v", err)
	}
	if a.ids[id] {
		return "", a.malformed(id, "duplicate node id")
	}
	a.ids[id] = true

	var n *rawNode
	if !shadowed {
		n = &rawNode{id: id, kind: kind, fields: m}
		a.nodes[id] = n
		a.order = append(a.order, id)
	}

	if kind != domain.KindDecision {
		return id, nil
	}

	style, pending, rest, err := a.canonicalBranches(id, m)
	if err != nil {
		return "", err
	}
	if n != nil {
		n.style = style
	}
	for _, p := range pending {
		target, err := a.collect(p.next, shadowed)
		if err != nil {
			return "", err
		}
		if n != nil {
			n.branches = append(n.branches, domain.Branch{Label: p.label, Target: target})
		}
	}
	for _, p := range rest {
		if _, err := a.collect(p.next, true); err != nil {
			return "", err
		}
	}
	return id, nil
}
