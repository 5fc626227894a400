package domain

import "encoding/json"

// NodeKind discriminates the node union.
type NodeKind string

const (
	// KindDecision asks a question and branches on the clinician's answer.
	KindDecision NodeKind = "decision"
	// KindAction ends the consultation with advice.
	KindAction NodeKind = "action"
	// KindTreatment ends the consultation with a prescribing recommendation.
	KindTreatment NodeKind = "treatment"
)

// BranchStyle records which authored encoding a decision's branches came from.
type BranchStyle string

const (
	StyleBinary  BranchStyle = "binary"
	StyleChoices BranchStyle = "choices"
	StyleOptions BranchStyle = "options"
	StyleChild   BranchStyle = "child"
)

// Node is a compiled, effective pathway node.
// The set of implementations is closed to this package.
type Node interface {
	NodeID() string
	Kind() NodeKind
	// Terminal reports whether traversal stops at this node.
	Terminal() bool

	node()
}

// Branch is one outgoing edge of a decision.
// Binary decisions always carry exactly two branches, yes first.
type Branch struct {
	Label  string `json:"label,omitempty"`
	Target string `json:"target"`
}

// DecisionNode is a non-terminal question.
type DecisionNode struct {
	ID         string          `json:"id"`
	Title      string          `json:"title,omitempty"`
	Question   string          `json:"question,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	Additional json.RawMessage `json:"additional,omitempty"`
	Style      BranchStyle     `json:"style"`
	Branches   []Branch        `json:"branches"`
}

func (n *DecisionNode) NodeID() string { return n.ID }
func (n *DecisionNode) Kind() NodeKind { return KindDecision }
func (n *DecisionNode) Terminal() bool { return false }
func (n *DecisionNode) node()          {}

// Labels returns the branch labels in authored order.
func (n *DecisionNode) Labels() []string {
	labels := make([]string, len(n.Branches))
	for i, b := range n.Branches {
		labels[i] = b.Label
	}
	return labels
}

func (n *DecisionNode) MarshalJSON() ([]byte, error) {
	type alias DecisionNode
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*alias
	}{KindDecision, (*alias)(n)})
}

// ActionNode is a terminal list of instructions.
type ActionNode struct {
	ID      string   `json:"id"`
	Title   string   `json:"title,omitempty"`
	Actions []string `json:"actions,omitempty"`
	// SafetyNet requires safety-netting advice before the consultation ends.
	SafetyNet bool `json:"safetyNet"`
}

func (n *ActionNode) NodeID() string { return n.ID }
func (n *ActionNode) Kind() NodeKind { return KindAction }
func (n *ActionNode) Terminal() bool { return true }
func (n *ActionNode) node()          {}

func (n *ActionNode) MarshalJSON() ([]byte, error) {
	type alias ActionNode
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*alias
	}{KindAction, (*alias)(n)})
}

// TreatmentNode is a terminal prescribing recommendation.
// Once compiled it already holds every field inherited through Inherits.
type TreatmentNode struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	Drug         string `json:"drug,omitempty"`
	DurationDays *int   `json:"durationDays,omitempty"`
	// Dose is drug-specific and passed through untouched.
	Dose             json.RawMessage `json:"dose,omitempty"`
	Formulations     []string        `json:"formulations,omitempty"`
	Route            string          `json:"route,omitempty"`
	LegalCategory    string          `json:"legalCategory,omitempty"`
	Plus             []string        `json:"plus,omitempty"`
	FollowUp         string          `json:"followUp,omitempty"`
	SafetyNet        bool            `json:"safetyNet"`
	ReferralIfWorsen bool            `json:"referralIfWorsen"`
	Inherits         string          `json:"inherits,omitempty"`
}

func (n *TreatmentNode) NodeID() string { return n.ID }
func (n *TreatmentNode) Kind() NodeKind { return KindTreatment }
func (n *TreatmentNode) Terminal() bool { return true }
func (n *TreatmentNode) node()          {}

func (n *TreatmentNode) MarshalJSON() ([]byte, error) {
	type alias TreatmentNode
	return json.Marshal(struct {
		Type NodeKind `json:"type"`
		*alias
	}{KindTreatment, (*alias)(n)})
}
