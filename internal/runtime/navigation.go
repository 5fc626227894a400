package runtime

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

// Step resolves the branch an answer selects from node and returns the target id.
//
// Branch selection is driven only by the answer:
//   - binary decisions take a boolean, y/yes/true/1 and n/no/false/0 as words,
//     or the numbers 1 and 0;
//   - choices and options match a label exactly, then case-insensitively, or take a
//     zero-based integer index; nothing ever defaults to the first branch;
//   - child decisions ignore the answer.
//
// Terminal nodes yield domain.ErrTerminated.
func Step(node domain.Node, answer any) (string, error) {
	switch n := node.(type) {
	case *domain.ActionNode, *domain.TreatmentNode:
		return "", &domain.TraversalError{NodeID: node.NodeID(), Answer: answer, Err: domain.ErrTerminated}
	case *domain.DecisionNode:
		return stepDecision(n, answer)
	case nil:
		return "", &domain.TraversalError{Answer: answer, Err: domain.ErrUnknownNode}
	}
	return "", fmt.Errorf("unsupported node %T", node)
}

func stepDecision(n *domain.DecisionNode, answer any) (string, error) {
	if len(n.Branches) == 0 {
		return "", &domain.MalformedError{NodeID: n.ID, Reason: "decision has no branches"}
	}

	switch n.Style {
	case domain.StyleChild:
		return n.Branches[0].Target, nil

	case domain.StyleBinary:
		if len(n.Branches) != 2 {
			return "", &domain.MalformedError{NodeID: n.ID, Reason: "binary decision needs exactly two branches"}
		}
		yes, ok := parseBinary(answer)
		if !ok {
			return "", &domain.TraversalError{NodeID: n.ID, Answer: answer, Err: domain.ErrInvalidAnswer}
		}
		if yes {
			return n.Branches[0].Target, nil
		}
		return n.Branches[1].Target, nil

	case domain.StyleChoices, domain.StyleOptions:
		i, err := matchBranch(n.Branches, answer)
		if err != nil {
			return "", &domain.TraversalError{NodeID: n.ID, Answer: answer, Err: err}
		}
		return n.Branches[i].Target, nil
	}

	return "", &domain.MalformedError{NodeID: n.ID, Reason: fmt.Sprintf("unknown branch style %q", n.Style)}
}

// parseBinary accepts booleans, the usual confirmation words and the numbers 1 and 0.
func parseBinary(answer any) (yes bool, ok bool) {
	switch v := answer.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "y", "yes", "true", "1":
			return true, true
		case "n", "no", "false", "0":
			return false, true
		}
	}
	if i, ok := asIndex(answer); ok && (i == 0 || i == 1) {
		return i == 1, true
	}
	return false, false
}

// matchBranch finds the branch an answer names.
func matchBranch(branches []domain.Branch, answer any) (int, error) {
	switch v := answer.(type) {
	case string:
		for i, b := range branches {
			if b.Label == v {
				return i, nil
			}
		}
		match := -1
		clean := strings.TrimSpace(v)
		for i, b := range branches {
			if strings.EqualFold(strings.TrimSpace(b.Label), clean) {
				if match >= 0 {
					// Ambiguous without the exact spelling.
					return 0, domain.ErrNoMatchingBranch
				}
				match = i
			}
		}
		if match < 0 {
			return 0, domain.ErrNoMatchingBranch
		}
		return match, nil
	}

	idx, ok := asIndex(answer)
	if !ok {
		return 0, domain.ErrInvalidAnswer
	}
	if idx < 0 || idx >= len(branches) {
		return 0, domain.ErrNoMatchingBranch
	}
	return idx, nil
}

func asIndex(answer any) (int, bool) {
	switch v := answer.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return int(v), true
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}
