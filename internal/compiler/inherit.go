package compiler

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

// ResolveInheritance returns the effective field set of every node.
//
// A treatment node that declares inherits = X takes every field of X that it does not
// set itself. Only one level is applied: fields X itself inherits are not followed.
// Arrays are replaced, never merged, and the id is never inherited. An explicit null
// counts as absent. The input maps are not modified.
//
// The target may be any node kind; from a decision or action only the title and
// treatment fields are taken. Errors are *domain.MalformedError: an unknown target or
// a cycle through inherits.
func ResolveInheritance(nodes map[string]map[string]any) (map[string]map[string]any, error) {
	ids := slices.Sorted(maps.Keys(nodes))

	for _, id := range ids {
		if cycle := inheritanceCycle(id, nodes); cycle != nil {
			return nil, &domain.MalformedError{
				NodeID: id,
				Reason: "inheritance cycle: " + strings.Join(cycle, " -> "),
			}
		}
	}

	out := make(map[string]map[string]any, len(nodes))
	for _, id := range ids {
		fields := nodes[id]
		target, ok := inheritsOf(fields)
		if !ok {
			out[id] = fields
			continue
		}

		base, found := nodes[target]
		if !found {
			return nil, &domain.MalformedError{NodeID: id, Reason: fmt.Sprintf("inherits unknown node %q", target)}
		}
		// Other node kinds lend only the fields a treatment can carry.
		fromTreatment := base[domain.KeyType] == string(domain.KindTreatment)

		merged := maps.Clone(fields)
		for k, v := range base {
			if k == domain.KeyID || k == domain.KeyInherits {
				continue
			}
			if !fromTreatment && !isTreatmentField(k) {
				continue
			}
			if own, explicit := fields[k]; !explicit || own == nil {
				merged[k] = v
			}
		}
		out[id] = merged
	}
	return out, nil
}

func isTreatmentField(k string) bool {
	if k == domain.KeyTitle {
		return true
	}
	_, ok := nodeShapes[domain.KindTreatment][k]
	return ok
}

func inheritsOf(fields map[string]any) (string, bool) {
	if kind, _ := fields[domain.KeyType].(string); kind != string(domain.KindTreatment) {
		return "", false
	}
	target, _ := fields[domain.KeyInherits].(string)
	return target, target != ""
}

// inheritanceCycle follows inherits from id and returns the loop if one is reached.
func inheritanceCycle(id string, nodes map[string]map[string]any) []string {
	path := []string{id}
	seen := map[string]bool{id: true}
	cur := id
	for {
		next, ok := inheritsOf(nodes[cur])
		if !ok {
			return nil
		}
		if seen[next] {
			return append(path, next)
		}
		if _, exists := nodes[next]; !exists {
			return nil
		}
		seen[next] = true
		path = append(path, next)
		cur = next
	}
}

// inheritanceChains lists every inherits reference whose target inherits in turn.
func inheritanceChains(nodes map[string]map[string]any) [][]string {
	var chains [][]string
	for _, id := range slices.Sorted(maps.Keys(nodes)) {
		target, ok := inheritsOf(nodes[id])
		if !ok {
			continue
		}
		if next, chained := inheritsOf(nodes[target]); chained {
			chains = append(chains, []string{id, target, next})
		}
	}
	return chains
}

// withPathway stamps the pathway id on a malformed error raised by a pathway-agnostic pass.
func withPathway(err error, pathwayID string) error {
	var malformed *domain.MalformedError
	if errors.As(err, &malformed) && malformed.PathwayID == "" {
		stamped := *malformed
		stamped.PathwayID = pathwayID
		return &stamped
	}
	return err
}
