package domain_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/domain"
)

func TestNewPathway(t *testing.T) {
	root := &domain.DecisionNode{
		ID:    "root",
		Style: domain.StyleBinary,
		Branches: []domain.Branch{
			{Label: domain.LabelYes, Target: "refer"},
			{Label: domain.LabelNo, Target: "treat"},
		},
	}
	refer := &domain.ActionNode{ID: "refer", Actions: []string{"Refer"}}
	treat := &domain.TreatmentNode{ID: "treat", Drug: "amoxicillin"}

	t.Run("Valid arena", func(t *testing.T) {
		p, err := domain.NewPathway("aom", "root", []domain.Node{root, refer, treat})
		require.NoError(t, err)

		assert.Equal(t, 3, p.Len())
		assert.Equal(t, "root", p.Root().NodeID())
		n, ok := p.Node("treat")
		require.True(t, ok)
		assert.Equal(t, domain.KindTreatment, n.Kind())
		assert.True(t, n.Terminal())

		ids := []string{}
		for _, n := range p.Nodes() {
			ids = append(ids, n.NodeID())
		}
		assert.Equal(t, []string{"root", "refer", "treat"}, ids)
	})

	tests := []struct {
		name   string
		rootID string
		nodes  []domain.Node
		nodeID string
	}{
		{"Duplicate id", "root", []domain.Node{root, refer, treat, &domain.ActionNode{ID: "refer"}}, "refer"},
		{"Missing root", "nope", []domain.Node{refer}, "nope"},
		{"Dangling branch", "root", []domain.Node{root, refer}, "root"},
		{"Empty decision", "d", []domain.Node{&domain.DecisionNode{ID: "d", Style: domain.StyleChild}}, "d"},
		{"Dangling inherits", "t", []domain.Node{&domain.TreatmentNode{ID: "t", Inherits: "ghost"}}, "t"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := domain.NewPathway("aom", tt.rootID, tt.nodes)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrMalformedPathway)

			var malformed *domain.MalformedError
			require.True(t, errors.As(err, &malformed))
			assert.Equal(t, tt.nodeID, malformed.NodeID)
			assert.Equal(t, "aom", malformed.PathwayID)
		})
	}
}

func TestNodeJSON_CarriesType(t *testing.T) {
	days := 5
	node := &domain.TreatmentNode{ID: "t", Drug: "amoxicillin", DurationDays: &days, Dose: json.RawMessage(`{"mgPerKg":40}`)}

	data, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "treatment", decoded["type"])
	assert.Equal(t, "amoxicillin", decoded["drug"])
	assert.Equal(t, float64(5), decoded["durationDays"])
	assert.Equal(t, map[string]any{"mgPerKg": float64(40)}, decoded["dose"])
}

func TestCursorSnapshot_IsIndependent(t *testing.T) {
	age := 4
	history := domain.PatientHistory{Age: &age}
	c := domain.NewCursor("aom", "s1", "root", history)

	age = 9
	assert.Equal(t, 4, *c.History.Age, "cursor must not alias caller history")

	snap := c.Snapshot()
	snap.Path = append(snap.Path, "next")
	*snap.History.Age = 10

	assert.Equal(t, []string{"root"}, c.Path)
	assert.Equal(t, 4, *c.History.Age)
}

func TestPatientHistory_Known(t *testing.T) {
	age := 3
	allergy := true
	h := domain.PatientHistory{Age: &age, PenicillinAllergy: &allergy, Severity: domain.SeverityModerate}

	assert.Equal(t, []domain.Fact{
		{Name: "age", Value: "3"},
		{Name: "penicillinAllergy", Value: "true"},
		{Name: "severity", Value: "moderate"},
	}, h.Known())
	assert.Empty(t, domain.PatientHistory{}.Known())
}

func TestErrors(t *testing.T) {
	err := &domain.TraversalError{NodeID: "q", Answer: "maybe", Err: domain.ErrNoMatchingBranch}
	assert.ErrorIs(t, err, domain.ErrNoMatchingBranch)
	assert.Equal(t, `node "q": answer maybe: answer does not match any branch`, err.Error())

	malformed := &domain.MalformedError{NodeID: "q", Reason: "decision has no branches"}
	assert.Equal(t, `malformed pathway: node "q": decision has no branches`, malformed.Error())
}
