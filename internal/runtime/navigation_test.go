package runtime_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/pkg/domain"
)

func TestStep(t *testing.T) {
	options := &domain.DecisionNode{
		ID:    "q",
		Style: domain.StyleOptions,
		Branches: []domain.Branch{
			{Label: "Under 2", Target: "a"},
			{Label: "2 or over", Target: "b"},
		},
	}

	t.Run("Options select by label or json.Number index", func(t *testing.T) {
		next, err := runtime.Step(options, "2 or over")
		require.NoError(t, err)
		assert.Equal(t, "b", next)

		next, err = runtime.Step(options, json.Number("0"))
		require.NoError(t, err)
		assert.Equal(t, "a", next)
	})

	t.Run("Binary answers", func(t *testing.T) {
		binary := &domain.DecisionNode{
			ID:       "b",
			Style:    domain.StyleBinary,
			Branches: []domain.Branch{{Label: "yes", Target: "y"}, {Label: "no", Target: "n"}},
		}
		tests := []struct {
			name   string
			answer any
			want   string
		}{
			{"Boolean true", true, "y"},
			{"Boolean false", false, "n"},
			{"Word yes", " Yes ", "y"},
			{"Word n", "n", "n"},
			{"String digit", "1", "y"},
			{"Integer one", 1, "y"},
			{"Integer zero", 0, "n"},
			{"Float one", 1.0, "y"},
			{"JSON number one", json.Number("1"), "y"},
			{"JSON number zero", json.Number("0"), "n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				next, err := runtime.Step(binary, tt.answer)
				require.NoError(t, err)
				assert.Equal(t, tt.want, next)
			})
		}

		for _, answer := range []any{2, -1, 0.5, json.Number("2"), "maybe", nil} {
			_, err := runtime.Step(binary, answer)
			assert.ErrorIs(t, err, domain.ErrInvalidAnswer, "%v", answer)
		}
	})

	t.Run("Choices never default to the first branch", func(t *testing.T) {
		choices := *options
		choices.Style = domain.StyleChoices

		_, err := runtime.Step(&choices, "Over 2")
		assert.ErrorIs(t, err, domain.ErrNoMatchingBranch)
	})

	t.Run("Child ignores the answer", func(t *testing.T) {
		child := &domain.DecisionNode{ID: "c", Style: domain.StyleChild, Branches: []domain.Branch{{Target: "x"}}}
		for _, answer := range []any{nil, "anything", false, 7} {
			next, err := runtime.Step(child, answer)
			require.NoError(t, err)
			assert.Equal(t, "x", next)
		}
	})

	t.Run("Terminal nodes", func(t *testing.T) {
		for _, n := range []domain.Node{&domain.ActionNode{ID: "a"}, &domain.TreatmentNode{ID: "t"}} {
			_, err := runtime.Step(n, "yes")
			assert.ErrorIs(t, err, domain.ErrTerminated)
		}
	})

	t.Run("Decision without branches is malformed", func(t *testing.T) {
		_, err := runtime.Step(&domain.DecisionNode{ID: "empty", Style: domain.StyleChoices}, "x")
		assert.ErrorIs(t, err, domain.ErrMalformedPathway)

		var malformed *domain.MalformedError
		require.ErrorAs(t, err, &malformed)
		assert.Equal(t, "empty", malformed.NodeID)
	})

	t.Run("Binary with one branch is malformed", func(t *testing.T) {
		_, err := runtime.Step(&domain.DecisionNode{ID: "b", Style: domain.StyleBinary, Branches: []domain.Branch{{Label: "yes", Target: "x"}}}, true)
		assert.ErrorIs(t, err, domain.ErrMalformedPathway)
	})

	t.Run("Nil node", func(t *testing.T) {
		_, err := runtime.Step(nil, "yes")
		assert.ErrorIs(t, err, domain.ErrUnknownNode)
	})
}

func TestEngine_Render(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()
	allergy := true

	cursor, err := engine.Start(ctx, "", domain.PatientHistory{PenicillinAllergy: &allergy})
	require.NoError(t, err)

	t.Run("Binary prompt", func(t *testing.T) {
		view, err := engine.Render(ctx, cursor)
		require.NoError(t, err)

		assert.Equal(t, "otitis", view.PathwayID)
		assert.False(t, view.Terminal)
		require.NotNil(t, view.Prompt)
		assert.Equal(t, domain.StyleBinary, view.Prompt.Style)
		assert.Equal(t, "Any red flags?", view.Prompt.Question)
		assert.Equal(t, []string{"yes", "no"}, view.Prompt.Options)
		assert.Equal(t, []domain.Fact{{Name: "penicillinAllergy", Value: "true"}}, view.History)
	})

	t.Run("Child prompt falls back to the title", func(t *testing.T) {
		next, err := engine.Advance(ctx, cursor, "no")
		require.NoError(t, err)

		view, err := engine.Render(ctx, next)
		require.NoError(t, err)
		assert.Equal(t, domain.StyleChild, view.Prompt.Style)
		assert.Equal(t, "Explain the natural course", view.Prompt.Question)
		assert.Empty(t, view.Prompt.Options)
	})

	t.Run("Terminal view has no prompt", func(t *testing.T) {
		next, err := engine.Advance(ctx, cursor, "yes")
		require.NoError(t, err)

		view, err := engine.Render(ctx, next)
		require.NoError(t, err)
		assert.True(t, view.Terminal)
		assert.Nil(t, view.Prompt)
		assert.Equal(t, []string{"red-flags", "refer"}, view.Path)

		data, err := json.Marshal(view)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"type":"action"`)
	})

	t.Run("Unknown node", func(t *testing.T) {
		_, err := engine.Render(ctx, &domain.Cursor{PathwayID: "otitis", CurrentNodeID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrUnknownNode)
	})
}
