package runtime_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/internal/runtime"
	"github.com/aretw0/carepath/pkg/domain"
)

const pathwayJSON = `{
	"pathway": "otitis",
	"metadata": {"version": "1"},
	"decisionTree": {
		"id": "red-flags",
		"type": "decision",
		"question": "Any red flags?",
		"yes": {"id": "refer", "type": "action", "actions": ["Refer to A&E"], "safetyNet": true},
		"no": {
			"id": "info",
			"type": "decision",
			"title": "Explain the natural course",
			"child": {
				"id": "severity",
				"type": "decision",
				"question": "Severity?",
				"choices": [
					{"label": "Mild", "next": {"id": "self-care", "type": "action", "actions": ["Analgesia"]}},
					{"label": "Severe", "next": {"id": "amoxicillin", "type": "treatment", "drug": "Amoxicillin", "durationDays": 5}},
					{"label": "severe ", "next": {"id": "decoy", "type": "action"}}
				]
			}
		}
	}
}`

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	p, err := compiler.New().Compile([]byte(pathwayJSON), compiler.FormatJSON)
	require.NoError(t, err)
	return runtime.NewEngine(p, opts...)
}

func TestEngine_Start(t *testing.T) {
	engine := newEngine(t)
	age := 6

	cursor, err := engine.Start(context.Background(), "s1", domain.PatientHistory{Age: &age})
	require.NoError(t, err)

	assert.Equal(t, "otitis", cursor.PathwayID)
	assert.Equal(t, "s1", cursor.SessionID)
	assert.Equal(t, "red-flags", cursor.CurrentNodeID)
	assert.Equal(t, []string{"red-flags"}, cursor.Path)
	assert.False(t, cursor.Terminated)
	assert.Equal(t, 6, *cursor.History.Age)
}

func TestEngine_AdvanceBinary(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	tests := []struct {
		answer any
		want   string
	}{
		{true, "refer"},
		{"yes", "refer"},
		{" Y ", "refer"},
		{"1", "refer"},
		{false, "info"},
		{"No", "info"},
		{"0", "info"},
	}
	for _, tt := range tests {
		cursor, err := engine.Start(ctx, "", domain.PatientHistory{})
		require.NoError(t, err)

		next, err := engine.Advance(ctx, cursor, tt.answer)
		require.NoError(t, err, "answer %v", tt.answer)
		assert.Equal(t, tt.want, next.CurrentNodeID, "answer %v", tt.answer)
	}

	for _, bad := range []any{"maybe", 1, nil, ""} {
		cursor, _ := engine.Start(ctx, "", domain.PatientHistory{})
		_, err := engine.Advance(ctx, cursor, bad)
		assert.ErrorIs(t, err, domain.ErrInvalidAnswer, "answer %v", bad)
	}
}

func TestEngine_Walk(t *testing.T) {
	engine := newEngine(t)

	cursor, err := engine.Walk(context.Background(), "s1", domain.PatientHistory{}, []any{"no", nil, "Severe"})
	require.NoError(t, err)

	assert.Equal(t, "amoxicillin", cursor.CurrentNodeID)
	assert.True(t, cursor.Terminated)
	assert.Equal(t, []string{"red-flags", "info", "severity", "amoxicillin"}, cursor.Path)
}

func TestEngine_ChoicesMatchStrictlyByLabel(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	atSeverity, err := engine.Walk(ctx, "", domain.PatientHistory{}, []any{false, "ignored"})
	require.NoError(t, err)
	require.Equal(t, "severity", atSeverity.CurrentNodeID)

	t.Run("Unknown label fails and leaves the cursor untouched", func(t *testing.T) {
		before := atSeverity.Snapshot()

		next, err := engine.Advance(ctx, atSeverity, "Moderate")

		assert.Nil(t, next)
		assert.ErrorIs(t, err, domain.ErrNoMatchingBranch)
		var traversal *domain.TraversalError
		require.True(t, errors.As(err, &traversal))
		assert.Equal(t, "severity", traversal.NodeID)
		assert.Equal(t, before, atSeverity)
	})

	tests := []struct {
		name   string
		answer any
		want   string
	}{
		{"Exact label", "Mild", "self-care"},
		{"Exact label beats case-insensitive", "severe ", "decoy"},
		{"Case-insensitive", "MILD", "self-care"},
		{"Zero-based index", 1, "amoxicillin"},
		{"Index from JSON number", float64(0), "self-care"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := engine.Advance(ctx, atSeverity, tt.answer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, next.CurrentNodeID)
		})
	}

	failures := []struct {
		name   string
		answer any
		err    error
	}{
		{"Ambiguous case-insensitive", "SEVERE", domain.ErrNoMatchingBranch},
		{"Index out of range", 3, domain.ErrNoMatchingBranch},
		{"Negative index", -1, domain.ErrNoMatchingBranch},
		{"Fractional index", 0.5, domain.ErrInvalidAnswer},
		{"Boolean", true, domain.ErrInvalidAnswer},
		{"Missing", nil, domain.ErrInvalidAnswer},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Advance(ctx, atSeverity, tt.answer)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEngine_AdvanceTerminal(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	cursor, err := engine.Walk(ctx, "", domain.PatientHistory{}, []any{"yes"})
	require.NoError(t, err)
	require.True(t, cursor.Terminated)

	_, err = engine.Advance(ctx, cursor, "yes")
	assert.ErrorIs(t, err, domain.ErrTerminated)

	// Path is unchanged by the failed call.
	assert.Equal(t, []string{"red-flags", "refer"}, cursor.Path)
}

func TestEngine_AdvanceRejectsForeignCursor(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	_, err := engine.Advance(ctx, &domain.Cursor{PathwayID: "other", CurrentNodeID: "red-flags"}, "yes")
	assert.ErrorIs(t, err, domain.ErrForeignCursor)
	assert.NotErrorIs(t, err, domain.ErrPathwayNotFound)

	var traversal *domain.TraversalError
	require.ErrorAs(t, err, &traversal)
	assert.Equal(t, "red-flags", traversal.NodeID)

	_, err = engine.Advance(ctx, &domain.Cursor{PathwayID: "otitis", CurrentNodeID: "ghost"}, "yes")
	assert.ErrorIs(t, err, domain.ErrUnknownNode)
}

func TestEngine_WalkStopsAtFirstInvalidAnswer(t *testing.T) {
	engine := newEngine(t)

	cursor, err := engine.Walk(context.Background(), "", domain.PatientHistory{}, []any{"no", nil, "Moderate", "Mild"})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoMatchingBranch)
	assert.Contains(t, err.Error(), "answer 2")
	require.NotNil(t, cursor)
	assert.Equal(t, "severity", cursor.CurrentNodeID)
}

func TestEngine_WalkHonoursCancellation(t *testing.T) {
	engine := newEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cursor, err := engine.Walk(ctx, "", domain.PatientHistory{}, []any{"no"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "red-flags", cursor.CurrentNodeID)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered, terminal []string
	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnTerminal: func(_ context.Context, e *domain.NodeEvent) {
			terminal = append(terminal, e.NodeID)
			assert.Equal(t, domain.KindTreatment, e.Kind)
			assert.Equal(t, "otitis", e.PathwayID)
		},
	}
	engine := newEngine(t, runtime.WithLifecycleHooks(hooks))

	_, err := engine.Walk(context.Background(), "s1", domain.PatientHistory{}, []any{"no", nil, 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"red-flags", "info", "severity", "amoxicillin"}, entered)
	assert.Equal(t, []string{"amoxicillin"}, terminal)
}

func TestEngine_ConcurrentSessionsShareThePathway(t *testing.T) {
	engine := newEngine(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answers := []any{"no", nil, "Mild"}
			if i%2 == 0 {
				answers = []any{"yes"}
			}
			cursor, err := engine.Walk(ctx, "", domain.PatientHistory{}, answers)
			if err == nil {
				results[i] = cursor.CurrentNodeID
			}
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		if i%2 == 0 {
			assert.Equal(t, "refer", got)
		} else {
			assert.Equal(t, "self-care", got)
		}
	}
}
