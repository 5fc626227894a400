package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/news2"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--env-file", t.TempDir() + "/.env"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("version", func(t *testing.T) {
		out, err := execute(t, "version")
		require.NoError(t, err)
		assert.Contains(t, out, "carepath version dev")
	})

	t.Run("news2 as JSON", func(t *testing.T) {
		out, err := execute(t, "news2", "--json",
			"--rr", "18", "--spo2", "96", "--temp", "37", "--sbp", "120", "--hr", "80", "--avpu", "v")
		require.NoError(t, err)

		var r news2.Result
		require.NoError(t, json.Unmarshal([]byte(out), &r))
		assert.Equal(t, 3, r.TotalScore)
		assert.True(t, r.RedFlag)
		assert.Equal(t, news2.RiskMedium, r.ClinicalRisk)
	})

	t.Run("news2 rejects a bad scale", func(t *testing.T) {
		_, err := execute(t, "news2", "--json", "--scale", "scale9",
			"--rr", "18", "--spo2", "96", "--temp", "37", "--sbp", "120", "--hr", "80")
		assert.ErrorContains(t, err, "OxygenScale")
	})

	t.Run("graph from the catalog", func(t *testing.T) {
		out, err := execute(t, "graph", "otitis-externa")
		require.NoError(t, err)
		assert.Contains(t, out, "graph TD")
	})

	t.Run("graph of an unknown pathway", func(t *testing.T) {
		_, err := execute(t, "graph", "does-not-exist")
		assert.Error(t, err)
	})

	t.Run("validate the bundled pathways", func(t *testing.T) {
		out, err := execute(t, "validate", "../../pathways")
		require.NoError(t, err)
		assert.Contains(t, out, "otitis-externa")
		assert.Contains(t, out, "All pathways are valid!")
	})
}
