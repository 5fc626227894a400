package validator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/internal/validator"
)

const valid = `pathway: sore-ear
metadata:
  version: "1.0"
decisionTree:
  id: start
  type: decision
  question: Severe pain?
  yes:
    id: refer
    type: action
    actions: [Refer to GP]
  no:
    id: advice
    type: action
    actions: [Self-care]
`

const missingNo = `{"pathway":"broken","metadata":{},"decisionTree":{"id":"a","type":"decision","yes":{"id":"b","type":"action"}}}`

const validJSON = `{"pathway":"sore-ear","metadata":{"version":"1.0"},"decisionTree":{"id":"start","type":"action","actions":["Self-care"]}}`

const bare = `pathway: other
metadata: {}
decisionTree:
  id: done
  type: action
`

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFiles(t *testing.T) {
	c := compiler.New()

	t.Run("Valid document", func(t *testing.T) {
		path := write(t, t.TempDir(), "sore-ear.yaml", valid)
		reports, err := validator.ValidateFiles(c, []string{path})
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].OK())
		assert.Empty(t, reports[0].Warnings)
		assert.Equal(t, "sore-ear", reports[0].Pathway.ID)
	})

	t.Run("Warnings do not fail", func(t *testing.T) {
		path := write(t, t.TempDir(), "other.yaml", bare)
		reports, err := validator.ValidateFiles(c, []string{path})
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{
			"metadata has no version",
			"action node 'done' lists no actions",
		}, reports[0].Warnings)
	})

	t.Run("Declared id differs from file name", func(t *testing.T) {
		path := write(t, t.TempDir(), "renamed.yaml", bare)
		reports, err := validator.ValidateFiles(c, []string{path})
		require.Error(t, err)
		assert.False(t, reports[0].OK())
		assert.ErrorContains(t, reports[0].Err, "declares pathway 'other' but is served as 'renamed'")
	})

	t.Run("Malformed document", func(t *testing.T) {
		path := write(t, t.TempDir(), "broken.json", missingNo)
		reports, err := validator.ValidateFiles(c, []string{path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
		assert.False(t, reports[0].OK())
	})

	t.Run("Unsupported extension", func(t *testing.T) {
		path := write(t, t.TempDir(), "notes.txt", valid)
		_, err := validator.ValidateFiles(c, []string{path})
		assert.ErrorContains(t, err, "unsupported file type '.txt'")
	})

	t.Run("Directory expansion and duplicate ids", func(t *testing.T) {
		dir := t.TempDir()
		write(t, dir, "sore-ear.yaml", valid)
		write(t, dir, "sore-ear.json", validJSON)
		write(t, dir, "catalog.yaml", "pathways: []\n")
		write(t, dir, "README.md", "ignored")

		reports, err := validator.ValidateFiles(c, []string{dir})
		require.Error(t, err)
		require.Len(t, reports, 2)
		assert.True(t, reports[0].OK(), "sorted order puts the JSON document first")
		assert.ErrorContains(t, reports[1].Err, "pathway 'sore-ear' is also declared by")
	})

	t.Run("Missing path", func(t *testing.T) {
		_, err := validator.ValidateFiles(c, []string{filepath.Join(t.TempDir(), "absent.yaml")})
		assert.Error(t, err)
	})
}
