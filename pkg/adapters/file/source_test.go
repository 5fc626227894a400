package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/pkg/adapters/file"
	"github.com/aretw0/carepath/pkg/domain"
	contract "github.com/aretw0/carepath/pkg/ports/tests"
)

const catalogYAML = `pathways:
  - id: acute-otitis-media
    title: Acute Otitis Media
    ageRange: 1–17 years
    tags: [ear infection, AOM]
  - id: otitis-externa
    title: Otitis Externa
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"acute-otitis-media.json": {Data: []byte(`{"pathway": "acute-otitis-media"}`)},
		"otitis-externa.yml":      {Data: []byte("pathway: otitis-externa\n")},
		"catalog.yaml":            {Data: []byte(catalogYAML)},
		"README.md":               {Data: []byte("# notes")},
		"drafts/wip.json":         {Data: []byte(`{}`)},
	}
}

func TestSource_Contract(t *testing.T) {
	fsys := testFS()
	contract.RunSourceContract(t, file.New(fsys), map[string][]byte{
		"acute-otitis-media": fsys["acute-otitis-media.json"].Data,
		"otitis-externa":     fsys["otitis-externa.yml"].Data,
	})
}

func TestSource_JSONShadowsYAML(t *testing.T) {
	fsys := testFS()
	fsys["acute-otitis-media.yaml"] = &fstest.MapFile{Data: []byte("pathway: shadowed\n")}
	src := file.New(fsys)

	doc, err := src.Fetch(context.Background(), "acute-otitis-media")
	require.NoError(t, err)
	assert.Equal(t, "json", doc.Format)

	ids, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"acute-otitis-media", "otitis-externa"}, ids)
}

func TestSource_RejectsPathsOutsideTheRoot(t *testing.T) {
	src := file.New(testFS())
	for _, id := range []string{"", ".", "../etc/passwd", "drafts/wip", "catalog"} {
		_, err := src.Fetch(context.Background(), id)
		assert.ErrorIs(t, err, domain.ErrPathwayNotFound, "id %q", id)
	}
}

func TestSource_Catalog(t *testing.T) {
	entries, err := file.New(testFS()).Catalog(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Acute Otitis Media", entries[0].Title)
	assert.Equal(t, "1–17 years", entries[0].AgeRange)
	assert.Equal(t, []string{"ear infection", "AOM"}, entries[0].Tags)

	t.Run("Missing manifest", func(t *testing.T) {
		fsys := testFS()
		delete(fsys, "catalog.yaml")
		entries, err := file.New(fsys).Catalog(context.Background())
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Entry without title", func(t *testing.T) {
		fsys := testFS()
		fsys["catalog.yaml"] = &fstest.MapFile{Data: []byte("pathways:\n  - id: x\n")}
		_, err := file.New(fsys).Catalog(context.Background())
		assert.ErrorContains(t, err, "Title")
	})
}

func TestNewDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.json"), []byte(`{}`), 0o600))

	src, err := file.NewDir(dir)
	require.NoError(t, err)
	ids, err := src.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p"}, ids)

	_, err = file.NewDir(filepath.Join(dir, "p.json"))
	assert.Error(t, err)
	_, err = file.NewDir(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
