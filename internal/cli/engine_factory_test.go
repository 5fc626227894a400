package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/carepath/internal/config"
	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/pkg/adapters/file"
	"github.com/aretw0/carepath/pkg/adapters/redis"
	"github.com/aretw0/carepath/pkg/domain"
)

const tinyPathway = `pathway: tiny
metadata: {}
decisionTree:
  id: done
  type: action
  title: Done
`

func TestNewSource(t *testing.T) {
	logger := logging.NewNop()

	t.Run("Embedded catalog by default", func(t *testing.T) {
		src, closer, err := NewSource(&config.Config{}, logger)
		require.NoError(t, err)
		defer closer.Close()
		assert.IsType(t, &file.Source{}, src)

		ids, err := src.List(context.Background())
		require.NoError(t, err)
		assert.Contains(t, ids, "acute-otitis-media")
	})

	t.Run("Directory", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(tinyPathway), 0o644))

		src, _, err := NewSource(&config.Config{PathwayDir: dir}, logger)
		require.NoError(t, err)
		ids, err := src.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"tiny"}, ids)
	})

	t.Run("Missing directory", func(t *testing.T) {
		_, _, err := NewSource(&config.Config{PathwayDir: filepath.Join(t.TempDir(), "absent")}, logger)
		assert.Error(t, err)
	})

	t.Run("Redis cache in front", func(t *testing.T) {
		mr := miniredis.RunT(t)
		src, closer, err := NewSource(&config.Config{RedisAddr: mr.Addr(), CacheTTL: time.Minute}, logger)
		require.NoError(t, err)
		defer closer.Close()
		require.IsType(t, &redis.Cache{}, src)

		_, err = src.Fetch(context.Background(), "otitis-externa")
		require.NoError(t, err)
		assert.NotEmpty(t, mr.Keys())
	})
}

func TestNewEngine(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.yaml"), []byte(tinyPathway), 0o644))

	eng, closer, err := NewEngine(context.Background(), &config.Config{PathwayDir: dir, CacheSize: 4, Debug: true}, logging.NewNop())
	require.NoError(t, err)
	defer closer.Close()

	require.Len(t, eng.Pathways(), 1)
	cursor, err := eng.Walk(context.Background(), "tiny", "", domain.PatientHistory{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", cursor.CurrentNodeID)
}
