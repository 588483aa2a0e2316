package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, 800, cfg.Chunking.ChunkSize)
	assert.Equal(t, 150, cfg.Chunking.Overlap)
	assert.Equal(t, 10, cfg.Retrieval.TopK)
	assert.Equal(t, 0.20, cfg.Retrieval.MinScore)
	assert.Equal(t, []float64{0.10}, cfg.Retrieval.FallbackThresholds)
	assert.True(t, cfg.Verify)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
verify = false

[chunking]
chunk_size = 400
overlap = 50

[retrieval]
top_k = 5
fallback_thresholds = [0.15, 0.05]

[vectorstore]
provider = "memory"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Chunking.ChunkSize)
	assert.Equal(t, 50, cfg.Chunking.Overlap)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, []float64{0.15, 0.05}, cfg.Retrieval.FallbackThresholds)
	assert.Equal(t, "memory", cfg.VectorStore.Provider)
	assert.False(t, cfg.Verify)
	// Untouched sections keep their defaults.
	assert.Equal(t, 100, cfg.Chunking.MinChunkSize)
}

func TestLoad_MalformedFileRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestLoad_InvalidValuesRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[chunking]
chunk_size = 100
overlap = 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestLoad_UnknownProviderRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[vectorstore]\nprovider = \"redis\"\n"), 0600))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Retrieval.TopK = 7
	cfg.LLM.Model = "anthropic/claude-3.5-sonnet"

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Retrieval.TopK)
	assert.Equal(t, "anthropic/claude-3.5-sonnet", loaded.LLM.Model)
}
