package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[vault]
root = "/home/me/vault"

[chunking]
chunk_size = 500
`), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, "/home/me/vault", settings.Vault.Root)
	assert.Equal(t, 500, settings.Chunking.ChunkSize)

	// Everything else stays at the defaults.
	def := domain.DefaultSettings()
	assert.Equal(t, def.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, def.Gateway.BatchSize, settings.Gateway.BatchSize)
	assert.Equal(t, def.Gateway.BaseBackoff, settings.Gateway.BaseBackoff)
	assert.Equal(t, def.Retrieval.MinSimilarity, settings.Retrieval.MinSimilarity)
}

func TestLoad_Durations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[gateway]
base_backoff = "250ms"
max_backoff = "1m"
requests_per_second = 2.5
`), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)

	settings, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, settings.Gateway.BaseBackoff)
	assert.Equal(t, time.Minute, settings.Gateway.MaxBackoff)
	assert.Equal(t, 2.5, settings.Gateway.RequestsPerSecond)
}

func TestLoad_InvalidProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[embedding]
provider = "skynet"
`), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[gateway]
base_backoff = "soon"
`), 0600))

	store, err := NewStore(path)
	require.NoError(t, err)

	_, err = store.Load()
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "deep", "config.toml"))
	require.NoError(t, err)

	settings := domain.DefaultSettings()
	settings.Vault.Root = "/vault"
	settings.Vault.IncludePatterns = []string{"notes/**"}
	settings.Vault.ExcludePatterns = []string{"archive/"}
	settings.Embedding.Provider = domain.AIProviderOpenAI
	settings.Embedding.Model = "text-embedding-3-small"
	settings.Embedding.Dimensions = 1536
	settings.Embedding.APIKeyEnv = "OPENAI_API_KEY"
	settings.Gateway.RequestsPerSecond = 3

	require.NoError(t, store.Save(settings))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}
