package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	configfile "github.com/inkwell-notes/vaultrag/internal/adapters/driven/config/file"
	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/embedding/ollama"
	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/embedding/openai"
	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/source/filesystem"
	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/storage/sqlite"
	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/core/services"
)

// defaultOpenAIKeyEnv is consulted when the settings file does not
// name an environment variable for the API key.
const defaultOpenAIKeyEnv = "OPENAI_API_KEY"

// app bundles the wired engine with the resources it owns.
type app struct {
	engine   *services.Engine
	source   *filesystem.Source
	store    *sqlite.Store
	embedder driven.EmbeddingService
	settings domain.Settings
}

// pinger is implemented by embedding clients that can check provider
// connectivity without spending an embedding call.
type pinger interface {
	Ping(ctx context.Context) error
}

// buildApp loads settings and wires the engine. Flags override the
// settings file.
func buildApp() (*app, error) {
	cfgStore, err := configfile.NewStore(flagConfig)
	if err != nil {
		return nil, err
	}
	settings, err := cfgStore.Load()
	if err != nil {
		return nil, err
	}

	if flagVault != "" {
		settings.Vault.Root = flagVault
	}
	if settings.Vault.Root == "" {
		return nil, errors.New("vault root not configured: run 'vaultrag init --vault PATH' or pass --vault")
	}

	source, err := filesystem.New(settings.Vault)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return nil, fmt.Errorf("opening index store: %w", err)
	}

	embedder, err := buildEmbedder(settings.Embedding)
	if err != nil {
		store.Close()
		return nil, err
	}

	engine := services.NewEngine(
		source,
		store.VectorStore(),
		store.IndexStateStore(),
		store.EmbeddingCache(),
		embedder,
		settings,
	)

	return &app{
		engine:   engine,
		source:   source,
		store:    store,
		embedder: embedder,
		settings: settings,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	if a.embedder != nil {
		a.embedder.Close()
	}
	a.store.Close()
}

// buildEmbedder creates the configured embedding provider.
func buildEmbedder(cfg domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case domain.AIProviderOllama:
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil

	case domain.AIProviderOpenAI:
		keyEnv := cfg.APIKeyEnv
		if keyEnv == "" {
			keyEnv = defaultOpenAIKeyEnv
		}
		key := os.Getenv(keyEnv)
		if key == "" {
			return nil, fmt.Errorf("%w: environment variable %s is not set", domain.ErrAuth, keyEnv)
		}
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     key,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})

	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, cfg.Provider)
	}
}
