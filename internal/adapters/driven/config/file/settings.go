// Package file loads and saves engine settings as a TOML file.
//
// Missing keys fall back to defaults, so a minimal config file only
// needs the vault root. Durations are written as strings ("500ms",
// "30s"). API keys are read from the environment, never from the file.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

// DefaultFileName is the settings file name inside the config directory.
const DefaultFileName = "config.toml"

// Store reads and writes the settings file.
type Store struct {
	path string
}

// NewStore creates a settings store at the given file path. If path is
// empty, defaults to ~/.vaultrag/config.toml.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".vaultrag", DefaultFileName)
	}
	return &Store{path: path}, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file, applying defaults for anything the
// file does not set. A missing file yields pure defaults.
func (s *Store) Load() (domain.Settings, error) {
	fileCfg := toFile(domain.DefaultSettings())

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultSettings(), nil
		}
		return domain.Settings{}, fmt.Errorf("reading settings: %w", err)
	}

	// Unmarshal over the defaults: keys absent from the file keep
	// their default values.
	if err := toml.Unmarshal(data, &fileCfg); err != nil {
		return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	settings, err := fromFile(fileCfg)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return settings, nil
}

// Save writes the settings file, creating the directory if needed.
func (s *Store) Save(settings domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(toFile(settings))
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}

// fileSettings is the TOML schema. It mirrors domain.Settings with
// explicit keys and human-readable durations.
type fileSettings struct {
	Vault struct {
		Root            string   `toml:"root"`
		IncludePatterns []string `toml:"include_patterns"`
		ExcludePatterns []string `toml:"exclude_patterns"`
		Extensions      []string `toml:"extensions"`
	} `toml:"vault"`

	Chunking struct {
		ChunkSize int `toml:"chunk_size"`
		Overlap   int `toml:"overlap"`
	} `toml:"chunking"`

	Embedding struct {
		Provider   string `toml:"provider"`
		Model      string `toml:"model"`
		Dimensions int    `toml:"dimensions"`
		BaseURL    string `toml:"base_url"`
		APIKeyEnv  string `toml:"api_key_env"`
	} `toml:"embedding"`

	Gateway struct {
		BatchSize         int     `toml:"batch_size"`
		Concurrency       int     `toml:"concurrency"`
		MaxRetries        int     `toml:"max_retries"`
		BaseBackoff       string  `toml:"base_backoff"`
		MaxBackoff        string  `toml:"max_backoff"`
		RequestsPerSecond float64 `toml:"requests_per_second"`
	} `toml:"gateway"`

	Retrieval struct {
		Limit           int     `toml:"limit"`
		MinSimilarity   float64 `toml:"min_similarity"`
		ThresholdTokens int     `toml:"threshold_tokens"`
	} `toml:"retrieval"`
}

func toFile(s domain.Settings) fileSettings {
	var f fileSettings
	f.Vault.Root = s.Vault.Root
	f.Vault.IncludePatterns = s.Vault.IncludePatterns
	f.Vault.ExcludePatterns = s.Vault.ExcludePatterns
	f.Vault.Extensions = s.Vault.Extensions
	f.Chunking.ChunkSize = s.Chunking.ChunkSize
	f.Chunking.Overlap = s.Chunking.Overlap
	f.Embedding.Provider = s.Embedding.Provider.String()
	f.Embedding.Model = s.Embedding.Model
	f.Embedding.Dimensions = s.Embedding.Dimensions
	f.Embedding.BaseURL = s.Embedding.BaseURL
	f.Embedding.APIKeyEnv = s.Embedding.APIKeyEnv
	f.Gateway.BatchSize = s.Gateway.BatchSize
	f.Gateway.Concurrency = s.Gateway.Concurrency
	f.Gateway.MaxRetries = s.Gateway.MaxRetries
	f.Gateway.BaseBackoff = s.Gateway.BaseBackoff.String()
	f.Gateway.MaxBackoff = s.Gateway.MaxBackoff.String()
	f.Gateway.RequestsPerSecond = s.Gateway.RequestsPerSecond
	f.Retrieval.Limit = s.Retrieval.Limit
	f.Retrieval.MinSimilarity = s.Retrieval.MinSimilarity
	f.Retrieval.ThresholdTokens = s.Retrieval.ThresholdTokens
	return f
}

func fromFile(f fileSettings) (domain.Settings, error) {
	var s domain.Settings
	s.Vault.Root = f.Vault.Root
	s.Vault.IncludePatterns = f.Vault.IncludePatterns
	s.Vault.ExcludePatterns = f.Vault.ExcludePatterns
	s.Vault.Extensions = f.Vault.Extensions
	s.Chunking.ChunkSize = f.Chunking.ChunkSize
	s.Chunking.Overlap = f.Chunking.Overlap

	s.Embedding.Provider = domain.AIProvider(f.Embedding.Provider)
	if !s.Embedding.Provider.IsValid() {
		return domain.Settings{}, fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, f.Embedding.Provider)
	}
	s.Embedding.Model = f.Embedding.Model
	s.Embedding.Dimensions = f.Embedding.Dimensions
	s.Embedding.BaseURL = f.Embedding.BaseURL
	s.Embedding.APIKeyEnv = f.Embedding.APIKeyEnv

	s.Gateway.BatchSize = f.Gateway.BatchSize
	s.Gateway.Concurrency = f.Gateway.Concurrency
	s.Gateway.MaxRetries = f.Gateway.MaxRetries
	var err error
	if s.Gateway.BaseBackoff, err = parseDuration(f.Gateway.BaseBackoff); err != nil {
		return domain.Settings{}, fmt.Errorf("gateway.base_backoff: %w", err)
	}
	if s.Gateway.MaxBackoff, err = parseDuration(f.Gateway.MaxBackoff); err != nil {
		return domain.Settings{}, fmt.Errorf("gateway.max_backoff: %w", err)
	}
	s.Gateway.RequestsPerSecond = f.Gateway.RequestsPerSecond

	s.Retrieval.Limit = f.Retrieval.Limit
	s.Retrieval.MinSimilarity = f.Retrieval.MinSimilarity
	s.Retrieval.ThresholdTokens = f.Retrieval.ThresholdTokens
	return s, nil
}

func parseDuration(value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	return time.ParseDuration(value)
}
