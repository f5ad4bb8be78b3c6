// Package filesystem provides the vault-on-disk implementation of the
// DocumentSource port, plus a change watcher for continuous indexing.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/logger"
	"github.com/inkwell-notes/vaultrag/internal/pathfilter"
)

// Ensure Source implements the interface.
var _ driven.DocumentSource = (*Source)(nil)

// Source reads vault documents from a directory tree. Paths are
// vault-relative with forward slashes, so index state stays valid when
// the vault moves between machines.
type Source struct {
	root       string
	extensions map[string]bool
	filter     *pathfilter.Filter
}

// New creates a filesystem source for the configured vault.
func New(cfg domain.VaultSettings) (*Source, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: vault root not configured", domain.ErrInvalidInput)
	}

	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("resolving vault root: %w", err)
	}

	extensions := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extensions[strings.ToLower(ext)] = true
	}

	return &Source{
		root:       root,
		extensions: extensions,
		filter:     pathfilter.New(cfg.IncludePatterns, cfg.ExcludePatterns),
	}, nil
}

// Root returns the absolute vault root.
func (s *Source) Root() string {
	return s.root
}

// ListDocuments walks the vault and returns a stable, sorted listing
// with content hashes. A single unreadable file is skipped with a
// warning rather than failing the whole listing; an unreadable root is
// a source failure.
func (s *Source) ListDocuments(ctx context.Context) ([]domain.DocumentRef, error) {
	if _, err := os.Stat(s.root); err != nil {
		return nil, fmt.Errorf("%w: vault root %s: %v", domain.ErrSourceUnavailable, s.root, err)
	}

	var refs []domain.DocumentRef
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			logger.Warn("Skipping %s: %v", path, err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if !s.matches(rel) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping %s: %v", rel, err)
			return nil
		}

		refs = append(refs, domain.DocumentRef{
			Path:        rel,
			ContentHash: domain.HashText(string(content)),
			MTime:       info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking vault: %w", err)
	}

	sort.Slice(refs, func(i, j int) bool { return refs[i].Path < refs[j].Path })
	return refs, nil
}

// ReadContent returns the raw content of a vault-relative path.
func (s *Source) ReadContent(ctx context.Context, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	abs, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(content), nil
}

// matches applies the extension and pattern filters to a relative path.
func (s *Source) matches(rel string) bool {
	if len(s.extensions) > 0 {
		ext := strings.ToLower(filepath.Ext(rel))
		if !s.extensions[ext] {
			return false
		}
	}
	return s.filter.Match(rel)
}

// resolve maps a vault-relative path to an absolute one, rejecting
// escapes from the vault root.
func (s *Source) resolve(path string) (string, error) {
	abs := filepath.Join(s.root, filepath.FromSlash(path))
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path %s escapes vault root", domain.ErrInvalidInput, path)
	}
	return abs, nil
}
