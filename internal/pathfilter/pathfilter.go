// Package pathfilter matches vault-relative paths against
// gitignore-style include and exclude pattern lists. It backs both the
// document source (filtering at listing time) and the vector store
// query layer (filtering retrieval candidates).
package pathfilter

import (
	ignore "github.com/sabhiram/go-gitignore"
)

// Filter decides whether a document path participates in indexing or
// retrieval. A path passes when it matches at least one include
// pattern (or the include list is empty) and matches no exclude
// pattern.
type Filter struct {
	include *ignore.GitIgnore
	exclude *ignore.GitIgnore
}

// New compiles include and exclude pattern lists. Patterns use
// gitignore syntax: "notes/**", "*.excalidraw.md", "archive/".
func New(includePatterns, excludePatterns []string) *Filter {
	f := &Filter{}
	if len(includePatterns) > 0 {
		f.include = ignore.CompileIgnoreLines(includePatterns...)
	}
	if len(excludePatterns) > 0 {
		f.exclude = ignore.CompileIgnoreLines(excludePatterns...)
	}
	return f
}

// Match reports whether the path passes the filter.
func (f *Filter) Match(path string) bool {
	if f.include != nil && !f.include.MatchesPath(path) {
		return false
	}
	if f.exclude != nil && f.exclude.MatchesPath(path) {
		return false
	}
	return true
}

// Empty reports whether the filter has no patterns at all, in which
// case every path passes.
func (f *Filter) Empty() bool {
	return f.include == nil && f.exclude == nil
}
