package domain

import (
	"math"
	"sort"
)

// QueryOptions configures a similarity query.
type QueryOptions struct {
	// Limit is the maximum number of results (default 5).
	Limit int

	// MinSimilarity excludes results scoring below this value.
	// Cosine similarity, range [0,1].
	MinSimilarity float64

	// IncludePatterns restricts candidates to documents matching at
	// least one gitignore-style pattern. Empty means all documents.
	IncludePatterns []string

	// ExcludePatterns removes documents matching any pattern.
	ExcludePatterns []string
}

// QueryResult is a single ranked similarity hit.
//
// Results are ordered by descending similarity; ties break by shorter
// chunk text, then by document path, then by start offset, so query
// output is reproducible.
type QueryResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// DocumentPath is the owning document's path.
	DocumentPath string

	// Similarity is the cosine similarity score in [0,1].
	Similarity float64
}

// EstimateTokens approximates the token count of a text with the
// common 4-bytes-per-token heuristic. Callers of Retrieve use it to
// estimate how full their context already is.
func EstimateTokens(text string) int {
	return len(text) / 4
}

// CosineSimilarity computes the cosine of the angle between two
// vectors, clamped to [0,1]. Mismatched lengths and zero vectors
// score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if similarity < 0 {
		return 0
	}
	if similarity > 1 {
		return 1
	}
	return similarity
}

// SortQueryResults orders hits by descending similarity with the
// deterministic tie-breaks documented on QueryResult.
func SortQueryResults(results []QueryResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Similarity != b.Similarity {
			return a.Similarity > b.Similarity
		}
		if len(a.Chunk.Text) != len(b.Chunk.Text) {
			return len(a.Chunk.Text) < len(b.Chunk.Text)
		}
		if a.DocumentPath != b.DocumentPath {
			return a.DocumentPath < b.DocumentPath
		}
		return a.Chunk.StartOffset < b.Chunk.StartOffset
	})
}
