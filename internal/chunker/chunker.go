// Package chunker splits document text into embeddable segments.
//
// Boundaries prefer, in order: markdown headings, fenced code block
// edges, blank-line paragraph breaks, line breaks, rune boundaries.
// Fenced code blocks are kept atomic whenever they fit in one chunk.
// Splitting is deterministic: identical text and configuration always
// produce identical boundaries and content hashes, which is what makes
// the embedding cache effective across runs and machines.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

// DefaultChunkSize is the default target chunk size in bytes.
const DefaultChunkSize = 1000

// Chunker splits text into chunks targeting a configured size.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the target chunk size in bytes.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive windows when an
// oversized block has to be split. Block-aligned chunks never overlap.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   0,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for forward progress.
	if c.overlap >= c.chunkSize {
		c.overlap = c.chunkSize / 4
	}

	return c
}

// block is a boundary-aligned span of the document: a heading with its
// following lines, a paragraph, or a fenced code block.
type block struct {
	start  int
	end    int
	atomic bool // fenced code block
}

// Split chunks the document text. Offsets in the returned chunks are
// byte offsets into text; chunks are ordered and, outside the oversized
// split path, non-overlapping. Whitespace-only spans produce no chunk.
func (c *Chunker) Split(path, text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	blocks := parseBlocks(text)

	var chunks []domain.Chunk
	emit := func(start, end int) {
		chunkText := text[start:end]
		if domain.NormalizeText(chunkText) == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:           uuid.NewString(),
			DocumentPath: path,
			StartOffset:  start,
			EndOffset:    end,
			Position:     len(chunks),
			Text:         chunkText,
			ContentHash:  domain.HashText(chunkText),
		})
	}

	curStart, curEnd := -1, -1
	flush := func() {
		if curStart >= 0 {
			emit(curStart, curEnd)
			curStart = -1
		}
	}

	for _, b := range blocks {
		if b.end-b.start > c.chunkSize {
			// Block cannot fit in any chunk; split it by lines.
			// This also breaks oversized code fences, which is the
			// unavoidable case for atomicity.
			flush()
			c.splitOversized(text, b, emit)
			continue
		}

		if curStart < 0 {
			curStart, curEnd = b.start, b.end
			continue
		}

		if b.end-curStart <= c.chunkSize {
			curEnd = b.end
			continue
		}

		flush()
		curStart, curEnd = b.start, b.end
	}
	flush()

	return chunks
}

// splitOversized windows over a block that exceeds the chunk size,
// cutting at line boundaries where possible and at rune boundaries as
// a last resort. Consecutive windows share up to c.overlap bytes.
func (c *Chunker) splitOversized(text string, b block, emit func(start, end int)) {
	ws := b.start
	for ws < b.end {
		we := c.cutPoint(text, ws, b.end)
		emit(ws, we)
		if we >= b.end {
			return
		}

		next := we
		if c.overlap > 0 {
			next = we - c.overlap
			if next <= ws {
				next = we
			}
			for next > ws && next < len(text) && !utf8.RuneStart(text[next]) {
				next++
			}
		}
		ws = next
	}
}

// cutPoint returns the end of the window starting at ws: the furthest
// line end within the size budget, or a rune boundary when even the
// first line does not fit.
func (c *Chunker) cutPoint(text string, ws, blockEnd int) int {
	limit := ws + c.chunkSize
	if limit >= blockEnd {
		return blockEnd
	}

	// Furthest newline within the budget.
	if idx := strings.LastIndexByte(text[ws:limit], '\n'); idx > 0 {
		return ws + idx + 1
	}

	// Single line longer than the budget: cut at a rune boundary.
	cut := limit
	for cut > ws+1 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return cut
}

// parseBlocks groups the document's lines into boundary-aligned
// blocks. Blank lines separate paragraphs; a heading or a fence opener
// always starts a new block; a fenced block runs to its closing fence
// or EOF.
func parseBlocks(text string) []block {
	var blocks []block
	var cur *block
	inFence := false

	endBlock := func() {
		if cur != nil {
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for s := 0; s < len(text); {
		e := s + lineLen(text[s:])
		line := strings.TrimSpace(text[s:e])

		switch {
		case inFence:
			cur.end = e
			if isFenceLine(line) {
				inFence = false
				endBlock()
			}

		case line == "":
			endBlock()

		case isFenceLine(line):
			endBlock()
			cur = &block{start: s, end: e, atomic: true}
			inFence = true

		case isHeading(line):
			endBlock()
			cur = &block{start: s, end: e}

		default:
			if cur == nil {
				cur = &block{start: s, end: e}
			} else {
				cur.end = e
			}
		}

		s = e
	}
	endBlock()

	return blocks
}

// lineLen returns the length of the first line in s, including the
// trailing newline when present.
func lineLen(s string) int {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return idx + 1
	}
	return len(s)
}

// isFenceLine reports whether the trimmed line opens or closes a
// fenced code block.
func isFenceLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~")
}

// isHeading reports whether the trimmed line is a markdown heading.
func isHeading(trimmed string) bool {
	if trimmed == "" || trimmed[0] != '#' {
		return false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i > 6 {
		return false
	}
	return i == len(trimmed) || trimmed[i] == ' ' || trimmed[i] == '\t'
}
