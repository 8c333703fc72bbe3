// Package document implements the per-file document model (spec.md §4.E):
// it creates one or more parse blocks from raw source via internal/cst,
// maintains a file-wide line index, and supports incremental edits without
// ever losing the invariant that re-ingesting the final source from
// scratch yields an equivalent result (spec.md §3 invariant 5).
package document

import (
	"strings"

	"github.com/thalo-lang/thalo/internal/cst"
	"github.com/thalo-lang/thalo/internal/sourcemap"
	"github.com/thalo-lang/thalo/internal/tpos"
)

// FileType distinguishes a standalone .thalo file from a markdown host
// that embeds zero or more fenced ```thalo blocks.
type FileType string

const (
	FileTypeThalo    FileType = "thalo"
	FileTypeMarkdown FileType = "markdown"
)

// Block is one parseable region of a document: a thalo file has exactly
// one (the identity map), a markdown file has one per fenced ```thalo
// region.
type Block struct {
	SourceMap sourcemap.SourceMap
	Tree      *cst.Tree
}

// EditResult reports what a single applyEdit touched (spec.md §4.E).
type EditResult struct {
	ModifiedBlockIndices   []int
	BlockBoundariesChanged bool
	FullReparse            bool
}

// Document is one file under management: its raw text, line index, and
// parse blocks. handle is an opaque generation marker for diagnostics
// only — entry identity never derives from it (spec.md §3).
type Document struct {
	Path     string
	FileType FileType
	Source   string
	handle   int

	lines  *tpos.LineIndex
	blocks []*Block
	parser *cst.Parser
}

// New creates a document from full source text, deriving its initial
// blocks (one for thalo, N for markdown fences).
func New(path, source string, fileType FileType) *Document {
	d := &Document{
		Path:     path,
		FileType: fileType,
		Source:   source,
		lines:    tpos.NewLineIndex(source),
		parser:   cst.NewParser(),
	}
	d.deriveBlocks()
	return d
}

// Blocks returns the document's current parse blocks, in file order.
func (d *Document) Blocks() []*Block { return d.blocks }

// LineIndex exposes the document's file-wide line index.
func (d *Document) LineIndex() *tpos.LineIndex { return d.lines }

func (d *Document) deriveBlocks() {
	d.handle++
	if d.FileType == FileTypeThalo {
		d.blocks = []*Block{{
			SourceMap: sourcemap.Identity,
			Tree:      d.parser.Parse(d.Source),
		}}
		return
	}
	d.blocks = nil
	for _, fb := range findFencedBlocks(d.Source) {
		d.blocks = append(d.blocks, &Block{
			SourceMap: sourcemap.SourceMap{
				LineOffset:        fb.lineOffset,
				ColumnOffset:      fb.columnOffset,
				ContentStartIndex: fb.contentStart,
			},
			Tree: d.parser.Parse(fb.content),
		})
	}
}

type fencedBlock struct {
	content      string
	lineOffset   int
	columnOffset int
	contentStart int
}

const fenceOpen = "```thalo"
const fenceClose = "```"

// findFencedBlocks scans source for ```thalo ... ``` regions on their own
// lines (spec.md §4.C). Nested fences are not supported: once inside a
// ```thalo block, the next line that is exactly ``` (surrounding
// whitespace aside) closes it.
func findFencedBlocks(source string) []fencedBlock {
	var blocks []fencedBlock
	lines := strings.Split(source, "\n")
	offset := 0
	lineStarts := make([]int, len(lines))
	for i, l := range lines {
		lineStarts[i] = offset
		offset += len(l) + 1 // account for the stripped "\n"
	}

	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == fenceOpen {
			openLine := i
			contentStartLine := i + 1
			contentStart := lineStarts[contentStartLine]
			if contentStartLine >= len(lines) {
				contentStart = len(source)
			}
			j := contentStartLine
			for j < len(lines) && strings.TrimSpace(lines[j]) != fenceClose {
				j++
			}
			contentEnd := len(source)
			if j < len(lines) {
				contentEnd = lineStarts[j]
				if contentEnd > 0 {
					contentEnd--
				}
			}
			if contentEnd < contentStart {
				contentEnd = contentStart
			}
			blocks = append(blocks, fencedBlock{
				content:      source[contentStart:contentEnd],
				lineOffset:   openLine + 1,
				columnOffset: 0,
				contentStart: contentStart,
			})
			i = j + 1
			continue
		}
		i++
	}
	return blocks
}

// blockContaining returns the index of the block whose file-absolute
// range contains byte offset, or -1.
func (d *Document) blockContaining(offset int) int {
	for idx, b := range d.blocks {
		start := b.SourceMap.ContentStartIndex
		end := start + len(b.Tree.Source)
		if offset >= start && offset <= end {
			return idx
		}
	}
	return -1
}

// ApplyEdit applies a single textual replacement addressed in file-wide
// (row, col) coordinates and reparses whatever blocks it touches (spec.md
// §4.E).
func (d *Document) ApplyEdit(startRow, startCol, endRow, endCol int, newText string) EditResult {
	startOffset := d.lines.OffsetAt(startRow, startCol)
	endOffset := d.lines.OffsetAt(endRow, endCol)
	if endOffset < startOffset {
		startOffset, endOffset = endOffset, startOffset
	}
	oldDeleted := d.Source[startOffset:endOffset]
	newSource := d.Source[:startOffset] + newText + d.Source[endOffset:]

	if d.FileType == FileTypeThalo {
		edit := cst.Edit{
			StartByte:  startOffset,
			OldEndByte: endOffset,
			NewEndByte: startOffset + len(newText),
		}
		d.Source = newSource
		d.lines.ApplyEdit(startOffset, endOffset, newText, newSource)
		oldTree := d.blocks[0].Tree
		d.blocks[0].Tree = d.parser.ParseIncremental(newSource, oldTree, edit)
		d.handle++
		return EditResult{ModifiedBlockIndices: []int{0}, BlockBoundariesChanged: false, FullReparse: false}
	}

	insertsOrRemovesFence := strings.Contains(oldDeleted, fenceOpen) || strings.Contains(oldDeleted, fenceClose) ||
		strings.Contains(newText, fenceOpen) || strings.Contains(newText, fenceClose)

	d.Source = newSource
	d.lines.ApplyEdit(startOffset, endOffset, newText, newSource)

	if insertsOrRemovesFence {
		d.deriveBlocks()
		all := make([]int, len(d.blocks))
		for i := range all {
			all[i] = i
		}
		return EditResult{ModifiedBlockIndices: all, BlockBoundariesChanged: true, FullReparse: false}
	}

	idx := d.blockContaining(startOffset)
	deltaLength := len(newText) - (endOffset - startOffset)
	var modified []int
	if idx >= 0 {
		b := d.blocks[idx]
		blockEdit := cst.Edit{
			StartByte:  startOffset - b.SourceMap.ContentStartIndex,
			OldEndByte: endOffset - b.SourceMap.ContentStartIndex,
			NewEndByte: startOffset - b.SourceMap.ContentStartIndex + len(newText),
		}
		newBlockSource := b.Tree.Source[:blockEdit.StartByte] + newText + b.Tree.Source[blockEdit.OldEndByte:]
		b.Tree = d.parser.ParseIncremental(newBlockSource, b.Tree, blockEdit)
		modified = append(modified, idx)
	}
	for i := idx + 1; i < len(d.blocks); i++ {
		d.blocks[i].SourceMap.ContentStartIndex += deltaLength
		d.blocks[i].SourceMap.LineOffset += strings.Count(newText, "\n") - strings.Count(oldDeleted, "\n")
	}
	d.handle++
	return EditResult{ModifiedBlockIndices: modified, BlockBoundariesChanged: false, FullReparse: false}
}

// ApplyEditRange accepts a pre-computed tree-sitter-shaped Edit (byte
// offsets/points already known to the host) instead of (row, col) pairs
// (spec.md §4.E's escape hatch).
func (d *Document) ApplyEditRange(edit cst.Edit, newText string) EditResult {
	start := d.lines.PositionAt(edit.StartByte)
	end := d.lines.PositionAt(edit.OldEndByte)
	return d.ApplyEdit(start.Row, start.Column, end.Row, end.Column, newText)
}

// ReplaceContent discards all blocks and rebuilds the document from
// scratch (spec.md §4.E); used to restore the idempotence invariant after
// an edit sequence a host doesn't trust incrementally.
func (d *Document) ReplaceContent(newSource string) EditResult {
	d.Source = newSource
	d.lines.Rebuild(newSource)
	d.deriveBlocks()
	all := make([]int, len(d.blocks))
	for i := range all {
		all[i] = i
	}
	return EditResult{ModifiedBlockIndices: all, BlockBoundariesChanged: true, FullReparse: true}
}
