package tpos

import (
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// LineIndex converts between byte offsets and (row, column) positions in
// UTF-16 code units, and stays consistent with its owning document's raw
// source across edits (spec.md §4.A). It keeps a copy of the current
// source only to decode UTF-16 columns within a line; callers (internal
// to the document package) are expected to call Rebuild or ApplyEdit every
// time the owning document's text changes.
type LineIndex struct {
	source     string
	lineStarts []int // byte offset of the first byte of each line
}

// NewLineIndex builds a LineIndex for the given source text.
func NewLineIndex(source string) *LineIndex {
	li := &LineIndex{}
	li.Rebuild(source)
	return li
}

// Rebuild recomputes the entire index from scratch. O(len(source)).
func (li *LineIndex) Rebuild(source string) {
	li.source = source
	starts := make([]int, 1, 64)
	starts[0] = 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	li.lineStarts = starts
}

// LineCount returns the total number of rows.
func (li *LineIndex) LineCount() int {
	return len(li.lineStarts)
}

func (li *LineIndex) lineBounds(row int) (start, end int) {
	start = li.lineStarts[row]
	if row+1 < len(li.lineStarts) {
		end = li.lineStarts[row+1] - 1 // exclude the newline itself
		if end < start {
			end = start
		}
	} else {
		end = len(li.source)
	}
	return start, end
}

// OffsetAt converts a (row, column) position to a byte offset. Column is a
// UTF-16 code-unit count from the start of the line; it is clamped to the
// line's length if it runs past the end.
func (li *LineIndex) OffsetAt(row, col int) int {
	if row < 0 {
		row = 0
	}
	if row >= len(li.lineStarts) {
		return len(li.source)
	}
	start, end := li.lineBounds(row)
	line := li.source[start:end]
	return start + utf16ColToByteOffset(line, col)
}

// PositionAt converts a byte offset to a (row, column) position.
func (li *LineIndex) PositionAt(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(li.source) {
		offset = len(li.source)
	}
	row := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > offset
	}) - 1
	if row < 0 {
		row = 0
	}
	start, end := li.lineBounds(row)
	if offset > end {
		offset = end
	}
	col := byteOffsetToUTF16Col(li.source[start:end], offset-start)
	return Position{Row: row, Column: col}
}

// ApplyEdit updates the index after a textual edit replacing
// source[startOffset:endOffset] with newText, given the already-edited
// full source. Only line starts from the edit's first affected line
// onward need to be rescanned; everything before is untouched.
func (li *LineIndex) ApplyEdit(startOffset, endOffset int, newText string, newSource string) {
	startRow := sort.Search(len(li.lineStarts), func(i int) bool {
		return li.lineStarts[i] > startOffset
	}) - 1
	if startRow < 0 {
		startRow = 0
	}
	keep := li.lineStarts[:startRow+1]
	li.source = newSource
	li.lineStarts = append(append([]int{}, keep...), rescanLineStarts(newSource, li.lineStarts[startRow])...)
}

func rescanLineStarts(source string, from int) []int {
	var starts []int
	for i := from; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func utf16ColToByteOffset(line string, col int) int {
	if col <= 0 {
		return 0
	}
	units := 0
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		width := 1
		if r > 0xFFFF {
			width = 2 // surrogate pair
		}
		if units+width > col {
			return i
		}
		units += width
		i += size
		if units >= col {
			return i
		}
	}
	return len(line)
}

func byteOffsetToUTF16Col(line string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	units := 0
	i := 0
	for i < byteOffset && i < len(line) {
		r, size := utf8.DecodeRuneInString(line[i:])
		if r > 0xFFFF {
			units += len(utf16.Encode([]rune{r}))
		} else {
			units++
		}
		i += size
	}
	return units
}
