// Package sourcemap implements the position/location translation between a
// whole file and a block embedded inside it (spec.md §4.B): the identity
// map for a standalone .thalo file, and an offset map for a fenced
// ```thalo region inside a markdown file.
package sourcemap

import "github.com/thalo-lang/thalo/internal/tpos"

// SourceMap translates a block-relative Location to a file-absolute one
// and back. The zero value is the identity map.
type SourceMap struct {
	// LineOffset is added to every row.
	LineOffset int
	// ColumnOffset is added to the column of row 0 only (the column
	// accounting kicks in only on the first line of the block, since the
	// fence's opening line shares a row with file-absolute content before
	// the block's content starts).
	ColumnOffset int
	// ContentStartIndex is the file-absolute byte offset of the block's
	// first byte, used to translate StartIndex/EndIndex.
	ContentStartIndex int
}

// Identity is the whole-file source map (used for .thalo files, where the
// single block spans the entire file).
var Identity = SourceMap{}

func (sm SourceMap) toFilePosition(p tpos.Position) tpos.Position {
	row := p.Row + sm.LineOffset
	col := p.Column
	if p.Row == 0 {
		col += sm.ColumnOffset
	}
	return tpos.Position{Row: row, Column: col}
}

func (sm SourceMap) toBlockPosition(p tpos.Position) tpos.Position {
	row := p.Row - sm.LineOffset
	col := p.Column
	if row == 0 {
		col -= sm.ColumnOffset
	}
	return tpos.Position{Row: row, Column: col}
}

// ToFileLocation translates a block-relative Location to file-absolute
// coordinates.
func (sm SourceMap) ToFileLocation(block tpos.Location) tpos.Location {
	return tpos.Location{
		StartIndex:    block.StartIndex + sm.ContentStartIndex,
		EndIndex:      block.EndIndex + sm.ContentStartIndex,
		StartPosition: sm.toFilePosition(block.StartPosition),
		EndPosition:   sm.toFilePosition(block.EndPosition),
	}
}

// ToBlockLocation is the inverse of ToFileLocation.
func (sm SourceMap) ToBlockLocation(file tpos.Location) tpos.Location {
	return tpos.Location{
		StartIndex:    file.StartIndex - sm.ContentStartIndex,
		EndIndex:      file.EndIndex - sm.ContentStartIndex,
		StartPosition: sm.toBlockPosition(file.StartPosition),
		EndPosition:   sm.toBlockPosition(file.EndPosition),
	}
}

// IsIdentity reports whether sm performs no translation.
func (sm SourceMap) IsIdentity() bool {
	return sm == Identity
}
