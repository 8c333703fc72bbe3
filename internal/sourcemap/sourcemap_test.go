package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/thalo-lang/thalo/internal/tpos"
)

func TestIdentityRoundTrip(t *testing.T) {
	loc := tpos.Location{
		StartIndex:    5,
		EndIndex:      10,
		StartPosition: tpos.Position{Row: 1, Column: 2},
		EndPosition:   tpos.Position{Row: 1, Column: 7},
	}
	assert.Equal(t, loc, Identity.ToFileLocation(loc))
	assert.Equal(t, loc, Identity.ToBlockLocation(loc))
}

func TestOffsetMapRoundTrip(t *testing.T) {
	sm := SourceMap{LineOffset: 3, ColumnOffset: 8, ContentStartIndex: 42}
	block := tpos.Location{
		StartIndex:    0,
		EndIndex:      5,
		StartPosition: tpos.Position{Row: 0, Column: 0},
		EndPosition:   tpos.Position{Row: 0, Column: 5},
	}
	file := sm.ToFileLocation(block)
	assert.Equal(t, tpos.Position{Row: 3, Column: 8}, file.StartPosition)
	assert.Equal(t, 42, file.StartIndex)

	back := sm.ToBlockLocation(file)
	assert.Equal(t, block, back)
}

func TestOffsetMapOnlyFirstLineGetsColumnOffset(t *testing.T) {
	sm := SourceMap{LineOffset: 3, ColumnOffset: 8, ContentStartIndex: 42}
	block := tpos.Location{
		StartPosition: tpos.Position{Row: 1, Column: 2},
		EndPosition:   tpos.Position{Row: 1, Column: 9},
	}
	file := sm.ToFileLocation(block)
	assert.Equal(t, tpos.Position{Row: 4, Column: 2}, file.StartPosition)
}
