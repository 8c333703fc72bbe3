package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewThaloDocumentSingleBlock(t *testing.T) {
	d := New("a.thalo", "2026-01-01T00:00Z create lore\n  x: 1\n", FileTypeThalo)
	require.Len(t, d.Blocks(), 1)
	assert.True(t, d.Blocks()[0].SourceMap.IsIdentity())
	assert.False(t, d.Blocks()[0].Tree.HasErrors())
}

func TestApplyEditThaloReparsesInPlace(t *testing.T) {
	d := New("a.thalo", "2026-01-01T00:00Z create lore\n  x: 1\n", FileTypeThalo)
	res := d.ApplyEdit(1, 5, 1, 6, "2")
	assert.False(t, res.BlockBoundariesChanged)
	assert.False(t, res.FullReparse)
	assert.Equal(t, []int{0}, res.ModifiedBlockIndices)
	assert.Equal(t, "2026-01-01T00:00Z create lore\n  x: 2\n", d.Source)
}

func TestMarkdownFindsFencedBlocks(t *testing.T) {
	src := "intro\n\n```thalo\n2026-01-01T00:00Z create lore\n  x: 1\n```\n\noutro\n"
	d := New("a.md", src, FileTypeMarkdown)
	require.Len(t, d.Blocks(), 1)
	b := d.Blocks()[0]
	assert.False(t, b.SourceMap.IsIdentity())
	assert.Equal(t, 3, b.SourceMap.LineOffset)
	assert.False(t, b.Tree.HasErrors())
}

func TestMarkdownEditInsertingFenceTriggersFullRederive(t *testing.T) {
	src := "intro\n\nouttro\n"
	d := New("a.md", src, FileTypeMarkdown)
	require.Len(t, d.Blocks(), 0)

	insert := "```thalo\n2026-01-01T00:00Z create lore\n  x: 1\n```\n"
	res := d.ApplyEdit(1, 0, 1, 0, insert)
	assert.True(t, res.BlockBoundariesChanged)
	require.Len(t, d.Blocks(), 1)
}

func TestReplaceContentFullRebuild(t *testing.T) {
	d := New("a.thalo", "2026-01-01T00:00Z create lore\n  x: 1\n", FileTypeThalo)
	res := d.ReplaceContent("2026-01-02T00:00Z create lore\n  x: 2\n")
	assert.True(t, res.FullReparse)
	assert.Equal(t, "2026-01-02T00:00Z create lore\n  x: 2\n", d.Source)
}
