package linkindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/cst"
	"github.com/thalo-lang/thalo/internal/semantic"
)

func localIndex(t *testing.T, file, src string) *semantic.LinkIndex {
	t.Helper()
	p := cst.NewParser()
	tree := p.Parse(src)
	entries := ast.ExtractDocument(tree, file)
	return semantic.Build(file, entries).Links
}

func TestWorkspaceIndexUnionsAcrossFiles(t *testing.T) {
	idx := New()
	idx.SetDocument("a.thalo", localIndex(t, "a.thalo", "2026-01-01T00:00Z create lore ^e1\n  x: 1\n"))
	idx.SetDocument("b.thalo", localIndex(t, "b.thalo", "2026-01-02T00:00Z create lore\n  x: ^e1\n"))

	def, ok := idx.GetLinkDefinition("e1")
	require.True(t, ok)
	assert.Equal(t, "a.thalo", def.Entry.File())

	refs := idx.GetReferences("e1")
	require.Len(t, refs, 1)
	assert.Equal(t, "b.thalo", refs[0].Entry.File())
}

func TestWorkspaceIndexDetectsDuplicateDefinitions(t *testing.T) {
	idx := New()
	idx.SetDocument("a.thalo", localIndex(t, "a.thalo", "2026-01-01T00:00Z create lore ^dup\n  x: 1\n"))
	idx.SetDocument("b.thalo", localIndex(t, "b.thalo", "2026-01-02T00:00Z create lore ^dup\n  x: 1\n"))

	all := idx.AllDefinitions("dup")
	assert.Len(t, all, 2)
}

func TestRemoveDocumentDropsContribution(t *testing.T) {
	idx := New()
	idx.SetDocument("a.thalo", localIndex(t, "a.thalo", "2026-01-01T00:00Z create lore ^e1\n  x: 1\n"))
	idx.RemoveDocument("a.thalo")
	_, ok := idx.GetLinkDefinition("e1")
	assert.False(t, ok)
}
