package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/cst"
)

func buildModel(t *testing.T, src string) *Model {
	t.Helper()
	p := cst.NewParser()
	tree := p.Parse(src)
	entries := ast.ExtractDocument(tree, "a.thalo")
	return Build("a.thalo", entries)
}

func TestModelAccessorsPartitionByKind(t *testing.T) {
	m := buildModel(t, `2026-01-01T00:00Z define-entity lore "Lore"
  # Metadata
  subject: link

2026-01-05T18:00Z create lore "E" ^e1
  subject: ^self

2026-01-06T09:00Z define-synthesis "S" ^s1
  sources: lore where subject = ^self

  # Prompt
  x

2026-01-07T10:00Z actualize-synthesis ^s1
  checkpoint: "ts:2026-01-07T10:00Z"
`)
	require.Len(t, m.SchemaEntries(), 1)
	require.Len(t, m.InstanceEntries(), 1)
	require.Len(t, m.SynthesisEntries(), 1)
	require.Len(t, m.ActualizeEntries(), 1)
}

func TestLinkIndexRecordsExplicitDefinitionsAndReferences(t *testing.T) {
	m := buildModel(t, `2026-01-05T18:00Z create lore "E" ^e1
  subject: ^self

2026-01-06T09:00Z define-synthesis "S" ^s1
  sources: lore where subject = ^e1

  # Prompt
  x
`)
	_, ok := m.Links.GetLinkDefinition("e1")
	require.True(t, ok)
	_, ok = m.Links.GetLinkDefinition("s1")
	require.True(t, ok)

	refs := m.Links.GetReferences("e1")
	require.Len(t, refs, 1)

	// `^self` is a reserved literal, not a real link id: it resolves to
	// the entry containing it rather than being tracked as a reference,
	// so it never appears under the literal key "self".
	refsToSelf := m.Links.GetReferences("self")
	require.Empty(t, refsToSelf)
}

func TestLinkIndexImplicitByTimestamp(t *testing.T) {
	m := buildModel(t, "2026-01-05T18:00Z create lore\n  x: 1\n")
	def, ok := m.Links.ImplicitByStamp["2026-01-05T18:00Z"]
	require.True(t, ok)
	assert.Equal(t, "2026-01-05T18:00Z", def.ID)
	assert.True(t, def.Implicit)
}

func TestActualizeTargetIsAReference(t *testing.T) {
	m := buildModel(t, "2026-01-07T12:00Z actualize-synthesis ^p\n  checkpoint: \"ts:2026-01-07T12:00Z\"\n")
	refs := m.Links.GetReferences("p")
	require.Len(t, refs, 1)
}
