package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/cst"
)

func schemaEntries(t *testing.T, src string) []*ast.SchemaEntry {
	t.Helper()
	p := cst.NewParser()
	tree := p.Parse(src)
	var out []*ast.SchemaEntry
	for _, e := range ast.ExtractDocument(tree, "a.thalo") {
		if se, ok := e.(*ast.SchemaEntry); ok {
			out = append(out, se)
		}
	}
	return out
}

func TestRegistryFoldsDefineAndAlter(t *testing.T) {
	entries := schemaEntries(t, `2026-01-01T00:00Z define-entity lore "Lore"
  # Metadata
  type: string
  subject: link
  # Sections
  Content

2026-01-02T00:00Z alter-entity lore
  # Metadata
  type: "fact" | "insight"
  # Remove Sections
  Content
`)
	require.Len(t, entries, 2)
	r := NewRegistry(16)
	for _, e := range entries {
		r.AddSchemaEntry(e)
	}
	require.True(t, r.Has("lore"))
	es, ok := r.Get("lore")
	require.True(t, ok)
	require.Contains(t, es.Fields, "type")
	assert.Equal(t, ast.TypeUnion, es.Fields["type"].Type.Kind)
	require.Contains(t, es.Fields, "subject")
	assert.NotContains(t, es.Sections, "Content")
}

func TestRegistryEarliestDefineWins(t *testing.T) {
	entries := schemaEntries(t, `2026-01-03T00:00Z define-entity lore
  # Metadata
  a: string

2026-01-01T00:00Z define-entity lore
  # Metadata
  b: string
`)
	require.Len(t, entries, 2)
	r := NewRegistry(16)
	for _, e := range entries {
		r.AddSchemaEntry(e)
	}
	es, ok := r.Get("lore")
	require.True(t, ok)
	assert.Contains(t, es.Fields, "b")
	require.Len(t, es.Defines, 2)
}

func TestRegistryCacheInvalidatesOnAdd(t *testing.T) {
	entries := schemaEntries(t, `2026-01-01T00:00Z define-entity lore
  # Metadata
  a: string
`)
	r := NewRegistry(16)
	r.AddSchemaEntry(entries[0])
	first, _ := r.Get("lore")
	require.Len(t, first.FieldOrder, 1)

	more := schemaEntries(t, `2026-01-02T00:00Z alter-entity lore
  # Metadata
  b: string
`)
	r.AddSchemaEntry(more[0])
	second, _ := r.Get("lore")
	require.Len(t, second.FieldOrder, 2)
}

func TestRegistryUnknownEntity(t *testing.T) {
	r := NewRegistry(16)
	_, ok := r.Get("ghost")
	assert.False(t, ok)
	assert.False(t, r.Has("ghost"))
}
