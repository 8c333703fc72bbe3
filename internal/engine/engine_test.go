package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/checker"
	"github.com/thalo-lang/thalo/internal/workspace"
)

const fixture = `2026-01-01T00:00Z define-entity lore "Lore"
  # Metadata
  type: "fact" | "insight"
  subject: link
  # Sections
  Content

2026-01-05T18:00Z create lore "E" ^e1
  unexpected_field: 1
  subject: ^self

  # Content
  Hi
`

// scenarioOneSchema and scenarioOneEntries reproduce spec.md §8 scenario 1
// verbatim, split across two files exactly as written there: a clean
// schema-then-instance workspace with a `^self` reference is expected to
// produce zero diagnostics.
const scenarioOneSchema = `2026-01-01T00:00Z define-entity lore "Lore"
  # Metadata
  type: "fact" | "insight"
  subject: link
  # Sections
  Content
`

const scenarioOneEntries = `2026-01-05T18:00Z create lore "E" ^e1
  type: "fact"
  subject: ^self

  # Content
  Hi
`

func TestCheckScenarioOneCrossFileYieldsNoDiagnostics(t *testing.T) {
	e := New()
	e.AddDocument(scenarioOneSchema, workspace.AddOptions{Filename: "schema.thalo"})
	e.AddDocument(scenarioOneEntries, workspace.AddOptions{Filename: "entries.thalo"})

	res := e.Check(context.Background(), nil)
	require.False(t, res.Cancelled)
	assert.Empty(t, res.Diagnostics, "expected no diagnostics, got %+v", res.Diagnostics)
}

func TestCheckFindsUnknownFieldAcrossWorkspace(t *testing.T) {
	e := New()
	e.AddDocument(fixture, workspace.AddOptions{Filename: "a.thalo"})

	res := e.Check(context.Background(), nil)
	require.False(t, res.Cancelled)

	found := false
	for _, d := range res.Diagnostics {
		if d.Code == "unknown-field" {
			found = true
		}
	}
	assert.True(t, found, "expected unknown-field diagnostic, got %+v", res.Diagnostics)
}

func TestCheckHonorsSeverityOffOverride(t *testing.T) {
	e := New()
	e.AddDocument(fixture, workspace.AddOptions{Filename: "a.thalo"})

	cfg := &checker.Config{Rules: map[string]checker.Severity{"unknown-field": checker.SeverityOff}}
	res := e.Check(context.Background(), cfg)
	for _, d := range res.Diagnostics {
		assert.NotEqual(t, "unknown-field", d.Code)
	}
}

func TestCheckDocumentScopesToOneFile(t *testing.T) {
	e := New()
	e.AddDocument(fixture, workspace.AddOptions{Filename: "a.thalo"})
	e.AddDocument("2026-01-01T00:00Z create other\n  x: 1\n", workspace.AddOptions{Filename: "b.thalo"})

	res := e.CheckDocument(context.Background(), "a.thalo", nil)
	for _, d := range res.Diagnostics {
		assert.Equal(t, "a.thalo", d.File)
	}
}

func TestCheckDocumentUnknownPathReturnsEmptyResult(t *testing.T) {
	e := New()
	res := e.CheckDocument(context.Background(), "missing.thalo", nil)
	assert.Empty(t, res.Diagnostics)
	assert.False(t, res.Cancelled)
}

func TestSchemaRegistryAndLinkIndexAccessors(t *testing.T) {
	e := New()
	e.AddDocument(fixture, workspace.AddOptions{Filename: "a.thalo"})

	assert.True(t, e.SchemaRegistry().Has("lore"))
	_, ok := e.LinkIndex().GetLinkDefinition("e1")
	assert.True(t, ok)
}
