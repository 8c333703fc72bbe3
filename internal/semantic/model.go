// Package semantic implements the per-document semantic model (spec.md
// §4.F): the typed entries extracted from one document's AST, fast
// accessors by entry kind, and a local link index used for in-file
// back-references. Workspace-wide link resolution (spec.md §4.H) unions
// many of these together.
package semantic

import (
	"github.com/thalo-lang/thalo/internal/ast"
)

// Model is the semantic model derived from one document's AST.
type Model struct {
	File    string
	Entries []ast.Entry
	Links   *LinkIndex

	// Dirty flags, all set by Build. The workspace does not read them: it
	// re-registers the model's schema and link contributions on every
	// reindex.
	EntriesChanged bool
	LinksChanged   bool
	SchemasChanged bool
}

// Build projects a document's extracted entries into a Model, computing
// its fast accessors and local link index from scratch. Every call marks
// all three dirty flags: the caller (internal/workspace) is responsible
// for narrowing that down to what actually changed, if it cares to.
func Build(file string, entries []ast.Entry) *Model {
	return &Model{
		File:           file,
		Entries:        entries,
		Links:          buildLinkIndex(file, entries),
		EntriesChanged: true,
		LinksChanged:   true,
		SchemasChanged: true,
	}
}

// InstanceEntries returns every create/update entry, in source order.
func (m *Model) InstanceEntries() []*ast.InstanceEntry {
	var out []*ast.InstanceEntry
	for _, e := range m.Entries {
		if ie, ok := e.(*ast.InstanceEntry); ok {
			out = append(out, ie)
		}
	}
	return out
}

// SchemaEntries returns every define-entity/alter-entity entry, in
// source order.
func (m *Model) SchemaEntries() []*ast.SchemaEntry {
	var out []*ast.SchemaEntry
	for _, e := range m.Entries {
		if se, ok := e.(*ast.SchemaEntry); ok {
			out = append(out, se)
		}
	}
	return out
}

// SynthesisEntries returns every define-synthesis entry, in source order.
func (m *Model) SynthesisEntries() []*ast.SynthesisEntry {
	var out []*ast.SynthesisEntry
	for _, e := range m.Entries {
		if se, ok := e.(*ast.SynthesisEntry); ok {
			out = append(out, se)
		}
	}
	return out
}

// ActualizeEntries returns every actualize-synthesis entry, in source
// order.
func (m *Model) ActualizeEntries() []*ast.ActualizeEntry {
	var out []*ast.ActualizeEntry
	for _, e := range m.Entries {
		if ae, ok := e.(*ast.ActualizeEntry); ok {
			out = append(out, ae)
		}
	}
	return out
}

// ErrorEntries returns every top-level span that failed to parse into any
// production.
func (m *Model) ErrorEntries() []*ast.ErrorEntry {
	var out []*ast.ErrorEntry
	for _, e := range m.Entries {
		if ee, ok := e.(*ast.ErrorEntry); ok {
			out = append(out, ee)
		}
	}
	return out
}
