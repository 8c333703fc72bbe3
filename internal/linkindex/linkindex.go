// Package linkindex implements the workspace-wide link index (spec.md
// §4.H): a union over every document's local link index, rebuilt by
// diffing at document granularity whenever a document's link data
// changes.
package linkindex

import (
	"github.com/thalo-lang/thalo/internal/semantic"
)

// Index is the workspace-wide view over every document's LinkIndex.
type Index struct {
	byFile map[string]*semantic.LinkIndex
	defs   map[string][]semantic.Definition
	refs   map[string][]semantic.Reference
}

// New constructs an empty workspace link index.
func New() *Index {
	return &Index{
		byFile: map[string]*semantic.LinkIndex{},
		defs:   map[string][]semantic.Definition{},
		refs:   map[string][]semantic.Reference{},
	}
}

// SetDocument registers (or replaces) a document's contribution to the
// workspace index and rebuilds the aggregate maps.
func (idx *Index) SetDocument(file string, local *semantic.LinkIndex) {
	idx.byFile[file] = local
	idx.rebuild()
}

// RemoveDocument drops a document's contribution and rebuilds.
func (idx *Index) RemoveDocument(file string) {
	delete(idx.byFile, file)
	idx.rebuild()
}

func (idx *Index) rebuild() {
	defs := map[string][]semantic.Definition{}
	refs := map[string][]semantic.Reference{}
	for _, local := range idx.byFile {
		for id, d := range local.Definitions {
			defs[id] = append(defs[id], d)
		}
		for _, r := range local.References {
			refs[r.ID] = append(refs[r.ID], r)
		}
	}
	idx.defs = defs
	idx.refs = refs
}

// GetLinkDefinition returns the first-registered definition for id
// across the workspace. Multiple definitions of the same id are a
// duplicate-link-id condition (spec.md §4.L); use AllDefinitions to see
// every one.
func (idx *Index) GetLinkDefinition(id string) (semantic.Definition, bool) {
	ds := idx.defs[id]
	if len(ds) == 0 {
		return semantic.Definition{}, false
	}
	return ds[0], true
}

// AllDefinitions returns every definition of id across the workspace, in
// no particular cross-file order (callers that need a stable order sort
// by file then location).
func (idx *Index) AllDefinitions(id string) []semantic.Definition {
	return idx.defs[id]
}

// GetReferences returns every reference to id across the workspace.
func (idx *Index) GetReferences(id string) []semantic.Reference {
	return idx.refs[id]
}

// AllReferencedIDs returns every distinct id referenced anywhere in the
// workspace, in no particular order.
func (idx *Index) AllReferencedIDs() []string {
	out := make([]string, 0, len(idx.refs))
	for id := range idx.refs {
		out = append(out, id)
	}
	return out
}

// AllDefinedIDs returns every distinct explicit link id defined anywhere
// in the workspace, in no particular order.
func (idx *Index) AllDefinedIDs() []string {
	out := make([]string, 0, len(idx.defs))
	for id := range idx.defs {
		out = append(out, id)
	}
	return out
}
