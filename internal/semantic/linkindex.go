package semantic

import (
	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/tpos"
)

// Definition is one explicit or implicit `^id` definition site.
type Definition struct {
	ID       string
	Entry    ast.Entry
	Location tpos.Location
	Implicit bool
}

// Reference is one use of `^id` that is not itself a definition.
type Reference struct {
	ID       string
	Entry    ast.Entry
	Location tpos.Location
}

// LinkIndex is the per-document view spec.md §4.F describes: explicit
// definitions, an implicit definition per entry keyed by its canonical
// timestamp (useful only for in-file back-references, since timestamps
// are not workspace-unique), and every reference found in metadata
// values, queries, and actualize targets.
type LinkIndex struct {
	File            string
	Definitions     map[string]Definition // keyed by explicit link id
	ImplicitByStamp map[string]Definition  // keyed by canonical timestamp
	References      []Reference
}

func buildLinkIndex(file string, entries []ast.Entry) *LinkIndex {
	idx := &LinkIndex{
		File:            file,
		Definitions:     map[string]Definition{},
		ImplicitByStamp: map[string]Definition{},
	}
	for _, e := range entries {
		addDefinitions(idx, e)
		addReferences(idx, e)
	}
	return idx
}

func addDefinitions(idx *LinkIndex, e ast.Entry) {
	var ts *ast.FieldOrSyntaxError[ast.Timestamp]
	var explicit *ast.FieldOrSyntaxError[string]

	switch v := e.(type) {
	case *ast.InstanceEntry:
		ts, explicit = &v.Header.Timestamp, v.Header.ExplicitLink
	case *ast.SchemaEntry:
		ts, explicit = &v.Header.Timestamp, v.Header.ExplicitLink
	case *ast.SynthesisEntry:
		ts = &v.Header.Timestamp
		if v.Header.LinkID.OK() {
			explicit = &v.Header.LinkID
		}
	case *ast.ActualizeEntry:
		ts = &v.Header.Timestamp
	default:
		return
	}

	if ts != nil && ts.OK() {
		stamp := ts.Value.Canonical()
		if _, exists := idx.ImplicitByStamp[stamp]; !exists {
			idx.ImplicitByStamp[stamp] = Definition{ID: stamp, Entry: e, Location: e.Location(), Implicit: true}
		}
	}
	if explicit != nil && explicit.OK() && explicit.Value != "" {
		idx.Definitions[explicit.Value] = Definition{ID: explicit.Value, Entry: e, Location: e.Location()}
	}
}

func addReferences(idx *LinkIndex, e ast.Entry) {
	var metadata []ast.MetadataEntry
	switch v := e.(type) {
	case *ast.InstanceEntry:
		metadata = v.Metadata
	case *ast.SynthesisEntry:
		metadata = v.Metadata
	case *ast.ActualizeEntry:
		metadata = v.Metadata
		if v.Header.Target.OK() && v.Header.Target.Value != "" && v.Header.Target.Value != SelfLinkID {
			idx.References = append(idx.References, Reference{ID: v.Header.Target.Value, Entry: e, Location: v.Loc})
		}
	}
	for _, m := range metadata {
		walkValueLinks(m.Value, e, idx)
	}
}

// SelfLinkID is the reserved literal `^self` uses. It always resolves to
// the entry containing the reference, never to a workspace-wide link id,
// so it is excluded from Reference/Definition collection entirely rather
// than tracked under the literal name "self" (which no entry can define
// and which would otherwise falsely collide across every entry that uses
// `^self`).
const SelfLinkID = "self"

func walkValueLinks(v ast.ValueContent, e ast.Entry, idx *LinkIndex) {
	switch v.Kind {
	case ast.ValueLink:
		if v.Link != "" && v.Link != SelfLinkID {
			idx.References = append(idx.References, Reference{ID: v.Link, Entry: e, Location: v.Location})
		}
	case ast.ValueArray:
		for _, elem := range v.Array {
			walkValueLinks(elem, e, idx)
		}
	case ast.ValueQuery:
		for _, c := range v.Query.Conditions {
			if c.Value != nil {
				walkValueLinks(*c.Value, e, idx)
			}
		}
	}
}

// GetLinkDefinition looks up an explicit definition by id.
func (idx *LinkIndex) GetLinkDefinition(id string) (Definition, bool) {
	d, ok := idx.Definitions[id]
	return d, ok
}

// GetReferences returns every reference in this document targeting id.
func (idx *LinkIndex) GetReferences(id string) []Reference {
	var out []Reference
	for _, r := range idx.References {
		if r.ID == id {
			out = append(out, r)
		}
	}
	return out
}
