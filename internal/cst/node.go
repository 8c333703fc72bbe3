// Package cst implements the incremental parser driver (spec.md §4.C): a
// hand-rolled lexer/parser for the Thalo textual grammar that produces a
// concrete syntax tree shaped like the teacher's go-tree-sitter usage
// (internal/repomap/tree_sitter.go in the teacher repo) — a Tree with a
// RootNode, Nodes carrying byte/point ranges and a Kind, and explicit
// ERROR/MISSING node kinds instead of panicking on malformed input. See
// SPEC_FULL.md §12.1 for why this is hand-rolled rather than a real
// tree-sitter grammar binding.
package cst

import "github.com/thalo-lang/thalo/internal/tpos"

// Kind identifies the grammatical production a Node represents.
type Kind string

const (
	KindSourceFile          Kind = "source_file"
	KindInstanceEntry       Kind = "instance_entry"
	KindSchemaEntry         Kind = "schema_entry"
	KindSynthesisEntry      Kind = "synthesis_entry"
	KindActualizeEntry      Kind = "actualize_entry"
	KindHeader              Kind = "header"
	KindTimestamp           Kind = "timestamp"
	KindDirective           Kind = "directive"
	KindEntityName          Kind = "entity_name"
	KindTitle               Kind = "title"
	KindExplicitLink        Kind = "explicit_link"
	KindTag                 Kind = "tag"
	KindMetadataBlock       Kind = "metadata_block"
	KindMetadataEntry       Kind = "metadata_entry"
	KindMetadataKey         Kind = "metadata_key"
	KindMetadataValue       Kind = "metadata_value"
	KindSectionsBlock       Kind = "sections_block"
	KindFieldDecl           Kind = "field_decl"
	KindSectionDecl         Kind = "section_decl"
	KindRemoveMetadataBlock Kind = "remove_metadata_block"
	KindRemoveSectionsBlock Kind = "remove_sections_block"
	KindRemoveItem          Kind = "remove_item"
	KindTypeExpr            Kind = "type_expr"
	KindContent             Kind = "content"
	KindSectionHeader       Kind = "section_header"
	KindParagraph           Kind = "paragraph"
	KindQuery               Kind = "query"
	KindCondition           Kind = "condition"
	KindValueArray          Kind = "value_array"
	KindDateRange           Kind = "date_range"

	// KindError marks a syntax node tree-sitter conventionally calls ERROR:
	// input that could not be assigned any production.
	KindError Kind = "ERROR"
	// KindMissing marks a node tree-sitter conventionally calls MISSING:
	// a required production the parser synthesized because the input
	// omitted it, so downstream extraction still has a location to anchor
	// a diagnostic on.
	KindMissing Kind = "MISSING"
)

// Node is one element of the concrete syntax tree. Every node carries a
// full Location (spec.md §3 invariant 1); leaf nodes additionally have no
// children, and their text is recovered via Tree.Text(node).
type Node struct {
	Kind     Kind
	Field    string // the role this node plays in its parent, e.g. "directive"
	Children []*Node

	StartByte int
	EndByte   int
	StartPt   tpos.Position
	EndPt     tpos.Position

	// Optional marks a field_decl/section_decl parsed with a trailing "?".
	Optional bool

	// IssueCode/IssueMessage are set on KindError/KindMissing nodes.
	IssueCode    string
	IssueMessage string
}

// Location projects the node's range into a tpos.Location.
func (n *Node) Location() tpos.Location {
	return tpos.Location{
		StartIndex:    n.StartByte,
		EndIndex:      n.EndByte,
		StartPosition: n.StartPt,
		EndPosition:   n.EndPt,
	}
}

// IsError reports whether this node represents unparseable input.
func (n *Node) IsError() bool { return n.Kind == KindError }

// IsMissing reports whether this node was synthesized for omitted input.
func (n *Node) IsMissing() bool { return n.Kind == KindMissing }

// Child returns the first child with the given field name, or nil.
func (n *Node) Child(field string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child with the given field name, in order.
func (n *Node) ChildrenOf(field string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// ChildrenOfKind returns every child with the given Kind, in order.
func (n *Node) ChildrenOfKind(kind Kind) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Walk calls visit on n and on every node under it, depth first, in
// source order.
func (n *Node) Walk(visit func(*Node)) {
	if n == nil {
		return
	}
	visit(n)
	for _, c := range n.Children {
		c.Walk(visit)
	}
}
