package services

import (
	"fmt"
	"regexp"

	"github.com/sourcegraph/go-lsp"

	"github.com/thalo-lang/thalo/internal/tpos"
	"github.com/thalo-lang/thalo/internal/workspace"
)

// linkTokenPattern matches a `^id` token: the caret plus the link-id
// alphabet spec.md §3 names (`[A-Za-z0-9_\-./]+`).
var linkTokenPattern = regexp.MustCompile(`\^[A-Za-z0-9_\-./]+`)

// DefinitionResult is FindDefinition's outcome: the definition's
// file-absolute location expressed as an LSP location, per spec.md §4.N.
type DefinitionResult struct {
	Found    bool
	LinkID   string
	Location lsp.Location
}

// FindDefinition locates the `^id` token under (row, character) in file
// (UTF-16 code units, matching spec.md §3's Position), resolves it
// against ws's workspace-wide link index, and returns the definition's
// file-absolute location (spec.md §4.N).
func FindDefinition(ws *workspace.Workspace, file string, pos lsp.Position) DefinitionResult {
	doc, ok := ws.GetDocument(file)
	if !ok {
		return DefinitionResult{}
	}
	offset := doc.LineIndex().OffsetAt(pos.Line, pos.Character)
	id, ok := linkTokenAtOffset(doc.Source, offset)
	if !ok {
		return DefinitionResult{}
	}
	def, ok := ws.LinkIndex().GetLinkDefinition(id)
	if !ok {
		return DefinitionResult{}
	}
	return DefinitionResult{
		Found:    true,
		LinkID:   id,
		Location: toLSPLocation(def.Entry.File(), def.Location),
	}
}

// ReferencesResult is FindReferences's outcome (spec.md §4.N):
// `{definition?, references[]}` with file-absolute locations.
type ReferencesResult struct {
	LinkID     string
	Definition *lsp.Location
	References []lsp.Location
}

// FindReferences returns id's definition (if any) and every reference to
// it across the workspace, as file-absolute LSP locations.
func FindReferences(ws *workspace.Workspace, id string) ReferencesResult {
	res := ReferencesResult{LinkID: id}
	if def, ok := ws.LinkIndex().GetLinkDefinition(id); ok {
		loc := toLSPLocation(def.Entry.File(), def.Location)
		res.Definition = &loc
	}
	for _, r := range ws.LinkIndex().GetReferences(id) {
		res.References = append(res.References, toLSPLocation(r.Entry.File(), r.Location))
	}
	return res
}

// linkTokenAtOffset finds the `^id` token whose byte range contains
// offset, returning the id without its leading caret.
func linkTokenAtOffset(source string, offset int) (string, bool) {
	for _, m := range linkTokenPattern.FindAllStringIndex(source, -1) {
		if offset >= m[0] && offset < m[1] {
			return source[m[0]+1 : m[1]], true
		}
	}
	return "", false
}

func toLSPLocation(file string, loc tpos.Location) lsp.Location {
	return lsp.Location{
		URI: lsp.DocumentURI(fmt.Sprintf("file://%s", file)),
		Range: lsp.Range{
			Start: lsp.Position{Line: loc.StartPosition.Row, Character: loc.StartPosition.Column},
			End:   lsp.Position{Line: loc.EndPosition.Row, Character: loc.EndPosition.Column},
		},
	}
}
