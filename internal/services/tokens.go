package services

import (
	"regexp"
	"sort"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/tpos"
	"github.com/thalo-lang/thalo/internal/workspace"
)

// Token type indices, in the fixed legend order spec.md §6 names.
const (
	TokenNamespace = iota
	TokenType
	TokenClass
	TokenFunction
	TokenProperty
	TokenString
	TokenKeyword
	TokenComment
	TokenVariable
	TokenNumber
)

// Token modifier bits, in the fixed legend order spec.md §6 names.
const (
	ModDeclaration = 1 << iota
	ModDefinition
	ModDocumentation
)

// rawToken is one token before delta-encoding, in file-absolute
// coordinates.
type rawToken struct {
	Loc       tpos.Location
	Type      int
	Modifiers int
}

// headerPattern extracts the fields common to every entry header's first
// line: timestamp, directive keyword, an optional bare identifier
// (entity/entity-name), an optional quoted title, and an optional
// explicit `^link`. Applied per spec.md §12.5's token mapping.
var headerPattern = regexp.MustCompile(
	`^(?P<ts>\S+)` +
		`(?:\s+(?P<directive>[a-z][a-z-]*))?` +
		`(?:\s+(?P<entity>[A-Za-z_][\w.-]*))?` +
		`(?:\s+"(?P<title>[^"]*)")?` +
		`(?:\s+\^(?P<link>[A-Za-z0-9_\-./]+))?`)

// SemanticTokens produces the LSP delta-encoded token stream for file
// (spec.md §4.N, §6, §12.5): `[deltaLine, deltaChar, length, typeIdx,
// modifiersMask]` quintuples, sorted by position, for the fixed 10-type/
// 3-modifier legend. Multi-line tokens are truncated to their first
// line.
func SemanticTokens(ws *workspace.Workspace, file string) []int {
	doc, ok := ws.GetDocument(file)
	if !ok {
		return nil
	}
	var tokens []rawToken
	for _, m := range ws.AllModels() {
		if m.File != file {
			continue
		}
		for _, e := range m.Entries {
			tokens = append(tokens, headerTokens(doc.Source, e)...)
			tokens = append(tokens, contentTokens(e)...)
			tokens = append(tokens, metadataTokens(e)...)
		}
		for _, r := range m.Links.References {
			tokens = append(tokens, rawToken{Loc: r.Location, Type: TokenNamespace})
		}
	}
	return encodeDelta(truncateToFirstLine(doc.Source, tokens))
}

func headerTokens(source string, e ast.Entry) []rawToken {
	loc := e.Location()
	if loc.StartIndex < 0 || loc.EndIndex > len(source) || loc.StartIndex >= loc.EndIndex {
		return nil
	}
	entryText := source[loc.StartIndex:loc.EndIndex]
	firstLine := entryText
	if i := indexByte(entryText, '\n'); i >= 0 {
		firstLine = entryText[:i]
	}
	m := headerPattern.FindStringSubmatchIndex(firstLine)
	if m == nil {
		return nil
	}
	names := headerPattern.SubexpNames()
	var out []rawToken
	for i, name := range names {
		if i == 0 || m[2*i] < 0 {
			continue
		}
		start := loc.StartIndex + m[2*i]
		end := loc.StartIndex + m[2*i+1]
		switch name {
		case "directive":
			out = append(out, rawToken{Loc: spanAt(source, start, end), Type: TokenKeyword})
		case "entity":
			out = append(out, rawToken{Loc: spanAt(source, start, end), Type: TokenType})
		case "title":
			out = append(out, rawToken{Loc: spanAt(source, start-1, end+1), Type: TokenString})
		case "link":
			out = append(out, rawToken{Loc: spanAt(source, start-1, end), Type: TokenNamespace, Modifiers: ModDeclaration})
		}
	}
	return out
}

func contentTokens(e ast.Entry) []rawToken {
	var content *ast.Content
	switch v := e.(type) {
	case *ast.InstanceEntry:
		content = v.Content
	case *ast.SynthesisEntry:
		content = v.Content
	}
	if content == nil {
		return nil
	}
	var out []rawToken
	for _, s := range content.Sections {
		out = append(out, rawToken{Loc: s.HeaderLoc, Type: TokenFunction})
	}
	return out
}

func metadataTokens(e ast.Entry) []rawToken {
	var metadata []ast.MetadataEntry
	switch v := e.(type) {
	case *ast.InstanceEntry:
		metadata = v.Metadata
	case *ast.SynthesisEntry:
		metadata = v.Metadata
	case *ast.ActualizeEntry:
		metadata = v.Metadata
	}
	var out []rawToken
	for _, me := range metadata {
		out = append(out, rawToken{Loc: me.KeyLoc, Type: TokenProperty})
		switch me.Value.Kind {
		case ast.ValueQuoted:
			out = append(out, rawToken{Loc: me.Value.Location, Type: TokenString})
		case ast.ValueDatetime:
			out = append(out, rawToken{Loc: me.Value.Location, Type: TokenNumber})
		}
	}
	return out
}

func spanAt(source string, start, end int) tpos.Location {
	if start < 0 {
		start = 0
	}
	if end > len(source) {
		end = len(source)
	}
	li := tpos.NewLineIndex(source)
	return tpos.Location{
		StartIndex:    start,
		EndIndex:      end,
		StartPosition: li.PositionAt(start),
		EndPosition:   li.PositionAt(end),
	}
}

func indexByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// truncateToFirstLine clips any token whose end row differs from its
// start row down to the end of its start line (spec.md §4.N).
func truncateToFirstLine(source string, tokens []rawToken) []rawToken {
	li := tpos.NewLineIndex(source)
	out := make([]rawToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Loc.EndPosition.Row != t.Loc.StartPosition.Row {
			// OffsetAt clamps an over-long column to the line's end.
			end := li.OffsetAt(t.Loc.StartPosition.Row, 1<<30)
			t.Loc.EndIndex = end
			t.Loc.EndPosition = li.PositionAt(end)
		}
		out = append(out, t)
	}
	return out
}

// encodeDelta sorts tokens by position and produces the LSP delta
// encoding: for each token, `[deltaLine, deltaChar, length, typeIdx,
// modifiersMask]` relative to the previous token's start.
func encodeDelta(tokens []rawToken) []int {
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].Loc.StartPosition.Less(tokens[j].Loc.StartPosition)
	})
	var out []int
	prevLine, prevChar := 0, 0
	for _, t := range tokens {
		line := t.Loc.StartPosition.Row
		char := t.Loc.StartPosition.Column
		length := t.Loc.EndPosition.Column - t.Loc.StartPosition.Column
		if length <= 0 {
			continue
		}
		deltaLine := line - prevLine
		deltaChar := char
		if deltaLine == 0 {
			deltaChar = char - prevChar
		}
		out = append(out, deltaLine, deltaChar, length, t.Type, t.Modifiers)
		prevLine, prevChar = line, char
	}
	return out
}
