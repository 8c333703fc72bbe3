package cst

import (
	"regexp"
	"strings"

	"github.com/thalo-lang/thalo/internal/tpos"
)

var (
	reTimestampLead = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\S*`)
	reTimestampFull = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(Z|[+-]\d{2}:\d{2})$`)
	reDateRange     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\.\.\d{4}-\d{2}-\d{2}$`)
	reNumber        = regexp.MustCompile(`^[+-]?\d+(\.\d+)?$`)
	reLinkID        = regexp.MustCompile(`^[A-Za-z0-9_\-./]+$`)
	reBareIdent     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reMetaKV        = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*):\s*(.*)$`)
	reFieldDecl     = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)(\??):\s*(.*)$`)
	reSectionDecl   = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_ ]*?)(\??)\s*(?://\s*(".*"))?$`)
	reSectionHeader = regexp.MustCompile(`^#\s+(.+)$`)
)

var directives = map[string]bool{
	"create": true, "update": true,
	"define-entity": true, "alter-entity": true,
	"define-synthesis": true, "actualize-synthesis": true,
}

type rawLine struct {
	start, end int // byte offsets, end excludes the trailing '\n'
	text       string
}

func splitLines(source string) []rawLine {
	var lines []rawLine
	start := 0
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			lines = append(lines, rawLine{start, i, source[start:i]})
			start = i + 1
		}
	}
	lines = append(lines, rawLine{start, len(source), source[start:]})
	return lines
}

func indentOf(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// parseSource is the entry point the Parser wraps.
func parseSource(source string) *Tree {
	li := tpos.NewLineIndex(source)
	p := &parseState{source: source, li: li}
	root := p.parseSourceFile()
	return &Tree{Root: root, Source: source}
}

type parseState struct {
	source string
	li     *tpos.LineIndex
}

func (p *parseState) pos(byteOffset int) tpos.Position { return p.li.PositionAt(byteOffset) }

func (p *parseState) mk(kind Kind, field string, start, end int, children ...*Node) *Node {
	return &Node{
		Kind: kind, Field: field,
		StartByte: start, EndByte: end,
		StartPt: p.pos(start), EndPt: p.pos(end),
		Children: children,
	}
}

func (p *parseState) errNode(field, code, msg string, start, end int) *Node {
	n := p.mk(KindError, field, start, end)
	n.IssueCode = code
	n.IssueMessage = msg
	return n
}

func (p *parseState) missingNode(field, code, msg string, at int) *Node {
	n := p.mk(KindMissing, field, at, at)
	n.IssueCode = code
	n.IssueMessage = msg
	return n
}

func (p *parseState) parseSourceFile() *Node {
	lines := splitLines(p.source)
	var entries []*Node

	i := 0
	// Skip/absorb any stray preamble before the first recognized entry.
	for i < len(lines) && !isEntryStart(lines[i]) {
		i++
	}
	if i > 0 {
		text := strings.TrimSpace(joinLines(lines[:i]))
		if text != "" {
			entries = append(entries, p.errNode("entry", "stray_text", "text before first entry", lines[0].start, lines[i-1].end))
		}
	}

	for i < len(lines) {
		start := i
		i++
		for i < len(lines) && !isEntryStart(lines[i]) {
			i++
		}
		entries = append(entries, p.parseEntry(lines[start:i]))
	}

	root := p.mk(KindSourceFile, "", 0, len(p.source), entries...)
	return root
}

func isEntryStart(l rawLine) bool {
	if indentOf(l.text) != 0 {
		return false
	}
	return reTimestampLead.MatchString(l.text)
}

func joinLines(lines []rawLine) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- header tokenization ---

type tokKind int

const (
	tokWord tokKind = iota
	tokString
	tokLink
	tokTag
)

type token struct {
	kind       tokKind
	text       string // decoded text (quotes stripped for strings)
	start, end int
}

func tokenizeHeaderRest(text string, base int) []token {
	var toks []token
	i := 0
	for i < len(text) {
		c := text[i]
		if c == ' ' || c == '\t' {
			i++
			continue
		}
		start := i
		switch {
		case c == '"':
			j := i + 1
			for j < len(text) && text[j] != '"' {
				j++
			}
			end := j
			if j < len(text) {
				end = j + 1
			}
			toks = append(toks, token{tokString, text[i+1 : j], base + start, base + end})
			i = end
		case c == '^':
			j := i + 1
			for j < len(text) && text[j] != ' ' && text[j] != '\t' {
				j++
			}
			toks = append(toks, token{tokLink, text[i+1 : j], base + start, base + j})
			i = j
		case c == '#':
			j := i + 1
			for j < len(text) && text[j] != ' ' && text[j] != '\t' {
				j++
			}
			toks = append(toks, token{tokTag, text[i+1 : j], base + start, base + j})
			i = j
		default:
			j := i
			for j < len(text) && text[j] != ' ' && text[j] != '\t' {
				j++
			}
			toks = append(toks, token{tokWord, text[i:j], base + start, base + j})
			i = j
		}
	}
	return toks
}

func (p *parseState) parseTimestamp(text string, start int) *Node {
	end := start + len(text)
	n := p.mk(KindTimestamp, "timestamp", start, end)
	if !reTimestampFull.MatchString(text) {
		n.Kind = KindError
		n.IssueCode = "invalid_timestamp"
		n.IssueMessage = "malformed timestamp: " + text
	}
	return n
}

func (p *parseState) parseTags(toks []token) []*Node {
	var tags []*Node
	for _, t := range toks {
		if t.kind == tokTag {
			tags = append(tags, p.mk(KindTag, "tag", t.start, t.end))
		}
	}
	return tags
}

func firstOfKind(toks []token, k tokKind) (token, bool) {
	for _, t := range toks {
		if t.kind == k {
			return t, true
		}
	}
	return token{}, false
}

// parseEntry parses one top-level entry (header + body lines).
func (p *parseState) parseEntry(lines []rawLine) *Node {
	header := lines[0]
	body := lines[1:]
	entryStart := header.start
	entryEnd := header.end
	if len(body) > 0 {
		entryEnd = body[len(body)-1].end
	}

	headerText := header.text
	m := reTimestampLead.FindString(headerText)
	tsNode := p.parseTimestamp(m, header.start)
	rest := strings.TrimLeft(headerText[len(m):], " \t")
	restStart := header.start + len(headerText) - len(rest)

	toks := tokenizeHeaderRest(rest, restStart)
	if len(toks) == 0 {
		return p.errNode("entry", "missing_directive", "entry has no directive", entryStart, entryEnd)
	}
	directiveTok := toks[0]
	if directiveTok.kind != tokWord || !directives[directiveTok.text] {
		return p.errNode("entry", "unknown_directive", "unrecognized directive: "+directiveTok.text, entryStart, entryEnd)
	}
	directiveNode := p.mk(KindDirective, "directive", directiveTok.start, directiveTok.end)
	rem := toks[1:]

	switch directiveTok.text {
	case "create", "update":
		return p.parseInstanceEntry(entryStart, entryEnd, tsNode, directiveNode, rem, body)
	case "define-entity", "alter-entity":
		return p.parseSchemaEntry(entryStart, entryEnd, tsNode, directiveNode, rem, body)
	case "define-synthesis":
		return p.parseSynthesisEntry(entryStart, entryEnd, tsNode, directiveNode, rem, body)
	default: // actualize-synthesis
		return p.parseActualizeEntry(entryStart, entryEnd, tsNode, directiveNode, rem, body)
	}
}

func (p *parseState) parseInstanceEntry(start, end int, ts, directive *Node, rem []token, body []rawLine) *Node {
	children := []*Node{ts, directive}

	var entity *Node
	if len(rem) > 0 && rem[0].kind == tokWord {
		entity = p.mk(KindEntityName, "entity", rem[0].start, rem[0].end)
		rem = rem[1:]
	} else {
		entity = p.missingNode("entity", "missing_entity", "instance entry is missing its entity name", directive.EndByte)
	}
	children = append(children, entity)

	if t, ok := firstOfKind(rem, tokString); ok {
		children = append(children, p.mk(KindTitle, "title", t.start, t.end))
	}
	if t, ok := firstOfKind(rem, tokLink); ok {
		children = append(children, p.parseExplicitLink(t))
	}
	children = append(children, p.parseTags(rem)...)

	meta, content := p.splitInstanceBody(body)
	children = append(children, meta)
	if content != nil {
		children = append(children, content)
	}
	return p.mk(KindInstanceEntry, "", start, end, children...)
}

func (p *parseState) parseSchemaEntry(start, end int, ts, directive *Node, rem []token, body []rawLine) *Node {
	children := []*Node{ts, directive}

	var entity *Node
	if len(rem) > 0 && rem[0].kind == tokWord {
		entity = p.mk(KindEntityName, "entity_name", rem[0].start, rem[0].end)
		rem = rem[1:]
	} else {
		entity = p.missingNode("entity_name", "missing_entity_name", "schema entry is missing its entity name", directive.EndByte)
	}
	children = append(children, entity)

	if t, ok := firstOfKind(rem, tokString); ok {
		children = append(children, p.mk(KindTitle, "title", t.start, t.end))
	}
	if t, ok := firstOfKind(rem, tokLink); ok {
		children = append(children, p.parseExplicitLink(t))
	}
	children = append(children, p.parseTags(rem)...)

	children = append(children, p.parseSchemaBody(body)...)
	return p.mk(KindSchemaEntry, "", start, end, children...)
}

func (p *parseState) parseSynthesisEntry(start, end int, ts, directive *Node, rem []token, body []rawLine) *Node {
	children := []*Node{ts, directive}

	if t, ok := firstOfKind(rem, tokString); ok {
		children = append(children, p.mk(KindTitle, "title", t.start, t.end))
	} else {
		children = append(children, p.missingNode("title", "missing_title", "synthesis entry requires a title", directive.EndByte))
	}
	if t, ok := firstOfKind(rem, tokLink); ok {
		children = append(children, p.parseExplicitLink(t))
	} else {
		children = append(children, p.missingNode("explicit_link", "missing_link_id", "synthesis entry requires an explicit link id", directive.EndByte))
	}
	children = append(children, p.parseTags(rem)...)

	meta, content := p.splitInstanceBody(body)
	children = append(children, meta)
	if content != nil {
		children = append(children, content)
	}
	return p.mk(KindSynthesisEntry, "", start, end, children...)
}

func (p *parseState) parseActualizeEntry(start, end int, ts, directive *Node, rem []token, body []rawLine) *Node {
	children := []*Node{ts, directive}

	if t, ok := firstOfKind(rem, tokLink); ok {
		children = append(children, p.parseExplicitLink(t))
	} else {
		children = append(children, p.missingNode("target", "missing_target", "actualize entry requires a target link", directive.EndByte))
	}
	children[len(children)-1].Field = "target"
	children = append(children, p.parseTags(rem)...)

	meta, _ := p.splitInstanceBody(body)
	children = append(children, meta)
	return p.mk(KindActualizeEntry, "", start, end, children...)
}

func (p *parseState) parseExplicitLink(t token) *Node {
	n := p.mk(KindExplicitLink, "explicit_link", t.start, t.end)
	if !reLinkID.MatchString(t.text) {
		n.Kind = KindError
		n.IssueCode = "invalid_link_id"
		n.IssueMessage = "invalid link id: " + t.text
	}
	return n
}

// --- body dedent + segmentation ---

func dedent(lines []rawLine) []rawLine {
	min := -1
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		ind := indentOf(l.text)
		if min == -1 || ind < min {
			min = ind
		}
	}
	if min <= 0 {
		return lines
	}
	out := make([]rawLine, len(lines))
	for i, l := range lines {
		if len(l.text) >= min {
			out[i] = rawLine{l.start + min, l.end, l.text[min:]}
		} else {
			out[i] = rawLine{l.end, l.end, ""}
		}
	}
	return out
}

// splitInstanceBody parses the metadata_entry list, then (if present) the
// markdown content sub-tree, for instance/synthesis entries.
func (p *parseState) splitInstanceBody(rawBody []rawLine) (meta *Node, content *Node) {
	lines := dedent(rawBody)
	metaStart := len(lines)
	metaEnd := 0
	var metaEntries []*Node
	i := 0
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i].text)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			break
		}
		if metaEntries == nil {
			metaStart = lines[i].start
		}
		metaEntries = append(metaEntries, p.parseMetadataEntry(lines[i]))
		metaEnd = lines[i].end
	}
	if metaEntries == nil {
		metaStart, metaEnd = 0, 0
	}
	meta = p.mk(KindMetadataBlock, "metadata", metaStart, metaEnd, metaEntries...)

	rest := lines[i:]
	content = p.parseContent(rest)
	return meta, content
}

func (p *parseState) parseMetadataEntry(line rawLine) *Node {
	m := reMetaKV.FindStringSubmatch(line.text)
	if m == nil {
		return p.errNode("metadata_entry", "invalid_metadata_line", "malformed metadata line: "+line.text, line.start, line.end)
	}
	keyEnd := line.start + len(m[1])
	keyNode := p.mk(KindMetadataKey, "key", line.start, keyEnd)
	valStart := line.end - len(m[2])
	valNode := p.parseValue(m[2], valStart)
	return p.mk(KindMetadataEntry, "metadata_entry", line.start, line.end, keyNode, valNode)
}

func (p *parseState) parseContent(lines []rawLine) *Node {
	// Skip leading blank lines.
	for len(lines) > 0 && strings.TrimSpace(lines[0].text) == "" {
		lines = lines[1:]
	}
	if len(lines) == 0 {
		return nil
	}
	start := lines[0].start
	end := lines[len(lines)-1].end
	var children []*Node
	var curHeader *Node
	var paraLines []rawLine

	flush := func() {
		if curHeader == nil && len(paraLines) == 0 {
			return
		}
		if curHeader != nil {
			children = append(children, curHeader)
		}
		if len(paraLines) > 0 {
			pStart := paraLines[0].start
			pEnd := paraLines[len(paraLines)-1].end
			children = append(children, p.mk(KindParagraph, "paragraph", pStart, pEnd))
		}
		paraLines = nil
	}

	for _, l := range lines {
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" {
			continue
		}
		if hm := reSectionHeader.FindStringSubmatch(trimmed); hm != nil {
			flush()
			titleOffset := l.start + strings.Index(l.text, hm[1])
			curHeader = p.mk(KindSectionHeader, "section_header", titleOffset, titleOffset+len(hm[1]))
			continue
		}
		paraLines = append(paraLines, l)
	}
	flush()

	return p.mk(KindContent, "content", start, end, children...)
}

// --- schema body (define-entity / alter-entity) ---

type schemaBlockKind int

const (
	blockMetadata schemaBlockKind = iota
	blockSections
	blockRemoveMetadata
	blockRemoveSections
)

func (p *parseState) parseSchemaBody(rawBody []rawLine) []*Node {
	lines := dedent(rawBody)
	var nodes []*Node
	var cur schemaBlockKind
	var curLines []rawLine
	haveBlock := false

	flush := func() {
		if !haveBlock {
			return
		}
		nodes = append(nodes, p.buildSchemaBlock(cur, curLines))
		curLines = nil
	}

	for _, l := range lines {
		trimmed := strings.TrimSpace(l.text)
		if trimmed == "" {
			continue
		}
		switch trimmed {
		case "# Metadata":
			flush()
			cur, haveBlock = blockMetadata, true
			continue
		case "# Sections":
			flush()
			cur, haveBlock = blockSections, true
			continue
		case "# Remove Metadata":
			flush()
			cur, haveBlock = blockRemoveMetadata, true
			continue
		case "# Remove Sections":
			flush()
			cur, haveBlock = blockRemoveSections, true
			continue
		}
		curLines = append(curLines, l)
	}
	flush()
	return nodes
}

func (p *parseState) buildSchemaBlock(kind schemaBlockKind, lines []rawLine) *Node {
	var items []*Node
	var blockKind Kind
	switch kind {
	case blockMetadata:
		blockKind = KindMetadataBlock
		for _, l := range lines {
			items = append(items, p.parseFieldDecl(l))
		}
	case blockSections:
		blockKind = KindSectionsBlock
		for _, l := range lines {
			items = append(items, p.parseSectionDecl(l))
		}
	case blockRemoveMetadata:
		blockKind = KindRemoveMetadataBlock
		for _, l := range lines {
			items = append(items, p.parseRemoveItem(l))
		}
	case blockRemoveSections:
		blockKind = KindRemoveSectionsBlock
		for _, l := range lines {
			items = append(items, p.parseRemoveItem(l))
		}
	}
	start, end := 0, 0
	if len(lines) > 0 {
		start, end = lines[0].start, lines[len(lines)-1].end
	}
	return p.mk(blockKind, "", start, end, items...)
}

func (p *parseState) parseFieldDecl(line rawLine) *Node {
	m := reFieldDecl.FindStringSubmatch(line.text)
	if m == nil {
		return p.errNode("field_decl", "invalid_field_decl", "malformed field declaration: "+line.text, line.start, line.end)
	}
	nameEnd := line.start + len(m[1])
	nameNode := p.mk(KindMetadataKey, "name", line.start, nameEnd)
	rest := m[3]
	restStart := line.end - len(rest)

	desc := ""
	typeAndDefault := rest
	if idx := strings.Index(rest, "//"); idx >= 0 {
		typeAndDefault = strings.TrimSpace(rest[:idx])
		desc = strings.TrimSpace(rest[idx+2:])
	}
	var defaultLiteral string
	typeText := typeAndDefault
	if idx := strings.Index(typeAndDefault, "="); idx >= 0 {
		typeText = strings.TrimSpace(typeAndDefault[:idx])
		defaultLiteral = strings.TrimSpace(typeAndDefault[idx+1:])
	}
	typeNode := p.parseTypeExpr(typeText, restStart)

	children := []*Node{nameNode, typeNode}
	isOptional := m[2] == "?"
	if defaultLiteral != "" {
		defStart := restStart + strings.Index(rest, defaultLiteral)
		children = append(children, p.parseValue(defaultLiteral, defStart))
		children[len(children)-1].Field = "default"
	}
	if desc != "" {
		descStart := restStart + strings.Index(rest, desc)
		dn := p.mk(KindMetadataValue, "description", descStart, descStart+len(desc))
		children = append(children, dn)
	}
	node := p.mk(KindFieldDecl, "field_decl", line.start, line.end, children...)
	node.Optional = isOptional
	return node
}

func (p *parseState) parseTypeExpr(text string, start int) *Node {
	text = strings.TrimSpace(text)
	n := p.mk(KindTypeExpr, "type", start, start+len(text))
	if text == "" {
		n.Kind = KindMissing
		n.IssueCode = "missing_type"
		n.IssueMessage = "field declaration is missing a type"
	}
	return n
}

func (p *parseState) parseSectionDecl(line rawLine) *Node {
	trimmed := strings.TrimSpace(line.text)
	m := reSectionDecl.FindStringSubmatch(trimmed)
	if m == nil {
		return p.errNode("section_decl", "invalid_section_decl", "malformed section declaration: "+line.text, line.start, line.end)
	}
	name := strings.TrimSpace(m[1])
	off := line.start + strings.Index(line.text, name)
	nameNode := p.mk(KindSectionHeader, "name", off, off+len(name))
	node := p.mk(KindSectionDecl, "section_decl", line.start, line.end, nameNode)
	node.Optional = m[2] == "?"
	return node
}

func (p *parseState) parseRemoveItem(line rawLine) *Node {
	trimmed := strings.TrimSpace(line.text)
	if !reBareIdent.MatchString(trimmed) {
		return p.errNode("remove_item", "invalid_remove_item", "malformed removal item: "+line.text, line.start, line.end)
	}
	off := line.start + strings.Index(line.text, trimmed)
	return p.mk(KindRemoveItem, "remove_item", off, off+len(trimmed))
}

// --- metadata values ---

func (p *parseState) parseValue(text string, start int) *Node {
	trimmed := strings.TrimSpace(text)
	lead := start + (len(text) - len(strings.TrimLeft(text, " \t")))
	end := lead + len(trimmed)

	switch {
	case trimmed == "":
		return p.missingNode("value", "missing_value", "empty value", start)
	case strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]"):
		return p.parseValueArray(trimmed, lead)
	case strings.HasPrefix(trimmed, "\""):
		return p.mk(KindMetadataValue, "quoted_value", lead, end)
	case strings.HasPrefix(trimmed, "^"):
		id := trimmed[1:]
		n := p.mk(KindMetadataValue, "link_value", lead, end)
		if !reLinkID.MatchString(id) {
			n.Kind = KindError
			n.IssueCode = "invalid_link_id"
			n.IssueMessage = "invalid link id: " + id
		}
		return n
	case reTimestampFull.MatchString(trimmed):
		return p.mk(KindMetadataValue, "datetime_value", lead, end)
	case reDateRange.MatchString(trimmed):
		return p.mk(KindDateRange, "date_range", lead, end)
	case reNumber.MatchString(trimmed):
		return p.mk(KindMetadataValue, "number_value", lead, end)
	case strings.Contains(trimmed, " where "):
		return p.parseQuery(trimmed, lead)
	case reBareIdent.MatchString(trimmed):
		return p.parseQuery(trimmed, lead)
	default:
		return p.errNode("value", "invalid_value", "unrecognized value form: "+trimmed, lead, end)
	}
}

func (p *parseState) parseValueArray(text string, start int) *Node {
	inner := text[1 : len(text)-1]
	parts := splitTopLevel(inner, ',')
	offset := start + 1
	var elems []*Node
	for _, part := range parts {
		trimmedPart := strings.TrimSpace(part)
		if trimmedPart == "" {
			offset += len(part) + 1
			continue
		}
		elemStart := offset + strings.Index(part, trimmedPart)
		el := p.parseValue(trimmedPart, elemStart)
		el.Field = "element"
		elems = append(elems, el)
		offset += len(part) + 1
	}
	return p.mk(KindValueArray, "value_array", start, start+len(text), elems...)
}

func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inQuote := false
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case '[':
			if !inQuote {
				depth++
			}
		case ']':
			if !inQuote {
				depth--
			}
		default:
			if s[i] == sep && depth == 0 && !inQuote {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func (p *parseState) parseQuery(text string, start int) *Node {
	entity := text
	condText := ""
	if idx := strings.Index(text, " where "); idx >= 0 {
		entity = strings.TrimSpace(text[:idx])
		condText = strings.TrimSpace(text[idx+len(" where "):])
	}
	entOff := start + strings.Index(text, entity)
	entNode := p.mk(KindEntityName, "entity", entOff, entOff+len(entity))

	children := []*Node{entNode}
	if condText != "" {
		for _, clause := range strings.Split(condText, " and ") {
			clause = strings.TrimSpace(clause)
			if clause == "" {
				continue
			}
			condOff := start + strings.Index(text, clause)
			children = append(children, p.parseCondition(clause, condOff))
		}
	}
	return p.mk(KindQuery, "query_value", start, start+len(text), children...)
}

func (p *parseState) parseCondition(clause string, start int) *Node {
	idx := strings.Index(clause, "=")
	if idx < 0 {
		return p.errNode("condition", "invalid_condition", "malformed condition: "+clause, start, start+len(clause))
	}
	lhs := strings.TrimSpace(clause[:idx])
	rhs := strings.TrimSpace(clause[idx+1:])
	rhsOff := start + strings.LastIndex(clause, rhs)

	switch lhs {
	case "tag":
		off := start + strings.Index(clause, rhs)
		nameNode := p.mk(KindTag, "tagName", off, off+len(rhs))
		n := p.mk(KindCondition, "tag", start, start+len(clause), nameNode)
		return n
	case "link":
		valNode := p.parseValue(rhs, rhsOff)
		valNode.Field = "value"
		n := p.mk(KindCondition, "link", start, start+len(clause), valNode)
		return n
	default:
		fieldOff := start + strings.Index(clause, lhs)
		fieldNode := p.mk(KindMetadataKey, "fieldName", fieldOff, fieldOff+len(lhs))
		valNode := p.parseValue(rhs, rhsOff)
		valNode.Field = "value"
		n := p.mk(KindCondition, "field", start, start+len(clause), fieldNode, valNode)
		return n
	}
}
