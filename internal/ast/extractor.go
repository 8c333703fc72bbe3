package ast

import (
	"strconv"
	"strings"

	"github.com/thalo-lang/thalo/internal/cst"
	"github.com/thalo-lang/thalo/internal/tpos"
)

// ExtractDocument walks the concrete syntax tree's top-level entries and
// projects each onto the typed Entry sum type, in source order (spec.md
// §3 invariant 2).
func ExtractDocument(tree *cst.Tree, file string) []Entry {
	if tree == nil || tree.Root == nil {
		return nil
	}
	entries := make([]Entry, 0, len(tree.Root.Children))
	for _, n := range tree.Root.Children {
		entries = append(entries, extractEntry(tree, file, n))
	}
	return entries
}

func extractEntry(tree *cst.Tree, file string, n *cst.Node) Entry {
	switch n.Kind {
	case cst.KindInstanceEntry:
		return extractInstanceEntry(tree, file, n)
	case cst.KindSchemaEntry:
		return extractSchemaEntry(tree, file, n)
	case cst.KindSynthesisEntry:
		return extractSynthesisEntry(tree, file, n)
	case cst.KindActualizeEntry:
		return extractActualizeEntry(tree, file, n)
	default:
		return &ErrorEntry{
			Code:     firstNonEmpty(n.IssueCode, "unparseable_entry"),
			Message:  firstNonEmpty(n.IssueMessage, "entry could not be parsed"),
			FilePath: file,
			Loc:      n.Location(),
		}
	}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func extractTimestamp(tree *cst.Tree, n *cst.Node) FieldOrSyntaxError[Timestamp] {
	if n == nil || n.IsError() {
		loc := tpos.Zero
		code, msg, text := "missing_timestamp", "entry is missing a timestamp", ""
		if n != nil {
			loc = n.Location()
			code, msg, text = n.IssueCode, n.IssueMessage, tree.Text(n)
		}
		return ErrOf[Timestamp](&SyntaxError{Code: code, Message: msg, OriginalText: text, Location: loc})
	}
	ts, ok := ParseTimestamp(tree.Text(n))
	if !ok {
		return ErrOf[Timestamp](&SyntaxError{Code: "invalid_timestamp", Message: "malformed timestamp", OriginalText: tree.Text(n), Location: n.Location()})
	}
	return Ok(ts)
}

func extractDirective(tree *cst.Tree, n *cst.Node) FieldOrSyntaxError[Directive] {
	if n == nil {
		return ErrOf[Directive](&SyntaxError{Code: "missing_directive", Message: "entry is missing a directive"})
	}
	return Ok(Directive(tree.Text(n)))
}

func extractRequiredIdent(tree *cst.Tree, n *cst.Node, code, msg string) FieldOrSyntaxError[string] {
	if n == nil {
		return ErrOf[string](&SyntaxError{Code: code, Message: msg})
	}
	if n.IsError() || n.IsMissing() {
		return ErrOf[string](&SyntaxError{Code: n.IssueCode, Message: n.IssueMessage, OriginalText: tree.Text(n), Location: n.Location()})
	}
	return Ok(tree.Text(n))
}

func extractQuoted(tree *cst.Tree, n *cst.Node) string {
	return strings.Trim(tree.Text(n), "\"")
}

func extractTitle(tree *cst.Tree, n *cst.Node) *FieldOrSyntaxError[string] {
	if n == nil {
		return nil
	}
	v := Ok(extractQuoted(tree, n))
	return &v
}

func extractLinkField(tree *cst.Tree, n *cst.Node) *FieldOrSyntaxError[string] {
	if n == nil {
		return nil
	}
	f := extractExplicitLink(tree, n)
	return &f
}

func extractExplicitLink(tree *cst.Tree, n *cst.Node) FieldOrSyntaxError[string] {
	if n.IsError() || n.IsMissing() {
		return ErrOf[string](&SyntaxError{Code: n.IssueCode, Message: n.IssueMessage, OriginalText: tree.Text(n), Location: n.Location()})
	}
	return Ok(strings.TrimPrefix(tree.Text(n), "^"))
}

func extractTags(tree *cst.Tree, tagNodes []*cst.Node) []string {
	tags := make([]string, 0, len(tagNodes))
	for _, t := range tagNodes {
		tags = append(tags, tree.Text(t))
	}
	return tags
}

// --- metadata / values ---

func extractMetadata(tree *cst.Tree, metaNode *cst.Node) []MetadataEntry {
	if metaNode == nil {
		return nil
	}
	out := make([]MetadataEntry, 0, len(metaNode.Children))
	for _, entryNode := range metaNode.Children {
		if entryNode.IsError() {
			out = append(out, MetadataEntry{
				Key:      "",
				Location: entryNode.Location(),
				Value: ValueContent{
					Kind:      ValueInvalid,
					Location:  entryNode.Location(),
					SyntaxErr: &SyntaxError{Code: entryNode.IssueCode, Message: entryNode.IssueMessage, OriginalText: tree.Text(entryNode), Location: entryNode.Location()},
				},
			})
			continue
		}
		keyNode := entryNode.Child("key")
		valNode := entryNode.Children[len(entryNode.Children)-1]
		out = append(out, MetadataEntry{
			Key:      tree.Text(keyNode),
			KeyLoc:   keyNode.Location(),
			Value:    extractValue(tree, valNode),
			Location: entryNode.Location(),
		})
	}
	return out
}

func extractValue(tree *cst.Tree, n *cst.Node) ValueContent {
	loc := n.Location()
	if n.IsError() || n.IsMissing() {
		return ValueContent{
			Kind:     ValueInvalid,
			Location: loc,
			SyntaxErr: &SyntaxError{
				Code: firstNonEmpty(n.IssueCode, "invalid_value"), Message: n.IssueMessage,
				OriginalText: tree.Text(n), Location: loc,
			},
		}
	}
	switch n.Field {
	case "quoted_value":
		return ValueContent{Kind: ValueQuoted, Quoted: extractQuoted(tree, n), Location: loc}
	case "link_value":
		return ValueContent{Kind: ValueLink, Link: strings.TrimPrefix(tree.Text(n), "^"), Location: loc}
	case "datetime_value":
		ts, ok := ParseTimestamp(tree.Text(n))
		if !ok {
			return invalidValue("invalid_datetime", tree.Text(n), loc)
		}
		return ValueContent{Kind: ValueDatetime, Datetime: ts, Location: loc}
	case "number_value":
		num, err := strconv.ParseFloat(tree.Text(n), 64)
		if err != nil {
			return invalidValue("invalid_number", tree.Text(n), loc)
		}
		return ValueContent{Kind: ValueNumber, Number: num, Location: loc}
	case "date_range":
		dr, ok := ParseDateRange(tree.Text(n))
		if !ok {
			return invalidValue("invalid_date_range", tree.Text(n), loc)
		}
		return ValueContent{Kind: ValueDateRange, DateRange: dr, Location: loc}
	case "query_value":
		return ValueContent{Kind: ValueQuery, Query: extractQuery(tree, n), Location: loc}
	case "value_array":
		elems := make([]ValueContent, 0, len(n.Children))
		for _, c := range n.Children {
			elems = append(elems, extractValue(tree, c))
		}
		return ValueContent{Kind: ValueArray, Array: elems, Location: loc}
	default:
		return invalidValue("invalid_value", tree.Text(n), loc)
	}
}

func invalidValue(code, text string, loc tpos.Location) ValueContent {
	return ValueContent{Kind: ValueInvalid, Location: loc, SyntaxErr: &SyntaxError{Code: code, Message: "invalid value: " + text, OriginalText: text, Location: loc}}
}

func extractQuery(tree *cst.Tree, n *cst.Node) Query {
	q := Query{Entity: tree.Text(n.Child("entity"))}
	for _, c := range n.ChildrenOfKind(cst.KindCondition) {
		q.Conditions = append(q.Conditions, extractCondition(tree, c))
	}
	return q
}

func extractCondition(tree *cst.Tree, n *cst.Node) Condition {
	switch n.Field {
	case "tag":
		return Condition{Kind: ConditionTag, TagName: tree.Text(n.Child("tagName")), Location: n.Location()}
	case "link":
		v := extractValue(tree, n.Child("value"))
		return Condition{Kind: ConditionLink, Value: &v, Location: n.Location()}
	default:
		v := extractValue(tree, n.Child("value"))
		return Condition{Kind: ConditionField, FieldName: tree.Text(n.Child("fieldName")), Value: &v, Location: n.Location()}
	}
}

// --- content ---

func extractContent(tree *cst.Tree, n *cst.Node) *Content {
	if n == nil {
		return nil
	}
	c := &Content{Location: n.Location()}
	var cur *ContentSection
	for _, child := range n.Children {
		switch child.Kind {
		case cst.KindSectionHeader:
			if cur != nil {
				c.Sections = append(c.Sections, *cur)
			}
			cur = &ContentSection{Header: tree.Text(child), HeaderLoc: child.Location()}
		case cst.KindParagraph:
			if cur == nil {
				cur = &ContentSection{}
			}
			cur.Body = tree.Text(child)
			cur.BodyLoc = child.Location()
		}
	}
	if cur != nil {
		c.Sections = append(c.Sections, *cur)
	}
	return c
}

// --- entries ---

func extractInstanceEntry(tree *cst.Tree, file string, n *cst.Node) *InstanceEntry {
	h := InstanceHeader{
		Timestamp: extractTimestamp(tree, n.Child("timestamp")),
		Directive: extractDirective(tree, n.Child("directive")),
		Entity:    extractRequiredIdent(tree, n.Child("entity"), "missing_entity", "instance entry is missing its entity name"),
		Title:     extractTitle(tree, n.Child("title")),
		Tags:      extractTags(tree, n.ChildrenOf("tag")),
	}
	h.ExplicitLink = extractLinkField(tree, n.Child("explicit_link"))
	return &InstanceEntry{
		Header:   h,
		Metadata: extractMetadata(tree, n.Child("metadata")),
		Content:  extractContent(tree, n.Child("content")),
		FilePath: file,
		Loc:      n.Location(),
	}
}

func extractSchemaEntry(tree *cst.Tree, file string, n *cst.Node) *SchemaEntry {
	h := SchemaHeader{
		Timestamp:  extractTimestamp(tree, n.Child("timestamp")),
		Directive:  extractDirective(tree, n.Child("directive")),
		EntityName: extractRequiredIdent(tree, n.Child("entity_name"), "missing_entity_name", "schema entry is missing its entity name"),
		Title:      extractTitle(tree, n.Child("title")),
		Tags:       extractTags(tree, n.ChildrenOf("tag")),
	}
	h.ExplicitLink = extractLinkField(tree, n.Child("explicit_link"))

	e := &SchemaEntry{Header: h, FilePath: file, Loc: n.Location()}
	for _, block := range n.ChildrenOfKind(cst.KindMetadataBlock) {
		for _, fd := range block.Children {
			e.MetadataBlock = append(e.MetadataBlock, extractFieldDecl(tree, fd))
		}
	}
	for _, block := range n.ChildrenOfKind(cst.KindSectionsBlock) {
		for _, sd := range block.Children {
			e.SectionsBlock = append(e.SectionsBlock, extractSectionDecl(tree, sd))
		}
	}
	for _, block := range n.ChildrenOfKind(cst.KindRemoveMetadataBlock) {
		for _, item := range block.Children {
			if !item.IsError() {
				e.RemoveMetadataBlock = append(e.RemoveMetadataBlock, tree.Text(item))
			}
		}
	}
	for _, block := range n.ChildrenOfKind(cst.KindRemoveSectionsBlock) {
		for _, item := range block.Children {
			if !item.IsError() {
				e.RemoveSectionsBlock = append(e.RemoveSectionsBlock, tree.Text(item))
			}
		}
	}
	return e
}

func extractFieldDecl(tree *cst.Tree, n *cst.Node) FieldSchema {
	if n.IsError() {
		return FieldSchema{Location: n.Location()}
	}
	fs := FieldSchema{
		Name:     tree.Text(n.Child("name")),
		Optional: n.Optional,
		Type:     extractTypeExpr(tree, n.Child("type")),
		Location: n.Location(),
	}
	if d := n.Child("default"); d != nil {
		v := extractValue(tree, d)
		fs.DefaultValue = &v
	}
	if d := n.Child("description"); d != nil {
		desc := extractQuoted(tree, d)
		fs.Description = &desc
	}
	return fs
}

var primitives = map[string]Primitive{
	"string": PrimitiveString, "number": PrimitiveNumber,
	"datetime": PrimitiveDatetime, "daterange": PrimitiveDateRange, "link": PrimitiveLink,
}

func extractTypeExpr(tree *cst.Tree, n *cst.Node) TypeExpr {
	if n == nil {
		return TypeExpr{SyntaxErr: &SyntaxError{Code: "missing_type", Message: "field declaration is missing a type"}}
	}
	text := tree.Text(n)
	loc := n.Location()
	if n.IsMissing() || strings.TrimSpace(text) == "" {
		return TypeExpr{SyntaxErr: &SyntaxError{Code: "missing_type", Message: "field declaration is missing a type", Location: loc}, Location: loc}
	}
	if strings.HasSuffix(strings.TrimSpace(text), "[]") {
		elemText := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "[]"))
		elem := parseTypeAtom(elemText, loc)
		return TypeExpr{Kind: TypeArray, Element: &elem, Location: loc}
	}
	if strings.Contains(text, "|") {
		parts := strings.Split(text, "|")
		members := make([]TypeExpr, 0, len(parts))
		for _, part := range parts {
			members = append(members, parseTypeAtom(strings.TrimSpace(part), loc))
		}
		return TypeExpr{Kind: TypeUnion, Members: members, Location: loc}
	}
	return parseTypeAtom(strings.TrimSpace(text), loc)
}

func parseTypeAtom(text string, loc tpos.Location) TypeExpr {
	if strings.HasPrefix(text, "\"") && strings.HasSuffix(text, "\"") && len(text) >= 2 {
		return TypeExpr{Kind: TypeLiteral, Literal: strings.Trim(text, "\""), Location: loc}
	}
	if p, ok := primitives[text]; ok {
		return TypeExpr{Kind: TypePrimitive, Primitive: p, Location: loc}
	}
	return TypeExpr{SyntaxErr: &SyntaxError{Code: "unknown_type", Message: "unrecognized type: " + text, OriginalText: text, Location: loc}, Location: loc}
}

func extractSectionDecl(tree *cst.Tree, n *cst.Node) SectionSchema {
	if n.IsError() {
		return SectionSchema{Location: n.Location()}
	}
	nameNode := n.Child("name")
	ss := SectionSchema{Name: tree.Text(nameNode), Optional: n.Optional, Location: n.Location()}
	return ss
}

func extractSynthesisEntry(tree *cst.Tree, file string, n *cst.Node) *SynthesisEntry {
	titleNode := n.Child("title")
	var title FieldOrSyntaxError[string]
	if titleNode == nil {
		title = ErrOf[string](&SyntaxError{Code: "missing_title", Message: "synthesis entry requires a title"})
	} else if titleNode.IsMissing() {
		title = ErrOf[string](&SyntaxError{Code: titleNode.IssueCode, Message: titleNode.IssueMessage, Location: titleNode.Location()})
	} else {
		title = Ok(extractQuoted(tree, titleNode))
	}

	linkNode := n.Child("explicit_link")
	var link FieldOrSyntaxError[string]
	if linkNode == nil {
		link = ErrOf[string](&SyntaxError{Code: "missing_link_id", Message: "synthesis entry requires an explicit link id"})
	} else {
		link = extractExplicitLink(tree, linkNode)
	}

	h := SynthesisHeader{
		Timestamp: extractTimestamp(tree, n.Child("timestamp")),
		Title:     title,
		LinkID:    link,
		Tags:      extractTags(tree, n.ChildrenOf("tag")),
	}
	return &SynthesisEntry{
		Header:   h,
		Metadata: extractMetadata(tree, n.Child("metadata")),
		Content:  extractContent(tree, n.Child("content")),
		FilePath: file,
		Loc:      n.Location(),
	}
}

func extractActualizeEntry(tree *cst.Tree, file string, n *cst.Node) *ActualizeEntry {
	targetNode := n.Child("target")
	var target FieldOrSyntaxError[string]
	if targetNode == nil {
		target = ErrOf[string](&SyntaxError{Code: "missing_target", Message: "actualize entry requires a target link"})
	} else {
		target = extractExplicitLink(tree, targetNode)
	}
	h := ActualizeHeader{
		Timestamp: extractTimestamp(tree, n.Child("timestamp")),
		Target:    target,
		Tags:      extractTags(tree, n.ChildrenOf("tag")),
	}
	return &ActualizeEntry{
		Header:   h,
		Metadata: extractMetadata(tree, n.Child("metadata")),
		FilePath: file,
		Loc:      n.Location(),
	}
}
