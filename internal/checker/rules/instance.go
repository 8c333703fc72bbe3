package rules

import (
	"fmt"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// unknownEntityVisitor flags instance entries whose entity has no
// registered schema.
type unknownEntityVisitor struct{}

func (unknownEntityVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	if !e.Header.Entity.OK() {
		return
	}
	name := e.Header.Entity.Value
	if !ctx.Workspace.SchemaRegistry().Has(name) {
		ctx.Emit(fmt.Sprintf("unknown entity %q", name), e.FilePath, e.Loc, map[string]any{"entity": name})
	}
}

// UnknownEntity is the `unknown-entity` rule.
func UnknownEntity() *checker.Rule {
	return &checker.Rule{
		Code:            "unknown-entity",
		Name:            "Unknown entity",
		Description:     "An instance entry's entity has no define-entity schema anywhere in the workspace.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Schemas: true},
		Visitor:         unknownEntityVisitor{},
	}
}

// fieldRulesVisitor implements missing-required-field, unknown-field, and
// invalid-field-type together: all three need the same resolved schema
// and the same metadata walk, so sharing the visitor avoids resolving
// the schema three times per entry. Each rule still registers separately
// with its own code/severity.
type fieldRulesVisitor struct {
	code string
}

func (v fieldRulesVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	if !e.Header.Entity.OK() {
		return
	}
	es, ok := ctx.Workspace.SchemaRegistry().Get(e.Header.Entity.Value)
	if !ok {
		return // unknown-entity already owns this diagnostic
	}
	switch v.code {
	case "missing-required-field":
		for _, name := range es.FieldOrder {
			f := es.Fields[name]
			if f.Optional || f.DefaultValue != nil {
				continue
			}
			if _, present := metadataValue(e.Metadata, name); !present {
				ctx.Emit(fmt.Sprintf("missing required field %q", name), e.FilePath, e.Loc, map[string]any{"field": name})
			}
		}
	case "unknown-field":
		for _, m := range e.Metadata {
			if _, known := es.Fields[m.Key]; !known {
				ctx.Emit(fmt.Sprintf("unknown field %q for entity %q", m.Key, e.Header.Entity.Value), e.FilePath, m.KeyLoc, map[string]any{"field": m.Key})
			}
		}
	case "invalid-field-type":
		for _, m := range e.Metadata {
			f, known := es.Fields[m.Key]
			if !known {
				continue
			}
			if !compatible(m.Value, f.Type) {
				ctx.Emit(fmt.Sprintf("field %q has a value incompatible with its declared type", m.Key), e.FilePath, m.Value.Location, map[string]any{"field": m.Key})
			}
		}
	}
}

// MissingRequiredField is the `missing-required-field` rule.
func MissingRequiredField() *checker.Rule {
	return &checker.Rule{
		Code:            "missing-required-field",
		Name:            "Missing required field",
		Description:     "A non-optional field with no default value is absent from an instance entry's metadata.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry, Schemas: true},
		Visitor:         fieldRulesVisitor{code: "missing-required-field"},
	}
}

// UnknownField is the `unknown-field` rule.
func UnknownField() *checker.Rule {
	return &checker.Rule{
		Code:            "unknown-field",
		Name:            "Unknown field",
		Description:     "A metadata key has no corresponding field in the entity's schema.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry, Schemas: true},
		Visitor:         fieldRulesVisitor{code: "unknown-field"},
	}
}

// InvalidFieldType is the `invalid-field-type` rule.
func InvalidFieldType() *checker.Rule {
	return &checker.Rule{
		Code:            "invalid-field-type",
		Name:            "Invalid field type",
		Description:     "A metadata value is incompatible with its field's declared type.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry, Schemas: true},
		Visitor:         fieldRulesVisitor{code: "invalid-field-type"},
	}
}

// sectionRulesVisitor implements missing-required-section and
// unknown-section, sharing one schema resolution per entry.
type sectionRulesVisitor struct {
	code string
}

func (v sectionRulesVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	if !e.Header.Entity.OK() {
		return
	}
	es, ok := ctx.Workspace.SchemaRegistry().Get(e.Header.Entity.Value)
	if !ok {
		return
	}
	var headers map[string]bool
	var sections []ast.ContentSection
	if e.Content != nil {
		sections = e.Content.Sections
	}
	headers = map[string]bool{}
	for _, s := range sections {
		headers[s.Header] = true
	}
	switch v.code {
	case "missing-required-section":
		for _, name := range es.SectionOrder {
			s := es.Sections[name]
			if s.Optional {
				continue
			}
			if !headers[name] {
				ctx.Emit(fmt.Sprintf("missing required section %q", name), e.FilePath, e.Loc, map[string]any{"section": name})
			}
		}
	case "unknown-section":
		for _, s := range sections {
			if _, known := es.Sections[s.Header]; !known {
				ctx.Emit(fmt.Sprintf("unknown content section %q", s.Header), e.FilePath, s.HeaderLoc, map[string]any{"section": s.Header})
			}
		}
	}
}

// MissingRequiredSection is the `missing-required-section` rule.
func MissingRequiredSection() *checker.Rule {
	return &checker.Rule{
		Code:            "missing-required-section",
		Name:            "Missing required section",
		Description:     "A non-optional content section declared by the entity's schema is absent.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry, Schemas: true},
		Visitor:         sectionRulesVisitor{code: "missing-required-section"},
	}
}

// UnknownSection is the `unknown-section` rule.
func UnknownSection() *checker.Rule {
	return &checker.Rule{
		Code:            "unknown-section",
		Name:            "Unknown section",
		Description:     "A content section header has no corresponding declaration in the entity's schema.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry, Schemas: true},
		Visitor:         sectionRulesVisitor{code: "unknown-section"},
	}
}

// createRequiresSectionVisitor flags create entries with no content
// sections at all.
type createRequiresSectionVisitor struct{}

func (createRequiresSectionVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	if !e.Header.Directive.OK() || e.Header.Directive.Value != ast.DirectiveCreate {
		return
	}
	if e.Content == nil || len(e.Content.Sections) == 0 {
		ctx.Emit("create entry has no content sections", e.FilePath, e.Loc, nil)
	}
}

// CreateRequiresSection is the `create-requires-section` rule.
func CreateRequiresSection() *checker.Rule {
	return &checker.Rule{
		Code:            "create-requires-section",
		Name:            "Create requires section",
		Description:     "A create entry has no content at all.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         createRequiresSectionVisitor{},
	}
}

// missingTitleVisitor flags instance/schema entries with no title.
type missingTitleVisitor struct{}

func (missingTitleVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	if e.Header.Title == nil {
		ctx.Emit("entry is missing a title", e.FilePath, e.Loc, nil)
	}
}

func (missingTitleVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	if e.Header.Title == nil {
		ctx.Emit("entry is missing a title", e.FilePath, e.Loc, nil)
	}
}

// MissingTitle is the `missing-title` rule.
func MissingTitle() *checker.Rule {
	return &checker.Rule{
		Code:            "missing-title",
		Name:            "Missing title",
		Description:     "An instance or schema entry has no title literal in its header.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityInfo,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         missingTitleVisitor{},
	}
}
