package rules

import (
	"fmt"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// duplicateEntityDefinitionVisitor flags every define-entity entry for a
// name that has more than one, the earliest included: spec.md §4.G
// resolves the earliest by timestamp as the base, but the duplication is
// reported at each of the defines involved.
type duplicateEntityDefinitionVisitor struct{}

func (duplicateEntityDefinitionVisitor) AfterCheck(ctx *checker.VisitContext) {
	for name, defines := range ctx.Index.DefineEntitiesByName {
		if len(defines) < 2 {
			continue
		}
		for _, e := range defines {
			ctx.Emit(fmt.Sprintf("entity %q is defined more than once in the workspace", name), e.FilePath, e.Loc, map[string]any{"entity": name})
		}
	}
}

// DuplicateEntityDefinition is the `duplicate-entity-definition` rule.
func DuplicateEntityDefinition() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-entity-definition",
		Name:            "Duplicate entity definition",
		Description:     "An entity name has more than one define-entity entry anywhere in the workspace.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         duplicateEntityDefinitionVisitor{},
	}
}

// alterUndefinedEntityVisitor flags an alter-entity entry whose entity
// name has no define-entity entry anywhere in the workspace.
type alterUndefinedEntityVisitor struct{}

func (alterUndefinedEntityVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	if !e.Header.Directive.OK() || e.Header.Directive.Value != ast.DirectiveAlterEntity {
		return
	}
	if !e.Header.EntityName.OK() {
		return
	}
	name := e.Header.EntityName.Value
	if !ctx.Workspace.SchemaRegistry().Has(name) {
		ctx.Emit(fmt.Sprintf("alter-entity for %q has no matching define-entity", name), e.FilePath, e.Loc, map[string]any{"entity": name})
	}
}

// AlterUndefinedEntity is the `alter-undefined-entity` rule.
func AlterUndefinedEntity() *checker.Rule {
	return &checker.Rule{
		Code:            "alter-undefined-entity",
		Name:            "Alter undefined entity",
		Description:     "An alter-entity entry's entity name has no define-entity entry anywhere in the workspace.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Schemas: true},
		Visitor:         alterUndefinedEntityVisitor{},
	}
}

// alterBeforeDefineVisitor flags an alter-entity entry whose timestamp
// precedes its entity's earliest define-entity entry.
type alterBeforeDefineVisitor struct{}

func (alterBeforeDefineVisitor) AfterCheck(ctx *checker.VisitContext) {
	for name, alters := range ctx.Index.AlterEntitiesByName {
		defines := ctx.Index.DefineEntitiesByName[name]
		if len(defines) == 0 {
			continue // alter-undefined-entity already owns this case
		}
		var earliest *ast.Timestamp
		for _, d := range defines {
			if !d.Header.Timestamp.OK() {
				continue
			}
			ts := d.Header.Timestamp.Value
			if earliest == nil || ts.Compare(*earliest) < 0 {
				earliest = &ts
			}
		}
		if earliest == nil {
			continue
		}
		for _, a := range alters {
			if !a.Header.Timestamp.OK() {
				continue
			}
			if a.Header.Timestamp.Value.Compare(*earliest) < 0 {
				ctx.Emit(fmt.Sprintf("alter-entity for %q precedes its define-entity", name), a.FilePath, a.Loc, map[string]any{"entity": name})
			}
		}
	}
}

// AlterBeforeDefine is the `alter-before-define` rule.
func AlterBeforeDefine() *checker.Rule {
	return &checker.Rule{
		Code:            "alter-before-define",
		Name:            "Alter before define",
		Description:     "An alter-entity entry's timestamp precedes its entity's earliest define-entity entry.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         alterBeforeDefineVisitor{},
	}
}

// duplicateFieldInSchemaVisitor flags a field name declared more than
// once within one define-entity/alter-entity entry's metadata block.
type duplicateFieldInSchemaVisitor struct{}

func (duplicateFieldInSchemaVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	seen := map[string]bool{}
	for _, f := range e.MetadataBlock {
		if f.Name == "" {
			continue
		}
		if seen[f.Name] {
			ctx.Emit(fmt.Sprintf("field %q is declared more than once in this entry", f.Name), e.FilePath, f.Location, map[string]any{"field": f.Name})
			continue
		}
		seen[f.Name] = true
	}
}

// DuplicateFieldInSchema is the `duplicate-field-in-schema` rule.
func DuplicateFieldInSchema() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-field-in-schema",
		Name:            "Duplicate field in schema",
		Description:     "A field name is declared more than once within a single schema entry.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         duplicateFieldInSchemaVisitor{},
	}
}

// duplicateSectionInSchemaVisitor flags a section name declared more
// than once within one schema entry's sections block.
type duplicateSectionInSchemaVisitor struct{}

func (duplicateSectionInSchemaVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	seen := map[string]bool{}
	for _, s := range e.SectionsBlock {
		if s.Name == "" {
			continue
		}
		if seen[s.Name] {
			ctx.Emit(fmt.Sprintf("section %q is declared more than once in this entry", s.Name), e.FilePath, s.Location, map[string]any{"section": s.Name})
			continue
		}
		seen[s.Name] = true
	}
}

// DuplicateSectionInSchema is the `duplicate-section-in-schema` rule.
func DuplicateSectionInSchema() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-section-in-schema",
		Name:            "Duplicate section in schema",
		Description:     "A section name is declared more than once within a single schema entry.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         duplicateSectionInSchemaVisitor{},
	}
}

// everDeclaredField/Section check across an entity's full history
// (every define and alter it has ever had, regardless of order), so
// remove-undefined-field/section don't false-positive on a field that
// was added by a later alter out of source order.
func everDeclaredField(es *schemaHistory, name string) bool {
	for _, e := range es.all() {
		for _, f := range e.MetadataBlock {
			if f.Name == name {
				return true
			}
		}
	}
	return false
}

func everDeclaredSection(es *schemaHistory, name string) bool {
	for _, e := range es.all() {
		for _, s := range e.SectionsBlock {
			if s.Name == name {
				return true
			}
		}
	}
	return false
}

// schemaHistory is the minimal view removeUndefinedVisitor needs: every schema entry (define or alter) ever seen for one entity.
type schemaHistory struct {
	defines []*ast.SchemaEntry
	alters  []*ast.SchemaEntry
}

func (h *schemaHistory) all() []*ast.SchemaEntry {
	out := make([]*ast.SchemaEntry, 0, len(h.defines)+len(h.alters))
	out = append(out, h.defines...)
	out = append(out, h.alters...)
	return out
}

// removeUndefinedVisitor backs remove-undefined-field and
// remove-undefined-section: an alter-entity's remove list names
// something never declared by any define/alter for that entity.
type removeUndefinedVisitor struct {
	code string
}

func (v removeUndefinedVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	if !e.Header.Directive.OK() || e.Header.Directive.Value != ast.DirectiveAlterEntity {
		return
	}
	if !e.Header.EntityName.OK() {
		return
	}
	name := e.Header.EntityName.Value
	hist := &schemaHistory{
		defines: ctx.Index.DefineEntitiesByName[name],
		alters:  ctx.Index.AlterEntitiesByName[name],
	}
	switch v.code {
	case "remove-undefined-field":
		for _, removed := range e.RemoveMetadataBlock {
			if !everDeclaredField(hist, removed) {
				ctx.Emit(fmt.Sprintf("removes field %q, which entity %q never declared", removed, name), e.FilePath, e.Loc, map[string]any{"field": removed})
			}
		}
	case "remove-undefined-section":
		for _, removed := range e.RemoveSectionsBlock {
			if !everDeclaredSection(hist, removed) {
				ctx.Emit(fmt.Sprintf("removes section %q, which entity %q never declared", removed, name), e.FilePath, e.Loc, map[string]any{"section": removed})
			}
		}
	}
}

// RemoveUndefinedField is the `remove-undefined-field` rule.
func RemoveUndefinedField() *checker.Rule {
	return &checker.Rule{
		Code:            "remove-undefined-field",
		Name:            "Remove undefined field",
		Description:     "An alter-entity removes a field name never declared by any define/alter of that entity.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         removeUndefinedVisitor{code: "remove-undefined-field"},
	}
}

// RemoveUndefinedSection is the `remove-undefined-section` rule.
func RemoveUndefinedSection() *checker.Rule {
	return &checker.Rule{
		Code:            "remove-undefined-section",
		Name:            "Remove undefined section",
		Description:     "An alter-entity removes a section name never declared by any define/alter of that entity.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         removeUndefinedVisitor{code: "remove-undefined-section"},
	}
}

// invalidDefaultValueVisitor flags a field declaration whose default
// value is incompatible with its own declared type.
type invalidDefaultValueVisitor struct{}

func (invalidDefaultValueVisitor) VisitSchemaEntry(ctx *checker.VisitContext, e *ast.SchemaEntry) {
	for _, f := range e.MetadataBlock {
		if f.DefaultValue == nil {
			continue
		}
		if !compatible(*f.DefaultValue, f.Type) {
			ctx.Emit(fmt.Sprintf("field %q has a default value incompatible with its declared type", f.Name), e.FilePath, f.DefaultValue.Location, map[string]any{"field": f.Name})
		}
	}
}

// InvalidDefaultValue is the `invalid-default-value` rule.
func InvalidDefaultValue() *checker.Rule {
	return &checker.Rule{
		Code:            "invalid-default-value",
		Name:            "Invalid default value",
		Description:     "A field declaration's default value is incompatible with its own declared type.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         invalidDefaultValueVisitor{},
	}
}
