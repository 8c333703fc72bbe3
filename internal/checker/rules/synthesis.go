package rules

import (
	"strings"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// synthesisMissingSourcesVisitor flags a define-synthesis entry with no
// `sources` query value in its metadata.
type synthesisMissingSourcesVisitor struct{}

func (synthesisMissingSourcesVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	if _, ok := metadataValue(e.Metadata, "sources"); !ok {
		ctx.Emit("synthesis definition has no sources query", e.FilePath, e.Loc, nil)
	}
}

// SynthesisMissingSources is the `synthesis-missing-sources` rule.
func SynthesisMissingSources() *checker.Rule {
	return &checker.Rule{
		Code:            "synthesis-missing-sources",
		Name:            "Synthesis missing sources",
		Description:     "A define-synthesis entry has no sources query in its metadata.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         synthesisMissingSourcesVisitor{},
	}
}

// synthesisMissingPromptVisitor flags a define-synthesis entry with no
// content at all (the prompt is the entry's content, per spec.md §4.D).
type synthesisMissingPromptVisitor struct{}

func (synthesisMissingPromptVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	if e.Content == nil || len(e.Content.Sections) == 0 {
		ctx.Emit("synthesis definition has no prompt content", e.FilePath, e.Loc, nil)
	}
}

// SynthesisMissingPrompt is the `synthesis-missing-prompt` rule.
func SynthesisMissingPrompt() *checker.Rule {
	return &checker.Rule{
		Code:            "synthesis-missing-prompt",
		Name:            "Synthesis missing prompt",
		Description:     "A define-synthesis entry has no content to use as its synthesis prompt.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         synthesisMissingPromptVisitor{},
	}
}

// synthesisEmptyQueryVisitor flags a sources query naming an entity but
// no conditions at all, which would select every instance of that
// entity workspace-wide — almost always a mistake for a synthesis meant
// to scope its sources.
type synthesisEmptyQueryVisitor struct{}

func (synthesisEmptyQueryVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v, ok := metadataValue(e.Metadata, "sources")
	if !ok || v.Kind != ast.ValueQuery {
		return
	}
	if len(v.Query.Conditions) == 0 {
		ctx.Emit("sources query has no conditions and selects every instance of its entity", e.FilePath, v.Location, map[string]any{"entity": v.Query.Entity})
	}
}

// SynthesisEmptyQuery is the `synthesis-empty-query` rule.
func SynthesisEmptyQuery() *checker.Rule {
	return &checker.Rule{
		Code:            "synthesis-empty-query",
		Name:            "Synthesis empty query",
		Description:     "A synthesis sources query has no where-conditions, selecting every instance of its entity.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         synthesisEmptyQueryVisitor{},
	}
}

// synthesisUnknownQueryEntityVisitor flags a sources query whose entity
// has no registered schema.
type synthesisUnknownQueryEntityVisitor struct{}

func (synthesisUnknownQueryEntityVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v, ok := metadataValue(e.Metadata, "sources")
	if !ok || v.Kind != ast.ValueQuery || v.Query.Entity == "" {
		return
	}
	if !ctx.Workspace.SchemaRegistry().Has(v.Query.Entity) {
		ctx.Emit("sources query's entity has no define-entity schema anywhere in the workspace", e.FilePath, v.Location, map[string]any{"entity": v.Query.Entity})
	}
}

// SynthesisUnknownQueryEntity is the `synthesis-unknown-query-entity` rule.
func SynthesisUnknownQueryEntity() *checker.Rule {
	return &checker.Rule{
		Code:            "synthesis-unknown-query-entity",
		Name:            "Synthesis unknown query entity",
		Description:     "A synthesis sources query names an entity with no define-entity schema anywhere in the workspace.",
		Category:        checker.CategorySchema,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Schemas: true},
		Visitor:         synthesisUnknownQueryEntityVisitor{},
	}
}

// actualizeUnresolvedTargetVisitor flags an actualize-synthesis entry
// whose target link has no matching define-synthesis entry anywhere in
// the workspace.
type actualizeUnresolvedTargetVisitor struct{}

func (actualizeUnresolvedTargetVisitor) VisitActualizeEntry(ctx *checker.VisitContext, e *ast.ActualizeEntry) {
	if !e.Header.Target.OK() || e.Header.Target.Value == "" {
		return
	}
	target := e.Header.Target.Value
	if _, ok := ctx.Workspace.LinkIndex().GetLinkDefinition(target); !ok {
		ctx.Emit("actualize target has no matching define-synthesis entry anywhere in the workspace", e.FilePath, e.Loc, map[string]any{"target": target})
	}
}

// ActualizeUnresolvedTarget is the `actualize-unresolved-target` rule.
func ActualizeUnresolvedTarget() *checker.Rule {
	return &checker.Rule{
		Code:            "actualize-unresolved-target",
		Name:            "Actualize unresolved target",
		Description:     "An actualize-synthesis entry's target link has no matching definition anywhere in the workspace.",
		Category:        checker.CategoryLink,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Links: true},
		Visitor:         actualizeUnresolvedTargetVisitor{},
	}
}

// actualizeMissingUpdatedVisitor flags an actualize-synthesis entry
// whose `checkpoint` metadata is missing or not of the form
// `ts:<timestamp>` / `git:<hash>` (spec.md §6).
type actualizeMissingUpdatedVisitor struct{}

func (actualizeMissingUpdatedVisitor) VisitActualizeEntry(ctx *checker.VisitContext, e *ast.ActualizeEntry) {
	v, ok := metadataValue(e.Metadata, "checkpoint")
	if !ok {
		ctx.Emit("actualize entry has no checkpoint", e.FilePath, e.Loc, nil)
		return
	}
	if v.Kind != ast.ValueQuoted || !validCheckpoint(v.Quoted) {
		ctx.Emit("actualize entry's checkpoint is not of the form ts:<timestamp> or git:<hash>", e.FilePath, v.Location, nil)
	}
}

func validCheckpoint(s string) bool {
	switch {
	case strings.HasPrefix(s, "ts:"):
		_, ok := ast.ParseTimestamp(strings.TrimPrefix(s, "ts:"))
		return ok
	case strings.HasPrefix(s, "git:"):
		return strings.TrimPrefix(s, "git:") != ""
	default:
		return false
	}
}

// ActualizeMissingUpdated is the `actualize-missing-updated` rule.
func ActualizeMissingUpdated() *checker.Rule {
	return &checker.Rule{
		Code:            "actualize-missing-updated",
		Name:            "Actualize missing updated checkpoint",
		Description:     "An actualize-synthesis entry has no valid ts:/git: updated checkpoint.",
		Category:        checker.CategoryMetadata,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         actualizeMissingUpdatedVisitor{},
	}
}
