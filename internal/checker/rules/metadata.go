package rules

import (
	"fmt"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// duplicateMetadataKeyVisitor flags every metadata entry sharing a key
// with an earlier one in the same header.
type duplicateMetadataKeyVisitor struct{}

func (duplicateMetadataKeyVisitor) check(ctx *checker.VisitContext, file string, metadata []ast.MetadataEntry) {
	seen := map[string]bool{}
	for _, m := range metadata {
		if seen[m.Key] {
			ctx.Emit(fmt.Sprintf("duplicate metadata key %q", m.Key), file, m.Location, map[string]any{"key": m.Key})
			continue
		}
		seen[m.Key] = true
	}
}

func (v duplicateMetadataKeyVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v duplicateMetadataKeyVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v duplicateMetadataKeyVisitor) VisitActualizeEntry(ctx *checker.VisitContext, e *ast.ActualizeEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}

// DuplicateMetadataKey is the `duplicate-metadata-key` rule.
func DuplicateMetadataKey() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-metadata-key",
		Name:            "Duplicate metadata key",
		Description:     "A metadata key appears more than once in one entry's header.",
		Category:        checker.CategoryMetadata,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         duplicateMetadataKeyVisitor{},
	}
}

// emptyRequiredValueVisitor flags quoted metadata values that are the
// empty string.
type emptyRequiredValueVisitor struct{}

func (emptyRequiredValueVisitor) check(ctx *checker.VisitContext, file string, metadata []ast.MetadataEntry) {
	for _, m := range metadata {
		if m.Value.Kind == ast.ValueQuoted && m.Value.Quoted == "" {
			ctx.Emit(fmt.Sprintf("metadata key %q has an empty value", m.Key), file, m.Value.Location, map[string]any{"key": m.Key})
		}
	}
}

func (v emptyRequiredValueVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v emptyRequiredValueVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v emptyRequiredValueVisitor) VisitActualizeEntry(ctx *checker.VisitContext, e *ast.ActualizeEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}

// EmptyRequiredValue is the `empty-required-value` rule.
func EmptyRequiredValue() *checker.Rule {
	return &checker.Rule{
		Code:            "empty-required-value",
		Name:            "Empty required value",
		Description:     "A quoted metadata value is the empty string.",
		Category:        checker.CategoryMetadata,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         emptyRequiredValueVisitor{},
	}
}

// invalidDateRangeValueVisitor flags date ranges whose end precedes
// their start.
type invalidDateRangeValueVisitor struct{}

func dateLess(a, b ast.DateParts) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	if a.Month != b.Month {
		return a.Month < b.Month
	}
	return a.Day < b.Day
}

func (invalidDateRangeValueVisitor) check(ctx *checker.VisitContext, file string, metadata []ast.MetadataEntry) {
	for _, m := range metadata {
		if m.Value.Kind == ast.ValueDateRange && dateLess(m.Value.DateRange.End, m.Value.DateRange.Start) {
			ctx.Emit(fmt.Sprintf("metadata key %q has a date range whose end precedes its start", m.Key), file, m.Value.Location, map[string]any{"key": m.Key})
		}
	}
}

func (v invalidDateRangeValueVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v invalidDateRangeValueVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}
func (v invalidDateRangeValueVisitor) VisitActualizeEntry(ctx *checker.VisitContext, e *ast.ActualizeEntry) {
	v.check(ctx, e.FilePath, e.Metadata)
}

// InvalidDateRangeValue is the `invalid-date-range-value` rule.
func InvalidDateRangeValue() *checker.Rule {
	return &checker.Rule{
		Code:            "invalid-date-range-value",
		Name:            "Invalid date range value",
		Description:     "A date range's end date precedes its start date.",
		Category:        checker.CategoryMetadata,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         invalidDateRangeValueVisitor{},
	}
}
