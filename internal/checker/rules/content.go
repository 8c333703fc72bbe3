package rules

import (
	"fmt"
	"strings"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// duplicateSectionHeadingVisitor flags a `# Header` repeated within one
// entry's content.
type duplicateSectionHeadingVisitor struct{}

func (duplicateSectionHeadingVisitor) check(ctx *checker.VisitContext, file string, content *ast.Content) {
	if content == nil {
		return
	}
	seen := map[string]bool{}
	for _, s := range content.Sections {
		if s.Header == "" {
			continue
		}
		if seen[s.Header] {
			ctx.Emit(fmt.Sprintf("duplicate content section %q", s.Header), file, s.HeaderLoc, map[string]any{"header": s.Header})
			continue
		}
		seen[s.Header] = true
	}
}

func (v duplicateSectionHeadingVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	v.check(ctx, e.FilePath, e.Content)
}
func (v duplicateSectionHeadingVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v.check(ctx, e.FilePath, e.Content)
}

// DuplicateSectionHeading is the `duplicate-section-heading` rule.
func DuplicateSectionHeading() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-section-heading",
		Name:            "Duplicate section heading",
		Description:     "The same content section header appears more than once in one entry.",
		Category:        checker.CategoryContent,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         duplicateSectionHeadingVisitor{},
	}
}

// emptySectionVisitor flags a content section whose body is blank.
type emptySectionVisitor struct{}

func (emptySectionVisitor) check(ctx *checker.VisitContext, file string, content *ast.Content) {
	if content == nil {
		return
	}
	for _, s := range content.Sections {
		if strings.TrimSpace(s.Body) == "" {
			loc := s.HeaderLoc
			if s.Header == "" {
				loc = s.BodyLoc
			}
			ctx.Emit(fmt.Sprintf("content section %q has no body", s.Header), file, loc, map[string]any{"header": s.Header})
		}
	}
}

func (v emptySectionVisitor) VisitInstanceEntry(ctx *checker.VisitContext, e *ast.InstanceEntry) {
	v.check(ctx, e.FilePath, e.Content)
}
func (v emptySectionVisitor) VisitSynthesisEntry(ctx *checker.VisitContext, e *ast.SynthesisEntry) {
	v.check(ctx, e.FilePath, e.Content)
}

// EmptySection is the `empty-section` rule.
func EmptySection() *checker.Rule {
	return &checker.Rule{
		Code:            "empty-section",
		Name:            "Empty section",
		Description:     "A content section has a header but no body text.",
		Category:        checker.CategoryContent,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeEntry},
		Visitor:         emptySectionVisitor{},
	}
}
