package rules

import (
	"fmt"
	"sort"

	"github.com/thalo-lang/thalo/internal/checker"
)

// unresolvedLinkVisitor flags every referenced link id with no
// definition anywhere in the workspace.
type unresolvedLinkVisitor struct{}

func (unresolvedLinkVisitor) AfterCheck(ctx *checker.VisitContext) {
	idx := ctx.Workspace.LinkIndex()
	ids := idx.AllReferencedIDs()
	sort.Strings(ids)
	for _, id := range ids {
		if _, ok := idx.GetLinkDefinition(id); ok {
			continue
		}
		for _, ref := range idx.GetReferences(id) {
			ctx.Emit(fmt.Sprintf("link %q has no matching definition anywhere in the workspace", id), ref.Entry.File(), ref.Location, map[string]any{"link": id})
		}
	}
}

// UnresolvedLink is the `unresolved-link` rule.
func UnresolvedLink() *checker.Rule {
	return &checker.Rule{
		Code:            "unresolved-link",
		Name:            "Unresolved link",
		Description:     "A link reference names an id with no definition anywhere in the workspace.",
		Category:        checker.CategoryLink,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Links: true},
		Visitor:         unresolvedLinkVisitor{},
	}
}

// duplicateLinkIDVisitor flags an explicit link id defined more than
// once anywhere in the workspace.
type duplicateLinkIDVisitor struct{}

func (duplicateLinkIDVisitor) AfterCheck(ctx *checker.VisitContext) {
	idx := ctx.Workspace.LinkIndex()
	ids := idx.AllDefinedIDs()
	sort.Strings(ids)
	for _, id := range ids {
		defs := idx.AllDefinitions(id)
		if len(defs) < 2 {
			continue
		}
		sort.Slice(defs, func(i, j int) bool { return defs[i].Entry.File() < defs[j].Entry.File() })
		for _, d := range defs {
			ctx.Emit(fmt.Sprintf("link id %q is defined more than once in the workspace", id), d.Entry.File(), d.Location, map[string]any{"link": id})
		}
	}
}

// DuplicateLinkID is the `duplicate-link-id` rule.
func DuplicateLinkID() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-link-id",
		Name:            "Duplicate link id",
		Description:     "An explicit link id is defined by more than one entry anywhere in the workspace.",
		Category:        checker.CategoryLink,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Links: true},
		Visitor:         duplicateLinkIDVisitor{},
	}
}
