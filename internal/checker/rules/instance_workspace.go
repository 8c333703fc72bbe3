package rules

import (
	"sort"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/checker"
)

// updateWithoutCreateVisitor flags `update` instance entries whose
// explicit link id has no `create` entry at or before the update's
// timestamp anywhere in the workspace. This
// is scoped at the workspace level rather than per-document so that a
// create in one file and an update in another resolve correctly — see
// SPEC_FULL.md §12.4 for why this was chosen over document scoping.
// Entries with no explicit link id cannot be matched across files at
// all and are skipped.
type updateWithoutCreateVisitor struct{}

func (updateWithoutCreateVisitor) AfterCheck(ctx *checker.VisitContext) {
	byLink := map[string][]*ast.InstanceEntry{}
	for _, entries := range ctx.Index.InstanceEntriesByEntity {
		for _, e := range entries {
			if e.Header.ExplicitLink == nil || !e.Header.ExplicitLink.OK() || e.Header.ExplicitLink.Value == "" {
				continue
			}
			id := e.Header.ExplicitLink.Value
			byLink[id] = append(byLink[id], e)
		}
	}
	for _, group := range byLink {
		for _, e := range group {
			if !e.Header.Directive.OK() || e.Header.Directive.Value != ast.DirectiveUpdate {
				continue
			}
			if !e.Header.Timestamp.OK() {
				continue
			}
			if !hasEarlierOrEqualCreate(group, e.Header.Timestamp.Value) {
				ctx.Emit("update entry has no matching create entry at or before its timestamp anywhere in the workspace", e.FilePath, e.Loc, map[string]any{"link": e.Header.ExplicitLink.Value})
			}
		}
	}
}

func hasEarlierOrEqualCreate(group []*ast.InstanceEntry, ts ast.Timestamp) bool {
	for _, e := range group {
		if !e.Header.Directive.OK() || e.Header.Directive.Value != ast.DirectiveCreate {
			continue
		}
		if !e.Header.Timestamp.OK() {
			continue
		}
		if e.Header.Timestamp.Value.Compare(ts) <= 0 {
			return true
		}
	}
	return false
}

// UpdateWithoutCreate is the `update-without-create` rule.
func UpdateWithoutCreate() *checker.Rule {
	return &checker.Rule{
		Code:            "update-without-create",
		Name:            "Update without create",
		Description:     "An update entry's explicit link id has no create entry at or before the update's timestamp anywhere in the workspace.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace, Links: true},
		Visitor:         updateWithoutCreateVisitor{},
	}
}

// timestampOutOfOrderVisitor flags an instance entry whose timestamp
// precedes the entry immediately before it in source order, within the
// same document.
type timestampOutOfOrderVisitor struct{}

func (timestampOutOfOrderVisitor) AfterCheck(ctx *checker.VisitContext) {
	for _, m := range ctx.Workspace.AllModels() {
		instances := m.InstanceEntries()
		for i := 1; i < len(instances); i++ {
			prev, cur := instances[i-1], instances[i]
			if !prev.Header.Timestamp.OK() || !cur.Header.Timestamp.OK() {
				continue
			}
			if cur.Header.Timestamp.Value.Compare(prev.Header.Timestamp.Value) < 0 {
				ctx.Emit("instance entry's timestamp precedes the previous entry in this file", cur.FilePath, cur.Loc, nil)
			}
		}
	}
}

// TimestampOutOfOrder is the `timestamp-out-of-order` rule.
func TimestampOutOfOrder() *checker.Rule {
	return &checker.Rule{
		Code:            "timestamp-out-of-order",
		Name:            "Timestamp out of order",
		Description:     "An instance entry's canonical timestamp precedes the entry before it in the same file.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityWarning,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         timestampOutOfOrderVisitor{},
	}
}

// duplicateTimestampVisitor flags instance entries sharing a canonical
// timestamp with another instance entry, when neither carries an
// explicit link id (spec.md §4.L: identity for merge is (timestamp,
// kind, linkId?), so two entries with different link ids at the same
// timestamp are not a duplicate).
type duplicateTimestampVisitor struct{}

func (duplicateTimestampVisitor) AfterCheck(ctx *checker.VisitContext) {
	byStamp := map[string][]*ast.InstanceEntry{}
	for _, entries := range ctx.Index.InstanceEntriesByEntity {
		for _, e := range entries {
			if e.Header.ExplicitLink != nil && e.Header.ExplicitLink.OK() && e.Header.ExplicitLink.Value != "" {
				continue
			}
			if !e.Header.Timestamp.OK() {
				continue
			}
			stamp := e.Header.Timestamp.Value.Canonical()
			byStamp[stamp] = append(byStamp[stamp], e)
		}
	}
	for stamp, group := range byStamp {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].FilePath < group[j].FilePath })
		for _, e := range group {
			ctx.Emit("duplicate timestamp shared with another entry with no explicit link id", e.FilePath, e.Loc, map[string]any{"timestamp": stamp})
		}
	}
}

// DuplicateTimestamp is the `duplicate-timestamp` rule.
func DuplicateTimestamp() *checker.Rule {
	return &checker.Rule{
		Code:            "duplicate-timestamp",
		Name:            "Duplicate timestamp",
		Description:     "Two or more instance entries without explicit link ids share a canonical timestamp.",
		Category:        checker.CategoryInstance,
		DefaultSeverity: checker.SeverityError,
		Dependencies:    checker.Dependencies{Scope: checker.ScopeWorkspace},
		Visitor:         duplicateTimestampVisitor{},
	}
}
