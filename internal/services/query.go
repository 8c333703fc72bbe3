// Package services implements the host-facing query and navigation
// surfaces named in spec.md §4.N: query execution, find-definition/
// -references, semantic tokens, and the change tracker. Each service
// reads the workspace read-only, matching spec.md §5's "rules read-only"
// resource-sharing rule extended to these collaborators.
package services

import (
	"sort"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/workspace"
)

// QueryOptions parameterizes ExecuteQuery (spec.md §4.N, §12.5).
type QueryOptions struct {
	// AfterTimestamp, when non-empty, restricts results to instance
	// entries whose canonical timestamp strictly follows it — compared
	// as strings, consistent with spec.md §8's total-order law.
	AfterTimestamp string
}

// ExecuteQuery runs q against every instance entry in ws, returning
// matches sorted by canonical timestamp ascending (spec.md §4.N).
func ExecuteQuery(ws *workspace.Workspace, q ast.Query, opts QueryOptions) []*ast.InstanceEntry {
	var out []*ast.InstanceEntry
	for _, m := range ws.AllModels() {
		for _, ie := range m.InstanceEntries() {
			if !matches(ie, q) {
				continue
			}
			if opts.AfterTimestamp != "" {
				if !ie.Header.Timestamp.OK() || ie.Header.Timestamp.Value.Canonical() <= opts.AfterTimestamp {
					continue
				}
			}
			out = append(out, ie)
		}
	}
	sortByTimestamp(out)
	return out
}

// ExecuteQueries runs every query in qs and returns the union,
// deduplicated by (file, timestamp, kind, linkId?) per spec.md §3's
// entry-identity rule, sorted by canonical timestamp ascending.
func ExecuteQueries(ws *workspace.Workspace, qs []ast.Query, opts QueryOptions) []*ast.InstanceEntry {
	seen := map[entryKey]bool{}
	var out []*ast.InstanceEntry
	for _, q := range qs {
		for _, ie := range ExecuteQuery(ws, q, opts) {
			k := keyOf(ie)
			if seen[k] {
				continue
			}
			seen[k] = true
			out = append(out, ie)
		}
	}
	sortByTimestamp(out)
	return out
}

type entryKey struct {
	file      string
	timestamp string
	kind      ast.EntryKind
	linkID    string
}

func keyOf(ie *ast.InstanceEntry) entryKey {
	k := entryKey{file: ie.FilePath, kind: ie.EntryKind()}
	if ie.Header.Timestamp.OK() {
		k.timestamp = ie.Header.Timestamp.Value.Canonical()
	}
	if ie.Header.ExplicitLink != nil && ie.Header.ExplicitLink.OK() {
		k.linkID = ie.Header.ExplicitLink.Value
	}
	return k
}

func sortByTimestamp(entries []*ast.InstanceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		ti, iok := timestampOf(entries[i])
		tj, jok := timestampOf(entries[j])
		if !iok || !jok {
			return false
		}
		return ti < tj
	})
}

func timestampOf(ie *ast.InstanceEntry) (string, bool) {
	if !ie.Header.Timestamp.OK() {
		return "", false
	}
	return ie.Header.Timestamp.Value.Canonical(), true
}

func matches(ie *ast.InstanceEntry, q ast.Query) bool {
	if !ie.Header.Entity.OK() || ie.Header.Entity.Value != q.Entity {
		return false
	}
	for _, c := range q.Conditions {
		if !matchesCondition(ie, c) {
			return false
		}
	}
	return true
}

// matchesCondition implements the three ConditionKind forms SPEC_FULL.md
// §12.2 resolves `sources: <entity> where <cond> (and <cond>)*` into:
// `tag = <ident>` (case-sensitive against the entry's own tags),
// `link = ^<id>` (the entry's own explicit link), and
// `<field> = <value-literal>` (last-occurrence-wins metadata lookup,
// spec.md §4.D).
func matchesCondition(ie *ast.InstanceEntry, c ast.Condition) bool {
	switch c.Kind {
	case ast.ConditionTag:
		for _, t := range ie.Header.Tags {
			if t == c.TagName {
				return true
			}
		}
		return false
	case ast.ConditionLink:
		if c.Value == nil || c.Value.Kind != ast.ValueLink {
			return false
		}
		return ie.Header.ExplicitLink != nil && ie.Header.ExplicitLink.OK() && ie.Header.ExplicitLink.Value == c.Value.Link
	case ast.ConditionField:
		if c.Value == nil {
			return false
		}
		v, ok := metadataValue(ie.Metadata, c.FieldName)
		if !ok {
			return false
		}
		return valuesEqual(v, *c.Value)
	default:
		return false
	}
}

func metadataValue(metadata []ast.MetadataEntry, key string) (ast.ValueContent, bool) {
	var found ast.ValueContent
	ok := false
	for _, m := range metadata {
		if m.Key == key {
			found = m.Value
			ok = true
		}
	}
	return found, ok
}

// valuesEqual compares two ValueContent values structurally, ignoring
// Location/SyntaxErr noise — the same shape of comparison spec.md §8's
// idempotence law wants from go-cmp in tests, done inline here since the
// checker never needs a diff, only a boolean.
func valuesEqual(a, b ast.ValueContent) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ast.ValueQuoted:
		return a.Quoted == b.Quoted
	case ast.ValueLink:
		return a.Link == b.Link
	case ast.ValueDatetime:
		return a.Datetime.Canonical() == b.Datetime.Canonical()
	case ast.ValueNumber:
		return a.Number == b.Number
	case ast.ValueDateRange:
		return a.DateRange == b.DateRange
	case ast.ValueArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !valuesEqual(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
