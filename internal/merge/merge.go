// Package merge implements the three-way merge driver (spec.md §4.M):
// keying entries on (canonical timestamp, entry kind, explicit link id)
// so a merge survives reordering and file moves the way object-identity
// diffing could not.
package merge

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/cst"
	"github.com/thalo-lang/thalo/internal/tlog"
	"github.com/thalo-lang/thalo/internal/tpos"
)

// ErrUnrecoverableParse is returned (wrapped with the offending side's
// name) when a side's source fails to produce any concrete syntax tree
// at all — spec.md §4.M step 1.
var ErrUnrecoverableParse = errors.New("side has unrecoverable parse errors outside any entry")

// ErrDuplicateKey is returned (wrapped with the offending side and key)
// when one side has two entries sharing a merge key — spec.md §4.M step
// 2: "the file cannot be merged cleanly."
var ErrDuplicateKey = errors.New("side has two entries with an identical merge key")

// Key identifies one entry across the three sides.
type Key struct {
	Timestamp string
	Kind      ast.EntryKind
	LinkID    string // empty when the entry has no explicit link
}

// Stats tallies how many keys fell into each merge outcome.
type Stats struct {
	Added      int
	Removed    int
	Modified   int
	Conflicted int
}

// Conflict is one unresolved key, with each side's text and location
// that disagreed (spec.md §5: "MergeConflict objects with location
// ranges on each side").
type Conflict struct {
	ID     string
	Key    Key
	Reason string

	BaseText   *string
	BaseLoc    *tpos.Location
	OursText   *string
	OursLoc    *tpos.Location
	TheirsText *string
	TheirsLoc  *tpos.Location
}

// Result is the outcome of a merge.
type Result struct {
	MergedSource string
	Conflicts    []Conflict
	Stats        Stats
	Cancelled    bool
}

type side struct {
	name   string
	source string
	order  map[Key]int // encounter order, for stable output among equal timestamps
	text   map[Key]string
	loc    map[Key]tpos.Location
}

// Merge performs a three-way merge of base/ours/theirs thalo sources.
func Merge(ctx context.Context, log *tlog.Logger, base, ours, theirs string) (*Result, error) {
	b, err := buildSide(log, "base", base)
	if err != nil {
		return nil, err
	}
	o, err := buildSide(log, "ours", ours)
	if err != nil {
		return nil, err
	}
	t, err := buildSide(log, "theirs", theirs)
	if err != nil {
		return nil, err
	}

	keys := unionKeys(b, o, t)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Timestamp != keys[j].Timestamp {
			return keys[i].Timestamp < keys[j].Timestamp
		}
		return encounterOrder(b, o, t, keys[i]) < encounterOrder(b, o, t, keys[j])
	})

	var stats Stats
	var conflicts []Conflict
	var kept []string

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return &Result{MergedSource: strings.Join(kept, "\n\n"), Conflicts: conflicts, Stats: stats, Cancelled: true}, nil
		}
		text, conflict, outcome := resolve(b, o, t, k)
		switch outcome {
		case outcomeUnchanged:
			kept = append(kept, text)
		case outcomeAdded:
			stats.Added++
			kept = append(kept, text)
		case outcomeRemoved:
			stats.Removed++
		case outcomeModified:
			stats.Modified++
			kept = append(kept, text)
		case outcomeConflict:
			stats.Conflicted++
			conflict.ID = uuid.NewString()
			conflicts = append(conflicts, *conflict)
			kept = append(kept, conflictMarker(conflict))
		}
	}

	merged := strings.Join(kept, "\n\n")
	if merged != "" {
		merged += "\n"
	}
	return &Result{MergedSource: merged, Conflicts: conflicts, Stats: stats}, nil
}

func buildSide(log *tlog.Logger, name, source string) (*side, error) {
	tree := cst.NewParser().Parse(source)
	if tree == nil || tree.Root == nil {
		return nil, errors.Wrapf(ErrUnrecoverableParse, "side %s", name)
	}
	entries := ast.ExtractDocument(tree, name)

	s := &side{
		name:   name,
		source: source,
		order:  map[Key]int{},
		text:   map[Key]string{},
		loc:    map[Key]tpos.Location{},
	}
	for i, e := range entries {
		k, ok := keyOf(e)
		if !ok {
			continue // ErrorEntry / unkeyable spans don't participate in merge identity
		}
		if _, exists := s.text[k]; exists {
			return nil, errors.Wrapf(ErrDuplicateKey, "side %s, key %+v", name, k)
		}
		s.order[k] = i
		s.text[k] = entryText(tree, e)
		s.loc[k] = e.Location()
	}
	if log != nil {
		log.Debugf("merge: side %s keyed %d entries", name, len(s.text))
	}
	return s, nil
}

func entryText(tree *cst.Tree, e ast.Entry) string {
	loc := e.Location()
	if loc.StartIndex < 0 || loc.EndIndex > len(tree.Source) || loc.StartIndex > loc.EndIndex {
		return ""
	}
	return strings.TrimRight(tree.Source[loc.StartIndex:loc.EndIndex], "\n")
}

func keyOf(e ast.Entry) (Key, bool) {
	switch v := e.(type) {
	case *ast.InstanceEntry:
		return tsKey(v.Header.Timestamp, e.EntryKind(), v.Header.ExplicitLink)
	case *ast.SchemaEntry:
		return tsKey(v.Header.Timestamp, e.EntryKind(), v.Header.ExplicitLink)
	case *ast.SynthesisEntry:
		link := &v.Header.LinkID
		return tsKey(v.Header.Timestamp, e.EntryKind(), link)
	case *ast.ActualizeEntry:
		link := &v.Header.Target
		return tsKey(v.Header.Timestamp, e.EntryKind(), link)
	default:
		return Key{}, false
	}
}

func tsKey(ts ast.FieldOrSyntaxError[ast.Timestamp], kind ast.EntryKind, link *ast.FieldOrSyntaxError[string]) (Key, bool) {
	if !ts.OK() {
		return Key{}, false
	}
	k := Key{Timestamp: ts.Value.Canonical(), Kind: kind}
	if link != nil && link.OK() {
		k.LinkID = link.Value
	}
	return k, true
}

func unionKeys(sides ...*side) []Key {
	seen := map[Key]bool{}
	var out []Key
	for _, s := range sides {
		for k := range s.text {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}

func encounterOrder(b, o, t *side, k Key) int {
	for _, s := range []*side{o, t, b} {
		if i, ok := s.order[k]; ok {
			return i
		}
	}
	return 0
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeAdded
	outcomeRemoved
	outcomeModified
	outcomeConflict
)

func resolve(b, o, t *side, k Key) (text string, conflict *Conflict, out outcome) {
	bText, bOK := b.text[k]
	oText, oOK := o.text[k]
	tText, tOK := t.text[k]

	switch {
	case !bOK && !oOK && tOK: // added by theirs only
		return tText, nil, outcomeAdded
	case !bOK && oOK && !tOK: // added by ours only
		return oText, nil, outcomeAdded
	case !bOK && oOK && tOK: // added by both
		if oText == tText {
			return oText, nil, outcomeAdded
		}
		return "", newConflict(k, "added differently on both sides", nil, &oText, &tText, nil, loc(o, k), loc(t, k)), outcomeConflict
	case bOK && oOK && tOK: // present on all three
		switch {
		case oText == bText && tText == bText:
			return bText, nil, outcomeUnchanged
		case oText == bText && tText != bText:
			return tText, nil, outcomeModified
		case oText != bText && tText == bText:
			return oText, nil, outcomeModified
		case oText == tText:
			return oText, nil, outcomeModified
		default:
			return "", newConflict(k, "modified differently on both sides", &bText, &oText, &tText, loc(b, k), loc(o, k), loc(t, k)), outcomeConflict
		}
	case bOK && oOK && !tOK: // deleted by theirs
		if oText == bText {
			return "", nil, outcomeRemoved
		}
		return "", newConflict(k, "modified on ours, deleted on theirs", &bText, &oText, nil, loc(b, k), loc(o, k), nil), outcomeConflict
	case bOK && !oOK && tOK: // deleted by ours
		if tText == bText {
			return "", nil, outcomeRemoved
		}
		return "", newConflict(k, "deleted on ours, modified on theirs", &bText, nil, &tText, loc(b, k), nil, loc(t, k)), outcomeConflict
	case bOK && !oOK && !tOK: // deleted by both
		return "", nil, outcomeRemoved
	default:
		return "", nil, outcomeUnchanged
	}
}

func loc(s *side, k Key) *tpos.Location {
	if l, ok := s.loc[k]; ok {
		return &l
	}
	return nil
}

func newConflict(k Key, reason string, baseText, oursText, theirsText *string, baseLoc, oursLoc, theirsLoc *tpos.Location) *Conflict {
	return &Conflict{
		Key: k, Reason: reason,
		BaseText: baseText, BaseLoc: baseLoc,
		OursText: oursText, OursLoc: oursLoc,
		TheirsText: theirsText, TheirsLoc: theirsLoc,
	}
}

func conflictMarker(c *Conflict) string {
	var b strings.Builder
	b.WriteString("<<<<<<< ours\n")
	if c.OursText != nil {
		b.WriteString(*c.OursText)
		b.WriteString("\n")
	}
	b.WriteString("=======\n")
	if c.TheirsText != nil {
		b.WriteString(*c.TheirsText)
		b.WriteString("\n")
	}
	b.WriteString(">>>>>>> theirs")
	return b.String()
}
