// Package schema implements the schema registry (spec.md §4.G): folding
// a `define-entity` base with its ordered `alter-entity` deltas into one
// effective EntitySchema per name, cached until that entity's
// definitions change.
package schema

import (
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/thalo-lang/thalo/internal/ast"
)

// EntitySchema is the effective, folded schema for one entity name.
type EntitySchema struct {
	Name         string
	Fields       map[string]ast.FieldSchema
	FieldOrder   []string
	Sections     map[string]ast.SectionSchema
	SectionOrder []string

	// Defines lists every define-entity entry seen for this name, in
	// source-encounter order; resolution uses the earliest by canonical
	// timestamp, but duplicate-entity-definition (spec.md §4.L) needs all
	// of them to report.
	Defines []*ast.SchemaEntry
	Alters  []*ast.SchemaEntry
}

// Registry folds define-entity/alter-entity entries into effective
// schemas, caching each entity's resolution until invalidated.
type Registry struct {
	defines map[string][]*ast.SchemaEntry
	alters  map[string][]*ast.SchemaEntry
	cache   *lru.Cache[string, *EntitySchema]
}

// NewRegistry constructs an empty registry. cacheSize bounds the number
// of resolved entity schemas kept hot; it does not bound correctness —
// entries evicted from the LRU are simply recomputed on next Get.
func NewRegistry(cacheSize int) *Registry {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	c, _ := lru.New[string, *EntitySchema](cacheSize)
	return &Registry{
		defines: map[string][]*ast.SchemaEntry{},
		alters:  map[string][]*ast.SchemaEntry{},
		cache:   c,
	}
}

// AddSchemaEntry registers a define-entity or alter-entity entry,
// invalidating the cached resolution for its entity name.
func (r *Registry) AddSchemaEntry(e *ast.SchemaEntry) {
	name, ok := entityName(e)
	if !ok {
		return
	}
	if isDefine(e) {
		r.defines[name] = append(r.defines[name], e)
	} else {
		r.alters[name] = append(r.alters[name], e)
	}
	r.cache.Remove(name)
}

// RemoveSchemaEntry un-registers a previously added entry (by pointer
// identity), invalidating the cached resolution for its entity name.
func (r *Registry) RemoveSchemaEntry(e *ast.SchemaEntry) {
	name, ok := entityName(e)
	if !ok {
		return
	}
	if isDefine(e) {
		r.defines[name] = removePtr(r.defines[name], e)
	} else {
		r.alters[name] = removePtr(r.alters[name], e)
	}
	r.cache.Remove(name)
}

func removePtr(list []*ast.SchemaEntry, target *ast.SchemaEntry) []*ast.SchemaEntry {
	out := list[:0]
	for _, e := range list {
		if e != target {
			out = append(out, e)
		}
	}
	return out
}

func entityName(e *ast.SchemaEntry) (string, bool) {
	if !e.Header.EntityName.OK() {
		return "", false
	}
	return e.Header.EntityName.Value, true
}

func isDefine(e *ast.SchemaEntry) bool {
	return e.Header.Directive.OK() && e.Header.Directive.Value == ast.DirectiveDefineEntity
}

// Has reports whether any define-entity entry exists for name.
func (r *Registry) Has(name string) bool {
	return len(r.defines[name]) > 0
}

// Get resolves (and caches) the effective schema for name. Returns false
// if no define-entity entry exists for it.
func (r *Registry) Get(name string) (*EntitySchema, bool) {
	if !r.Has(name) {
		return nil, false
	}
	if cached, ok := r.cache.Get(name); ok {
		return cached, true
	}
	resolved := r.resolve(name)
	r.cache.Add(name, resolved)
	return resolved, true
}

// resolve folds defines[name] (earliest-timestamp wins) with
// alters[name] applied in ascending canonical timestamp order.
func (r *Registry) resolve(name string) *EntitySchema {
	defines := r.defines[name]
	base := earliestByTimestamp(defines)

	es := &EntitySchema{
		Name:     name,
		Fields:   map[string]ast.FieldSchema{},
		Sections: map[string]ast.SectionSchema{},
		Defines:  defines,
		Alters:   sortedByTimestamp(r.alters[name]),
	}
	if base != nil {
		applyFieldsAndSections(es, base)
	}
	for _, alter := range es.Alters {
		applyFieldsAndSections(es, alter)
		for _, removed := range alter.RemoveMetadataBlock {
			delete(es.Fields, removed)
			es.FieldOrder = removeName(es.FieldOrder, removed)
		}
		for _, removed := range alter.RemoveSectionsBlock {
			delete(es.Sections, removed)
			es.SectionOrder = removeName(es.SectionOrder, removed)
		}
	}
	return es
}

func applyFieldsAndSections(es *EntitySchema, e *ast.SchemaEntry) {
	for _, f := range e.MetadataBlock {
		if _, exists := es.Fields[f.Name]; !exists {
			es.FieldOrder = append(es.FieldOrder, f.Name)
		}
		es.Fields[f.Name] = f
	}
	for _, s := range e.SectionsBlock {
		if _, exists := es.Sections[s.Name]; !exists {
			es.SectionOrder = append(es.SectionOrder, s.Name)
		}
		es.Sections[s.Name] = s
	}
}

func removeName(order []string, name string) []string {
	out := order[:0]
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func timestampOf(e *ast.SchemaEntry) (ast.Timestamp, bool) {
	if !e.Header.Timestamp.OK() {
		return ast.Timestamp{}, false
	}
	return e.Header.Timestamp.Value, true
}

func earliestByTimestamp(entries []*ast.SchemaEntry) *ast.SchemaEntry {
	var best *ast.SchemaEntry
	var bestTS ast.Timestamp
	for _, e := range entries {
		ts, ok := timestampOf(e)
		if !ok {
			continue
		}
		if best == nil || ts.Compare(bestTS) < 0 {
			best, bestTS = e, ts
		}
	}
	return best
}

func sortedByTimestamp(entries []*ast.SchemaEntry) []*ast.SchemaEntry {
	out := make([]*ast.SchemaEntry, 0, len(entries))
	for _, e := range entries {
		if _, ok := timestampOf(e); ok {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := timestampOf(out[i])
		tj, _ := timestampOf(out[j])
		return ti.Compare(tj) < 0
	})
	return out
}
