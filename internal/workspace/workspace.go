// Package workspace implements the workspace (spec.md §4.I) and workspace
// index (spec.md §4.J): the sole mutation gateway over a set of
// documents, their folded schema registry, and their unioned link index.
package workspace

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/document"
	"github.com/thalo-lang/thalo/internal/linkindex"
	"github.com/thalo-lang/thalo/internal/schema"
	"github.com/thalo-lang/thalo/internal/semantic"
	"github.com/thalo-lang/thalo/internal/tlog"
)

// InvalidationResult reports which downstream caches an operation
// touched (spec.md §4.I).
type InvalidationResult struct {
	EntriesChanged bool
	SchemasChanged bool
	LinksChanged   bool
}

// AddOptions parameterizes addDocument.
type AddOptions struct {
	Filename string
	FileType document.FileType // inferred from Filename's extension if empty
}

// Workspace owns every open document, the folded schema registry, and
// the workspace-wide link index. It is the sole mutation gateway (spec.md
// §4.I): no other component may register or remove documents.
type Workspace struct {
	documents map[string]*document.Document
	models    map[string]*semantic.Model

	schemaRegistry *schema.Registry
	linkIdx        *linkindex.Index

	log *tlog.Logger
}

// New constructs an empty workspace.
func New(log *tlog.Logger) *Workspace {
	return &Workspace{
		documents:      map[string]*document.Document{},
		models:         map[string]*semantic.Model{},
		schemaRegistry: schema.NewRegistry(0),
		linkIdx:        linkindex.New(),
		log:            log,
	}
}

// SchemaRegistry exposes the workspace's folded schema registry.
func (w *Workspace) SchemaRegistry() *schema.Registry { return w.schemaRegistry }

// LinkIndex exposes the workspace-wide link index.
func (w *Workspace) LinkIndex() *linkindex.Index { return w.linkIdx }

func inferFileType(filename string) document.FileType {
	if strings.EqualFold(filepath.Ext(filename), ".md") {
		return document.FileTypeMarkdown
	}
	return document.FileTypeThalo
}

// AddDocument ingests source under opts.Filename, building its document,
// semantic model, schema contributions, and link contributions in one
// pass.
func (w *Workspace) AddDocument(source string, opts AddOptions) InvalidationResult {
	fileType := opts.FileType
	if fileType == "" {
		fileType = inferFileType(opts.Filename)
	}
	doc := document.New(opts.Filename, source, fileType)
	w.documents[opts.Filename] = doc
	return w.reindex(opts.Filename, doc)
}

// RemoveDocument drops a document and all of its contributions to the
// schema registry and link index.
func (w *Workspace) RemoveDocument(path string) InvalidationResult {
	model, had := w.models[path]
	if !had {
		return InvalidationResult{}
	}
	for _, se := range model.SchemaEntries() {
		w.schemaRegistry.RemoveSchemaEntry(se)
	}
	w.linkIdx.RemoveDocument(path)
	delete(w.documents, path)
	delete(w.models, path)
	return InvalidationResult{EntriesChanged: true, SchemasChanged: len(model.SchemaEntries()) > 0, LinksChanged: true}
}

// GetDocument returns the document at path, if any.
func (w *Workspace) GetDocument(path string) (*document.Document, bool) {
	d, ok := w.documents[path]
	return d, ok
}

// AllModels returns every document's semantic model, in no particular
// order; callers that need deterministic iteration should sort by File.
func (w *Workspace) AllModels() []*semantic.Model {
	out := make([]*semantic.Model, 0, len(w.models))
	for _, m := range w.models {
		out = append(out, m)
	}
	return out
}

// Edit is the (row, col) edit shape the host-facing API takes.
type Edit struct {
	StartRow, StartCol int
	EndRow, EndCol     int
	NewText            string
}

// ApplyEdit applies a single edit to the document at path, reparsing only
// the affected blocks, then re-derives that document's semantic model and
// propagates the change to the schema registry and link index.
func (w *Workspace) ApplyEdit(path string, edit Edit) (InvalidationResult, error) {
	doc, ok := w.documents[path]
	if !ok {
		return InvalidationResult{}, errors.Errorf("workspace: no document open at %q", path)
	}
	// Un-register the document's prior contributions before reparsing,
	// since entries are reconstructed wholesale on every edit (spec.md
	// §3's lifecycle rule: identity is (file, timestamp, kind, linkId?),
	// never object identity).
	if prior, had := w.models[path]; had {
		for _, se := range prior.SchemaEntries() {
			w.schemaRegistry.RemoveSchemaEntry(se)
		}
	}
	doc.ApplyEdit(edit.StartRow, edit.StartCol, edit.EndRow, edit.EndCol, edit.NewText)
	return w.reindex(path, doc), nil
}

// ReplaceContent discards the document's text and blocks and rebuilds
// everything from scratch.
func (w *Workspace) ReplaceContent(path, newSource string) (InvalidationResult, error) {
	doc, ok := w.documents[path]
	if !ok {
		return InvalidationResult{}, errors.Errorf("workspace: no document open at %q", path)
	}
	if prior, had := w.models[path]; had {
		for _, se := range prior.SchemaEntries() {
			w.schemaRegistry.RemoveSchemaEntry(se)
		}
	}
	doc.ReplaceContent(newSource)
	return w.reindex(path, doc), nil
}

// reindex rebuilds path's semantic model from its document's current
// blocks and re-registers its schema/link contributions.
func (w *Workspace) reindex(path string, doc *document.Document) InvalidationResult {
	var entries []ast.Entry
	for _, b := range doc.Blocks() {
		for _, e := range ast.ExtractDocument(b.Tree, path) {
			remapEntryLocations(e, b.SourceMap)
			entries = append(entries, e)
		}
	}
	model := semantic.Build(path, entries)
	w.models[path] = model

	for _, se := range model.SchemaEntries() {
		w.schemaRegistry.AddSchemaEntry(se)
	}
	w.linkIdx.SetDocument(path, model.Links)

	w.log.Debugf("workspace: reindexed %s (%d entries)", path, len(entries))
	return InvalidationResult{EntriesChanged: true, SchemasChanged: len(model.SchemaEntries()) > 0, LinksChanged: true}
}

// Index is the workspace index (spec.md §4.J): a single O(E) pass over
// every model's entries, precomputed once per check so no rule has to
// scan entries itself.
type Index struct {
	DefineEntitiesByName    map[string][]*ast.SchemaEntry
	AlterEntitiesByName     map[string][]*ast.SchemaEntry
	InstanceEntriesByEntity map[string][]*ast.InstanceEntry
	SynthesisEntries        []*ast.SynthesisEntry
	ActualizeEntries        []*ast.ActualizeEntry
}

// BuildIndex computes the workspace index from every model currently
// held by w, in insertion order (spec.md §5 ordering guarantee 2)
// determined by the order parameter — callers that care about
// determinism pass models sorted by File.
func (w *Workspace) BuildIndex(models []*semantic.Model) *Index {
	idx := &Index{
		DefineEntitiesByName:    map[string][]*ast.SchemaEntry{},
		AlterEntitiesByName:     map[string][]*ast.SchemaEntry{},
		InstanceEntriesByEntity: map[string][]*ast.InstanceEntry{},
	}
	for _, m := range models {
		for _, se := range m.SchemaEntries() {
			if se.Header.Directive.OK() && se.Header.Directive.Value == ast.DirectiveDefineEntity {
				name := entityKey(se)
				idx.DefineEntitiesByName[name] = append(idx.DefineEntitiesByName[name], se)
			} else {
				name := entityKey(se)
				idx.AlterEntitiesByName[name] = append(idx.AlterEntitiesByName[name], se)
			}
		}
		for _, ie := range m.InstanceEntries() {
			name := ""
			if ie.Header.Entity.OK() {
				name = ie.Header.Entity.Value
			}
			idx.InstanceEntriesByEntity[name] = append(idx.InstanceEntriesByEntity[name], ie)
		}
		idx.SynthesisEntries = append(idx.SynthesisEntries, m.SynthesisEntries()...)
		idx.ActualizeEntries = append(idx.ActualizeEntries, m.ActualizeEntries()...)
	}
	return idx
}

func entityKey(se *ast.SchemaEntry) string {
	if se.Header.EntityName.OK() {
		return se.Header.EntityName.Value
	}
	return ""
}
