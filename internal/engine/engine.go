// Package engine assembles the workspace, the checker, and the
// services package behind the single host-facing surface spec.md §6
// describes: addDocument/removeDocument/getDocument/allModels/
// applyEdit, schemaRegistry and linkIndex accessors, and check/
// checkDocument. checker.RunVisitors already lives one layer below
// workspace (internal/checker imports internal/workspace for
// VisitContext), so this facade — not workspace itself — is where the
// two finally meet.
package engine

import (
	"context"

	"github.com/thalo-lang/thalo/internal/checker"
	"github.com/thalo-lang/thalo/internal/checker/rules"
	"github.com/thalo-lang/thalo/internal/document"
	"github.com/thalo-lang/thalo/internal/linkindex"
	"github.com/thalo-lang/thalo/internal/schema"
	"github.com/thalo-lang/thalo/internal/semantic"
	"github.com/thalo-lang/thalo/internal/tlog"
	"github.com/thalo-lang/thalo/internal/workspace"
)

// Engine is the single entry point a host (editor extension, CLI,
// CI check) embeds. It owns one workspace and the canonical rule set.
type Engine struct {
	ws    *workspace.Workspace
	rules []*checker.Rule
	log   *tlog.Logger
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger overrides the engine's logger. A nil logger is a valid,
// silent default (tlog.Logger is nil-safe).
func WithLogger(log *tlog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithRules overrides the canonical rule set, e.g. to test a subset or
// to add a host-specific rule. Defaults to rules.All().
func WithRules(rs []*checker.Rule) Option {
	return func(e *Engine) { e.rules = rs }
}

// New constructs an Engine backed by a fresh, empty workspace.
func New(opts ...Option) *Engine {
	e := &Engine{rules: rules.All()}
	for _, opt := range opts {
		opt(e)
	}
	e.ws = workspace.New(e.log)
	return e
}

// AddDocument registers or replaces a document's full content.
func (e *Engine) AddDocument(source string, opts workspace.AddOptions) workspace.InvalidationResult {
	return e.ws.AddDocument(source, opts)
}

// RemoveDocument drops a document and its schema/link contributions.
func (e *Engine) RemoveDocument(path string) workspace.InvalidationResult {
	return e.ws.RemoveDocument(path)
}

// GetDocument returns the live document at path, if any.
func (e *Engine) GetDocument(path string) (*document.Document, bool) {
	return e.ws.GetDocument(path)
}

// AllModels returns every document's semantic model.
func (e *Engine) AllModels() []*semantic.Model {
	return e.ws.AllModels()
}

// ApplyEdit applies an incremental edit and reindexes the touched
// document.
func (e *Engine) ApplyEdit(path string, edit workspace.Edit) (workspace.InvalidationResult, error) {
	return e.ws.ApplyEdit(path, edit)
}

// SchemaRegistry exposes schemaRegistry.get/has (spec.md §6).
func (e *Engine) SchemaRegistry() *schema.Registry {
	return e.ws.SchemaRegistry()
}

// LinkIndex exposes linkIndex.getLinkDefinition/getReferences (spec.md
// §6).
func (e *Engine) LinkIndex() *linkindex.Index {
	return e.ws.LinkIndex()
}

// Workspace exposes the underlying workspace for services that need
// direct access (internal/services takes a *workspace.Workspace, not an
// *Engine, to stay decoupled from the facade).
func (e *Engine) Workspace() *workspace.Workspace {
	return e.ws
}

// Check runs every active rule over the whole workspace (spec.md §6
// check(config?)).
func (e *Engine) Check(ctx context.Context, cfg *checker.Config) checker.Result {
	idx := e.ws.BuildIndex(e.ws.AllModels())
	return checker.RunVisitors(ctx, e.rules, e.ws, idx, cfg)
}

// CheckDocument runs every document-eligible rule over a single
// document's entries (spec.md §6 checkDocument(path, config?)). Rules
// with workspace-scoped dependencies are skipped, matching
// checker.RunVisitorsOnModel's contract.
func (e *Engine) CheckDocument(ctx context.Context, path string, cfg *checker.Config) checker.Result {
	m := e.modelFor(path)
	if m == nil {
		return checker.Result{}
	}
	return checker.RunVisitorsOnModel(ctx, e.rules, e.ws, m, cfg)
}

func (e *Engine) modelFor(path string) *semantic.Model {
	for _, m := range e.ws.AllModels() {
		if m.File == path {
			return m
		}
	}
	return nil
}
