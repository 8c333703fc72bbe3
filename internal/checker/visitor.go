// Package checker implements the visitor driver (spec.md §4.K): the
// single-pass core that dispatches every entry in a workspace to every
// rule whose visitor matches that entry's kind, honoring per-rule
// effective severity and cooperative cancellation.
package checker

import (
	"context"
	"sort"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/semantic"
	"github.com/thalo-lang/thalo/internal/tpos"
	"github.com/thalo-lang/thalo/internal/workspace"
)

// VisitContext is handed to every rule hook. Emit is the only way a rule
// should produce a diagnostic: it stamps the active rule's code and
// effective severity automatically.
type VisitContext struct {
	Workspace *workspace.Workspace
	Index     *workspace.Index

	ruleCode string
	severity Severity
	report   *Report
}

// Emit records a diagnostic for the currently active rule.
func (c *VisitContext) Emit(message, file string, loc tpos.Location, data map[string]any) {
	c.report.Emit(Diagnostic{
		Code:     c.ruleCode,
		Severity: c.severity,
		Message:  message,
		File:     file,
		Location: loc,
		Data:     data,
	})
}

// Result is the outcome of a checker run.
type Result struct {
	Diagnostics []Diagnostic
	Cancelled   bool
}

// boundRule pairs a rule with its effective severity for one run, so the
// dispatch loop never has to re-resolve config per entry.
type boundRule struct {
	rule     *Rule
	severity Severity
}

func (b *boundRule) vctx(ws *workspace.Workspace, idx *workspace.Index, report *Report) *VisitContext {
	return &VisitContext{Workspace: ws, Index: idx, ruleCode: b.rule.Code, severity: b.severity, report: report}
}

// RunVisitors is the full workspace check (spec.md §4.K): beforeCheck on
// every rule, then every model (sorted by file for determinism), every
// entry in source order, dispatched to every
// matching rule, then afterCheck on every rule.
func RunVisitors(ctx context.Context, rules []*Rule, ws *workspace.Workspace, idx *workspace.Index, cfg *Config) Result {
	report := &Report{}
	active := activeRules(rules, cfg)

	for _, r := range active {
		if bc, ok := r.rule.Visitor.(BeforeChecker); ok {
			bc.BeforeCheck(r.vctx(ws, idx, report))
		}
	}

	models := ws.AllModels()
	sort.Slice(models, func(i, j int) bool { return models[i].File < models[j].File })

	for _, m := range models {
		if err := ctx.Err(); err != nil {
			return Result{Diagnostics: report.Diagnostics(), Cancelled: true}
		}
		if cancelled := visitModelEntries(ctx, active, m, ws, idx, report); cancelled {
			return Result{Diagnostics: report.Diagnostics(), Cancelled: true}
		}
	}

	for _, r := range active {
		if ac, ok := r.rule.Visitor.(AfterChecker); ok {
			ac.AfterCheck(r.vctx(ws, idx, report))
		}
	}
	return Result{Diagnostics: report.Diagnostics()}
}

// RunVisitorsOnModel runs every eligible rule over a single document's
// entries (document-scoped check). Rules with workspace-scoped
// dependencies are skipped, since this mode has no cross-document
// workspace index to give them. before/after hooks are skipped as they
// require full workspace data (spec.md §4.K).
func RunVisitorsOnModel(ctx context.Context, rules []*Rule, ws *workspace.Workspace, m *semantic.Model, cfg *Config) Result {
	active := documentEligible(activeRules(rules, cfg))
	report := &Report{}
	visitModelEntries(ctx, active, m, ws, nil, report)
	return Result{Diagnostics: report.Diagnostics()}
}

// RunVisitorsOnEntries runs every entry-scoped rule over an arbitrary
// entry slice (incremental check, e.g. "just the entries touched by the
// last edit"). before/after hooks are skipped.
func RunVisitorsOnEntries(ctx context.Context, rules []*Rule, entries []ast.Entry, cfg *Config) Result {
	active := entryEligible(activeRules(rules, cfg))
	report := &Report{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return Result{Diagnostics: report.Diagnostics(), Cancelled: true}
		}
		dispatchEntry(active, nil, nil, report, e)
	}
	return Result{Diagnostics: report.Diagnostics()}
}

func activeRules(rules []*Rule, cfg *Config) []*boundRule {
	out := make([]*boundRule, 0, len(rules))
	for _, r := range rules {
		sev := cfg.SeverityFor(r.Code, r.DefaultSeverity)
		if sev == SeverityOff {
			continue
		}
		out = append(out, &boundRule{rule: r, severity: sev})
	}
	return out
}

func documentEligible(rules []*boundRule) []*boundRule {
	out := make([]*boundRule, 0, len(rules))
	for _, r := range rules {
		if r.rule.Dependencies.Scope != ScopeWorkspace {
			out = append(out, r)
		}
	}
	return out
}

func entryEligible(rules []*boundRule) []*boundRule {
	out := make([]*boundRule, 0, len(rules))
	for _, r := range rules {
		if r.rule.Dependencies.Scope == ScopeEntry {
			out = append(out, r)
		}
	}
	return out
}

func visitModelEntries(ctx context.Context, rules []*boundRule, m *semantic.Model, ws *workspace.Workspace, idx *workspace.Index, report *Report) bool {
	for _, e := range m.Entries {
		if err := ctx.Err(); err != nil {
			return true
		}
		dispatchEntry(rules, ws, idx, report, e)
	}
	return false
}

func dispatchEntry(rules []*boundRule, ws *workspace.Workspace, idx *workspace.Index, report *Report, e ast.Entry) {
	for _, r := range rules {
		vctx := r.vctx(ws, idx, report)
		switch v := e.(type) {
		case *ast.InstanceEntry:
			if iv, ok := r.rule.Visitor.(InstanceVisitor); ok {
				iv.VisitInstanceEntry(vctx, v)
			}
		case *ast.SchemaEntry:
			if sv, ok := r.rule.Visitor.(SchemaVisitor); ok {
				sv.VisitSchemaEntry(vctx, v)
			}
		case *ast.SynthesisEntry:
			if sv, ok := r.rule.Visitor.(SynthesisVisitor); ok {
				sv.VisitSynthesisEntry(vctx, v)
			}
		case *ast.ActualizeEntry:
			if av, ok := r.rule.Visitor.(ActualizeVisitor); ok {
				av.VisitActualizeEntry(vctx, v)
			}
		}
	}
}
