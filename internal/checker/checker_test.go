package checker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/tpos"
	"github.com/thalo-lang/thalo/internal/workspace"
)

type recordingVisitor struct {
	seen []string
}

func (v *recordingVisitor) VisitInstanceEntry(ctx *VisitContext, e *ast.InstanceEntry) {
	v.seen = append(v.seen, e.FilePath)
	ctx.Emit("saw instance entry", e.FilePath, e.Loc, nil)
}

func TestRunVisitorsEmitsAtEffectiveSeverity(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())

	v := &recordingVisitor{}
	rule := &Rule{Code: "test-rule", DefaultSeverity: SeverityWarning, Dependencies: Dependencies{Scope: ScopeEntry}, Visitor: v}

	res := RunVisitors(context.Background(), []*Rule{rule}, w, idx, nil)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, SeverityWarning, res.Diagnostics[0].Severity)
	assert.Equal(t, "test-rule", res.Diagnostics[0].Code)
	assert.Equal(t, []string{"a.thalo"}, v.seen)
}

func TestRunVisitorsHonorsConfigSeverityOverride(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())

	rule := &Rule{Code: "test-rule", DefaultSeverity: SeverityWarning, Dependencies: Dependencies{Scope: ScopeEntry}, Visitor: &recordingVisitor{}}
	cfg := &Config{Rules: map[string]Severity{"test-rule": SeverityError}}

	res := RunVisitors(context.Background(), []*Rule{rule}, w, idx, cfg)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, SeverityError, res.Diagnostics[0].Severity)
}

func TestRunVisitorsDropsSeverityOffRule(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())

	rule := &Rule{Code: "test-rule", DefaultSeverity: SeverityOff, Dependencies: Dependencies{Scope: ScopeEntry}, Visitor: &recordingVisitor{}}
	res := RunVisitors(context.Background(), []*Rule{rule}, w, idx, nil)
	assert.Empty(t, res.Diagnostics)
}

func TestRunVisitorsOnModelSkipsWorkspaceScopedRules(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n", workspace.AddOptions{Filename: "a.thalo"})
	m := w.AllModels()[0]

	entryScoped := &Rule{Code: "entry-rule", DefaultSeverity: SeverityWarning, Dependencies: Dependencies{Scope: ScopeEntry}, Visitor: &recordingVisitor{}}
	wsScoped := &Rule{Code: "ws-rule", DefaultSeverity: SeverityWarning, Dependencies: Dependencies{Scope: ScopeWorkspace}, Visitor: &recordingVisitor{}}

	res := RunVisitorsOnModel(context.Background(), []*Rule{entryScoped, wsScoped}, w, m, nil)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "entry-rule", res.Diagnostics[0].Code)
}

func TestRunVisitorsCancelsOnContext(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n\n2026-01-02T00:00Z create lore\n  x: 2\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rule := &Rule{Code: "test-rule", DefaultSeverity: SeverityWarning, Dependencies: Dependencies{Scope: ScopeEntry}, Visitor: &recordingVisitor{}}
	res := RunVisitors(ctx, []*Rule{rule}, w, idx, nil)
	assert.True(t, res.Cancelled)
}

type beforeAfterVisitor struct {
	before, after bool
}

func (v *beforeAfterVisitor) BeforeCheck(ctx *VisitContext) { v.before = true }
func (v *beforeAfterVisitor) AfterCheck(ctx *VisitContext)  { v.after = true }

func TestRunVisitorsCallsBeforeAndAfterHooks(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  x: 1\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())

	v := &beforeAfterVisitor{}
	rule := &Rule{Code: "hook-rule", DefaultSeverity: SeverityWarning, Visitor: v}
	RunVisitors(context.Background(), []*Rule{rule}, w, idx, nil)
	assert.True(t, v.before)
	assert.True(t, v.after)
}

func TestReportEmitDropsSeverityOff(t *testing.T) {
	r := &Report{}
	r.Emit(Diagnostic{Code: "x", Severity: SeverityOff, Location: tpos.Zero})
	assert.Empty(t, r.Diagnostics())
}

func TestConfigSeverityForFallsBackToDefault(t *testing.T) {
	var cfg *Config
	assert.Equal(t, SeverityWarning, cfg.SeverityFor("anything", SeverityWarning))

	cfg = &Config{Rules: map[string]Severity{"a": SeverityError}}
	assert.Equal(t, SeverityError, cfg.SeverityFor("a", SeverityWarning))
	assert.Equal(t, SeverityWarning, cfg.SeverityFor("b", SeverityWarning))
}
