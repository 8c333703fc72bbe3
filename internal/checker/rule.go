package checker

import "github.com/thalo-lang/thalo/internal/ast"

// Category groups rules for reporting/documentation purposes (spec.md
// §4.L).
type Category string

const (
	CategoryInstance Category = "instance"
	CategoryLink     Category = "link"
	CategorySchema   Category = "schema"
	CategoryMetadata Category = "metadata"
	CategoryContent  Category = "content"
)

// Scope names the data a rule's dependencies reach beyond the entry it
// visits (spec.md §4.L).
type Scope string

const (
	ScopeEntry     Scope = "entry"
	ScopeDocument  Scope = "document"
	ScopeWorkspace Scope = "workspace"
)

// Dependencies declares what a rule reads beyond the single entry it
// visits, so the visitor driver can decide whether the rule is eligible
// for document-scoped or incremental runs.
type Dependencies struct {
	Scope   Scope
	Schemas bool
	Links   bool
}

// Rule is one checker rule: static metadata plus a Visitor implementing
// whichever of the optional hook interfaces below it needs. Visitor is
// `any` rather than a single fat interface because spec.md §4.K's
// RuleVisitor hooks are all optional — Go expresses "implements some
// subset of these methods" via separate small interfaces checked with a
// type assertion, not via no-op default methods.
type Rule struct {
	Code            string
	Name            string
	Description     string
	Category        Category
	DefaultSeverity Severity
	Dependencies    Dependencies
	Visitor         any
}

// BeforeChecker is implemented by visitors that need setup before any
// entry is visited.
type BeforeChecker interface {
	BeforeCheck(ctx *VisitContext)
}

// AfterChecker is implemented by visitors that need a final pass once
// every entry has been visited (e.g. cross-entry rules like
// duplicate-link-id).
type AfterChecker interface {
	AfterCheck(ctx *VisitContext)
}

// InstanceVisitor is implemented by visitors that inspect instance
// (create/update) entries.
type InstanceVisitor interface {
	VisitInstanceEntry(ctx *VisitContext, e *ast.InstanceEntry)
}

// SchemaVisitor is implemented by visitors that inspect schema
// (define-entity/alter-entity) entries.
type SchemaVisitor interface {
	VisitSchemaEntry(ctx *VisitContext, e *ast.SchemaEntry)
}

// SynthesisVisitor is implemented by visitors that inspect
// define-synthesis entries.
type SynthesisVisitor interface {
	VisitSynthesisEntry(ctx *VisitContext, e *ast.SynthesisEntry)
}

// ActualizeVisitor is implemented by visitors that inspect
// actualize-synthesis entries.
type ActualizeVisitor interface {
	VisitActualizeEntry(ctx *VisitContext, e *ast.ActualizeEntry)
}
