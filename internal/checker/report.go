package checker

import "github.com/thalo-lang/thalo/internal/tpos"

// Diagnostic is one rule finding (spec.md §4.L). Location is
// block-relative at emission time inside a rule; Report stores it as
// handed in — the workspace has already remapped entry locations to
// file-absolute coordinates before the checker ever sees them (see
// internal/workspace's remapEntryLocations), so in practice every
// Diagnostic a host receives is already file-absolute.
type Diagnostic struct {
	Code     string
	Severity Severity
	Message  string
	File     string
	Location tpos.Location
	Data     map[string]any
}

// Report accumulates diagnostics emitted while running a rule set.
// Rules must not retain it beyond the call that receives it (spec.md
// §5).
type Report struct {
	diagnostics []Diagnostic
}

// Emit records one diagnostic. A SeverityOff diagnostic is dropped.
func (r *Report) Emit(d Diagnostic) {
	if d.Severity == SeverityOff {
		return
	}
	r.diagnostics = append(r.diagnostics, d)
}

// Diagnostics returns every diagnostic emitted so far, in emission order
// (spec.md §5 ordering guarantee 4: rule-registration order, stable
// within a rule).
func (r *Report) Diagnostics() []Diagnostic { return r.diagnostics }
