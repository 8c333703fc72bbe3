// Package rules implements the canonical rule set (spec.md §4.L): every
// rule the checker ships with, grouped by category, each grounded in the
// {code, name, description, category, defaultSeverity, dependencies,
// visitor} shape internal/checker defines.
package rules

import "github.com/thalo-lang/thalo/internal/ast"

// compatible reports whether a parsed value satisfies a declared field
// type. A value that already carries a SyntaxErr is treated as
// compatible here: the parse-level diagnostic already covers it, and
// piling a type mismatch on top would just be noise at the same
// location.
func compatible(v ast.ValueContent, t ast.TypeExpr) bool {
	if v.Kind == ast.ValueInvalid || v.SyntaxErr != nil {
		return true
	}
	if t.SyntaxErr != nil {
		return true
	}
	switch t.Kind {
	case ast.TypePrimitive:
		return compatiblePrimitive(v, t.Primitive)
	case ast.TypeLiteral:
		return v.Kind == ast.ValueQuoted && v.Quoted == t.Literal
	case ast.TypeUnion:
		for _, m := range t.Members {
			if compatible(v, m) {
				return true
			}
		}
		return false
	case ast.TypeArray:
		if v.Kind != ast.ValueArray {
			return false
		}
		if t.Element == nil {
			return true
		}
		for _, elem := range v.Array {
			if !compatible(elem, *t.Element) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func compatiblePrimitive(v ast.ValueContent, p ast.Primitive) bool {
	switch p {
	case ast.PrimitiveString:
		return v.Kind == ast.ValueQuoted
	case ast.PrimitiveNumber:
		return v.Kind == ast.ValueNumber
	case ast.PrimitiveDatetime:
		return v.Kind == ast.ValueDatetime
	case ast.PrimitiveDateRange:
		return v.Kind == ast.ValueDateRange
	case ast.PrimitiveLink:
		return v.Kind == ast.ValueLink
	default:
		return true
	}
}

// metadataValue returns the value for key, honoring spec.md §4.D's
// tie-break: the last occurrence wins for lookup.
func metadataValue(metadata []ast.MetadataEntry, key string) (ast.ValueContent, bool) {
	var found ast.ValueContent
	ok := false
	for _, m := range metadata {
		if m.Key == key {
			found, ok = m.Value, true
		}
	}
	return found, ok
}
