package rules

import "github.com/thalo-lang/thalo/internal/checker"

// All returns the canonical rule set (spec.md §4.L): every rule an
// implementation is expected to ship with, in a fixed registration
// order that Report.Diagnostics's emission-order guarantee is relative
// to.
func All() []*checker.Rule {
	return []*checker.Rule{
		// instance
		UnknownEntity(),
		MissingRequiredField(),
		UnknownField(),
		InvalidFieldType(),
		MissingRequiredSection(),
		UnknownSection(),
		CreateRequiresSection(),
		MissingTitle(),
		UpdateWithoutCreate(),
		TimestampOutOfOrder(),
		DuplicateTimestamp(),

		// schema
		DuplicateEntityDefinition(),
		AlterUndefinedEntity(),
		AlterBeforeDefine(),
		DuplicateFieldInSchema(),
		DuplicateSectionInSchema(),
		RemoveUndefinedField(),
		RemoveUndefinedSection(),
		InvalidDefaultValue(),
		SynthesisMissingSources(),
		SynthesisMissingPrompt(),
		SynthesisEmptyQuery(),
		SynthesisUnknownQueryEntity(),

		// link
		UnresolvedLink(),
		DuplicateLinkID(),
		ActualizeUnresolvedTarget(),

		// metadata
		DuplicateMetadataKey(),
		EmptyRequiredValue(),
		InvalidDateRangeValue(),
		ActualizeMissingUpdated(),

		// content
		DuplicateSectionHeading(),
		EmptySection(),
	}
}
