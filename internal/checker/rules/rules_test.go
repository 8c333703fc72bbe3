package rules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/checker"
	"github.com/thalo-lang/thalo/internal/workspace"
)

func runOne(t *testing.T, rule *checker.Rule, src string) []checker.Diagnostic {
	t.Helper()
	w := workspace.New(nil)
	w.AddDocument(src, workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())
	res := checker.RunVisitors(context.Background(), []*checker.Rule{rule}, w, idx, nil)
	return res.Diagnostics
}

func codes(diags []checker.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestUnknownEntityFlagsUnregisteredEntity(t *testing.T) {
	diags := runOne(t, UnknownEntity(), "2026-01-01T00:00Z create ghost\n  x: 1\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "unknown-entity", diags[0].Code)
}

func TestUnknownEntityAllowsRegisteredEntity(t *testing.T) {
	diags := runOne(t, UnknownEntity(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z create lore
  subject: ^self
`)
	assert.Empty(t, diags)
}

func TestMissingRequiredFieldFlagsAbsentField(t *testing.T) {
	diags := runOne(t, MissingRequiredField(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z create lore
  other: "x"
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "subject", diags[0].Data["field"])
}

func TestMissingRequiredFieldHonorsDefaultValue(t *testing.T) {
	diags := runOne(t, MissingRequiredField(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link = ^self

2026-01-02T00:00Z create lore
`)
	assert.Empty(t, diags)
}

func TestUnknownFieldFlagsUndeclaredKey(t *testing.T) {
	diags := runOne(t, UnknownField(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z create lore
  subject: ^self
  mystery: "1"
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "mystery", diags[0].Data["field"])
}

func TestInvalidFieldTypeFlagsTypeMismatch(t *testing.T) {
	diags := runOne(t, InvalidFieldType(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z create lore
  subject: "not-a-link"
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "invalid-field-type", diags[0].Code)
}

func TestMissingRequiredSectionFlagsAbsentSection(t *testing.T) {
	diags := runOne(t, MissingRequiredSection(), `2026-01-01T00:00Z define-entity lore
  # Sections
  Content

2026-01-02T00:00Z create lore

  # Other
  hi
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "Content", diags[0].Data["section"])
}

func TestUnknownSectionFlagsUndeclaredHeader(t *testing.T) {
	diags := runOne(t, UnknownSection(), `2026-01-01T00:00Z define-entity lore
  # Sections
  Content

2026-01-02T00:00Z create lore

  # Content
  hi

  # Extra
  bye
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "Extra", diags[0].Data["section"])
}

func TestCreateRequiresSectionFlagsEmptyCreate(t *testing.T) {
	diags := runOne(t, CreateRequiresSection(), "2026-01-01T00:00Z create lore\n  x: 1\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "create-requires-section", diags[0].Code)
}

func TestMissingTitleFlagsEntryWithNoTitle(t *testing.T) {
	diags := runOne(t, MissingTitle(), "2026-01-01T00:00Z create lore\n  x: 1\n")
	require.Len(t, diags, 1)
}

func TestMissingTitleAllowsTitledEntry(t *testing.T) {
	diags := runOne(t, MissingTitle(), "2026-01-01T00:00Z create lore \"Title\"\n  x: 1\n")
	assert.Empty(t, diags)
}

func TestUpdateWithoutCreateFlagsOrphanUpdate(t *testing.T) {
	diags := runOne(t, UpdateWithoutCreate(), "2026-01-02T00:00Z update lore ^e1\n  x: 1\n")
	require.Len(t, diags, 1)
	assert.Equal(t, "e1", diags[0].Data["link"])
}

func TestUpdateWithoutCreateAllowsUpdateAfterCreate(t *testing.T) {
	diags := runOne(t, UpdateWithoutCreate(), "2026-01-01T00:00Z create lore ^e1\n  x: 1\n\n2026-01-02T00:00Z update lore ^e1\n  x: 2\n")
	assert.Empty(t, diags)
}

func TestUpdateWithoutCreateFlagsUpdateBeforeCreate(t *testing.T) {
	diags := runOne(t, UpdateWithoutCreate(), "2026-01-01T00:00Z update lore ^e1\n  x: 1\n\n2026-01-02T00:00Z create lore ^e1\n  x: 2\n")
	require.Len(t, diags, 1)
}

func TestTimestampOutOfOrderFlagsRegression(t *testing.T) {
	diags := runOne(t, TimestampOutOfOrder(), "2026-01-05T00:00Z create lore\n  x: 1\n\n2026-01-02T00:00Z create lore\n  x: 2\n")
	require.Len(t, diags, 1)
}

func TestDuplicateTimestampFlagsSharedStampWithoutLinks(t *testing.T) {
	diags := runOne(t, DuplicateTimestamp(), "2026-01-01T00:00Z create lore\n  x: 1\n\n2026-01-01T00:00Z create lore\n  x: 2\n")
	require.Len(t, diags, 2)
}

func TestDuplicateTimestampIgnoresDistinctLinkIDs(t *testing.T) {
	diags := runOne(t, DuplicateTimestamp(), "2026-01-01T00:00Z create lore ^a\n  x: 1\n\n2026-01-01T00:00Z create lore ^b\n  x: 2\n")
	assert.Empty(t, diags)
}

func TestDuplicateEntityDefinitionFlagsSecondDefine(t *testing.T) {
	diags := runOne(t, DuplicateEntityDefinition(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z define-entity lore
  # Metadata
  subject: link
`)
	require.Len(t, diags, 2)
}

func TestAlterUndefinedEntityFlagsOrphanAlter(t *testing.T) {
	diags := runOne(t, AlterUndefinedEntity(), `2026-01-01T00:00Z alter-entity lore
  # Metadata
  subject: link
`)
	require.Len(t, diags, 1)
}

func TestAlterBeforeDefineFlagsEarlyAlter(t *testing.T) {
	diags := runOne(t, AlterBeforeDefine(), `2026-01-05T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-01T00:00Z alter-entity lore
  # Metadata
  other: string
`)
	require.Len(t, diags, 1)
}

func TestDuplicateFieldInSchemaFlagsRepeatedName(t *testing.T) {
	diags := runOne(t, DuplicateFieldInSchema(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link
  subject: link
`)
	require.Len(t, diags, 1)
}

func TestRemoveUndefinedFieldFlagsNeverDeclaredName(t *testing.T) {
	diags := runOne(t, RemoveUndefinedField(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  subject: link

2026-01-02T00:00Z alter-entity lore
  # Remove Metadata
  ghost
`)
	require.Len(t, diags, 1)
}

func TestInvalidDefaultValueFlagsTypeMismatchedDefault(t *testing.T) {
	diags := runOne(t, InvalidDefaultValue(), `2026-01-01T00:00Z define-entity lore
  # Metadata
  count: number = "not-a-number"
`)
	require.Len(t, diags, 1)
}

func TestSynthesisMissingSourcesFlagsAbsentQuery(t *testing.T) {
	diags := runOne(t, SynthesisMissingSources(), "2026-01-01T00:00Z define-synthesis \"P\" ^p\n  # Prompt\n  hi\n")
	require.Len(t, diags, 1)
}

func TestSynthesisEmptyQueryFlagsUnconditionalQuery(t *testing.T) {
	diags := runOne(t, SynthesisEmptyQuery(), "2026-01-01T00:00Z define-synthesis \"P\" ^p\n  sources: lore\n\n  # Prompt\n  hi\n")
	require.Len(t, diags, 1)
}

func TestActualizeMissingUpdatedFlagsMissingCheckpoint(t *testing.T) {
	diags := runOne(t, ActualizeMissingUpdated(), "2026-01-01T00:00Z actualize-synthesis ^p\n")
	require.Len(t, diags, 1)
}

func TestActualizeMissingUpdatedAllowsValidTimestampCheckpoint(t *testing.T) {
	diags := runOne(t, ActualizeMissingUpdated(), "2026-01-01T00:00Z actualize-synthesis ^p\n  checkpoint: \"ts:2026-01-01T00:00Z\"\n")
	assert.Empty(t, diags)
}

func TestActualizeMissingUpdatedFlagsMalformedCheckpoint(t *testing.T) {
	diags := runOne(t, ActualizeMissingUpdated(), "2026-01-01T00:00Z actualize-synthesis ^p\n  checkpoint: \"nope\"\n")
	require.Len(t, diags, 1)
}

func TestDuplicateMetadataKeyFlagsRepeatedKey(t *testing.T) {
	diags := runOne(t, DuplicateMetadataKey(), "2026-01-01T00:00Z create lore\n  x: \"1\"\n  x: \"2\"\n")
	require.Len(t, diags, 1)
}

func TestEmptyRequiredValueFlagsBlankQuotedValue(t *testing.T) {
	diags := runOne(t, EmptyRequiredValue(), "2026-01-01T00:00Z create lore\n  x: \"\"\n")
	require.Len(t, diags, 1)
}

func TestInvalidDateRangeValueFlagsReversedRange(t *testing.T) {
	diags := runOne(t, InvalidDateRangeValue(), "2026-01-01T00:00Z create lore\n  x: 2026-06-01..2026-01-01\n")
	require.Len(t, diags, 1)
}

func TestDuplicateSectionHeadingFlagsRepeatedHeader(t *testing.T) {
	diags := runOne(t, DuplicateSectionHeading(), "2026-01-01T00:00Z create lore\n\n  # A\n  one\n\n  # A\n  two\n")
	require.Len(t, diags, 1)
}

func TestEmptySectionFlagsBlankBody(t *testing.T) {
	diags := runOne(t, EmptySection(), "2026-01-01T00:00Z create lore\n\n  # A\n")
	require.Len(t, diags, 1)
}

func TestUnresolvedLinkFlagsDanglingReference(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore\n  subject: ^nowhere\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())
	res := checker.RunVisitors(context.Background(), []*checker.Rule{UnresolvedLink()}, w, idx, nil)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "nowhere", res.Diagnostics[0].Data["link"])
}

func TestDuplicateLinkIDFlagsSharedExplicitID(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z create lore ^e1\n  x: 1\n\n2026-01-02T00:00Z create lore ^e1\n  x: 2\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())
	res := checker.RunVisitors(context.Background(), []*checker.Rule{DuplicateLinkID()}, w, idx, nil)
	assert.Len(t, res.Diagnostics, 2)
}

func TestActualizeUnresolvedTargetFlagsMissingSynthesis(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument("2026-01-01T00:00Z actualize-synthesis ^ghost\n  checkpoint: \"ts:2026-01-01T00:00Z\"\n", workspace.AddOptions{Filename: "a.thalo"})
	idx := w.BuildIndex(w.AllModels())
	res := checker.RunVisitors(context.Background(), []*checker.Rule{ActualizeUnresolvedTarget()}, w, idx, nil)
	require.Len(t, res.Diagnostics, 1)
}

func TestAllReturnsEveryRuleWithUniqueCodes(t *testing.T) {
	seen := map[string]bool{}
	for _, r := range All() {
		require.NotEmpty(t, r.Code)
		assert.False(t, seen[r.Code], "duplicate rule code %q", r.Code)
		seen[r.Code] = true
	}
	assert.NotEmpty(t, seen)
}
