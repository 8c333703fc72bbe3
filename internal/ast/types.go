// Package ast projects the concrete syntax tree (internal/cst) onto the
// typed abstract syntax tree spec.md §4.D describes: a closed Entry sum
// type, with FieldOrSyntaxError[F] carrying either a parsed value or a
// structured error so partial parses stay usable by every layer above.
package ast

import "github.com/thalo-lang/thalo/internal/tpos"

// SyntaxError is a structured parse failure attached to one AST position.
// Never thrown (spec.md §7.1): always returned as data.
type SyntaxError struct {
	Code         string
	Message      string
	OriginalText string
	Location     tpos.Location
}

// FieldOrSyntaxError carries either a parsed F or a SyntaxError, so a
// header field that fails to parse doesn't poison extraction of its
// siblings (spec.md §4.D).
type FieldOrSyntaxError[F any] struct {
	Value F
	Err   *SyntaxError
}

// OK reports whether Value is usable (Err is nil).
func (f FieldOrSyntaxError[F]) OK() bool { return f.Err == nil }

// Ok constructs a successful FieldOrSyntaxError.
func Ok[F any](v F) FieldOrSyntaxError[F] { return FieldOrSyntaxError[F]{Value: v} }

// ErrOf constructs a failed FieldOrSyntaxError.
func ErrOf[F any](e *SyntaxError) FieldOrSyntaxError[F] { return FieldOrSyntaxError[F]{Err: e} }

// EntryKind identifies which Entry variant a value holds.
type EntryKind string

const (
	EntryInstance   EntryKind = "instance_entry"
	EntrySchema     EntryKind = "schema_entry"
	EntrySynthesis  EntryKind = "synthesis_entry"
	EntryActualize  EntryKind = "actualize_entry"
	EntryError      EntryKind = "error_entry"
)

// Entry is the closed sum type every top-level Thalo construct belongs to.
type Entry interface {
	EntryKind() EntryKind
	Location() tpos.Location
	File() string
}

// Directive identifies the keyword following an entry's timestamp.
type Directive string

const (
	DirectiveCreate             Directive = "create"
	DirectiveUpdate             Directive = "update"
	DirectiveDefineEntity       Directive = "define-entity"
	DirectiveAlterEntity        Directive = "alter-entity"
	DirectiveDefineSynthesis    Directive = "define-synthesis"
	DirectiveActualizeSynthesis Directive = "actualize-synthesis"
)

// DateParts is the decomposed calendar date of a Timestamp.
type DateParts struct {
	Year, Month, Day int
}

// TimeParts is the decomposed wall-clock time of a Timestamp.
type TimeParts struct {
	Hour, Minute int
}

// Timezone is either UTC ("Z") or a signed minute offset from UTC.
type Timezone struct {
	IsUTC         bool
	OffsetMinutes int // signed; meaningless when IsUTC
}

// Timestamp is the decomposed form of a Thalo timestamp literal.
type Timestamp struct {
	Date     DateParts
	Time     TimeParts
	Timezone Timezone
}

// MetadataKey/Value pair, order-preserving (spec.md §4.D tie-break rule:
// duplicates are all retained, last occurrence wins for lookup).
type MetadataEntry struct {
	Key      string
	KeyLoc   tpos.Location
	Value    ValueContent
	Location tpos.Location
}

// ValueKind identifies which variant of the ValueContent sum is populated.
type ValueKind string

const (
	ValueQuoted   ValueKind = "quoted_value"
	ValueLink     ValueKind = "link_value"
	ValueDatetime ValueKind = "datetime_value"
	ValueNumber   ValueKind = "number_value"
	ValueDateRange ValueKind = "date_range"
	ValueQuery    ValueKind = "query_value"
	ValueArray    ValueKind = "value_array"
	ValueInvalid  ValueKind = "invalid"
)

// DateRange is an inclusive [Start, End] pair of calendar dates.
type DateRange struct {
	Start DateParts
	End   DateParts
}

// ConditionKind identifies which form a Query condition takes.
type ConditionKind string

const (
	ConditionTag   ConditionKind = "tag"
	ConditionLink  ConditionKind = "link"
	ConditionField ConditionKind = "field"
)

// Condition is one clause of a Query's `where` list.
type Condition struct {
	Kind      ConditionKind
	TagName   string     // set when Kind == ConditionTag
	FieldName string     // set when Kind == ConditionField
	Value     *ValueContent // set when Kind is ConditionLink or ConditionField
	Location  tpos.Location
}

// Query is the structured form of `<entity> where <cond> (and <cond>)*`.
type Query struct {
	Entity     string
	Conditions []Condition
}

// ValueContent is the normalized sum of every metadata value shape
// spec.md §4.D names.
type ValueContent struct {
	Kind      ValueKind
	Quoted    string
	Link      string
	Datetime  Timestamp
	Number    float64
	DateRange DateRange
	Query     Query
	Array     []ValueContent

	SyntaxErr *SyntaxError
	Location  tpos.Location
}

// TypeKind identifies which variant of TypeExpr is populated.
type TypeKind string

const (
	TypePrimitive TypeKind = "primitive"
	TypeLiteral   TypeKind = "literal"
	TypeUnion     TypeKind = "union"
	TypeArray     TypeKind = "array"
)

// Primitive names the built-in field-value primitives.
type Primitive string

const (
	PrimitiveString   Primitive = "string"
	PrimitiveNumber   Primitive = "number"
	PrimitiveDatetime Primitive = "datetime"
	PrimitiveDateRange Primitive = "daterange"
	PrimitiveLink     Primitive = "link"
)

// TypeExpr is a schema field's declared type (spec.md §3): a primitive, a
// quoted literal, a union of non-union members, or an array of a
// non-array element. The grammar forbids nesting arrays-of-arrays and
// unions-of-unions; this type encodes that by construction (Union/Array
// members are never themselves Union/Array after a well-formed parse).
type TypeExpr struct {
	Kind      TypeKind
	Primitive Primitive
	Literal   string
	Members   []TypeExpr
	Element   *TypeExpr

	SyntaxErr *SyntaxError
	Location  tpos.Location
}

// FieldSchema is one declared field of an entity schema.
type FieldSchema struct {
	Name         string
	Optional     bool
	Type         TypeExpr
	DefaultValue *ValueContent
	Description  *string
	Location     tpos.Location
}

// SectionSchema is one declared content section of an entity schema.
type SectionSchema struct {
	Name        string
	Optional    bool
	Description *string
	Location    tpos.Location
}

// ContentSection is one `# Header` + body pair inside an entry's content.
type ContentSection struct {
	Header    string
	HeaderLoc tpos.Location
	Body      string
	BodyLoc   tpos.Location
}

// Content is the markdown sub-tree carried by instance and synthesis
// entries.
type Content struct {
	Sections []ContentSection
	Location tpos.Location
}

// --- entry variants ---

// InstanceHeader is the header of a create/update entry.
type InstanceHeader struct {
	Timestamp    FieldOrSyntaxError[Timestamp]
	Directive    FieldOrSyntaxError[Directive]
	Entity       FieldOrSyntaxError[string]
	Title        *FieldOrSyntaxError[string]
	ExplicitLink *FieldOrSyntaxError[string]
	Tags         []string
}

// InstanceEntry is a create/update entry.
type InstanceEntry struct {
	Header   InstanceHeader
	Metadata []MetadataEntry
	Content  *Content
	FilePath string
	Loc      tpos.Location
}

func (e *InstanceEntry) EntryKind() EntryKind    { return EntryInstance }
func (e *InstanceEntry) Location() tpos.Location { return e.Loc }
func (e *InstanceEntry) File() string            { return e.FilePath }

// SchemaHeader is the header of a define-entity/alter-entity entry.
type SchemaHeader struct {
	Timestamp    FieldOrSyntaxError[Timestamp]
	Directive    FieldOrSyntaxError[Directive]
	EntityName   FieldOrSyntaxError[string]
	Title        *FieldOrSyntaxError[string]
	ExplicitLink *FieldOrSyntaxError[string]
	Tags         []string
}

// SchemaEntry is a define-entity/alter-entity entry.
type SchemaEntry struct {
	Header              SchemaHeader
	MetadataBlock        []FieldSchema
	SectionsBlock        []SectionSchema
	RemoveMetadataBlock  []string
	RemoveSectionsBlock  []string
	FilePath             string
	Loc                  tpos.Location
}

func (e *SchemaEntry) EntryKind() EntryKind    { return EntrySchema }
func (e *SchemaEntry) Location() tpos.Location { return e.Loc }
func (e *SchemaEntry) File() string            { return e.FilePath }

// SynthesisHeader is the header of a define-synthesis entry.
type SynthesisHeader struct {
	Timestamp FieldOrSyntaxError[Timestamp]
	Title     FieldOrSyntaxError[string]
	LinkID    FieldOrSyntaxError[string]
	Tags      []string
}

// SynthesisEntry is a define-synthesis entry.
type SynthesisEntry struct {
	Header   SynthesisHeader
	Metadata []MetadataEntry
	Content  *Content
	FilePath string
	Loc      tpos.Location
}

func (e *SynthesisEntry) EntryKind() EntryKind    { return EntrySynthesis }
func (e *SynthesisEntry) Location() tpos.Location { return e.Loc }
func (e *SynthesisEntry) File() string            { return e.FilePath }

// ActualizeHeader is the header of an actualize-synthesis entry.
type ActualizeHeader struct {
	Timestamp FieldOrSyntaxError[Timestamp]
	Target    FieldOrSyntaxError[string]
	Tags      []string
}

// ActualizeEntry is an actualize-synthesis entry.
type ActualizeEntry struct {
	Header   ActualizeHeader
	Metadata []MetadataEntry
	FilePath string
	Loc      tpos.Location
}

func (e *ActualizeEntry) EntryKind() EntryKind    { return EntryActualize }
func (e *ActualizeEntry) Location() tpos.Location { return e.Loc }
func (e *ActualizeEntry) File() string            { return e.FilePath }

// ErrorEntry represents a top-level span of source that could not be
// assigned to any entry production at all (e.g. an unrecognized
// directive keyword). It still carries a location so a host can surface
// something actionable.
type ErrorEntry struct {
	Code     string
	Message  string
	FilePath string
	Loc      tpos.Location
}

func (e *ErrorEntry) EntryKind() EntryKind    { return EntryError }
func (e *ErrorEntry) Location() tpos.Location { return e.Loc }
func (e *ErrorEntry) File() string            { return e.FilePath }
