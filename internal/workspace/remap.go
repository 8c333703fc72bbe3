package workspace

import (
	"github.com/thalo-lang/thalo/internal/ast"
	"github.com/thalo-lang/thalo/internal/sourcemap"
	"github.com/thalo-lang/thalo/internal/tpos"
)

// remapEntryLocations translates every location embedded in e from
// block-relative to file-absolute coordinates via sm, in place. For a
// .thalo document sm is sourcemap.Identity and this is a no-op walk; for
// a fenced block inside markdown it is the translation spec.md §4.B
// describes.
func remapEntryLocations(e ast.Entry, sm sourcemap.SourceMap) {
	if sm.IsIdentity() {
		return
	}
	switch v := e.(type) {
	case *ast.InstanceEntry:
		remapLoc(&v.Loc, sm)
		remapFieldLoc(&v.Header.Timestamp, sm)
		remapFieldLoc(&v.Header.Directive, sm)
		remapFieldLoc(&v.Header.Entity, sm)
		if v.Header.Title != nil {
			remapFieldLoc(v.Header.Title, sm)
		}
		if v.Header.ExplicitLink != nil {
			remapFieldLoc(v.Header.ExplicitLink, sm)
		}
		remapMetadata(v.Metadata, sm)
		remapContent(v.Content, sm)
	case *ast.SchemaEntry:
		remapLoc(&v.Loc, sm)
		remapFieldLoc(&v.Header.Timestamp, sm)
		remapFieldLoc(&v.Header.Directive, sm)
		remapFieldLoc(&v.Header.EntityName, sm)
		if v.Header.Title != nil {
			remapFieldLoc(v.Header.Title, sm)
		}
		if v.Header.ExplicitLink != nil {
			remapFieldLoc(v.Header.ExplicitLink, sm)
		}
		for i := range v.MetadataBlock {
			remapFieldSchema(&v.MetadataBlock[i], sm)
		}
		for i := range v.SectionsBlock {
			remapLoc(&v.SectionsBlock[i].Location, sm)
		}
	case *ast.SynthesisEntry:
		remapLoc(&v.Loc, sm)
		remapFieldLoc(&v.Header.Timestamp, sm)
		remapFieldLoc(&v.Header.Title, sm)
		remapFieldLoc(&v.Header.LinkID, sm)
		remapMetadata(v.Metadata, sm)
		remapContent(v.Content, sm)
	case *ast.ActualizeEntry:
		remapLoc(&v.Loc, sm)
		remapFieldLoc(&v.Header.Timestamp, sm)
		remapFieldLoc(&v.Header.Target, sm)
		remapMetadata(v.Metadata, sm)
	case *ast.ErrorEntry:
		remapLoc(&v.Loc, sm)
	}
}

func remapLoc(loc *tpos.Location, sm sourcemap.SourceMap) {
	*loc = sm.ToFileLocation(*loc)
}

func remapFieldLoc[F any](f *ast.FieldOrSyntaxError[F], sm sourcemap.SourceMap) {
	if f.Err != nil {
		remapLoc(&f.Err.Location, sm)
	}
}

func remapMetadata(entries []ast.MetadataEntry, sm sourcemap.SourceMap) {
	for i := range entries {
		remapLoc(&entries[i].KeyLoc, sm)
		remapLoc(&entries[i].Location, sm)
		remapValue(&entries[i].Value, sm)
	}
}

func remapValue(v *ast.ValueContent, sm sourcemap.SourceMap) {
	remapLoc(&v.Location, sm)
	if v.SyntaxErr != nil {
		remapLoc(&v.SyntaxErr.Location, sm)
	}
	switch v.Kind {
	case ast.ValueArray:
		for i := range v.Array {
			remapValue(&v.Array[i], sm)
		}
	case ast.ValueQuery:
		for i := range v.Query.Conditions {
			remapLoc(&v.Query.Conditions[i].Location, sm)
			if v.Query.Conditions[i].Value != nil {
				remapValue(v.Query.Conditions[i].Value, sm)
			}
		}
	}
}

func remapFieldSchema(fs *ast.FieldSchema, sm sourcemap.SourceMap) {
	remapLoc(&fs.Location, sm)
	remapLoc(&fs.Type.Location, sm)
	if fs.Type.SyntaxErr != nil {
		remapLoc(&fs.Type.SyntaxErr.Location, sm)
	}
	if fs.DefaultValue != nil {
		remapValue(fs.DefaultValue, sm)
	}
}

func remapContent(c *ast.Content, sm sourcemap.SourceMap) {
	if c == nil {
		return
	}
	remapLoc(&c.Location, sm)
	for i := range c.Sections {
		remapLoc(&c.Sections[i].HeaderLoc, sm)
		remapLoc(&c.Sections[i].BodyLoc, sm)
	}
}
