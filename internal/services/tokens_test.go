package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thalo-lang/thalo/internal/workspace"
)

func TestSemanticTokensEncodesNonEmptyStream(t *testing.T) {
	w := workspace.New(nil)
	w.AddDocument(schemaThenInstance, workspace.AddOptions{Filename: "entries.thalo"})

	toks := SemanticTokens(w, "entries.thalo")
	require.NotEmpty(t, toks)
	require.Equal(t, 0, len(toks)%5, "tokens must come in [deltaLine, deltaChar, length, type, modifiers] quintuples")

	foundDirective := false
	for i := 0; i < len(toks); i += 5 {
		if toks[i+3] == TokenKeyword {
			foundDirective = true
		}
	}
	assert.True(t, foundDirective, "expected at least one keyword token for a directive")
}

func TestSemanticTokensUnknownFileReturnsNil(t *testing.T) {
	w := workspace.New(nil)
	assert.Nil(t, SemanticTokens(w, "missing.thalo"))
}
