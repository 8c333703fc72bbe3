package merge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeCleanAddAndModify(t *testing.T) {
	base := "2026-01-01T00:00Z create lore ^a\n  x: 1\n\n2026-01-02T00:00Z create lore ^b\n  x: 1\n"
	ours := base + "\n2026-01-03T00:00Z create lore ^c\n  x: 1\n"
	theirs := "2026-01-01T00:00Z create lore ^a\n  x: 1\n\n2026-01-02T00:00Z create lore ^b\n  x: 2\n"

	res, err := Merge(context.Background(), nil, base, ours, theirs)
	require.NoError(t, err)
	require.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Stats.Added)
	assert.Equal(t, 1, res.Stats.Modified)
	assert.Contains(t, res.MergedSource, "^c")
	assert.Contains(t, res.MergedSource, "x: 2")
}

func TestMergeConflictingModification(t *testing.T) {
	base := "2026-01-01T00:00Z create lore ^a\n  x: 1\n"
	ours := "2026-01-01T00:00Z create lore ^a\n  x: 2\n"
	theirs := "2026-01-01T00:00Z create lore ^a\n  x: 3\n"

	res, err := Merge(context.Background(), nil, base, ours, theirs)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, 1, res.Stats.Conflicted)
	assert.Contains(t, res.MergedSource, "<<<<<<< ours")
	assert.Contains(t, res.MergedSource, ">>>>>>> theirs")
}

func TestMergeModifyVsDeleteConflict(t *testing.T) {
	base := "2026-01-01T00:00Z create lore ^a\n  x: 1\n"
	ours := "2026-01-01T00:00Z create lore ^a\n  x: 2\n"
	theirs := ""

	res, err := Merge(context.Background(), nil, base, ours, theirs)
	require.NoError(t, err)
	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, "modified on ours, deleted on theirs", res.Conflicts[0].Reason)
}

func TestMergeBothDeleteIsClean(t *testing.T) {
	base := "2026-01-01T00:00Z create lore ^a\n  x: 1\n"
	res, err := Merge(context.Background(), nil, base, "", "")
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Equal(t, 1, res.Stats.Removed)
	assert.Empty(t, res.MergedSource)
}

func TestMergeUnchangedEntryIsKeptVerbatim(t *testing.T) {
	base := "2026-01-01T00:00Z create lore ^a\n  x: 1\n"
	res, err := Merge(context.Background(), nil, base, base, base)
	require.NoError(t, err)
	assert.Empty(t, res.Conflicts)
	assert.Zero(t, res.Stats.Added)
	assert.Zero(t, res.Stats.Modified)
	assert.Contains(t, res.MergedSource, "x: 1")
}

func TestMergeDuplicateKeyInOneSideFails(t *testing.T) {
	dup := "2026-01-01T00:00Z create lore ^a\n  x: 1\n\n2026-01-01T00:00Z create lore ^a\n  x: 2\n"
	_, err := Merge(context.Background(), nil, "", dup, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateKey)
}

func TestMergeOrdersOutputByCanonicalTimestamp(t *testing.T) {
	ours := "2026-01-05T00:00Z create lore ^b\n  x: 1\n\n2026-01-01T00:00Z create lore ^a\n  x: 1\n"
	res, err := Merge(context.Background(), nil, "", ours, "")
	require.NoError(t, err)
	require.Empty(t, res.Conflicts)
	aIdx := indexOf(res.MergedSource, "^a")
	bIdx := indexOf(res.MergedSource, "^b")
	assert.Less(t, aIdx, bIdx)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}

func TestMergeRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Merge(ctx, nil, "", "2026-01-01T00:00Z create lore ^a\n  x: 1\n", "")
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
}
