package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/thalo-lang/thalo/internal/ast"
)

func TestTimestampTrackerCurrentMarkerUsesInjectedClock(t *testing.T) {
	tr := &TimestampTracker{Now: func() time.Time { return time.Date(2026, 3, 5, 9, 30, 0, 0, time.UTC) }}
	m, err := tr.CurrentMarker(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MarkerTimestamp, m.Type)
	assert.Equal(t, "2026-03-05T09:30Z", m.Value)
}

func TestTimestampTrackerGetChangedEntriesFiltersByMarker(t *testing.T) {
	w := newScenarioWorkspace(t)
	marker := &Marker{Type: MarkerTimestamp, Value: "2026-01-01T00:00Z"}
	out, err := (&TimestampTracker{}).GetChangedEntries(context.Background(), w, nil, marker)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0].Header.ExplicitLink.Value)
}

func TestGitTrackerNotInGitRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	git := NewMockGitCollaborator(ctrl)
	git.EXPECT().IsGitRepo(gomock.Any()).Return(false, nil)

	tr := NewGitTracker(git, false)
	_, err := tr.CurrentMarker(context.Background())
	require.Error(t, err)
	var notInRepo *NotInGitRepoError
	assert.ErrorAs(t, err, &notInRepo)
}

func TestGitTrackerUncommittedChangesBlocksWithoutForce(t *testing.T) {
	ctrl := gomock.NewController(t)
	git := NewMockGitCollaborator(ctrl)
	git.EXPECT().IsGitRepo(gomock.Any()).Return(true, nil)
	git.EXPECT().UncommittedFiles(gomock.Any()).Return([]string{"dirty.thalo"}, nil)

	w := newScenarioWorkspace(t)
	tr := NewGitTracker(git, false)
	marker := &Marker{Type: MarkerGit, Value: "deadbeef"}
	_, err := tr.GetChangedEntries(context.Background(), w, nil, marker)
	require.Error(t, err)
	var uncommitted *UncommittedChangesError
	require.ErrorAs(t, err, &uncommitted)
	assert.Equal(t, []string{"dirty.thalo"}, uncommitted.Files)
}

func TestGitTrackerForceSkipsUncommittedCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	git := NewMockGitCollaborator(ctrl)
	git.EXPECT().IsGitRepo(gomock.Any()).Return(true, nil)
	git.EXPECT().ChangedFilesSince(gomock.Any(), "deadbeef").Return([]string{"entries.thalo"}, nil)
	git.EXPECT().BlameIgnoreRevs(gomock.Any()).Return(nil, nil)
	git.EXPECT().FileContentAtCommit(gomock.Any(), "deadbeef", "entries.thalo").Return(schemaHeaderOnly, nil)

	w := newScenarioWorkspace(t)
	tr := NewGitTracker(git, true)
	marker := &Marker{Type: MarkerGit, Value: "deadbeef"}
	out, err := tr.GetChangedEntries(context.Background(), w, nil, marker)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "e1", out[0].Header.ExplicitLink.Value)
}

func TestGitTrackerIncompatibleMarkerTypeFallsBackToAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	git := NewMockGitCollaborator(ctrl)

	w := newScenarioWorkspace(t)
	tr := NewGitTracker(git, false)
	marker := &Marker{Type: MarkerTimestamp, Value: "2026-01-01T00:00Z"}
	out, err := tr.GetChangedEntries(context.Background(), w, []ast.Query{{Entity: "lore"}}, marker)
	require.NoError(t, err)
	require.Len(t, out, 1)
}

// schemaHeaderOnly is entries.thalo's content before the instance entry
// existed, used to exercise the added-entry diff path.
const schemaHeaderOnly = `2026-01-01T00:00Z define-entity lore "Lore"
  # Metadata
  type: "fact" | "insight"
  subject: link
  # Sections
  Content
`
