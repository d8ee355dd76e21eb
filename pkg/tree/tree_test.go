package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func folder(id, title string, children ...*models.Node) *models.Node {
	return &models.Node{ID: id, Kind: models.KindFolder, Title: title, Children: append([]*models.Node{}, children...)}
}

func note(id, title string) *models.Node {
	return &models.Node{
		ID:               id,
		Kind:             models.KindNote,
		Title:            title,
		Timestamp:        models.Millis(testNow.Add(-48 * time.Hour)),
		Status:           models.StatusTodo,
		MediaAttachments: []models.MediaAttachment{},
	}
}

// sampleTree:
//
//	Work/
//	  Standup
//	  Projects/
//	    Roadmap
//	Personal/
//	Inbox
func sampleTree() []*models.Node {
	return []*models.Node{
		folder("work", "Work",
			note("standup", "Standup"),
			folder("projects", "Projects", note("roadmap", "Roadmap")),
		),
		folder("personal", "Personal"),
		note("inbox", "Inbox"),
	}
}

func cloneAll(nodes []*models.Node) []*models.Node {
	out := make([]*models.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

func TestFindByID(t *testing.T) {
	root := sampleTree()

	n, ok := FindByID(root, "roadmap")
	require.True(t, ok)
	assert.Equal(t, "Roadmap", n.Title)

	n, ok = FindByID(root, "projects")
	require.True(t, ok)
	assert.True(t, n.IsFolder())

	_, ok = FindByID(root, "missing")
	assert.False(t, ok)

	_, ok = FindByID(nil, "work")
	assert.False(t, ok)
}

func TestFolderLevel(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		name     string
		folderID string
		want     int
		wantOK   bool
	}{
		{"root", "", 0, true},
		{"top level", "work", 1, true},
		{"nested", "projects", 2, true},
		{"note is not a folder", "standup", 0, false},
		{"missing", "nope", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FolderLevel(root, tt.folderID)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDepthAndAncestors(t *testing.T) {
	root := sampleTree()

	d, ok := Depth(root, "roadmap")
	require.True(t, ok)
	assert.Equal(t, 3, d)

	chain, ok := Ancestors(root, "roadmap")
	require.True(t, ok)
	require.Len(t, chain, 2)
	assert.Equal(t, "work", chain[0].ID)
	assert.Equal(t, "projects", chain[1].ID)

	chain, ok = Ancestors(root, "inbox")
	require.True(t, ok)
	assert.Empty(t, chain)
}

func TestExtractFolders(t *testing.T) {
	var root []*models.Node
	root, _ = Insert(root, "", folder("Work", "Work"))
	root, _ = Insert(root, "Work", note("Standup", "Standup"))

	got := ExtractFolders(root)
	want := []FolderSummary{{
		ID:       "Work",
		Title:    "Work",
		Children: []FolderSummary{},
		Notes:    []NoteRef{{ID: "Standup", Title: "Standup"}},
	}}
	assert.Equal(t, want, got)
}

func TestExtractFoldersNested(t *testing.T) {
	got := ExtractFolders(sampleTree())

	require.Len(t, got, 2)
	assert.Equal(t, []NoteRef{{ID: "standup", Title: "Standup"}}, got[0].Notes)
	require.Len(t, got[0].Children, 1)
	assert.Equal(t, "projects", got[0].Children[0].ID)
	assert.Equal(t, []NoteRef{{ID: "roadmap", Title: "Roadmap"}}, got[0].Children[0].Notes)
	assert.Empty(t, got[1].Notes)
}

func TestFilterByText(t *testing.T) {
	root := sampleTree()

	t.Run("empty query is identity", func(t *testing.T) {
		assert.Equal(t, root, FilterByText(root, ""))
		assert.Equal(t, root, FilterByText(root, "   \t"))
	})

	t.Run("case insensitive match keeps ancestors", func(t *testing.T) {
		got := FilterByText(root, "ROAD")
		require.Len(t, got, 1)
		assert.Equal(t, "work", got[0].ID)
		require.Len(t, got[0].Children, 1)
		assert.Equal(t, "projects", got[0].Children[0].ID)
		require.Len(t, got[0].Children[0].Children, 1)
		assert.Equal(t, "roadmap", got[0].Children[0].Children[0].ID)
	})

	t.Run("matching folder keeps only matching children", func(t *testing.T) {
		got := FilterByText(root, "work")
		require.Len(t, got, 1)
		assert.Empty(t, got[0].Children)
	})

	t.Run("content is not searched", func(t *testing.T) {
		withBody := cloneAll(root)
		withBody[2].Content = "needle"
		assert.Empty(t, FilterByText(withBody, "needle"))
	})

	t.Run("input untouched", func(t *testing.T) {
		before := cloneAll(root)
		FilterByText(root, "road")
		assert.Equal(t, before, root)
	})
}

func TestFilterPinned(t *testing.T) {
	root, _ := TogglePin(sampleTree(), "roadmap")
	root, _ = TogglePin(root, "personal")

	got := FilterPinned(root)
	require.Len(t, got, 2)
	assert.Equal(t, "work", got[0].ID)
	assert.Equal(t, "roadmap", got[0].Children[0].Children[0].ID)
	assert.Equal(t, "personal", got[1].ID)
}

func TestFilterByTag(t *testing.T) {
	root := sampleTree()
	root[2].Tags = []string{"Errand"}

	got := FilterByTag(root, "errand")
	require.Len(t, got, 1)
	assert.Equal(t, "inbox", got[0].ID)
}

func TestFlattenNotes(t *testing.T) {
	got := FlattenNotes(sampleTree())

	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"standup", "roadmap", "inbox"}, ids)
}

func TestSortFoldersFirst(t *testing.T) {
	siblings := []*models.Node{note("a", "a"), folder("b", "b"), note("c", "c"), folder("d", "d")}

	got := SortFoldersFirst(siblings)

	var ids []string
	for _, n := range got {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
	assert.Equal(t, "a", siblings[0].ID)
}

func TestGroupByStatus(t *testing.T) {
	root := sampleTree()
	root, _ = SetStatus(root, "standup", models.StatusDone)
	root, _ = SetStatus(root, "roadmap", models.StatusInProgress)

	b := GroupByStatus(FlattenNotes(root))
	assert.Len(t, b.Todo, 1)
	assert.Len(t, b.InProgress, 1)
	assert.Len(t, b.Done, 1)
	assert.Equal(t, "standup", b.Column(models.StatusDone)[0].ID)
}

func TestNotesOn(t *testing.T) {
	root := sampleTree()
	due := testNow.AddDate(0, 0, 3).UnixMilli()
	root, _ = UpdateNote(root, "roadmap", NoteUpdate{DueDate: &due}, testNow.Add(-72*time.Hour))

	onDue := NotesOn(root, testNow.AddDate(0, 0, 3))
	require.Len(t, onDue, 1)
	assert.Equal(t, "roadmap", onDue[0].ID)

	// standup and inbox are stamped two days back
	twoDaysAgo := NotesOn(root, testNow.Add(-48*time.Hour))
	assert.Len(t, twoDaysAgo, 2)
}

func TestCountAndIDs(t *testing.T) {
	root := sampleTree()
	assert.Equal(t, 6, Count(root))
	assert.Equal(t, []string{"work", "standup", "projects", "roadmap", "personal", "inbox"}, IDs(root))
}
