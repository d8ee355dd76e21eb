package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValidation(t *testing.T) {
	tests := []struct {
		status  NoteStatus
		isValid bool
	}{
		{"todo", true},
		{"inprogress", true},
		{"done", true},
		{"in_progress", false},
		{NoteStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.Valid())
		})
	}
}

func TestPriorityValidation(t *testing.T) {
	assert.True(t, PriorityNone.Valid())
	assert.True(t, PriorityHigh.Valid())
	assert.False(t, Priority("urgent").Valid())
}

func TestNewNote(t *testing.T) {
	now := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	note := NewNote("Standup", "- [ ] notes", now)

	assert.NotEmpty(t, note.ID)
	assert.True(t, note.IsNote())
	assert.False(t, note.IsFolder())
	assert.Equal(t, StatusTodo, note.Status)
	assert.NotNil(t, note.MediaAttachments)

	ts, ok := note.Time()
	require.True(t, ok)
	assert.True(t, ts.Equal(now))
}

func TestNewFolderHasNoTimestamp(t *testing.T) {
	folder := NewFolder("Work")

	assert.True(t, folder.IsFolder())
	assert.Nil(t, folder.Timestamp)
	assert.Empty(t, folder.Children)

	_, ok := folder.Time()
	assert.False(t, ok)
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	note := NewNote("child", "body", now)
	note.Tags = []string{"a"}
	note.MediaAttachments = []MediaAttachment{{ID: "m1", URI: "file:///a.png", Width: 10, Height: 10}}
	folder := NewFolder("parent")
	folder.Children = append(folder.Children, note)

	c := folder.Clone()
	c.Title = "changed"
	c.Children[0].Title = "changed child"
	c.Children[0].Tags[0] = "b"
	c.Children[0].MediaAttachments[0].URI = "other"
	*c.Children[0].Timestamp = 0

	assert.Equal(t, "parent", folder.Title)
	assert.Equal(t, "child", note.Title)
	assert.Equal(t, "a", note.Tags[0])
	assert.Equal(t, "file:///a.png", note.MediaAttachments[0].URI)
	assert.Equal(t, now.UnixMilli(), *note.Timestamp)
}

func TestFilenameFormatValid(t *testing.T) {
	assert.True(t, FilenameFormatTitle.Valid())
	assert.True(t, FilenameFormatID.Valid())
	assert.False(t, FilenameFormat("timestamp").Valid())
}
