package store

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

func sampleTree() []*models.Node {
	now := time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)
	note := models.NewNote("Standup", "- [ ] ship", now)
	note.ID = "n1"
	note.Tags = []string{"work"}
	note.Priority = models.PriorityHigh
	note.MediaAttachments = []models.MediaAttachment{{ID: "m1", URI: "file:///a.png", Width: 10, Height: 20, X: 1, Y: 2}}

	empty := models.NewFolder("Empty")
	empty.ID = "f2"

	work := models.NewFolder("Work")
	work.ID = "f1"
	work.Pinned = true
	work.Children = []*models.Node{note, empty}

	loose := models.NewNote("Loose", "", now)
	loose.ID = "n2"
	loose.Status = models.StatusDone
	return []*models.Node{work, loose}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	nodes := sampleTree()

	data, err := Encode(nodes)
	require.NoError(t, err)

	got, report, err := Decode(data)
	require.NoError(t, err)
	assert.True(t, report.Clean(), "unexpected repairs: %v", report.Repairs)
	assert.Equal(t, nodes, got)
}

func TestEncodeShape(t *testing.T) {
	data, err := Encode(sampleTree())
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	work := raw[0]
	assert.Equal(t, "folder", work["type"])
	assert.NotContains(t, work, "content")
	kids := work["children"].([]any)
	empty := kids[1].(map[string]any)
	assert.Equal(t, []any{}, empty["children"])

	loose := raw[1]
	assert.Equal(t, "", loose["content"])
	assert.Equal(t, []any{}, loose["mediaAttachments"])
}

func TestDecodeEmpty(t *testing.T) {
	got, report, err := Decode([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.True(t, report.Clean())
}

func TestDecodeRejectsNonArray(t *testing.T) {
	_, _, err := Decode([]byte(`{"id":"x"}`))
	assert.Error(t, err)
}

func TestDecodeRepairs(t *testing.T) {
	doc := `[
		{"type":"note","title":"no id","content":"x","status":"todo","mediaAttachments":[]},
		{"id":"a","type":"note","title":"bare"},
		{"id":"a","type":"note","title":"dup","content":"","status":"done","mediaAttachments":[]},
		{"id":"b","type":"mystery","title":"guess folder","children":[]},
		{"id":"c","type":"mystery","title":"guess note"},
		{"id":"d","type":"note","title":"bad status","content":"","status":"blocked","mediaAttachments":[
			{"id":"m1","uri":"file:///ok.png","width":1,"height":1,"x":0,"y":0},
			{"id":"","uri":"file:///no-id.png"},
			{"id":"m3","uri":"file:///neg.png","width":-5},
			"junk"
		]},
		{"id":"e","type":"note","title":"bad ts","timestamp":"soon","content":7,"status":"todo","mediaAttachments":{}},
		42
	]`

	got, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got, 7)
	assert.False(t, report.Clean())
	assert.Equal(t, 1, report.Dropped)

	assert.NotEmpty(t, got[0].ID)

	bare := got[1]
	assert.Equal(t, "a", bare.ID)
	assert.Equal(t, "", bare.Content)
	assert.NotNil(t, bare.MediaAttachments)
	assert.Empty(t, bare.MediaAttachments)
	assert.Equal(t, models.StatusTodo, bare.Status)

	dup := got[2]
	assert.NotEqual(t, "a", dup.ID)
	assert.Equal(t, "dup", dup.Title)

	assert.True(t, got[3].IsFolder())
	assert.NotNil(t, got[3].Children)
	assert.True(t, got[4].IsNote())

	bad := got[5]
	assert.Equal(t, models.StatusTodo, bad.Status)
	require.Len(t, bad.MediaAttachments, 1)
	assert.Equal(t, "m1", bad.MediaAttachments[0].ID)

	ts := got[6]
	assert.Nil(t, ts.Timestamp)
	assert.Equal(t, "", ts.Content)
	assert.Empty(t, ts.MediaAttachments)

	var problems []string
	for _, r := range report.Repairs {
		problems = append(problems, r.String())
	}
	joined := strings.Join(problems, "\n")
	assert.Contains(t, joined, "missing id")
	assert.Contains(t, joined, "duplicate id")
	assert.Contains(t, joined, "unknown type")
	assert.Contains(t, joined, "invalid attachment dropped")
	assert.Contains(t, joined, "not an object")
}

func TestDecodeRepairsNestedNotes(t *testing.T) {
	doc := `[{"id":"f","type":"folder","title":"F","pinned":false,"children":[
		{"id":"n","type":"note","title":"inner"}
	]}]`

	got, report, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Len(t, got[0].Children, 1)
	inner := got[0].Children[0]
	assert.Equal(t, "", inner.Content)
	assert.Equal(t, []models.MediaAttachment{}, inner.MediaAttachments)
	require.NotEmpty(t, report.Repairs)
	assert.Equal(t, "[0].children[0]", report.Repairs[0].Path)
}

func TestDecodeTimestamps(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  *int64
	}{
		{"exact large integer", "9007199254740993", ptr(9007199254740993)},
		{"max int64", "9223372036854775807", ptr(9223372036854775807)},
		{"fraction truncated", "1710513000000.9", ptr(1710513000000)},
		{"exponent", "1.7105e12", ptr(1710500000000)},
		{"beyond int64", "9223372036854775808", nil},
		{"huge float", "1e300", nil},
		{"negative huge", "-1e19", nil},
		{"numeric string", `"1710513000000"`, nil},
		{"null", "null", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `[{"id":"n","type":"note","title":"T","pinned":false,"content":"","status":"todo","mediaAttachments":[],"timestamp":` + tt.value + `}]`
			got, report, err := Decode([]byte(doc))
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].Timestamp)
			if tt.want == nil && tt.value != "null" {
				assert.False(t, report.Clean())
			}
		})
	}
}

func ptr(v int64) *int64 { return &v }
