package models

import (
	"time"

	"github.com/google/uuid"
)

// NodeKind distinguishes the two node variants in the notes tree.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindNote   NodeKind = "note"
)

// NoteStatus is the kanban column a note sits in.
type NoteStatus string

const (
	StatusTodo       NoteStatus = "todo"
	StatusInProgress NoteStatus = "inprogress"
	StatusDone       NoteStatus = "done"
)

// Statuses lists every status in board order.
var Statuses = []NoteStatus{StatusTodo, StatusInProgress, StatusDone}

// Valid reports whether s is one of the known statuses.
func (s NoteStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is the task priority tag carried by notes.
type Priority string

const (
	PriorityNone   Priority = ""
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is a known priority (including none).
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// MediaAttachment is an image or audio clip placed on a note canvas.
type MediaAttachment struct {
	ID     string  `json:"id"`
	URI    string  `json:"uri"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Node is a folder or a note. Folder-only and note-only fields are left
// zero on the other variant.
type Node struct {
	ID        string   `json:"id"`
	Kind      NodeKind `json:"type"`
	Title     string   `json:"title"`
	Pinned    bool     `json:"pinned"`
	Timestamp *int64   `json:"timestamp,omitempty"` // epoch millis, notes only

	// Folder
	Children []*Node `json:"children,omitempty"`

	// Note
	Content          string            `json:"content,omitempty"`
	Status           NoteStatus        `json:"status,omitempty"`
	MediaAttachments []MediaAttachment `json:"mediaAttachments,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	Priority         Priority          `json:"priority,omitempty"`
	DueDate          *int64            `json:"dueDate,omitempty"` // epoch millis
}

// IsFolder reports whether n is the folder variant.
func (n *Node) IsFolder() bool { return n != nil && n.Kind == KindFolder }

// IsNote reports whether n is the note variant.
func (n *Node) IsNote() bool { return n != nil && n.Kind == KindNote }

// Time returns the note timestamp as a time.Time. ok is false when the node
// carries no timestamp.
func (n *Node) Time() (t time.Time, ok bool) {
	if n == nil || n.Timestamp == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*n.Timestamp), true
}

// Due returns the due date, if any.
func (n *Node) Due() (t time.Time, ok bool) {
	if n == nil || n.DueDate == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*n.DueDate), true
}

// Clone returns a deep copy of n, including its whole subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Timestamp != nil {
		c.Timestamp = Millis(time.UnixMilli(*n.Timestamp))
	}
	if n.DueDate != nil {
		c.DueDate = Millis(time.UnixMilli(*n.DueDate))
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	if n.MediaAttachments != nil {
		c.MediaAttachments = append([]MediaAttachment{}, n.MediaAttachments...)
	}
	if n.Tags != nil {
		c.Tags = append([]string{}, n.Tags...)
	}
	return &c
}

// NewID returns a fresh opaque node id.
func NewID() string {
	return uuid.NewString()
}

// Millis converts t to a pointer to epoch milliseconds.
func Millis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

// NewFolder creates an empty folder with a fresh id. Folders carry no timestamp.
func NewFolder(title string) *Node {
	return &Node{
		ID:       NewID(),
		Kind:     KindFolder,
		Title:    title,
		Children: []*Node{},
	}
}

// NewNote creates a note with a fresh id stamped with now.
func NewNote(title, content string, now time.Time) *Node {
	return &Node{
		ID:               NewID(),
		Kind:             KindNote,
		Title:            title,
		Timestamp:        Millis(now),
		Content:          content,
		Status:           StatusTodo,
		MediaAttachments: []MediaAttachment{},
	}
}
