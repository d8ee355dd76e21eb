// Package tree implements the query and mutation algebra over the notes tree.
//
// The tree root is an ordered slice of nodes with no node of its own. Every
// function in this package treats its input as immutable: queries return
// views that share unchanged nodes with the input, and mutations return a new
// root built by copying the path down to the changed node.
package tree

import (
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// FindByID returns the first node with the given id, searching depth-first
// with folders visited before their children.
func FindByID(nodes []*models.Node, id string) (*models.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
		if n.IsFolder() {
			if found, ok := FindByID(n.Children, id); ok {
				return found, true
			}
		}
	}
	return nil, false
}

// Ancestors returns the chain of folders containing id, outermost first.
// ok is false when id is not in the tree.
func Ancestors(nodes []*models.Node, id string) (chain []*models.Node, ok bool) {
	for _, n := range nodes {
		if n.ID == id {
			return []*models.Node{}, true
		}
		if n.IsFolder() {
			if sub, found := Ancestors(n.Children, id); found {
				return append([]*models.Node{n}, sub...), true
			}
		}
	}
	return nil, false
}

// Depth returns how deep id sits: 1 for a top-level node, 2 for a child of a
// top-level folder and so on.
func Depth(nodes []*models.Node, id string) (int, bool) {
	chain, ok := Ancestors(nodes, id)
	if !ok {
		return 0, false
	}
	return len(chain) + 1, true
}

// FolderLevel returns the level of a folder: 0 for the root (empty id), 1 for
// a top-level folder, 2 for a folder nested one deeper. ok is false when
// folderID does not resolve to a folder.
func FolderLevel(nodes []*models.Node, folderID string) (int, bool) {
	if folderID == "" {
		return 0, true
	}
	n, ok := FindByID(nodes, folderID)
	if !ok || !n.IsFolder() {
		return 0, false
	}
	return Depth(nodes, folderID)
}

// Walk visits every node depth-first. Returning false from fn skips the
// node's children.
func Walk(nodes []*models.Node, fn func(n *models.Node, depth int) bool) {
	walk(nodes, 1, fn)
}

func walk(nodes []*models.Node, depth int, fn func(n *models.Node, depth int) bool) {
	for _, n := range nodes {
		if fn(n, depth) && n.IsFolder() {
			walk(n.Children, depth+1, fn)
		}
	}
}

// Count returns the total number of nodes in the tree.
func Count(nodes []*models.Node) int {
	total := 0
	Walk(nodes, func(*models.Node, int) bool {
		total++
		return true
	})
	return total
}

// IDs returns every id in the tree in depth-first order.
func IDs(nodes []*models.Node) []string {
	var ids []string
	Walk(nodes, func(n *models.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}

// FlattenNotes collects every note depth-first, discarding folder structure.
func FlattenNotes(nodes []*models.Node) []*models.Node {
	notes := []*models.Node{}
	Walk(nodes, func(n *models.Node, _ int) bool {
		if n.IsNote() {
			notes = append(notes, n)
		}
		return true
	})
	return notes
}

// Filter keeps nodes matching keep. A folder survives if it matches itself or
// still has children after filtering; surviving folders carry only the
// filtered subset of their children.
func Filter(nodes []*models.Node, keep func(*models.Node) bool) []*models.Node {
	out := []*models.Node{}
	for _, n := range nodes {
		if n.IsFolder() {
			kids := Filter(n.Children, keep)
			if keep(n) || len(kids) > 0 {
				c := *n
				c.Children = kids
				out = append(out, &c)
			}
			continue
		}
		if keep(n) {
			out = append(out, n)
		}
	}
	return out
}

// FilterByText matches query case-insensitively against titles only; note
// bodies are not searched (use the search index for that). A blank query
// returns nodes unchanged.
func FilterByText(nodes []*models.Node, query string) []*models.Node {
	query = strings.TrimSpace(query)
	if query == "" {
		return nodes
	}
	folder := cases.Fold()
	needle := folder.String(query)
	return Filter(nodes, func(n *models.Node) bool {
		return strings.Contains(folder.String(n.Title), needle)
	})
}

// FilterPinned keeps pinned nodes and the folders leading to them.
func FilterPinned(nodes []*models.Node) []*models.Node {
	return Filter(nodes, func(n *models.Node) bool { return n.Pinned })
}

// FilterByTag keeps notes carrying tag (case-insensitive).
func FilterByTag(nodes []*models.Node, tag string) []*models.Node {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nodes
	}
	return Filter(nodes, func(n *models.Node) bool {
		if !n.IsNote() {
			return false
		}
		for _, t := range n.Tags {
			if strings.EqualFold(t, tag) {
				return true
			}
		}
		return false
	})
}

// SortFoldersFirst returns a copy of one sibling sequence with folders ahead
// of notes, keeping insertion order within each group. The stored order is
// not affected.
func SortFoldersFirst(nodes []*models.Node) []*models.Node {
	out := append([]*models.Node{}, nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsFolder() && !out[j].IsFolder()
	})
	return out
}

// Board is the kanban projection of a flat note sequence.
type Board struct {
	Todo       []*models.Node `json:"todo"`
	InProgress []*models.Node `json:"inprogress"`
	Done       []*models.Node `json:"done"`
}

// Column returns the notes in the column for status.
func (b Board) Column(status models.NoteStatus) []*models.Node {
	switch status {
	case models.StatusInProgress:
		return b.InProgress
	case models.StatusDone:
		return b.Done
	default:
		return b.Todo
	}
}

// GroupByStatus distributes notes into board columns. Notes with a missing or
// unknown status land in the todo column.
func GroupByStatus(notes []*models.Node) Board {
	b := Board{Todo: []*models.Node{}, InProgress: []*models.Node{}, Done: []*models.Node{}}
	for _, n := range notes {
		switch n.Status {
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, n)
		case models.StatusDone:
			b.Done = append(b.Done, n)
		default:
			b.Todo = append(b.Todo, n)
		}
	}
	return b
}

// NotesOn returns the notes scheduled on the calendar day containing day, in
// day's location. A note's due date is used when set, otherwise its timestamp.
func NotesOn(nodes []*models.Node, day time.Time) []*models.Node {
	start := StartOfDay(day)
	end := start.AddDate(0, 0, 1)
	out := []*models.Node{}
	for _, n := range FlattenNotes(nodes) {
		t, ok := n.Due()
		if !ok {
			t, ok = n.Time()
		}
		if ok && !t.Before(start) && t.Before(end) {
			out = append(out, n)
		}
	}
	return out
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
