package tree

import (
	"fmt"
	"slices"
	"time"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// edit rewrites the node with the given id. fn receives a shallow copy it may
// modify and returns (replacement, changed); a nil replacement removes the
// node. Only the path down to the node is copied.
func edit(nodes []*models.Node, id string, fn func(c *models.Node) (*models.Node, bool)) ([]*models.Node, bool, bool) {
	for i, n := range nodes {
		if n.ID == id {
			c := *n
			repl, changed := fn(&c)
			if !changed {
				return nodes, true, false
			}
			out := make([]*models.Node, 0, len(nodes))
			out = append(out, nodes[:i]...)
			if repl != nil {
				out = append(out, repl)
			}
			return append(out, nodes[i+1:]...), true, true
		}
		if !n.IsFolder() {
			continue
		}
		kids, found, changed := edit(n.Children, id, fn)
		if !found {
			continue
		}
		if !changed {
			return nodes, true, false
		}
		c := *n
		c.Children = kids
		out := slices.Clone(nodes)
		out[i] = &c
		return out, true, true
	}
	return nodes, false, false
}

// Insert appends node as the last child of parentID, or to the root when
// parentID is empty. It is a no-op when the parent is missing or not a
// folder, when any id in node's subtree already exists in the tree, and when
// the subtree repeats an id itself.
func Insert(nodes []*models.Node, parentID string, node *models.Node) ([]*models.Node, bool) {
	if node == nil {
		return nodes, false
	}
	seen := make(map[string]bool)
	for _, id := range IDs([]*models.Node{node}) {
		if seen[id] {
			return nodes, false
		}
		seen[id] = true
		if _, exists := FindByID(nodes, id); exists {
			return nodes, false
		}
	}
	node = node.Clone()
	if parentID == "" {
		out := make([]*models.Node, 0, len(nodes)+1)
		return append(append(out, nodes...), node), true
	}
	out, _, changed := edit(nodes, parentID, func(c *models.Node) (*models.Node, bool) {
		if !c.IsFolder() {
			return c, false
		}
		kids := make([]*models.Node, 0, len(c.Children)+1)
		c.Children = append(append(kids, c.Children...), node)
		return c, true
	})
	return out, changed
}

// Remove deletes id and its whole subtree. Removing a missing id is a no-op.
func Remove(nodes []*models.Node, id string) ([]*models.Node, bool) {
	out, _, changed := edit(nodes, id, func(*models.Node) (*models.Node, bool) {
		return nil, true
	})
	return out, changed
}

// TogglePin flips the pinned flag of id without moving it.
func TogglePin(nodes []*models.Node, id string) ([]*models.Node, bool) {
	out, _, changed := edit(nodes, id, func(c *models.Node) (*models.Node, bool) {
		c.Pinned = !c.Pinned
		return c, true
	})
	return out, changed
}

// Move detaches itemID and appends it to targetID (or the root when targetID
// is empty). A missing item is a silent no-op. A missing or non-folder target
// returns the tree unchanged with ErrNotFound so the item is never lost, and
// a target inside the item's own subtree returns ErrInvalidMove.
func Move(nodes []*models.Node, itemID, targetID string) ([]*models.Node, bool, error) {
	item, ok := FindByID(nodes, itemID)
	if !ok {
		return nodes, false, nil
	}
	if targetID != "" {
		target, ok := FindByID(nodes, targetID)
		if !ok || !target.IsFolder() {
			return nodes, false, fmt.Errorf("move %s to %s: %w", itemID, targetID, ErrNotFound)
		}
		if _, inside := FindByID([]*models.Node{item}, targetID); inside {
			return nodes, false, fmt.Errorf("move %s to %s: %w", itemID, targetID, ErrInvalidMove)
		}
	}

	detached, _ := Remove(nodes, itemID)
	if targetID == "" {
		out := make([]*models.Node, 0, len(detached)+1)
		return append(append(out, detached...), item), true, nil
	}
	out, _, changed := edit(detached, targetID, func(c *models.Node) (*models.Node, bool) {
		kids := make([]*models.Node, 0, len(c.Children)+1)
		c.Children = append(append(kids, c.Children...), item)
		return c, true
	})
	return out, changed, nil
}

// Rename sets the title of id. Notes get their timestamp refreshed to now;
// folders never carry one.
func Rename(nodes []*models.Node, id, title string, now time.Time) ([]*models.Node, bool) {
	out, _, changed := edit(nodes, id, func(c *models.Node) (*models.Node, bool) {
		if c.Title == title {
			return c, false
		}
		c.Title = title
		if c.IsNote() {
			c.Timestamp = models.Millis(now)
		}
		return c, true
	})
	return out, changed
}

// SetStatus sets the board status of a note. Folder ids are a no-op.
func SetStatus(nodes []*models.Node, id string, status models.NoteStatus) ([]*models.Node, bool) {
	out, _, changed := edit(nodes, id, func(c *models.Node) (*models.Node, bool) {
		if !c.IsNote() || c.Status == status {
			return c, false
		}
		c.Status = status
		return c, true
	})
	return out, changed
}

// NoteUpdate lists the note fields to overwrite; nil fields are left alone.
type NoteUpdate struct {
	Title            *string
	Content          *string
	Tags             []string
	SetTags          bool
	Priority         *models.Priority
	DueDate          *int64
	ClearDueDate     bool
	MediaAttachments []models.MediaAttachment
	SetMedia         bool
}

// UpdateNote applies u to the note id and refreshes its timestamp when any
// field actually changed. Folder ids are a no-op.
func UpdateNote(nodes []*models.Node, id string, u NoteUpdate, now time.Time) ([]*models.Node, bool) {
	out, _, changed := edit(nodes, id, func(c *models.Node) (*models.Node, bool) {
		if !c.IsNote() {
			return c, false
		}
		dirty := false
		if u.Title != nil && *u.Title != c.Title {
			c.Title = *u.Title
			dirty = true
		}
		if u.Content != nil && *u.Content != c.Content {
			c.Content = *u.Content
			dirty = true
		}
		if u.SetTags && !slices.Equal(u.Tags, c.Tags) {
			c.Tags = slices.Clone(u.Tags)
			dirty = true
		}
		if u.Priority != nil && *u.Priority != c.Priority {
			c.Priority = *u.Priority
			dirty = true
		}
		if u.ClearDueDate && c.DueDate != nil {
			c.DueDate = nil
			dirty = true
		} else if u.DueDate != nil && (c.DueDate == nil || *c.DueDate != *u.DueDate) {
			due := *u.DueDate
			c.DueDate = &due
			dirty = true
		}
		if u.SetMedia && !slices.Equal(u.MediaAttachments, c.MediaAttachments) {
			c.MediaAttachments = slices.Clone(u.MediaAttachments)
			if c.MediaAttachments == nil {
				c.MediaAttachments = []models.MediaAttachment{}
			}
			dirty = true
		}
		if !dirty {
			return c, false
		}
		c.Timestamp = models.Millis(now)
		return c, true
	})
	return out, changed
}
