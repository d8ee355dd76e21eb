package tree

import "github.com/mattsolo1/grove-notes/pkg/models"

// NoteRef is a lightweight reference to a note for sidebar rendering.
type NoteRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FolderSummary is a read-only projection of a folder: nested folders are
// recursed, direct child notes are listed by reference.
type FolderSummary struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Children []FolderSummary `json:"children"`
	Notes    []NoteRef       `json:"notes"`
}

// ExtractFolders projects the folders in nodes into sidebar summaries.
// Top-level notes are not part of the projection.
func ExtractFolders(nodes []*models.Node) []FolderSummary {
	out := []FolderSummary{}
	for _, n := range nodes {
		if !n.IsFolder() {
			continue
		}
		s := FolderSummary{
			ID:       n.ID,
			Title:    n.Title,
			Children: ExtractFolders(n.Children),
			Notes:    []NoteRef{},
		}
		for _, child := range n.Children {
			if child.IsNote() {
				s.Notes = append(s.Notes, NoteRef{ID: child.ID, Title: child.Title})
			}
		}
		out = append(out, s)
	}
	return out
}
