package tree

import "github.com/mattsolo1/grove-notes/pkg/models"

// CreateKinds says which node kinds may be created at a location.
type CreateKinds struct {
	Folder bool `json:"folder"`
	Note   bool `json:"note"`
}

// AllowedCreateKinds applies the depth policy on top of FolderLevel: notes
// can be created in any existing folder (or the root), folders only while the
// new folder's level would not exceed maxDepth. A maxDepth <= 0 means
// unlimited. Both kinds are false when currentFolderID does not resolve.
func AllowedCreateKinds(nodes []*models.Node, currentFolderID string, maxDepth int) CreateKinds {
	level, ok := FolderLevel(nodes, currentFolderID)
	if !ok {
		return CreateKinds{}
	}
	return CreateKinds{
		Folder: maxDepth <= 0 || level+1 <= maxDepth,
		Note:   true,
	}
}
