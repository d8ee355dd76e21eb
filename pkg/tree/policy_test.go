package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowedCreateKinds(t *testing.T) {
	root := sampleTree()

	tests := []struct {
		name     string
		folderID string
		maxDepth int
		want     CreateKinds
	}{
		{"root", "", 2, CreateKinds{Folder: true, Note: true}},
		{"top level folder", "work", 2, CreateKinds{Folder: true, Note: true}},
		{"second level folder", "projects", 2, CreateKinds{Folder: false, Note: true}},
		{"unlimited depth", "projects", 0, CreateKinds{Folder: true, Note: true}},
		{"note id", "inbox", 2, CreateKinds{}},
		{"missing", "ghost", 2, CreateKinds{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedCreateKinds(root, tt.folderID, tt.maxDepth))
		})
	}
}
