package models

// FilenameFormat defines how exported note files are named
type FilenameFormat string

const (
	// FilenameFormatTitle uses title.md
	FilenameFormatTitle FilenameFormat = "title"

	// FilenameFormatDateTitle uses YYYYMMDD-title.md
	FilenameFormatDateTitle FilenameFormat = "date-title"

	// FilenameFormatTimestampTitle uses YYYYMMDD-HHMMSS-title.md
	FilenameFormatTimestampTitle FilenameFormat = "timestamp-title"

	// FilenameFormatID uses <id>.md
	FilenameFormatID FilenameFormat = "id"
)

// Valid reports whether f is a known filename format.
func (f FilenameFormat) Valid() bool {
	switch f {
	case FilenameFormatTitle, FilenameFormatDateTitle, FilenameFormatTimestampTitle, FilenameFormatID:
		return true
	}
	return false
}

// DefaultMaxFolderDepth is the deepest folder level the app offers to create
// further folders under: root -> folder -> notes.
const DefaultMaxFolderDepth = 2
