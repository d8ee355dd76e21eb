// Package search keeps a SQLite full-text index of note titles and bodies.
package search

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

// Index manages the search index
type Index struct {
	db     *sql.DB
	useFTS bool
}

// Result is a single search hit.
type Result struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Path     string            `json:"path"`
	Status   models.NoteStatus `json:"status"`
	Pinned   bool              `json:"pinned"`
	Snippet  string            `json:"snippet,omitempty"`
	Modified time.Time         `json:"modified"`
}

// NewIndex opens the index at dbPath. Use ":memory:" for a throwaway index.
func NewIndex(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	if dbPath == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	idx := &Index{db: db}
	if err := idx.init(); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

// init creates the database schema
func (idx *Index) init() error {
	idx.useFTS = idx.checkFTS5Support()

	metaSchema := `
	CREATE TABLE IF NOT EXISTS notes_meta (
		id TEXT PRIMARY KEY,
		path TEXT,
		title TEXT,
		content TEXT,
		tags TEXT,
		status TEXT,
		pinned BOOLEAN,
		modified_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_notes_meta_status ON notes_meta(status);
	CREATE INDEX IF NOT EXISTS idx_notes_meta_title ON notes_meta(title);
	`
	if _, err := idx.db.Exec(metaSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if idx.useFTS {
		ftsSchema := `
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			path,
			title,
			content,
			tags,
			tokenize = 'porter unicode61'
		);
		`
		if _, err := idx.db.Exec(ftsSchema); err != nil {
			idx.useFTS = false
		}
	}

	return nil
}

// checkFTS5Support checks if FTS5 module is available
func (idx *Index) checkFTS5Support() bool {
	_, err := idx.db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS fts5_test USING fts5(content)")
	if err != nil {
		return false
	}
	_, _ = idx.db.Exec("DROP TABLE IF EXISTS fts5_test")
	return true
}

// FullText reports whether the FTS5 module is in use.
func (idx *Index) FullText() bool { return idx.useFTS }

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (idx *Index) remove(tx execer, id string) error {
	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM notes_fts WHERE id = ?", id); err != nil {
			return err
		}
	}
	_, err := tx.Exec("DELETE FROM notes_meta WHERE id = ?", id)
	return err
}

func (idx *Index) insert(tx execer, note *models.Node, path string) error {
	tags := strings.Join(note.Tags, " ")
	if idx.useFTS {
		_, err := tx.Exec(`
			INSERT INTO notes_fts (id, path, title, content, tags)
			VALUES (?, ?, ?, ?, ?)
		`, note.ID, path, note.Title, note.Content, tags)
		if err != nil {
			return err
		}
	}

	var modified time.Time
	if t, ok := note.Time(); ok {
		modified = t.UTC()
	}
	_, err := tx.Exec(`
		INSERT INTO notes_meta (id, path, title, content, tags, status, pinned, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, path, note.Title, note.Content, tags, string(note.Status), note.Pinned, modified)
	return err
}

// IndexNote indexes or reindexes a note. path is the slash-joined titles of
// the folders containing it.
func (idx *Index) IndexNote(note *models.Node, path string) error {
	if !note.IsNote() {
		return nil
	}
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := idx.remove(tx, note.ID); err != nil {
		return err
	}
	if err := idx.insert(tx, note, path); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveNote removes a note from the index
func (idx *Index) RemoveNote(id string) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := idx.remove(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}

// Rebuild replaces the index contents with every note in nodes.
func (idx *Index) Rebuild(nodes []*models.Node) error {
	tx, err := idx.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if idx.useFTS {
		if _, err := tx.Exec("DELETE FROM notes_fts"); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM notes_meta"); err != nil {
		return err
	}

	var failed error
	var walk func(nodes []*models.Node, path []string)
	walk = func(nodes []*models.Node, path []string) {
		for _, n := range nodes {
			if failed != nil {
				return
			}
			if n.IsFolder() {
				walk(n.Children, append(path, n.Title))
				continue
			}
			failed = idx.insert(tx, n, strings.Join(path, "/"))
		}
	}
	walk(nodes, nil)
	if failed != nil {
		return fmt.Errorf("failed to index notes: %w", failed)
	}
	return tx.Commit()
}

// PathOf returns the folder path used when indexing the note with id.
func PathOf(nodes []*models.Node, id string) string {
	chain, _ := tree.Ancestors(nodes, id)
	titles := make([]string, len(chain))
	for i, f := range chain {
		titles[i] = f.Title
	}
	return strings.Join(titles, "/")
}

// Options for searching
type Options struct {
	Status models.NoteStatus
	Pinned bool
	Limit  int
}

// Search performs a full-text search
func (idx *Index) Search(query string, opts *Options) ([]Result, error) {
	if opts == nil {
		opts = &Options{Limit: 50}
	}
	if opts.Limit == 0 {
		opts.Limit = 50
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}, nil
	}

	if idx.useFTS {
		return idx.searchWithFTS(query, opts)
	}
	return idx.searchWithoutFTS(query, opts)
}

func filters(opts *Options, prefix string) ([]string, []any) {
	var conditions []string
	var args []any
	if opts.Status != "" {
		conditions = append(conditions, prefix+"status = ?")
		args = append(args, string(opts.Status))
	}
	if opts.Pinned {
		conditions = append(conditions, prefix+"pinned = 1")
	}
	return conditions, args
}

// ftsQuery quotes each term as a prefix match so user input is never parsed
// as FTS syntax.
func ftsQuery(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"*`
	}
	return strings.Join(terms, " ")
}

// searchWithFTS performs search using FTS5
func (idx *Index) searchWithFTS(query string, opts *Options) ([]Result, error) {
	conditions, args := filters(opts, "m.")
	conditions = append(conditions, "notes_fts MATCH ?")
	args = append(args, ftsQuery(query), opts.Limit)

	searchQuery := fmt.Sprintf(`
		SELECT
			m.id, m.path, m.title, m.status, m.pinned, m.modified_at,
			snippet(notes_fts, 3, '<match>', '</match>', '...', 32) as snippet
		FROM notes_fts f
		JOIN notes_meta m ON f.id = m.id
		WHERE %s
		ORDER BY rank
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	rows, err := idx.db.Query(searchQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		var status string
		if err := rows.Scan(&r.ID, &r.Path, &r.Title, &status, &r.Pinned, &r.Modified, &r.Snippet); err != nil {
			return nil, err
		}
		r.Status = models.NoteStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}

// searchWithoutFTS performs search using LIKE queries on metadata table
func (idx *Index) searchWithoutFTS(query string, opts *Options) ([]Result, error) {
	conditions, args := filters(opts, "")

	searchPattern := "%" + strings.Join(strings.Fields(query), "%") + "%"
	conditions = append(conditions, "(title LIKE ? OR content LIKE ? OR tags LIKE ? OR path LIKE ?)")
	args = append(args, searchPattern, searchPattern, searchPattern, searchPattern, opts.Limit)

	searchQuery := fmt.Sprintf(`
		SELECT id, path, title, status, pinned, modified_at
		FROM notes_meta
		WHERE %s
		ORDER BY modified_at DESC
		LIMIT ?
	`, strings.Join(conditions, " AND "))

	rows, err := idx.db.Query(searchQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []Result{}
	for rows.Next() {
		var r Result
		var status string
		if err := rows.Scan(&r.ID, &r.Path, &r.Title, &status, &r.Pinned, &r.Modified); err != nil {
			return nil, err
		}
		r.Status = models.NoteStatus(status)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Close closes the index
func (idx *Index) Close() error {
	return idx.db.Close()
}
