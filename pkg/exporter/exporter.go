// Package exporter writes the notes tree to a directory of Markdown files and
// reads such a directory back.
//
// Folders become directories holding a .folder.yaml with their id, title,
// pinned flag and child order. Notes become Markdown files with YAML
// frontmatter.
package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/mattsolo1/grove-notes/pkg/frontmatter"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/preview"
)

// FolderMetaFile holds folder metadata inside each exported directory.
const FolderMetaFile = ".folder.yaml"

// folderMeta is the content of FolderMetaFile. The export root carries only
// Order.
type folderMeta struct {
	ID     string   `yaml:"id,omitempty"`
	Title  string   `yaml:"title,omitempty"`
	Pinned bool     `yaml:"pinned,omitempty"`
	Order  []string `yaml:"order"`
}

// Stats counts what was written or read.
type Stats struct {
	Folders int `json:"folders"`
	Notes   int `json:"notes"`
}

// Options controls Export.
type Options struct {
	Format models.FilenameFormat
	Logger *logrus.Entry
}

type exporter struct {
	format models.FilenameFormat
	logger *logrus.Entry
	stats  Stats
}

// Export writes nodes under dir, creating it if needed.
func Export(nodes []*models.Node, dir string, opts Options) (Stats, error) {
	e := &exporter{format: opts.Format, logger: opts.Logger}
	if !e.format.Valid() {
		e.format = models.FilenameFormatTitle
	}
	if e.logger == nil {
		e.logger = logrus.NewEntry(logrus.New())
	}
	if err := e.writeFolder(dir, folderMeta{}, nodes); err != nil {
		return e.stats, err
	}
	return e.stats, nil
}

func (e *exporter) writeFolder(dir string, meta folderMeta, children []*models.Node) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	used := map[string]bool{FolderMetaFile: true}
	meta.Order = []string{}
	for _, n := range children {
		var name string
		if n.IsFolder() {
			name = unique(used, baseName(n.Title), "")
			sub := folderMeta{ID: n.ID, Title: n.Title, Pinned: n.Pinned}
			if err := e.writeFolder(filepath.Join(dir, name), sub, n.Children); err != nil {
				return err
			}
			e.stats.Folders++
		} else {
			name = unique(used, e.noteBase(n), ".md")
			if err := e.writeNote(filepath.Join(dir, name), n); err != nil {
				return err
			}
			e.stats.Notes++
		}
		meta.Order = append(meta.Order, name)
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode folder metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, FolderMetaFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write folder metadata: %w", err)
	}
	return nil
}

func (e *exporter) writeNote(path string, n *models.Node) error {
	fm := &frontmatter.Frontmatter{
		ID:       n.ID,
		Title:    n.Title,
		Pinned:   n.Pinned,
		Status:   string(n.Status),
		Priority: string(n.Priority),
		Tags:     n.Tags,
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if t, ok := n.Time(); ok {
		fm.Modified = frontmatter.FormatTimestamp(t)
	}
	if t, ok := n.Due(); ok {
		fm.Due = frontmatter.FormatTimestamp(t)
	}
	for _, a := range n.MediaAttachments {
		fm.Attachments = append(fm.Attachments, frontmatter.Attachment(a))
	}

	content, err := frontmatter.BuildContent(fm, n.Content)
	if err != nil {
		return fmt.Errorf("failed to build %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	e.logger.WithField("path", path).Debug("Exported note")
	return nil
}

func baseName(title string) string {
	if s := slug.Make(title); s != "" {
		return s
	}
	return "untitled"
}

// noteBase returns the file name without extension for the configured format.
func (e *exporter) noteBase(n *models.Node) string {
	t, ok := n.Time()
	if !ok {
		t = time.Unix(0, 0)
	}
	t = t.UTC()
	switch e.format {
	case models.FilenameFormatID:
		// ids come from stored data and frontmatter, so they can hold separators
		return baseName(n.ID)
	case models.FilenameFormatDateTitle:
		return t.Format("20060102") + "-" + baseName(n.Title)
	case models.FilenameFormatTimestampTitle:
		return t.Format("20060102-150405") + "-" + baseName(n.Title)
	default:
		return baseName(n.Title)
	}
}

// unique returns base+ext, or base-N+ext if that is already taken.
func unique(used map[string]bool, base, ext string) string {
	name := base + ext
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
	used[name] = true
	return name
}

// ImportOptions controls Import.
type ImportOptions struct {
	// Existing ids are treated as taken; colliding imports get fresh ids.
	Existing []*models.Node
	Logger   *logrus.Entry
}

type importer struct {
	taken  map[string]bool
	logger *logrus.Entry
	stats  Stats
}

// Import reads a directory written by Export. Markdown files without
// frontmatter are accepted too: their title comes from the first heading or
// line, falling back to the file name.
func Import(dir string, opts ImportOptions) ([]*models.Node, Stats, error) {
	im := &importer{taken: map[string]bool{}, logger: opts.Logger}
	if im.logger == nil {
		im.logger = logrus.NewEntry(logrus.New())
	}
	var mark func([]*models.Node)
	mark = func(nodes []*models.Node) {
		for _, n := range nodes {
			im.taken[n.ID] = true
			mark(n.Children)
		}
	}
	mark(opts.Existing)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, im.stats, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, im.stats, fmt.Errorf("%s is not a directory", dir)
	}

	_, nodes, err := im.readFolder(dir)
	return nodes, im.stats, err
}

func (im *importer) claim(id string) string {
	if id == "" || im.taken[id] {
		id = models.NewID()
	}
	im.taken[id] = true
	return id
}

func (im *importer) readFolder(dir string) (folderMeta, []*models.Node, error) {
	var meta folderMeta
	if data, err := os.ReadFile(filepath.Join(dir, FolderMetaFile)); err == nil {
		if err := yaml.Unmarshal(data, &meta); err != nil {
			im.logger.WithError(err).WithField("dir", dir).Warn("Ignoring unreadable folder metadata")
			meta = folderMeta{}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return meta, nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}
	byName := map[string]os.DirEntry{}
	var rest []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !entry.IsDir() && filepath.Ext(name) != ".md" {
			continue
		}
		byName[name] = entry
		rest = append(rest, name)
	}

	var order []string
	seen := map[string]bool{}
	for _, name := range meta.Order {
		if _, ok := byName[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if !seen[name] {
			order = append(order, name)
		}
	}

	nodes := []*models.Node{}
	for _, name := range order {
		path := filepath.Join(dir, name)
		if byName[name].IsDir() {
			sub, kids, err := im.readFolder(path)
			if err != nil {
				return meta, nil, err
			}
			title := sub.Title
			if title == "" {
				title = name
			}
			nodes = append(nodes, &models.Node{
				ID:       im.claim(sub.ID),
				Kind:     models.KindFolder,
				Title:    title,
				Pinned:   sub.Pinned,
				Children: kids,
			})
			im.stats.Folders++
			continue
		}
		note, err := im.readNote(path)
		if err != nil {
			return meta, nil, err
		}
		nodes = append(nodes, note)
		im.stats.Notes++
	}
	return meta, nodes, nil
}

func (im *importer) readNote(path string) (*models.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat note: %w", err)
	}
	log := im.logger.WithField("path", path)

	fm, body, err := frontmatter.Parse(string(data))
	if err != nil {
		log.WithError(err).Warn("Ignoring invalid frontmatter")
		fm, body = nil, string(data)
	}
	if fm == nil {
		fm = &frontmatter.Frontmatter{}
	}

	n := models.NewNote(fm.Title, body, info.ModTime())
	n.ID = im.claim(fm.ID)
	n.Pinned = fm.Pinned
	if n.Title == "" {
		n.Title = strings.TrimSuffix(filepath.Base(path), ".md")
		if strings.TrimSpace(body) != "" {
			n.Title = preview.ExtractTitle(body)
		}
	}
	if s := models.NoteStatus(fm.Status); s.Valid() {
		n.Status = s
	} else if fm.Status != "" {
		log.WithField("status", fm.Status).Warn("Unknown status, using todo")
	}
	if p := models.Priority(fm.Priority); p.Valid() {
		n.Priority = p
	}
	if len(fm.Tags) > 0 {
		n.Tags = frontmatter.MergeTags(fm.Tags)
	}
	if fm.Modified != "" {
		if t, err := frontmatter.ParseTimestamp(fm.Modified); err == nil {
			n.Timestamp = models.Millis(t)
		}
	}
	if fm.Due != "" {
		if t, err := frontmatter.ParseTimestamp(fm.Due); err == nil {
			n.DueDate = models.Millis(t)
		}
	}
	for _, a := range fm.Attachments {
		n.MediaAttachments = append(n.MediaAttachments, models.MediaAttachment(a))
	}
	return n, nil
}
