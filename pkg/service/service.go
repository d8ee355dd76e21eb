package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-notes/pkg/events"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/search"
	"github.com/mattsolo1/grove-notes/pkg/store"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

// ErrCreateNotAllowed is returned when the depth policy forbids creating a
// node of the requested kind in a folder.
var ErrCreateNotAllowed = errors.New("creating this kind of node is not allowed here")

// Config holds service configuration
type Config struct {
	// MaxFolderDepth caps folder nesting for AddFolder. <= 0 is unlimited.
	MaxFolderDepth int
	// SaveDelay debounces writes. Zero saves synchronously after every
	// mutation.
	SaveDelay time.Duration
}

// DefaultConfig returns the settings the app ships with.
func DefaultConfig() Config {
	return Config{MaxFolderDepth: models.DefaultMaxFolderDepth, SaveDelay: 500 * time.Millisecond}
}

// Service owns the in-memory tree. Mutations run through the pure tree
// algebra one at a time; each change publishes an event and schedules a save.
// Writers are serialized by writeMu until their index update and event are
// done, so both follow the order of the tree changes. mu guards the fields
// below and is always taken after writeMu.
type Service struct {
	writeMu sync.Mutex

	mu     sync.Mutex
	nodes  []*models.Node
	dirty  bool
	timer  *time.Timer
	closed bool

	store  store.Store
	bus    *events.Bus
	index  *search.Index
	logger *logrus.Entry
	config Config
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithBus publishes change events on bus.
func WithBus(bus *events.Bus) Option { return func(s *Service) { s.bus = bus } }

// WithIndex keeps idx in sync with the tree.
func WithIndex(idx *search.Index) Option { return func(s *Service) { s.index = idx } }

// WithLogger sets the logger.
func WithLogger(logger *logrus.Entry) Option { return func(s *Service) { s.logger = logger } }

// WithConfig overrides DefaultConfig.
func WithConfig(cfg Config) Option { return func(s *Service) { s.config = cfg } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a service over st and loads the tree from it.
func New(ctx context.Context, st store.Store, options ...Option) (*Service, error) {
	s := &Service{
		store:  st,
		config: DefaultConfig(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		logger := logrus.New()
		logger.SetLevel(logrus.WarnLevel)
		s.logger = logrus.NewEntry(logger)
	}

	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Snapshot returns the current tree. The returned nodes are shared with the
// service and must not be modified.
func (s *Service) Snapshot() []*models.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nodes
}

// Find looks a node up by id.
func (s *Service) Find(id string) (*models.Node, bool) {
	return tree.FindByID(s.Snapshot(), id)
}

// AllowedCreateKinds reports what may be created in folderID under the
// configured depth policy.
func (s *Service) AllowedCreateKinds(folderID string) tree.CreateKinds {
	return tree.AllowedCreateKinds(s.Snapshot(), folderID, s.config.MaxFolderDepth)
}

// Reload replaces the tree with the stored one. Repairs made while decoding
// are logged and the repaired tree is scheduled for saving.
func (s *Service) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	nodes, report, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load tree: %w", err)
	}
	for _, r := range report.Repairs {
		s.logger.WithFields(logrus.Fields{
			"path": r.Path,
			"id":   r.NodeID,
		}).Warn(r.Problem)
	}

	s.mu.Lock()
	s.nodes = nodes
	if !report.Clean() {
		s.logger.WithField("repairs", len(report.Repairs)).Info("Repaired stored tree")
		s.scheduleSaveLocked()
	}
	s.mu.Unlock()
	s.saveIfImmediate()

	if s.index != nil {
		if err := s.index.Rebuild(nodes); err != nil {
			s.logger.WithError(err).Warn("Failed to rebuild search index")
		}
	}
	s.bus.Publish(events.Event{Type: events.TreeReloaded, At: s.now()})
	return nil
}

// apply runs a pure mutation. When the tree changed it stores the result,
// schedules a save, syncs the index and publishes ev for id.
func (s *Service) apply(ev events.Type, id string, fn func([]*models.Node) ([]*models.Node, bool, error)) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	before := s.nodes
	next, changed, err := fn(before)
	if err != nil || !changed {
		s.mu.Unlock()
		return false, err
	}
	s.nodes = next
	s.scheduleSaveLocked()
	s.mu.Unlock()
	s.saveIfImmediate()

	s.syncIndex(ev, id, before, next)
	s.bus.Publish(events.Event{Type: ev, NodeID: id, At: s.now()})
	s.logger.WithFields(logrus.Fields{"event": ev, "id": id}).Debug("Tree changed")
	return true, nil
}

func (s *Service) syncIndex(ev events.Type, id string, before, after []*models.Node) {
	if s.index == nil {
		return
	}
	var err error
	if n, ok := tree.FindByID(after, id); ok && n.IsNote() && ev != events.NodeMoved {
		err = s.index.IndexNote(n, search.PathOf(after, id))
	} else if old, ok := tree.FindByID(before, id); ok && old.IsNote() && ev == events.NodeDeleted {
		err = s.index.RemoveNote(id)
	} else {
		// folder changes move or drop every note underneath
		err = s.index.Rebuild(after)
	}
	if err != nil {
		s.logger.WithError(err).WithField("id", id).Warn("Failed to update search index")
	}
}

// AddFolder creates a folder under parentID ("" for the root).
func (s *Service) AddFolder(parentID, title string) (*models.Node, error) {
	if !s.AllowedCreateKinds(parentID).Folder {
		if _, ok := tree.FolderLevel(s.Snapshot(), parentID); !ok {
			return nil, fmt.Errorf("add folder to %s: %w", parentID, tree.ErrNotFound)
		}
		return nil, fmt.Errorf("add folder to %s: %w", parentID, ErrCreateNotAllowed)
	}
	folder := models.NewFolder(title)
	if err := s.insert(parentID, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// AddNote creates a note under parentID ("" for the root).
func (s *Service) AddNote(parentID, title, content string) (*models.Node, error) {
	note := models.NewNote(title, content, s.now())
	if err := s.insert(parentID, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *Service) insert(parentID string, n *models.Node) error {
	changed, err := s.apply(events.NodeCreated, n.ID, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.Insert(nodes, parentID, n)
		return out, changed, nil
	})
	if err != nil {
		return err
	}
	if !changed {
		return fmt.Errorf("add %s to %s: %w", n.Kind, parentID, tree.ErrNotFound)
	}
	return nil
}

// Import inserts already-built subtrees under parentID, skipping any whose
// ids collide with the tree. It returns how many were inserted.
func (s *Service) Import(parentID string, nodes []*models.Node) (int, error) {
	if _, ok := tree.FolderLevel(s.Snapshot(), parentID); !ok {
		return 0, fmt.Errorf("import into %s: %w", parentID, tree.ErrNotFound)
	}
	added := 0
	for _, n := range nodes {
		changed, err := s.apply(events.NodeCreated, n.ID, func(nodes []*models.Node) ([]*models.Node, bool, error) {
			out, changed := tree.Insert(nodes, parentID, n)
			return out, changed, nil
		})
		if err != nil {
			return added, err
		}
		if changed {
			added++
		} else {
			s.logger.WithField("id", n.ID).Warn("Skipped imported node with a duplicate id")
		}
	}
	return added, nil
}

// Remove deletes id and its subtree. Unknown ids are ignored.
func (s *Service) Remove(id string) bool {
	changed, _ := s.apply(events.NodeDeleted, id, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.Remove(nodes, id)
		return out, changed, nil
	})
	return changed
}

// TogglePin flips the pinned flag of id.
func (s *Service) TogglePin(id string) bool {
	changed, _ := s.apply(events.NodeUpdated, id, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.TogglePin(nodes, id)
		return out, changed, nil
	})
	return changed
}

// Move reparents itemID under targetID ("" for the root). A missing target
// leaves the tree untouched and returns tree.ErrNotFound.
func (s *Service) Move(itemID, targetID string) (bool, error) {
	return s.apply(events.NodeMoved, itemID, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		return tree.Move(nodes, itemID, targetID)
	})
}

// Rename retitles id.
func (s *Service) Rename(id, title string) bool {
	changed, _ := s.apply(events.NodeUpdated, id, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.Rename(nodes, id, title, s.now())
		return out, changed, nil
	})
	return changed
}

// SetStatus moves a note to another board column.
func (s *Service) SetStatus(id string, status models.NoteStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("unknown status %q", status)
	}
	return s.apply(events.NodeUpdated, id, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.SetStatus(nodes, id, status)
		return out, changed, nil
	})
}

// UpdateNote sets note fields and refreshes the timestamp when something
// changed.
func (s *Service) UpdateNote(id string, u tree.NoteUpdate) (bool, error) {
	if u.Priority != nil && !u.Priority.Valid() {
		return false, fmt.Errorf("unknown priority %q", *u.Priority)
	}
	return s.apply(events.NodeUpdated, id, func(nodes []*models.Node) ([]*models.Node, bool, error) {
		out, changed := tree.UpdateNote(nodes, id, u, s.now())
		return out, changed, nil
	})
}

// Search looks notes up by title and body. Without an index it falls back to
// title matching.
func (s *Service) Search(query string, opts *search.Options) ([]search.Result, error) {
	if s.index != nil {
		return s.index.Search(query, opts)
	}
	nodes := s.Snapshot()
	results := []search.Result{}
	for _, n := range tree.FlattenNotes(tree.FilterByText(nodes, query)) {
		if opts != nil && ((opts.Status != "" && n.Status != opts.Status) || (opts.Pinned && !n.Pinned)) {
			continue
		}
		r := search.Result{ID: n.ID, Title: n.Title, Path: search.PathOf(nodes, n.ID), Status: n.Status, Pinned: n.Pinned}
		if t, ok := n.Time(); ok {
			r.Modified = t
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Service) scheduleSaveLocked() {
	s.dirty = true
	if s.closed || s.config.SaveDelay <= 0 {
		return
	}
	if s.timer != nil {
		s.timer.Reset(s.config.SaveDelay)
		return
	}
	s.timer = time.AfterFunc(s.config.SaveDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Flush(ctx); err != nil {
			s.logger.WithError(err).Error("Failed to save tree")
		}
	})
}

// saveIfImmediate saves right away when debouncing is off. A failed save
// leaves the tree dirty for the next Flush.
func (s *Service) saveIfImmediate() {
	if s.config.SaveDelay > 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.logger.WithError(err).Error("Failed to save tree")
	}
}

// Dirty reports whether there are changes not yet saved.
func (s *Service) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// Flush saves pending changes now. Saving is skipped when nothing changed
// since the last successful save.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if !s.dirty {
		return nil
	}
	if err := s.store.Save(ctx, s.nodes); err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	s.dirty = false
	s.logger.WithField("nodes", tree.Count(s.nodes)).Debug("Saved tree")
	return nil
}

// Close flushes pending changes and stops the save timer. The store and bus
// belong to the caller and stay open.
func (s *Service) Close(ctx context.Context) error {
	err := s.Flush(ctx)
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return err
}
