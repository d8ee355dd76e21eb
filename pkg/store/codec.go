package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// record is the persisted shape of a node: plain nested JSON objects.
// Folders always carry children, notes always carry content and attachments.
type record struct {
	ID               string                    `json:"id"`
	Type             models.NodeKind           `json:"type"`
	Title            string                    `json:"title"`
	Pinned           bool                      `json:"pinned"`
	Timestamp        *int64                    `json:"timestamp,omitempty"`
	Children         *[]record                 `json:"children,omitempty"`
	Content          *string                   `json:"content,omitempty"`
	Status           models.NoteStatus         `json:"status,omitempty"`
	MediaAttachments *[]models.MediaAttachment `json:"mediaAttachments,omitempty"`
	Tags             []string                  `json:"tags,omitempty"`
	Priority         models.Priority           `json:"priority,omitempty"`
	DueDate          *int64                    `json:"dueDate,omitempty"`
}

func toRecord(n *models.Node) record {
	r := record{
		ID:        n.ID,
		Type:      n.Kind,
		Title:     n.Title,
		Pinned:    n.Pinned,
		Timestamp: n.Timestamp,
	}
	if n.IsFolder() {
		kids := make([]record, 0, len(n.Children))
		for _, c := range n.Children {
			kids = append(kids, toRecord(c))
		}
		r.Children = &kids
		return r
	}
	content := n.Content
	media := n.MediaAttachments
	if media == nil {
		media = []models.MediaAttachment{}
	}
	r.Content = &content
	r.Status = n.Status
	r.MediaAttachments = &media
	r.Tags = n.Tags
	r.Priority = n.Priority
	r.DueDate = n.DueDate
	return r
}

// Encode serializes the tree as a JSON array of nested records.
func Encode(nodes []*models.Node) ([]byte, error) {
	recs := make([]record, 0, len(nodes))
	for _, n := range nodes {
		recs = append(recs, toRecord(n))
	}
	data, err := json.Marshal(recs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return data, nil
}

// Repair describes one fix applied while decoding.
type Repair struct {
	Path    string `json:"path"`
	NodeID  string `json:"nodeId,omitempty"`
	Problem string `json:"problem"`
}

func (r Repair) String() string {
	if r.NodeID == "" {
		return fmt.Sprintf("%s: %s", r.Path, r.Problem)
	}
	return fmt.Sprintf("%s (%s): %s", r.Path, r.NodeID, r.Problem)
}

// Report lists the repairs made by Decode.
type Report struct {
	Repairs []Repair `json:"repairs"`
	Dropped int      `json:"dropped"`
}

// Clean reports whether the document decoded without any repair.
func (r Report) Clean() bool { return len(r.Repairs) == 0 }

func (r *Report) add(path, id, format string, args ...any) {
	r.Repairs = append(r.Repairs, Repair{Path: path, NodeID: id, Problem: fmt.Sprintf(format, args...)})
}

// Decode parses a stored document. Individual records that are malformed are
// repaired with defaults or dropped and listed in the report; only a document
// that is not a JSON array at all is an error. An empty document is an empty
// tree.
func Decode(data []byte) ([]*models.Node, Report, error) {
	var report Report
	if len(bytes.TrimSpace(data)) == 0 {
		return []*models.Node{}, report, nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, report, fmt.Errorf("failed to decode tree: %w", err)
	}
	d := &decoder{seen: make(map[string]bool), report: &report}
	return d.nodes(raws, ""), report, nil
}

type decoder struct {
	seen   map[string]bool
	report *Report
}

func (d *decoder) nodes(raws []json.RawMessage, parent string) []*models.Node {
	out := make([]*models.Node, 0, len(raws))
	for i, raw := range raws {
		path := fmt.Sprintf("%s[%d]", parent, i)
		if n := d.node(raw, path); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (d *decoder) node(raw json.RawMessage, path string) *models.Node {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		d.report.add(path, "", "not an object, dropped")
		d.report.Dropped++
		return nil
	}

	n := &models.Node{}

	id, ok := stringField(fields, "id")
	switch {
	case !ok || strings.TrimSpace(id) == "":
		id = models.NewID()
		d.report.add(path, id, "missing id, assigned a new one")
	case d.seen[id]:
		old := id
		id = models.NewID()
		d.report.add(path, id, "duplicate id %q, assigned a new one", old)
	}
	d.seen[id] = true
	n.ID = id

	kind, _ := stringField(fields, "type")
	_, hasChildren := fields["children"]
	switch models.NodeKind(kind) {
	case models.KindFolder, models.KindNote:
		n.Kind = models.NodeKind(kind)
	default:
		if hasChildren {
			n.Kind = models.KindFolder
		} else {
			n.Kind = models.KindNote
		}
		d.report.add(path, id, "unknown type %q, read as %s", kind, n.Kind)
	}

	if title, ok := stringField(fields, "title"); ok {
		n.Title = title
	} else {
		d.report.add(path, id, "missing title")
	}
	if v, ok := fields["pinned"]; ok {
		if err := json.Unmarshal(v, &n.Pinned); err != nil {
			d.report.add(path, id, "invalid pinned flag, cleared")
		}
	}
	n.Timestamp = d.millis(fields, "timestamp", path, id)

	if n.IsFolder() {
		var kids []json.RawMessage
		if v, ok := fields["children"]; ok {
			if err := json.Unmarshal(v, &kids); err != nil {
				d.report.add(path, id, "invalid children, emptied")
			}
		}
		n.Children = d.nodes(kids, path+".children")
		n.Timestamp = nil
		return n
	}

	d.note(n, fields, path)
	return n
}

func (d *decoder) note(n *models.Node, fields map[string]json.RawMessage, path string) {
	id := n.ID

	if content, ok := stringField(fields, "content"); ok {
		n.Content = content
	} else {
		d.report.add(path, id, "missing content, set to empty")
	}

	status, _ := stringField(fields, "status")
	n.Status = models.NoteStatus(status)
	if err := validation.Validate(n.Status,
		validation.Required,
		validation.In(models.StatusTodo, models.StatusInProgress, models.StatusDone),
	); err != nil {
		d.report.add(path, id, "status %q: %v, set to %s", status, err, models.StatusTodo)
		n.Status = models.StatusTodo
	}

	n.MediaAttachments = []models.MediaAttachment{}
	var media []json.RawMessage
	if v, ok := fields["mediaAttachments"]; !ok {
		d.report.add(path, id, "missing mediaAttachments, set to empty")
	} else if err := json.Unmarshal(v, &media); err != nil {
		d.report.add(path, id, "invalid mediaAttachments, set to empty")
	}
	for i, raw := range media {
		var a models.MediaAttachment
		err := json.Unmarshal(raw, &a)
		if err == nil {
			err = validateAttachment(a)
		}
		if err != nil {
			d.report.add(fmt.Sprintf("%s.mediaAttachments[%d]", path, i), id, "invalid attachment dropped: %v", err)
			continue
		}
		n.MediaAttachments = append(n.MediaAttachments, a)
	}

	if v, ok := fields["tags"]; ok {
		if err := json.Unmarshal(v, &n.Tags); err != nil {
			n.Tags = nil
			d.report.add(path, id, "invalid tags, cleared")
		}
	}
	priority, _ := stringField(fields, "priority")
	n.Priority = models.Priority(priority)
	if !n.Priority.Valid() {
		d.report.add(path, id, "unknown priority %q, cleared", priority)
		n.Priority = models.PriorityNone
	}
	n.DueDate = d.millis(fields, "dueDate", path, id)
}

func (d *decoder) millis(fields map[string]json.RawMessage, key, path, id string) *int64 {
	v, ok := fields[key]
	if !ok || string(v) == "null" {
		return nil
	}
	ms, ok := parseMillis(v)
	if !ok {
		d.report.add(path, id, "invalid %s, cleared", key)
		return nil
	}
	return &ms
}

// parseMillis reads a JSON number as epoch millis. Integers are taken exactly;
// fractional values are truncated when they fit in an int64.
func parseMillis(v json.RawMessage) (int64, bool) {
	if bytes.HasPrefix(bytes.TrimSpace(v), []byte(`"`)) {
		return 0, false
	}
	var num json.Number
	if err := json.Unmarshal(v, &num); err != nil {
		return 0, false
	}
	if ms, err := num.Int64(); err == nil {
		return ms, true
	}
	f, err := num.Float64()
	if err != nil || math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	v, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}
	return s, true
}

func validateAttachment(a models.MediaAttachment) error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.ID, validation.Required),
		validation.Field(&a.URI, validation.Required),
		validation.Field(&a.Width, validation.Min(0.0)),
		validation.Field(&a.Height, validation.Min(0.0)),
	)
}
