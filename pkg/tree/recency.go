package tree

import (
	"time"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

// Bucket names a recency range.
type Bucket string

const (
	BucketToday     Bucket = "today"
	BucketYesterday Bucket = "yesterday"
	BucketLast7     Bucket = "last7"
	BucketLast30    Bucket = "last30"
	BucketOlder     Bucket = "older"
)

// Buckets partitions notes by age. Every note lands in exactly one bucket.
type Buckets struct {
	Today     []*models.Node `json:"today"`
	Yesterday []*models.Node `json:"yesterday"`
	Last7     []*models.Node `json:"last7"`
	Last30    []*models.Node `json:"last30"`
	Older     []*models.Node `json:"older"`
}

// BucketOf classifies a single note against day boundaries derived from now.
// Notes without a timestamp count as today.
func BucketOf(n *models.Node, now time.Time) Bucket {
	t, ok := n.Time()
	if !ok {
		return BucketToday
	}
	t = t.In(now.Location())
	today := StartOfDay(now)
	switch {
	case !t.Before(today):
		return BucketToday
	case !t.Before(today.AddDate(0, 0, -1)):
		return BucketYesterday
	case !t.Before(today.AddDate(0, 0, -7)):
		return BucketLast7
	case !t.Before(today.AddDate(0, 0, -30)):
		return BucketLast30
	default:
		return BucketOlder
	}
}

// GroupByRecency partitions a flat note sequence into recency buckets,
// preserving input order inside each bucket.
func GroupByRecency(notes []*models.Node, now time.Time) Buckets {
	b := Buckets{
		Today:     []*models.Node{},
		Yesterday: []*models.Node{},
		Last7:     []*models.Node{},
		Last30:    []*models.Node{},
		Older:     []*models.Node{},
	}
	for _, n := range notes {
		switch BucketOf(n, now) {
		case BucketToday:
			b.Today = append(b.Today, n)
		case BucketYesterday:
			b.Yesterday = append(b.Yesterday, n)
		case BucketLast7:
			b.Last7 = append(b.Last7, n)
		case BucketLast30:
			b.Last30 = append(b.Last30, n)
		default:
			b.Older = append(b.Older, n)
		}
	}
	return b
}

// Len returns the number of notes across all buckets.
func (b Buckets) Len() int {
	return len(b.Today) + len(b.Yesterday) + len(b.Last7) + len(b.Last30) + len(b.Older)
}

// Section is a labelled, ordered slice of notes for list rendering.
type Section struct {
	Label string         `json:"label"`
	Notes []*models.Node `json:"notes"`
}

// FourWay is the list-screen grouping.
type FourWay struct {
	Today          []*models.Node `json:"today"`
	Yesterday      []*models.Node `json:"yesterday"`
	Previous30Days []*models.Node `json:"previous30Days"`
	Older          []*models.Node `json:"older"`
}

// FourWay folds last7 and last30 into a single "previous 30 days" bucket.
func (b Buckets) FourWay() FourWay {
	return FourWay{
		Today:          b.Today,
		Yesterday:      b.Yesterday,
		Previous30Days: concat(b.Last7, b.Last30),
		Older:          b.Older,
	}
}

// ThreeWay is the sidebar grouping.
type ThreeWay struct {
	Today     []*models.Node `json:"today"`
	Yesterday []*models.Node `json:"yesterday"`
	Earlier   []*models.Node `json:"earlier"`
}

// ThreeWay folds everything before yesterday into "earlier".
func (b Buckets) ThreeWay() ThreeWay {
	return ThreeWay{
		Today:     b.Today,
		Yesterday: b.Yesterday,
		Earlier:   concat(b.Last7, b.Last30, b.Older),
	}
}

// Sections returns the non-empty buckets in display order.
func (b Buckets) Sections() []Section {
	return nonEmpty(
		Section{Label: "Today", Notes: b.Today},
		Section{Label: "Yesterday", Notes: b.Yesterday},
		Section{Label: "Previous 7 Days", Notes: b.Last7},
		Section{Label: "Previous 30 Days", Notes: b.Last30},
		Section{Label: "Older", Notes: b.Older},
	)
}

// Sections returns the non-empty groups in display order.
func (f FourWay) Sections() []Section {
	return nonEmpty(
		Section{Label: "Today", Notes: f.Today},
		Section{Label: "Yesterday", Notes: f.Yesterday},
		Section{Label: "Previous 30 Days", Notes: f.Previous30Days},
		Section{Label: "Older", Notes: f.Older},
	)
}

// Sections returns the non-empty groups in display order.
func (t ThreeWay) Sections() []Section {
	return nonEmpty(
		Section{Label: "Today", Notes: t.Today},
		Section{Label: "Yesterday", Notes: t.Yesterday},
		Section{Label: "Earlier", Notes: t.Earlier},
	)
}

func nonEmpty(all ...Section) []Section {
	out := []Section{}
	for _, s := range all {
		if len(s.Notes) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func concat(parts ...[]*models.Node) []*models.Node {
	out := []*models.Node{}
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
