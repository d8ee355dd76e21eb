package tree

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-notes/pkg/models"
)

func stamped(id string, t time.Time) *models.Node {
	n := note(id, id)
	n.Timestamp = models.Millis(t)
	return n
}

func TestGroupByRecency(t *testing.T) {
	now := testNow
	today := StartOfDay(now)

	notes := []*models.Node{
		stamped("today", today),
		stamped("yesterday", today.AddDate(0, 0, -1)),
		stamped("old", today.AddDate(0, 0, -40)),
	}

	b := GroupByRecency(notes, now)
	require.Len(t, b.Today, 1)
	require.Len(t, b.Yesterday, 1)
	require.Len(t, b.Older, 1)
	assert.Equal(t, "today", b.Today[0].ID)
	assert.Equal(t, "yesterday", b.Yesterday[0].ID)
	assert.Equal(t, "old", b.Older[0].ID)

	four := b.FourWay()
	assert.Empty(t, four.Previous30Days)
	assert.Len(t, four.Older, 1)
}

func TestBucketBoundaries(t *testing.T) {
	now := testNow
	today := StartOfDay(now)

	tests := []struct {
		name string
		at   time.Time
		want Bucket
	}{
		{"just before midnight yesterday", today.Add(-time.Millisecond), BucketYesterday},
		{"start of yesterday", today.AddDate(0, 0, -1), BucketYesterday},
		{"just before yesterday", today.AddDate(0, 0, -1).Add(-time.Millisecond), BucketLast7},
		{"seven days back", today.AddDate(0, 0, -7), BucketLast7},
		{"eight days back", today.AddDate(0, 0, -8), BucketLast30},
		{"thirty days back", today.AddDate(0, 0, -30), BucketLast30},
		{"thirty one days back", today.AddDate(0, 0, -31), BucketOlder},
		{"future", now.Add(72 * time.Hour), BucketToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BucketOf(stamped("n", tt.at), now))
		})
	}
}

func TestMissingTimestampCountsAsToday(t *testing.T) {
	n := note("n", "n")
	n.Timestamp = nil

	b := GroupByRecency([]*models.Node{n}, testNow)
	assert.Len(t, b.Today, 1)
}

func TestBucketsAreExhaustive(t *testing.T) {
	var notes []*models.Node
	for d := 0; d < 60; d++ {
		notes = append(notes, stamped("n", testNow.AddDate(0, 0, -d)))
	}

	b := GroupByRecency(notes, testNow)
	assert.Equal(t, len(notes), b.Len())

	three := b.ThreeWay()
	assert.Equal(t, len(notes), len(three.Today)+len(three.Yesterday)+len(three.Earlier))

	four := b.FourWay()
	assert.Equal(t, len(notes), len(four.Today)+len(four.Yesterday)+len(four.Previous30Days)+len(four.Older))
}

func TestSectionsSkipEmptyBuckets(t *testing.T) {
	b := GroupByRecency([]*models.Node{stamped("n", testNow)}, testNow)

	sections := b.Sections()
	require.Len(t, sections, 1)
	assert.Equal(t, "Today", sections[0].Label)
}

func TestProjectionSections(t *testing.T) {
	today := StartOfDay(testNow)
	b := GroupByRecency([]*models.Node{
		stamped("week", today.AddDate(0, 0, -3)),
		stamped("month", today.AddDate(0, 0, -20)),
		stamped("old", today.AddDate(0, 0, -90)),
	}, testNow)

	four := b.FourWay().Sections()
	require.Len(t, four, 2)
	assert.Equal(t, "Previous 30 Days", four[0].Label)
	assert.Len(t, four[0].Notes, 2)
	assert.Equal(t, "Older", four[1].Label)

	three := b.ThreeWay().Sections()
	require.Len(t, three, 1)
	assert.Equal(t, "Earlier", three[0].Label)
	assert.Len(t, three[0].Notes, 3)
}
