package frontmatter

import (
	"reflect"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantFM   *Frontmatter
		wantBody string
		wantErr  bool
	}{
		{
			name: "valid frontmatter",
			content: `---
id: 7b1c
title: Standup
pinned: true
status: inprogress
priority: high
tags: [work, daily]
modified: 2024-01-02 11:00:00
---

# Standup

- [ ] yesterday`,
			wantFM: &Frontmatter{
				ID:       "7b1c",
				Title:    "Standup",
				Pinned:   true,
				Status:   "inprogress",
				Priority: "high",
				Tags:     []string{"work", "daily"},
				Modified: "2024-01-02 11:00:00",
			},
			wantBody: "# Standup\n\n- [ ] yesterday",
			wantErr:  false,
		},
		{
			name:     "no frontmatter",
			content:  "# Just a title\n\nSome content.",
			wantFM:   nil,
			wantBody: "# Just a title\n\nSome content.",
			wantErr:  false,
		},
		{
			name: "invalid yaml",
			content: `---
id: test
title: [invalid
---

Body`,
			wantFM: nil,
			wantBody: `---
id: test
title: [invalid
---

Body`,
			wantErr: true,
		},
		{
			name: "minimal frontmatter",
			content: `---
id: minimal
title: Minimal Note
---
Content`,
			wantFM: &Frontmatter{
				ID:    "minimal",
				Title: "Minimal Note",
				Tags:  []string{},
			},
			wantBody: "Content",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFM, gotBody, err := Parse(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(gotFM, tt.wantFM) {
				t.Errorf("Parse() gotFM = %+v, want %+v", gotFM, tt.wantFM)
			}
			if gotBody != tt.wantBody {
				t.Errorf("Parse() gotBody = %q, want %q", gotBody, tt.wantBody)
			}
		})
	}
}

func TestBuildContentRoundTrip(t *testing.T) {
	fm := &Frontmatter{
		ID:       "abc",
		Title:    "Title: with colon",
		Pinned:   true,
		Status:   "done",
		Tags:     []string{"a", "b"},
		Modified: "2024-01-01 10:00:00",
		Attachments: []Attachment{
			{ID: "m1", URI: "file:///tmp/a.png", Width: 320, Height: 200, X: 4, Y: 8},
		},
	}
	body := "# Heading\n\nBody text\n"

	content, err := BuildContent(fm, body)
	if err != nil {
		t.Fatalf("BuildContent() error = %v", err)
	}

	gotFM, gotBody, err := Parse(content)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(gotFM, fm) {
		t.Errorf("round trip frontmatter = %+v, want %+v", gotFM, fm)
	}
	if gotBody != body {
		t.Errorf("round trip body = %q, want %q", gotBody, body)
	}
}

func TestTimestamps(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	s := FormatTimestamp(ts)
	if s != "2024-05-06 07:08:09" {
		t.Errorf("FormatTimestamp() = %q", s)
	}

	parsed, err := ParseTimestamp(s)
	if err != nil || !parsed.Equal(ts) {
		t.Errorf("ParseTimestamp(%q) = %v, %v", s, parsed, err)
	}

	parsed, err = ParseTimestamp("2024-05-06T07:08:09Z")
	if err != nil || !parsed.Equal(ts) {
		t.Errorf("ParseTimestamp(rfc3339) = %v, %v", parsed, err)
	}

	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Error("expected error for unparseable timestamp")
	}
}

func TestMergeTags(t *testing.T) {
	got := MergeTags([]string{"a", " b "}, nil, []string{"b", "", "c"})
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MergeTags() = %v, want %v", got, want)
	}
}
