// Package format toggles Markdown tokens around a selection in plain text.
//
// Offsets are rune offsets into the text. Every function is pure and returns
// the new text together with the selection adjusted to cover the same
// characters the caller had selected.
package format

import (
	"fmt"
	"strings"
)

// Kind is a formatting token.
type Kind int

const (
	Bold Kind = iota
	Italic
	Code
	Heading
	Checklist
	Check
)

var kindNames = map[string]Kind{
	"bold":      Bold,
	"italic":    Italic,
	"code":      Code,
	"heading":   Heading,
	"checklist": Checklist,
	"check":     Check,
}

// ParseKind resolves a kind by name.
func ParseKind(name string) (Kind, error) {
	k, ok := kindNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown format kind %q", name)
	}
	return k, nil
}

func (k Kind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	return "unknown"
}

// Selection is a half-open rune range [Start, End). Start == End is a caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Empty reports whether the selection is a bare caret.
func (s Selection) Empty() bool { return s.Start == s.End }

func (s Selection) clamp(n int) Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}
	s.Start = min(max(s.Start, 0), n)
	s.End = min(max(s.End, 0), n)
	return s
}

const fence = "```"

// Toggle applies or removes kind around sel in text.
func Toggle(text string, sel Selection, kind Kind) (string, Selection) {
	r := []rune(text)
	sel = sel.clamp(len(r))
	switch kind {
	case Bold:
		return toggleInline(r, sel, "**")
	case Italic:
		return toggleInline(r, sel, "*")
	case Code:
		if strings.ContainsRune(string(r[sel.Start:sel.End]), '\n') {
			return toggleFence(r, sel)
		}
		return toggleInline(r, sel, "`")
	case Heading:
		return toggleLinePrefix(r, sel, headingPrefixLen, "# ")
	case Checklist:
		return toggleLinePrefix(r, sel, checklistPrefixLen, "- [ ] ")
	case Check:
		return toggleChecked(r, sel)
	}
	return text, sel
}

func toggleInline(r []rune, sel Selection, tok string) (string, Selection) {
	if sel.Empty() {
		return string(r), sel
	}
	w := len([]rune(tok))
	before, selected, after := string(r[:sel.Start]), string(r[sel.Start:sel.End]), string(r[sel.End:])

	// The selection includes the markers.
	if wrapped(selected, tok) {
		inner := string([]rune(selected)[w : len([]rune(selected))-w])
		return before + inner + after, Selection{Start: sel.Start, End: sel.End - 2*w}
	}
	// The markers sit just outside the selection.
	if surrounded(before, after, tok) {
		b := []rune(before)
		a := []rune(after)
		return string(b[:len(b)-w]) + selected + string(a[w:]),
			Selection{Start: sel.Start - w, End: sel.End - w}
	}
	return before + tok + selected + tok + after, Selection{Start: sel.Start + w, End: sel.End + w}
}

// wrapped reports whether s both starts and ends with tok. A single star only
// counts as italic when the star run is not a bare bold marker.
func wrapped(s, tok string) bool {
	n := len([]rune(s))
	w := len([]rune(tok))
	if n < 2*w || !strings.HasPrefix(s, tok) || !strings.HasSuffix(s, tok) {
		return false
	}
	if tok == "*" {
		return italicRun(leadingRun(s, '*')) && italicRun(trailingRun(s, '*'))
	}
	return true
}

func surrounded(before, after, tok string) bool {
	if !strings.HasSuffix(before, tok) || !strings.HasPrefix(after, tok) {
		return false
	}
	if tok == "*" {
		return italicRun(trailingRun(before, '*')) && italicRun(leadingRun(after, '*'))
	}
	return true
}

// italicRun reports whether a run of n stars carries an italic marker:
// "*" or "***" but not "**".
func italicRun(n int) bool { return n%2 == 1 }

func leadingRun(s string, c rune) int {
	n := 0
	for _, ch := range s {
		if ch != c {
			break
		}
		n++
	}
	return n
}

func trailingRun(s string, c rune) int {
	r := []rune(s)
	n := 0
	for i := len(r) - 1; i >= 0 && r[i] == c; i-- {
		n++
	}
	return n
}

func toggleFence(r []rune, sel Selection) (string, Selection) {
	before, selected, after := string(r[:sel.Start]), string(r[sel.Start:sel.End]), string(r[sel.End:])
	open, closing := fence+"\n", "\n"+fence
	w := len([]rune(open))
	if strings.HasPrefix(selected, open) && strings.HasSuffix(selected, closing) && len(selected) >= len(open)+len(closing) {
		inner := strings.TrimSuffix(strings.TrimPrefix(selected, open), closing)
		return before + inner + after, Selection{Start: sel.Start, End: sel.End - 2*w}
	}
	if strings.HasSuffix(before, open) && strings.HasPrefix(after, closing) {
		b := []rune(before)
		a := []rune(after)
		return string(b[:len(b)-w]) + selected + string(a[w:]), Selection{Start: sel.Start - w, End: sel.End - w}
	}
	return before + open + selected + closing + after, Selection{Start: sel.Start + w, End: sel.End + w}
}

// lineStart returns the offset just past the last newline before pos.
func lineStart(r []rune, pos int) int {
	for i := pos - 1; i >= 0; i-- {
		if r[i] == '\n' {
			return i + 1
		}
	}
	return 0
}

// headingPrefixLen returns the length of a "#".."######" plus space prefix.
func headingPrefixLen(line string) int {
	n := leadingRun(line, '#')
	if n == 0 || n > 6 || !strings.HasPrefix(line[n:], " ") {
		return 0
	}
	return n + 1
}

func checklistPrefixLen(line string) int {
	for _, p := range []string{"- [ ] ", "- [x] ", "- [X] "} {
		if strings.HasPrefix(line, p) {
			return len(p)
		}
	}
	return 0
}

// toggleLinePrefix adds or strips a prefix at the start of the line holding
// the selection start.
func toggleLinePrefix(r []rune, sel Selection, existing func(string) int, prefix string) (string, Selection) {
	ls := lineStart(r, sel.Start)
	head, line := string(r[:ls]), string(r[ls:])

	if n := existing(line); n > 0 {
		shift := func(p int) int { return max(p-n, ls) }
		return head + line[n:], Selection{Start: shift(sel.Start), End: shift(sel.End)}
	}
	w := len([]rune(prefix))
	return head + prefix + line, Selection{Start: sel.Start + w, End: sel.End + w}
}

// toggleChecked flips "[ ]" and "[x]" on a checklist line.
func toggleChecked(r []rune, sel Selection) (string, Selection) {
	ls := lineStart(r, sel.Start)
	head, line := string(r[:ls]), string(r[ls:])
	switch {
	case strings.HasPrefix(line, "- [ ] "):
		return head + "- [x] " + line[len("- [ ] "):], sel
	case strings.HasPrefix(line, "- [x] "), strings.HasPrefix(line, "- [X] "):
		return head + "- [ ] " + line[len("- [x] "):], sel
	}
	return string(r), sel
}
