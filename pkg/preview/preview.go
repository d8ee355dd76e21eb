// Package preview renders note bodies for display: sanitized HTML, short
// plain-text snippets and checklist progress.
package preview

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/russross/blackfriday/v2"
)

var (
	checkboxPattern = regexp.MustCompile(`(?m)^(\s*[-*+] )\[([ xX])\] `)
	headingPattern  = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	fencePattern    = regexp.MustCompile("(?m)^```.*$")
	emphasisPattern = regexp.MustCompile("\\*\\*|__|[*_`~]")
	linkPattern     = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	spacePattern    = regexp.MustCompile(`\s+`)
)

var policy = bluemonday.UGCPolicy()

// HTML renders Markdown to sanitized HTML. Checklist items are rendered as
// ballot box characters since the Markdown engine has no task list support.
func HTML(markdown string) string {
	src := checkboxPattern.ReplaceAllStringFunc(markdown, func(m string) string {
		parts := checkboxPattern.FindStringSubmatch(m)
		box := "☐"
		if parts[2] != " " {
			box = "☑"
		}
		return parts[1] + box + " "
	})

	renderer := blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.UseXHTML | blackfriday.Smartypants | blackfriday.SmartypantsFractions,
	})
	unsafe := blackfriday.Run([]byte(src),
		blackfriday.WithRenderer(renderer),
		blackfriday.WithExtensions(blackfriday.CommonExtensions|blackfriday.HardLineBreak|blackfriday.Autolink|blackfriday.Strikethrough),
	)
	return string(policy.SanitizeBytes(unsafe))
}

// Plain strips Markdown syntax and collapses whitespace.
func Plain(markdown string) string {
	s := fencePattern.ReplaceAllString(markdown, "")
	s = checkboxPattern.ReplaceAllString(s, "$1")
	s = headingPattern.ReplaceAllString(s, "")
	s = linkPattern.ReplaceAllString(s, "$1")
	s = emphasisPattern.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "\n- ", "\n")
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// Snippet returns at most n runes of plain text, ending with an ellipsis
// when truncated.
func Snippet(markdown string, n int) string {
	s := Plain(markdown)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}

// Progress counts checklist items in a note body.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Complete reports whether every checklist item is ticked. Bodies without a
// checklist are never complete.
func (p Progress) Complete() bool { return p.Total > 0 && p.Done == p.Total }

// Checklist counts "- [ ]" and "- [x]" items.
func Checklist(markdown string) Progress {
	var p Progress
	for _, m := range checkboxPattern.FindAllStringSubmatch(markdown, -1) {
		p.Total++
		if m[2] != " " {
			p.Done++
		}
	}
	return p
}

// ExtractTitle returns the text of the first heading, or the first non-empty
// line, or "Untitled".
func ExtractTitle(markdown string) string {
	var first string
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		if loc := headingPattern.FindStringIndex(line); loc != nil {
			return strings.TrimSpace(line[loc[1]:])
		}
		if first == "" {
			first = line
		}
	}
	if first == "" {
		return "Untitled"
	}
	return Plain(first)
}
