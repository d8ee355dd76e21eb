package frontmatter

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var frontmatterPattern = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n?(.*)`)

// Attachment is the frontmatter form of a media attachment
type Attachment struct {
	ID     string  `yaml:"id"`
	URI    string  `yaml:"uri"`
	Width  float64 `yaml:"width,omitempty"`
	Height float64 `yaml:"height,omitempty"`
	X      float64 `yaml:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty"`
}

// Frontmatter represents the structured metadata at the beginning of an exported note
type Frontmatter struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Pinned      bool         `yaml:"pinned,omitempty"`
	Status      string       `yaml:"status,omitempty"`
	Priority    string       `yaml:"priority,omitempty"`
	Tags        []string     `yaml:"tags,flow"`
	Modified    string       `yaml:"modified,omitempty"`
	Due         string       `yaml:"due,omitempty"`
	Attachments []Attachment `yaml:"attachments,omitempty"`
}

// Parse extracts frontmatter from content and returns the parsed data and body
func Parse(content string) (*Frontmatter, string, error) {
	matches := frontmatterPattern.FindStringSubmatch(content)
	if len(matches) != 3 {
		// No frontmatter found
		return nil, content, nil
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(matches[1]), &fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter: %w", err)
	}

	// Ensure arrays are never nil
	if fm.Tags == nil {
		fm.Tags = []string{}
	}

	return &fm, strings.TrimPrefix(matches[2], "\n"), nil
}

// Build creates the YAML frontmatter block, delimiters included
func Build(fm *Frontmatter) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(fm); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString("---")
	return buf.String(), nil
}

// BuildContent combines frontmatter and body content into a complete document
func BuildContent(fm *Frontmatter, bodyContent string) (string, error) {
	head, err := Build(fm)
	if err != nil {
		return "", err
	}
	return head + "\n\n" + bodyContent, nil
}

const timestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp formats a time.Time into the standard frontmatter timestamp format
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// ParseTimestamp parses a frontmatter timestamp. Both the standard layout
// (read as UTC) and RFC 3339 are accepted.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// MergeTags combines multiple tag sources and removes duplicates
func MergeTags(sources ...[]string) []string {
	seen := make(map[string]bool)
	result := []string{}

	for _, tags := range sources {
		for _, tag := range tags {
			tag = strings.TrimSpace(tag)
			if tag != "" && !seen[tag] {
				seen[tag] = true
				result = append(result, tag)
			}
		}
	}

	return result
}
