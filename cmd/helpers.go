package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// resolveID accepts a full id or a unique id prefix. "/" and "" name the root.
func resolveID(nodes []*models.Node, arg string) (string, error) {
	if arg == "" || arg == "/" {
		return "", nil
	}
	if _, ok := tree.FindByID(nodes, arg); ok {
		return arg, nil
	}
	var matches []string
	for _, id := range tree.IDs(nodes) {
		if strings.HasPrefix(id, arg) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no node matches %q: %w", arg, tree.ErrNotFound)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	return nil
}

// readText returns value, or stdin when value is "-".
func readText(value string, stdin io.Reader) (string, error) {
	if value != "-" {
		return value, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

func noteLine(n *models.Node) string {
	pin := ""
	if n.Pinned {
		pin = " *"
	}
	return fmt.Sprintf("%s%s [%s] (%s)", n.Title, pin, n.Status, shortID(n.ID))
}
