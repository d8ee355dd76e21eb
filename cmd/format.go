package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/format"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewFormatCmd(app **config.App) *cobra.Command {
	var (
		start, end int
		noteID     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "format <bold|italic|code|heading|checklist|check>",
		Short: "Toggle Markdown formatting around a selection",
		Long: `Toggle a Markdown token around the selection [start, end) and print the
result. Offsets count characters, not bytes. Text is read from stdin unless
--note is given, in which case the note body is edited in place.

Examples:
  echo -n "hello world" | notes format bold --start 0 --end 5
  notes format checklist --note 7b1c --start 0 --end 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := format.ParseKind(args[0])
			if err != nil {
				return err
			}
			sel := format.Selection{Start: start, End: end}

			if noteID == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				text, after := format.Toggle(string(data), sel, kind)
				return printFormatted(cmd, text, after, jsonOutput)
			}

			s := (*app).Service
			id, err := resolveID(s.Snapshot(), noteID)
			if err != nil {
				return err
			}
			n, _ := tree.FindByID(s.Snapshot(), id)
			if !n.IsNote() {
				return fmt.Errorf("%s is not a note", noteID)
			}
			text, after := format.Toggle(n.Content, sel, kind)
			if _, err := s.UpdateNote(id, tree.NoteUpdate{Content: &text}); err != nil {
				return err
			}
			return printFormatted(cmd, text, after, jsonOutput)
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Selection start offset")
	cmd.Flags().IntVar(&end, "end", 0, "Selection end offset")
	cmd.Flags().StringVar(&noteID, "note", "", "Edit this note's body instead of stdin")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output text and new selection as JSON")
	return cmd
}

func printFormatted(cmd *cobra.Command, text string, sel format.Selection, jsonOutput bool) error {
	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, struct {
			Text      string           `json:"text"`
			Selection format.Selection `json:"selection"`
		}{text, sel})
	}
	fmt.Fprint(out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(out)
	}
	return nil
}
