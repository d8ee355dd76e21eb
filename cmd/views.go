package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/preview"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewRecentCmd(app **config.App) *cobra.Command {
	var (
		layout     string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List notes grouped by how recently they changed",
		Long: `List every note grouped into recency sections.

Layouts:
  full    today, yesterday, previous 7 days, previous 30 days, older
  four    today, yesterday, previous 30 days, older
  three   today, yesterday, earlier`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := tree.FlattenNotes((*app).Service.Snapshot())
			buckets := tree.GroupByRecency(notes, time.Now())

			var sections []tree.Section
			switch layout {
			case "full", "":
				sections = buckets.Sections()
			case "four":
				sections = buckets.FourWay().Sections()
			case "three":
				sections = buckets.ThreeWay().Sections()
			default:
				return fmt.Errorf("unknown layout %q", layout)
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, sections)
			}
			if len(sections) == 0 {
				fmt.Fprintln(out, "No notes found")
				return nil
			}
			for _, sec := range sections {
				fmt.Fprintf(out, "%s\n", sec.Label)
				for _, n := range sec.Notes {
					fmt.Fprintf(out, "  • %s\n", noteLine(n))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&layout, "layout", "full", "Section layout: full, four or three")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func NewBoardCmd(app **config.App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "board",
		Aliases: []string{"kanban"},
		Short:   "Show notes as a kanban board",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board := tree.GroupByStatus(tree.FlattenNotes((*app).Service.Snapshot()))

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, board)
			}
			for _, status := range models.Statuses {
				col := board.Column(status)
				fmt.Fprintf(out, "%s (%d)\n", strings.ToUpper(string(status)), len(col))
				for _, n := range col {
					line := noteLine(n)
					if p := preview.Checklist(n.Content); p.Total > 0 {
						line += fmt.Sprintf(" %d/%d", p.Done, p.Total)
					}
					fmt.Fprintf(out, "  • %s\n", line)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func NewCalendarCmd(app **config.App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "calendar [YYYY-MM-DD]",
		Short: "List notes due or written on a day",
		Long: `List the notes for one calendar day (today by default). A note's due
date is used when it has one, otherwise the time it was last changed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day := time.Now()
			if len(args) == 1 {
				var err error
				day, err = time.ParseInLocation("2006-01-02", args[0], time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", args[0], err)
				}
			}
			notes := tree.NotesOn((*app).Service.Snapshot(), day)

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, notes)
			}
			fmt.Fprintln(out, day.Format("Monday, January 2 2006"))
			if len(notes) == 0 {
				fmt.Fprintln(out, "  nothing scheduled")
			}
			for _, n := range notes {
				fmt.Fprintf(out, "  • %s\n", noteLine(n))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
