package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewRemoveCmd(app **config.App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>...",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete notes or folders (with everything inside)",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			for _, arg := range args {
				id, err := resolveID(s.Snapshot(), arg)
				if err != nil {
					return err
				}
				if id == "" {
					return fmt.Errorf("refusing to delete the root")
				}
				if s.Remove(id) {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(id))
				}
			}
			return nil
		},
	}
}

func NewRenameCmd(app **config.App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a note or folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			id, err := resolveID(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			title := strings.Join(args[1:], " ")
			if s.Rename(id, title) {
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", shortID(id), title)
			}
			return nil
		},
	}
}

func NewPinCmd(app **config.App) *cobra.Command {
	return &cobra.Command{
		Use:   "pin <id>",
		Short: "Toggle the pinned flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			id, err := resolveID(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if !s.TogglePin(id) {
				return nil
			}
			n, _ := s.Find(id)
			state := "Unpinned"
			if n.Pinned {
				state = "Pinned"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", state, n.Title)
			return nil
		},
	}
}

func NewStatusCmd(app **config.App) *cobra.Command {
	return &cobra.Command{
		Use:       "status <id> <todo|inprogress|done>",
		Short:     "Move a note to another board column",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"todo", "inprogress", "done"},
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			id, err := resolveID(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			status := models.NoteStatus(strings.ToLower(args[1]))
			changed, err := s.SetStatus(id, status)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", shortID(id), status)
			}
			return nil
		},
	}
}

func NewEditCmd(app **config.App) *cobra.Command {
	var (
		title    string
		content  string
		tags     []string
		priority string
		due      string
		clearDue bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change note fields",
		Long: `Change one or more fields of a note. Fields not given are left alone.
The note timestamp is refreshed only when something actually changed.

Examples:
  notes edit 7b1c --title "Standup (Mon)"
  cat body.md | notes edit 7b1c --content -
  notes edit 7b1c --tag work --tag daily --priority high
  notes edit 7b1c --due 2024-04-01`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			id, err := resolveID(s.Snapshot(), args[0])
			if err != nil {
				return err
			}
			if n, _ := tree.FindByID(s.Snapshot(), id); !n.IsNote() {
				return fmt.Errorf("%s is not a note", args[0])
			}

			var u tree.NoteUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				u.Title = &title
			}
			if flags.Changed("content") {
				body, err := readText(content, cmd.InOrStdin())
				if err != nil {
					return err
				}
				u.Content = &body
			}
			if flags.Changed("tag") {
				u.Tags, u.SetTags = tags, true
			}
			if flags.Changed("priority") {
				p := models.Priority(strings.ToLower(priority))
				if p == "none" {
					p = models.PriorityNone
				}
				u.Priority = &p
			}
			if due != "" {
				t, err := time.ParseInLocation("2006-01-02", due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid due date %q: %w", due, err)
				}
				u.DueDate = models.Millis(t)
			}
			u.ClearDueDate = clearDue

			changed, err := s.UpdateNote(id, u)
			if err != nil {
				return err
			}
			if changed {
				fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(id))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&content, "content", "c", "", `New body, or "-" to read stdin`)
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Replace tags (repeatable)")
	cmd.Flags().StringVar(&priority, "priority", "", "none, low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")
	return cmd
}
