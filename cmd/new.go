package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
)

func NewAddCmd(app **config.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"new"},
		Short:   "Create a folder or note",
		Long: `Create a folder or a note. Use --parent with a folder id (or prefix) to
create inside a folder; the default is the top level.

Examples:
  notes add folder Work
  notes add note "Standup" --parent 3f2a
  echo "- [ ] ship it" | notes add note "Release" --content -`,
	}

	cmd.AddCommand(newAddFolderCmd(app), newAddNoteCmd(app))
	return cmd
}

func newAddFolderCmd(app **config.App) *cobra.Command {
	var parent string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "folder <title>",
		Short: "Create a folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			parentID, err := resolveID(s.Snapshot(), parent)
			if err != nil {
				return err
			}
			folder, err := s.AddFolder(parentID, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), folder)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created folder %s (%s)\n", folder.Title, folder.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}

func newAddNoteCmd(app **config.App) *cobra.Command {
	var (
		parent     string
		content    string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "note <title>",
		Short: "Create a note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			parentID, err := resolveID(s.Snapshot(), parent)
			if err != nil {
				return err
			}
			body, err := readText(content, cmd.InOrStdin())
			if err != nil {
				return err
			}
			note, err := s.AddNote(parentID, strings.Join(args, " "), body)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), note)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created note %s (%s)\n", note.Title, note.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Parent folder id")
	cmd.Flags().StringVarP(&content, "content", "c", "", `Note body, or "-" to read stdin`)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
