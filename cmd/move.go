package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewMoveCmd(app **config.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "move <id> <folder-id|/>",
		Aliases: []string{"mv"},
		Short:   "Move a note or folder into another folder",
		Long: `Move a node to the end of another folder. Use "/" as the destination to
move it to the top level.

A destination that does not exist, or is not a folder, is an error and the
tree is left untouched. A folder cannot be moved into itself or one of its
own subfolders.

Examples:
  notes move 7b1c 3f2a     # Move into folder 3f2a
  notes move 7b1c /        # Move to the top level`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			nodes := s.Snapshot()

			itemID, err := resolveID(nodes, args[0])
			if err != nil {
				return err
			}
			if itemID == "" {
				return errors.New("cannot move the root")
			}
			targetID, err := resolveID(nodes, args[1])
			if err != nil {
				return fmt.Errorf("destination: %w", err)
			}

			moved, err := s.Move(itemID, targetID)
			if errors.Is(err, tree.ErrInvalidMove) {
				return fmt.Errorf("cannot move a folder into itself or its subfolders")
			}
			if err != nil {
				return err
			}
			if moved {
				fmt.Fprintf(cmd.OutOrStdout(), "Moved %s\n", shortID(itemID))
			}
			return nil
		},
	}

	return cmd
}
