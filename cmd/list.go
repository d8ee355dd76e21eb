package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewListCmd(app **config.App) *cobra.Command {
	var (
		listJSON     bool
		listPinned   bool
		listFilter   string
		listTag      string
		foldersFirst bool
		listFolders  bool
	)

	cmd := &cobra.Command{
		Use:     "list [folder-id]",
		Short:   "Show the notes tree",
		Aliases: []string{"ls", "tree"},
		Long: `Show the folder and note hierarchy.

Examples:
  notes list                   # Whole tree
  notes list 3f2a              # Only the folder whose id starts with 3f2a
  notes list --pinned          # Favorites and the folders leading to them
  notes list --filter plan     # Titles containing "plan"
  notes list --folders         # Sidebar view: folders and their notes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			nodes := a.Service.Snapshot()

			if len(args) == 1 {
				id, err := resolveID(nodes, args[0])
				if err != nil {
					return err
				}
				if id != "" {
					folder, _ := tree.FindByID(nodes, id)
					if !folder.IsFolder() {
						return fmt.Errorf("%s is not a folder", args[0])
					}
					nodes = folder.Children
				}
			}

			if listPinned {
				nodes = tree.FilterPinned(nodes)
			}
			nodes = tree.FilterByText(nodes, listFilter)
			nodes = tree.FilterByTag(nodes, listTag)

			out := cmd.OutOrStdout()
			if listFolders {
				summaries := tree.ExtractFolders(nodes)
				if listJSON {
					return printJSON(out, summaries)
				}
				printSummaries(out, summaries, 0)
				return nil
			}

			if listJSON {
				return printJSON(out, nodes)
			}
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No notes found")
				return nil
			}
			printTree(out, nodes, 0, foldersFirst)
			return nil
		},
	}

	cmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&listPinned, "pinned", "p", false, "Only pinned nodes")
	cmd.Flags().StringVarP(&listFilter, "filter", "f", "", "Case-insensitive title filter")
	cmd.Flags().StringVar(&listTag, "tag", "", "Only notes with this tag")
	cmd.Flags().BoolVar(&foldersFirst, "folders-first", false, "List folders before notes at each level")
	cmd.Flags().BoolVar(&listFolders, "folders", false, "Show the folder summary used by the sidebar")

	return cmd
}

func printTree(w io.Writer, nodes []*models.Node, depth int, foldersFirst bool) {
	if foldersFirst {
		nodes = tree.SortFoldersFirst(nodes)
	}
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.IsFolder() {
			pin := ""
			if n.Pinned {
				pin = " *"
			}
			fmt.Fprintf(w, "%s▸ %s%s (%s)\n", indent, n.Title, pin, shortID(n.ID))
			printTree(w, n.Children, depth+1, foldersFirst)
			continue
		}
		fmt.Fprintf(w, "%s• %s\n", indent, noteLine(n))
	}
}

func printSummaries(w io.Writer, folders []tree.FolderSummary, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, f := range folders {
		fmt.Fprintf(w, "%s▸ %s (%s) %d notes\n", indent, f.Title, shortID(f.ID), len(f.Notes))
		printSummaries(w, f.Children, depth+1)
		for _, n := range f.Notes {
			fmt.Fprintf(w, "%s  • %s (%s)\n", indent, n.Title, shortID(n.ID))
		}
	}
}
