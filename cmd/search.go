package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/models"
	"github.com/mattsolo1/grove-notes/pkg/preview"
	"github.com/mattsolo1/grove-notes/pkg/search"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewSearchCmd(app **config.App) *cobra.Command {
	var (
		searchContent bool
		searchPinned  bool
		searchTag     string
		searchStatus  string
		searchLimit   int
		searchJSON    bool
	)

	cmd := &cobra.Command{
		Use:     "find <query>",
		Aliases: []string{"search"},
		Short:   "Find notes",
		Long: `Find notes by title. With --content the full-text index is used to
match note bodies, tags and folder names too.

Examples:
  notes find roadmap
  notes find --content "kubernetes migration"
  notes find plan --pinned --status inprogress`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := (*app).Service
			query := strings.Join(args, " ")
			status := models.NoteStatus(searchStatus)
			if status != "" && !status.Valid() {
				return fmt.Errorf("unknown status %q", searchStatus)
			}

			var results []search.Result
			if searchContent {
				var err error
				results, err = s.Search(query, &search.Options{Status: status, Pinned: searchPinned, Limit: searchLimit})
				if err != nil {
					return err
				}
			} else {
				nodes := s.Snapshot()
				matched := tree.FilterByText(nodes, query)
				if searchPinned {
					matched = tree.FilterPinned(matched)
				}
				for _, n := range tree.FlattenNotes(matched) {
					if status != "" && n.Status != status {
						continue
					}
					results = append(results, search.Result{
						ID: n.ID, Title: n.Title, Path: search.PathOf(nodes, n.ID),
						Status: n.Status, Pinned: n.Pinned, Snippet: preview.Snippet(n.Content, 60),
					})
				}
			}

			if searchTag != "" {
				results = filterResultsByTag(s.Snapshot(), results, searchTag)
			}
			if searchLimit > 0 && len(results) > searchLimit {
				results = results[:searchLimit]
			}

			out := cmd.OutOrStdout()
			if searchJSON {
				if results == nil {
					results = []search.Result{}
				}
				return printJSON(out, results)
			}
			if len(results) == 0 {
				fmt.Fprintf(os.Stderr, "No results found for %q\n", query)
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tFOLDER\tSNIPPET")
			for _, r := range results {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", shortID(r.ID), r.Title, r.Status, r.Path, r.Snippet)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&searchContent, "content", false, "Search note bodies with the full-text index")
	cmd.Flags().BoolVarP(&searchPinned, "pinned", "p", false, "Only pinned notes")
	cmd.Flags().StringVar(&searchTag, "tag", "", "Only notes with this tag")
	cmd.Flags().StringVar(&searchStatus, "status", "", "Only notes with this status")
	cmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "Maximum number of results")
	cmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")

	return cmd
}

func filterResultsByTag(nodes []*models.Node, results []search.Result, tag string) []search.Result {
	tagged := map[string]bool{}
	for _, n := range tree.FlattenNotes(tree.FilterByTag(nodes, tag)) {
		tagged[n.ID] = true
	}
	var out []search.Result
	for _, r := range results {
		if tagged[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
