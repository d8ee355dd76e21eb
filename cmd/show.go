package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/preview"
	"github.com/mattsolo1/grove-notes/pkg/search"
	"github.com/mattsolo1/grove-notes/pkg/tree"
)

func NewShowCmd(app **config.App) *cobra.Command {
	var (
		asHTML     bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes := (*app).Service.Snapshot()
			id, err := resolveID(nodes, args[0])
			if err != nil {
				return err
			}
			n, ok := tree.FindByID(nodes, id)
			if !ok || !n.IsNote() {
				return fmt.Errorf("%s is not a note", args[0])
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, struct {
					Note     any              `json:"note"`
					Path     string           `json:"path"`
					Progress preview.Progress `json:"checklist"`
				}{n, search.PathOf(nodes, id), preview.Checklist(n.Content)})
			}
			if asHTML {
				fmt.Fprintln(out, preview.HTML(n.Content))
				return nil
			}

			fmt.Fprintf(out, "# %s\n", n.Title)
			meta := []string{string(n.Status)}
			if path := search.PathOf(nodes, id); path != "" {
				meta = append(meta, path)
			}
			if t, ok := n.Time(); ok {
				meta = append(meta, t.Local().Format("2006-01-02 15:04"))
			}
			if p := preview.Checklist(n.Content); p.Total > 0 {
				meta = append(meta, fmt.Sprintf("%d/%d done", p.Done, p.Total))
			}
			if len(n.Tags) > 0 {
				meta = append(meta, "#"+strings.Join(n.Tags, " #"))
			}
			fmt.Fprintf(out, "%s\n\n%s\n", strings.Join(meta, " · "), n.Content)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the body as sanitized HTML")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
