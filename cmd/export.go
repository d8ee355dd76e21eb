package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/exporter"
	"github.com/mattsolo1/grove-notes/pkg/models"
)

func NewExportCmd(app **config.App) *cobra.Command {
	var filenameFormat string

	cmd := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write the tree to a directory of Markdown files",
		Long: `Write every folder as a directory and every note as a Markdown file with
YAML frontmatter. The result can be read back with "notes import".

Filename formats: title, date-title, timestamp-title, id.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			format := models.FilenameFormat(filenameFormat)
			if filenameFormat == "" {
				format = a.Settings.FilenameFormat
			}
			if !format.Valid() {
				return fmt.Errorf("unknown filename format %q", filenameFormat)
			}

			stats, err := exporter.Export(a.Service.Snapshot(), args[0], exporter.Options{
				Format: format,
				Logger: a.Logger.WithField("component", "export"),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d folders and %d notes to %s\n", stats.Folders, stats.Notes, args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&filenameFormat, "filename-format", "", "Override the configured filename format")
	return cmd
}

func NewImportCmd(app **config.App) *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Add a directory of Markdown files to the tree",
		Long: `Read a directory written by "notes export" (or any directory of Markdown
files) and add its contents to the tree. Ids that already exist are replaced
with fresh ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := *app
			s := a.Service
			parentID, err := resolveID(s.Snapshot(), parent)
			if err != nil {
				return err
			}

			nodes, stats, err := exporter.Import(args[0], exporter.ImportOptions{
				Existing: s.Snapshot(),
				Logger:   a.Logger.WithFields(logrus.Fields{"component": "import", "dir": args[0]}),
			})
			if err != nil {
				return err
			}
			if _, err := s.Import(parentID, nodes); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d folders and %d notes\n", stats.Folders, stats.Notes)
			return nil
		},
	}

	cmd.Flags().StringVar(&parent, "parent", "", "Folder to import into (default top level)")
	return cmd
}
