package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mattsolo1/grove-notes/cmd/config"
	"github.com/mattsolo1/grove-notes/pkg/events"
)

const skipAppAnnotation = "notes/skip-app"

// NewRootCmd builds the notes command tree. The app is opened before any
// subcommand runs and closed, flushing pending saves, once it returns.
func NewRootCmd() *cobra.Command {
	var (
		app *config.App
		sub *events.Subscription
	)

	rootCmd := &cobra.Command{
		Use:           "notes",
		Short:         "A folder tree of notes with a kanban board, calendar and Markdown export",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	config.AddGlobalFlags(rootCmd)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[skipAppAnnotation] == "true" {
			return nil
		}
		config.InitConfig()
		settings, err := config.Load()
		if err != nil {
			return err
		}
		logger := config.NewLogger(settings)

		app, err = config.Open(cmd.Context(), settings, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize: %w", err)
		}
		sub = app.Bus.Subscribe(256)
		return nil
	}

	closeApp := func() error {
		if app == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := app.Close(ctx)

		for e := range sub.C {
			app.Logger.WithFields(logrus.Fields{
				"event": e.Type,
				"id":    e.NodeID,
			}).Debug("Change event")
		}
		if n := sub.Dropped(); n > 0 {
			app.Logger.WithField("dropped", n).Debug("Change events dropped")
		}
		app = nil
		return err
	}

	rootCmd.AddCommand(NewListCmd(&app))
	rootCmd.AddCommand(NewAddCmd(&app))
	rootCmd.AddCommand(NewRemoveCmd(&app))
	rootCmd.AddCommand(NewMoveCmd(&app))
	rootCmd.AddCommand(NewRenameCmd(&app))
	rootCmd.AddCommand(NewPinCmd(&app))
	rootCmd.AddCommand(NewStatusCmd(&app))
	rootCmd.AddCommand(NewEditCmd(&app))
	rootCmd.AddCommand(NewShowCmd(&app))
	rootCmd.AddCommand(NewSearchCmd(&app))
	rootCmd.AddCommand(NewRecentCmd(&app))
	rootCmd.AddCommand(NewBoardCmd(&app))
	rootCmd.AddCommand(NewCalendarCmd(&app))
	rootCmd.AddCommand(NewFormatCmd(&app))
	rootCmd.AddCommand(NewExportCmd(&app))
	rootCmd.AddCommand(NewImportCmd(&app))

	version := NewVersionCmd()
	version.Annotations = map[string]string{skipAppAnnotation: "true"}
	rootCmd.AddCommand(version)

	closeAfterRun(rootCmd, closeApp)
	return rootCmd
}

// closeAfterRun wraps every RunE in the tree so closeApp runs whether the
// command succeeds or fails. Cobra skips post-run hooks on error.
func closeAfterRun(cmd *cobra.Command, closeApp func() error) {
	for _, c := range cmd.Commands() {
		closeAfterRun(c, closeApp)
	}
	if cmd.RunE == nil {
		return
	}
	run := cmd.RunE
	cmd.RunE = func(c *cobra.Command, args []string) error {
		err := run(c, args)
		return errors.Join(err, closeApp())
	}
}
