package main

import (
	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/tui"
	tuiApp "github.com/hazadus/go-tracks/internal/tui/app"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for browsing, editing and playing tracks.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}
}

func (app *Application) launchTUI() error {
	opts := tuiApp.Options{
		PageLimit: app.pageLimit(),
		Logger:    app.logger(),
	}
	if app.Config != nil {
		opts.RequestTimeout = app.Config.RequestTimeout
	}

	return tui.NewApp(app.Client, opts).Run()
}
