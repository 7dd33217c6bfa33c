package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "tracks",
		Short: "Terminal client for a remote music track catalog",
		Long: `Terminal client for a remote music track catalog.
Without a subcommand launches the interactive terminal user interface.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return app.initialize(configPath)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI()
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath, "path to the config file")

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createGenresCommand(ctx))
	rootCmd.AddCommand(app.createAddCommand(ctx))
	rootCmd.AddCommand(app.createEditCommand(ctx))
	rootCmd.AddCommand(app.createDeleteCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createArchiveCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand())

	return rootCmd
}
