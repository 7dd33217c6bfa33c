package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// createGenresCommand создает команду genres
func (app *Application) createGenresCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List available genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres, err := app.Client.Genres(ctx)
			if err != nil {
				return fmt.Errorf("ошибка загрузки жанров: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "🏷️  Доступно жанров: %d\n", len(genres))
			for _, genre := range genres {
				fmt.Fprintf(out, "   %s\n", genre)
			}
			return nil
		},
	}
}
