package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// createDeleteCommand создает команду delete с привязкой к экземпляру приложения
func (app *Application) createDeleteCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]...",
		Short: "Delete tracks by ID",
		Long:  `Delete one track, or several tracks with a single bulk request.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return app.deleteTrack(ctx, cmd.OutOrStdout(), args[0])
			}
			return app.deleteTracks(ctx, cmd.OutOrStdout(), args)
		},
	}
}

func (app *Application) deleteTrack(ctx context.Context, out io.Writer, id string) error {
	fmt.Fprintf(out, "🗑️  Удаляем трек: %s\n", id)

	if err := app.Client.DeleteTrack(ctx, id); err != nil {
		return fmt.Errorf("ошибка удаления трека: %w", err)
	}

	fmt.Fprintln(out, "✅ Трек успешно удален")
	return nil
}

func (app *Application) deleteTracks(ctx context.Context, out io.Writer, ids []string) error {
	fmt.Fprintf(out, "🗑️  Удаляем треков: %d\n", len(ids))

	result, err := app.Client.DeleteTracks(ctx, ids)
	if err != nil {
		return fmt.Errorf("ошибка удаления треков: %w", err)
	}

	fmt.Fprintf(out, "✅ Удалено: %d\n", len(result.Success))
	if len(result.Failed) > 0 {
		for _, id := range result.Failed {
			fmt.Fprintf(out, "   ❌ %s\n", id)
		}
		return fmt.Errorf("не удалось удалить треков: %d", len(result.Failed))
	}
	return nil
}
