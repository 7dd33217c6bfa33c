package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/api"
	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/form"
)

// createEditCommand создает команду edit
func (app *Application) createEditCommand(ctx context.Context) *cobra.Command {
	var (
		flags      trackFlags
		filePath   string
		deleteFile bool
	)

	cmd := &cobra.Command{
		Use:   "edit [slug]",
		Short: "Edit track metadata or its audio file",
		Long: `Edit a track found by its slug. Only the given flags are changed.
Use --file to upload a new audio file and --delete-file to remove the stored one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			track, err := app.findTrack(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			metadataChanged := cmd.Flags().Changed("title") || cmd.Flags().Changed("artist") ||
				cmd.Flags().Changed("album") || cmd.Flags().Changed("cover") || cmd.Flags().Changed("genre")
			if !metadataChanged && filePath == "" && !deleteFile {
				return errors.New("не указано ни одного изменения")
			}

			if deleteFile {
				if !track.HasAudio() {
					return errors.New("у трека нет аудиофайла")
				}
				var deletion form.AudioDeletion
				if err := deletion.Run(ctx, app.Client, track.ID); err != nil {
					return err
				}
				track.AudioFile = ""
				fmt.Fprintln(out, "🗑️  Аудиофайл удален")
			}

			if !metadataChanged && filePath == "" {
				return nil
			}

			draft := flags.apply(cmd, form.NewEditDraft(track))
			if filePath != "" {
				if draft, err = attachFile(draft, filePath); err != nil {
					return err
				}
			}

			ctx, cancel := context.WithTimeout(ctx, submitTimeout)
			defer cancel()

			result, err := app.newSubmitter(out).Update(ctx, track.ID, draft)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "✅ Трек изменен: %s - %s\n", result.Track.Artist, result.Track.Title)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&filePath, "file", "f", "", "upload a new audio file")
	cmd.Flags().BoolVar(&deleteFile, "delete-file", false, "delete the stored audio file")

	return cmd
}

// findTrack загружает трек по slug
func (app *Application) findTrack(ctx context.Context, slug string) (data.Track, error) {
	track, err := app.Client.GetTrack(ctx, slug)
	if api.IsNotFound(err) {
		return data.Track{}, fmt.Errorf("трек %q не найден", slug)
	}
	if err != nil {
		return data.Track{}, fmt.Errorf("ошибка загрузки трека: %w", err)
	}
	return track, nil
}
