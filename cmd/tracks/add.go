package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/form"
	"github.com/hazadus/go-tracks/internal/metadata"
	"github.com/hazadus/go-tracks/internal/utils"
)

// submitTimeout ограничивает создание трека вместе с загрузкой файла
const submitTimeout = 2 * time.Minute

// trackFlags значения флагов метаданных трека
type trackFlags struct {
	title  string
	artist string
	album  string
	cover  string
	genres []string
}

func (f *trackFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "track title")
	cmd.Flags().StringVarP(&f.artist, "artist", "a", "", "artist name")
	cmd.Flags().StringVar(&f.album, "album", "", "album name")
	cmd.Flags().StringVar(&f.cover, "cover", "", "cover image URL")
	cmd.Flags().StringSliceVarP(&f.genres, "genre", "g", nil, "genre (repeatable or comma separated)")
}

// apply переносит в черновик только явно указанные флаги
func (f *trackFlags) apply(cmd *cobra.Command, d form.Draft) form.Draft {
	fields := []struct {
		name  string
		field form.Field
		value string
	}{
		{"title", form.FieldTitle, f.title},
		{"artist", form.FieldArtist, f.artist},
		{"album", form.FieldAlbum, f.album},
		{"cover", form.FieldCoverImage, f.cover},
	}
	for _, fl := range fields {
		if cmd.Flags().Changed(fl.name) {
			d = form.Update(d, fl.field, fl.value)
		}
	}

	if cmd.Flags().Changed("genre") {
		d.Genres = data.Genres{}
		for _, genre := range f.genres {
			d = form.AddGenre(d, genre)
		}
	}
	return d
}

// createAddCommand создает команду add с привязкой к экземпляру приложения
func (app *Application) createAddCommand(ctx context.Context) *cobra.Command {
	var flags trackFlags

	cmd := &cobra.Command{
		Use:   "add [audio file]",
		Short: "Create a track, optionally uploading an audio file",
		Long: `Create a track in the catalog. When an mp3 or wav file is given,
empty title, artist and album are filled from its tags and the file is uploaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := flags.apply(cmd, form.NewCreateDraft())

			if len(args) == 1 {
				var err error
				if draft, err = attachFile(draft, args[0]); err != nil {
					return err
				}
				draft = form.PrefillFromTags(draft, metadata.NewExtractor().ExtractFromFile(draft.File.Path))
			}

			return app.addTrack(ctx, cmd.OutOrStdout(), draft)
		},
	}
	flags.register(cmd)

	return cmd
}

// attachFile проверяет локальный файл и прикрепляет его к черновику
func attachFile(d form.Draft, path string) (form.Draft, error) {
	info, err := form.InspectFile(utils.ExpandPath(path))
	if err != nil {
		return d, err
	}
	return form.AttachFile(d, info)
}

func (app *Application) addTrack(ctx context.Context, out io.Writer, draft form.Draft) error {
	if err := form.ValidateCreate(draft); err != nil {
		return err
	}

	if draft.File != nil {
		fmt.Fprintf(out, "📤 Загружаем файл: %s\n", draft.File.Summary())
	}

	ctx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	submitter := app.newSubmitter(out)
	result, err := submitter.Create(ctx, draft)
	if err != nil {
		if result.Track.ID != "" {
			// Трек создан, но файл не загрузился: сообщаем, как повторить загрузку
			fmt.Fprintf(out, "⚠️  Трек создан без аудиофайла: %s\n", result.Track.Slug)
			fmt.Fprintf(out, "💡 Повторите загрузку: tracks edit %s --file [path]\n", result.Track.Slug)
		}
		return err
	}

	fmt.Fprintf(out, "✅ Трек создан: %s - %s\n", result.Track.Artist, result.Track.Title)
	fmt.Fprintf(out, "   ID: %s\n", result.Track.ID)
	fmt.Fprintf(out, "   Slug: %s\n", result.Track.Slug)
	return nil
}

// newSubmitter создает отправителя черновиков, сообщающего о загруженных файлах
func (app *Application) newSubmitter(out io.Writer) *form.Submitter {
	submitter := form.NewSubmitter(app.Client)
	submitter.OnUploaded = func(trackID, fileRef string) {
		app.logger().Info("файл загружен", "track", trackID, "file", fileRef)
		fmt.Fprintf(out, "✅ Файл загружен: %s\n", fileRef)
	}
	return submitter
}
