package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	var q data.Query

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks from the catalog",
		Long:  `Display one page of catalog tracks with optional search, filters and sorting.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if q.Limit <= 0 {
				q.Limit = app.pageLimit()
			}
			if err := validateQuery(q); err != nil {
				return err
			}
			return app.listTracks(ctx, cmd.OutOrStdout(), q)
		},
	}

	defaults := data.DefaultQuery(0)
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "search by title, artist or album")
	cmd.Flags().StringVar(&q.Sort, "sort", defaults.Sort, "sort field: "+strings.Join(data.SortFields, ", "))
	cmd.Flags().StringVar(&q.Order, "order", defaults.Order, "sort order: asc or desc")
	cmd.Flags().StringVarP(&q.Genre, "genre", "g", "", "filter by genre")
	cmd.Flags().StringVarP(&q.Artist, "artist", "a", "", "filter by artist")
	cmd.Flags().IntVarP(&q.Page, "page", "p", 1, "page number")
	cmd.Flags().IntVarP(&q.Limit, "limit", "l", 0, "tracks per page (default from config)")

	return cmd
}

// validateQuery проверяет параметры списка до обращения к серверу
func validateQuery(q data.Query) error {
	if !slices.Contains(data.SortFields, q.Sort) {
		return fmt.Errorf("неизвестное поле сортировки %q", q.Sort)
	}
	if q.Order != data.OrderAsc && q.Order != data.OrderDesc {
		return fmt.Errorf("неизвестное направление сортировки %q", q.Order)
	}
	if q.Page < 1 {
		return fmt.Errorf("номер страницы должен быть положительным")
	}
	return nil
}

func (app *Application) listTracks(ctx context.Context, out io.Writer, q data.Query) error {
	result, err := app.Client.ListTracks(ctx, q)
	if err != nil {
		return fmt.Errorf("ошибка загрузки списка: %w", err)
	}

	if len(result.Tracks) == 0 {
		fmt.Fprintln(out, "📚 Треков не найдено")
		return nil
	}

	fmt.Fprintf(out, "📚 Найдено треков: %d\n\n", result.Meta.Total)

	// Выводим заголовок таблицы
	fmt.Fprintf(out, "%-24s %-24s %-28s %-20s %-20s %-5s\n",
		"Slug", "Исполнитель", "Название", "Альбом", "Жанры", "Аудио")
	fmt.Fprintln(out, strings.Repeat("-", 126))

	for _, track := range result.Tracks {
		audio := "–"
		if track.HasAudio() {
			audio = "♪"
		}

		fmt.Fprintf(out, "%-24s %-24s %-28s %-20s %-20s %-5s\n",
			utils.TruncateString(track.Slug, 22),
			utils.TruncateString(track.Artist, 22),
			utils.TruncateString(track.Title, 26),
			utils.TruncateString(track.Album, 18),
			utils.TruncateString(strings.Join(track.Genres, ", "), 18),
			audio)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Страница %d из %d\n", result.Meta.Page, max(result.Meta.TotalPages, 1))
	fmt.Fprintln(out, "💡 Используйте 'tracks play [slug]' для воспроизведения трека")
	return nil
}

// pageLimit возвращает размер страницы из конфигурации
func (app *Application) pageLimit() int {
	if app.Config == nil || app.Config.PageLimit <= 0 {
		return data.DefaultLimit
	}
	return app.Config.PageLimit
}
