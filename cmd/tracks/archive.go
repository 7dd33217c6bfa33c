package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/archive"
	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/utils"
)

// createArchiveCommand создает команду archive
func (app *Application) createArchiveCommand(ctx context.Context) *cobra.Command {
	var (
		prefix  string
		workers int
		q       data.Query
	)

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Copy catalog audio files to S3 storage",
		Long: `Copy the audio files of all matching catalog tracks to the configured
S3 bucket. Files that are already archived are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if app.Config == nil || !app.Config.ArchiveEnabled() {
				return errors.New("хранилище не настроено: укажите aws_bucket_name в конфигурации")
			}
			if prefix == "" {
				prefix = app.Config.ArchivePrefix
			}
			q.Sort, q.Order = data.SortCreatedAt, data.OrderAsc
			q.Limit = app.pageLimit()
			return app.archiveFiles(ctx, cmd.OutOrStdout(), prefix, workers, q)
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "key prefix in the bucket (default from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", archive.DefaultWorkers, "parallel copies")
	cmd.Flags().StringVarP(&q.Genre, "genre", "g", "", "archive only tracks of this genre")
	cmd.Flags().StringVarP(&q.Artist, "artist", "a", "", "archive only tracks of this artist")

	return cmd
}

func (app *Application) archiveFiles(ctx context.Context, out io.Writer, prefix string, workers int, q data.Query) error {
	store, err := app.openStore()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "📦 Архивируем файлы в бакет %s (%s)\n\n", app.Config.AwsBucketName, prefix)

	service := archive.NewService(app.Client, store, prefix, workers, app.logger())

	// OnItem вызывается из разных горутин
	var mu sync.Mutex
	service.OnItem = func(item archive.Item) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case item.Err != nil:
			fmt.Fprintf(out, "   ❌ %s: %v\n", item.FileRef, item.Err)
		case item.Skipped:
			fmt.Fprintf(out, "   ⏭️  %s: уже в архиве\n", item.FileRef)
		default:
			fmt.Fprintf(out, "   ✅ %s (%s)\n", item.FileRef, utils.FormatFileSize(item.Bytes))
		}
	}

	summary, err := service.Run(ctx, q)

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Скопировано: %d (%s), пропущено: %d, без аудио: %d, ошибок: %d\n",
		summary.Archived, utils.FormatFileSize(summary.Bytes), summary.Skipped, summary.NoAudio, summary.Failed)

	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("не удалось скопировать файлов: %d", summary.Failed)
	}
	return nil
}
