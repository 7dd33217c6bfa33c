// Package archive копирует сохраненные аудиофайлы каталога в объектное хранилище
package archive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/streaming"
)

// DefaultWorkers число одновременных копирований по умолчанию
const DefaultWorkers = 4

// Catalog источник треков и адресов их файлов
type Catalog interface {
	ListTracks(ctx context.Context, q data.Query) (data.ListResult, error)
	FileURL(fileRef string) string
}

// Store объектное хранилище для копий
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Upload(ctx context.Context, reader io.Reader, key, contentType string) (string, error)
}

// OpenFunc открывает файл по адресу и возвращает его тип содержимого
type OpenFunc func(ctx context.Context, url string) (io.ReadCloser, string, error)

// Item результат копирования одного файла
type Item struct {
	TrackID  string
	FileRef  string
	Key      string
	Location string
	Bytes    int64
	Skipped  bool // Копия уже была в хранилище
	Err      error
}

// Summary итог архивации
type Summary struct {
	Archived int
	Skipped  int
	NoAudio  int
	Failed   int
	Bytes    int64
	Items    []Item
}

// Service архивирует аудиофайлы
type Service struct {
	catalog Catalog
	store   Store
	open    OpenFunc
	prefix  string
	workers int
	logger  *slog.Logger

	// OnItem вызывается после обработки каждого файла; вызовы могут идти из разных горутин
	OnItem func(Item)
}

// NewService создает сервис архивации
func NewService(catalog Catalog, store Store, prefix string, workers int, logger *slog.Logger) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		catalog: catalog,
		store:   store,
		open:    openStream,
		prefix:  prefix,
		workers: workers,
		logger:  logger,
	}
}

// Key возвращает ключ объекта для файла трека
func (s *Service) Key(trackID, fileRef string) string {
	return path.Join(s.prefix, trackID, fileRef)
}

// Run проходит все страницы списка по параметрам q и копирует файлы треков.
// Ошибки отдельных файлов попадают в Summary, ошибка загрузки списка прерывает работу.
func (s *Service) Run(ctx context.Context, q data.Query) (Summary, error) {
	var (
		summary Summary
		mu      sync.Mutex
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	q.Page = 1
	for {
		result, err := s.catalog.ListTracks(gctx, q)
		if err != nil {
			// Дожидаемся уже запущенных копирований
			_ = g.Wait()
			return summary, fmt.Errorf("ошибка загрузки страницы %d: %w", q.Page, err)
		}

		for _, t := range result.Tracks {
			if !t.HasAudio() {
				mu.Lock()
				summary.NoAudio++
				mu.Unlock()
				continue
			}

			g.Go(func() error {
				item := s.copyFile(gctx, t)

				mu.Lock()
				summary.Items = append(summary.Items, item)
				switch {
				case item.Err != nil:
					summary.Failed++
				case item.Skipped:
					summary.Skipped++
				default:
					summary.Archived++
					summary.Bytes += item.Bytes
				}
				mu.Unlock()

				if s.OnItem != nil {
					s.OnItem(item)
				}
				// Отмена контекста останавливает всю архивацию, прочие ошибки нет
				return gctx.Err()
			})
		}

		if q.Page >= result.Meta.TotalPages {
			break
		}
		q.Page++
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	return summary, nil
}

// copyFile копирует один файл, если его еще нет в хранилище
func (s *Service) copyFile(ctx context.Context, t data.Track) Item {
	item := Item{TrackID: t.ID, FileRef: t.AudioFile, Key: s.Key(t.ID, t.AudioFile)}

	exists, err := s.store.Exists(ctx, item.Key)
	if err != nil {
		item.Err = err
		return item
	}
	if exists {
		item.Skipped = true
		return item
	}

	body, contentType, err := s.open(ctx, s.catalog.FileURL(t.AudioFile))
	if err != nil {
		item.Err = fmt.Errorf("ошибка открытия файла %s: %w", t.AudioFile, err)
		s.logger.Warn("файл не скопирован", "track_id", t.ID, "file", t.AudioFile, "error", err)
		return item
	}
	defer body.Close()

	counter := &countingReader{Reader: body}
	location, err := s.store.Upload(ctx, counter, item.Key, contentType)
	if err != nil {
		item.Err = err
		s.logger.Warn("файл не скопирован", "track_id", t.ID, "file", t.AudioFile, "error", err)
		return item
	}

	item.Location = location
	item.Bytes = counter.BytesRead()
	s.logger.Info("файл скопирован", "track_id", t.ID, "key", item.Key, "bytes", item.Bytes)
	return item
}

func openStream(ctx context.Context, url string) (io.ReadCloser, string, error) {
	reader, err := streaming.NewReader(ctx, url, streaming.DefaultBufferSize)
	if err != nil {
		return nil, "", err
	}
	return reader, reader.ContentType(), nil
}

// countingReader считает прочитанные байты
type countingReader struct {
	io.Reader
	bytesRead int64
}

func (pr *countingReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	return n, err
}

// BytesRead возвращает число прочитанных байт
func (pr *countingReader) BytesRead() int64 {
	return pr.bytesRead
}
