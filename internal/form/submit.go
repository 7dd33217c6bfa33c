package form

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hazadus/go-tracks/internal/api"
	"github.com/hazadus/go-tracks/internal/data"
)

// ErrAudioAlreadyDeleted возвращается при повторном удалении аудиофайла в том же диалоге
var ErrAudioAlreadyDeleted = errors.New("аудиофайл уже удален")

// Service удаленные операции, нужные диалогам
type Service interface {
	CreateTrack(ctx context.Context, input data.TrackInput) (data.Track, error)
	UpdateTrack(ctx context.Context, id string, input data.TrackInput) (data.Track, error)
	UploadFile(ctx context.Context, id string, file api.File) (data.Track, error)
	DeleteFile(ctx context.Context, id string) error
}

// Result итог успешной отправки черновика
type Result struct {
	Track   data.Track // Трек в состоянии после всех шагов
	FileRef string     // Имя загруженного файла, если файл прикреплялся
}

// Submitter отправляет черновики на сервер
type Submitter struct {
	svc Service

	// OnUploaded вызывается после успешной загрузки аудиофайла
	OnUploaded func(trackID, fileRef string)
}

// NewSubmitter создает Submitter поверх сервиса
func NewSubmitter(svc Service) *Submitter {
	return &Submitter{svc: svc}
}

// Create проверяет черновик, создает трек и загружает прикрепленный файл.
// Если трек создан, а загрузка не удалась, трек остается на сервере:
// он возвращается в Result вместе с ошибкой.
func (s *Submitter) Create(ctx context.Context, d Draft) (Result, error) {
	if err := ValidateCreate(d); err != nil {
		return Result{}, err
	}

	input := d.input()
	if input.CoverImage == "" {
		input.CoverImage = DefaultCoverImage
	}

	created, err := s.svc.CreateTrack(ctx, input)
	if err != nil {
		return Result{}, fmt.Errorf("ошибка создания трека: %w", err)
	}

	return s.uploadIfAttached(ctx, created, d.File)
}

// Update проверяет черновик, изменяет трек и загружает новый файл, если он выбран
func (s *Submitter) Update(ctx context.Context, id string, d Draft) (Result, error) {
	if err := ValidateEdit(d); err != nil {
		return Result{}, err
	}

	updated, err := s.svc.UpdateTrack(ctx, id, d.input())
	if err != nil {
		return Result{}, fmt.Errorf("ошибка изменения трека: %w", err)
	}

	return s.uploadIfAttached(ctx, updated, d.File)
}

func (s *Submitter) uploadIfAttached(ctx context.Context, track data.Track, file *FileInfo) (Result, error) {
	result := Result{Track: track}
	if file == nil {
		return result, nil
	}

	f, err := os.Open(file.Path)
	if err != nil {
		return result, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer f.Close()

	uploaded, err := s.svc.UploadFile(ctx, track.ID, api.File{
		Name:      file.Name,
		MediaType: file.MediaType,
		Body:      f,
	})
	if err != nil {
		return result, fmt.Errorf("ошибка загрузки файла: %w", err)
	}

	if uploaded.ID != "" {
		result.Track = uploaded
	}
	result.FileRef = result.Track.AudioFile
	if s.OnUploaded != nil {
		s.OnUploaded(result.Track.ID, result.FileRef)
	}
	return result, nil
}

// AudioDeletion защищает от повторного удаления аудиофайла в одном диалоге.
// Нулевое значение готово к использованию.
type AudioDeletion struct {
	done bool
}

// Done сообщает, что файл уже удален
func (a *AudioDeletion) Done() bool {
	return a.done
}

// Run удаляет аудиофайл трека. Повторный вызов после успеха возвращает
// ErrAudioAlreadyDeleted без обращения к серверу. Список треков не обновляется.
func (a *AudioDeletion) Run(ctx context.Context, svc Service, id string) error {
	if a.done {
		return ErrAudioAlreadyDeleted
	}
	if err := svc.DeleteFile(ctx, id); err != nil {
		return fmt.Errorf("ошибка удаления аудиофайла: %w", err)
	}
	a.done = true
	return nil
}
