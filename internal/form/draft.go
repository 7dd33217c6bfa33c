// Package form содержит черновики треков для диалогов создания и редактирования:
// изменение полей, проверку, прикрепление аудиофайла и отправку на сервер.
package form

import (
	"strings"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/metadata"
)

// Field определяет редактируемое текстовое поле черновика
type Field int

// Поля черновика
const (
	FieldTitle Field = iota
	FieldArtist
	FieldAlbum
	FieldCoverImage
)

// Draft незафиксированные изменения трека внутри диалога
type Draft struct {
	Title      string
	Artist     string
	Album      string
	CoverImage string
	Genres     data.Genres
	File       *FileInfo // Выбранный локальный аудиофайл, ожидающий загрузки

	// ExistingAudio имя уже сохраненного на сервере файла (только при редактировании)
	ExistingAudio string
}

// NewCreateDraft возвращает пустой черновик для диалога создания
func NewCreateDraft() Draft {
	return Draft{Genres: data.Genres{}}
}

// NewEditDraft заполняет черновик из существующего трека.
// Обложка остается пустой строкой, если у трека ее нет.
func NewEditDraft(track data.Track) Draft {
	genres := make(data.Genres, 0, len(track.Genres))
	for _, g := range track.Genres {
		genres = genres.Add(g)
	}
	return Draft{
		Title:         track.Title,
		Artist:        track.Artist,
		Album:         track.Album,
		CoverImage:    track.CoverImage,
		Genres:        genres,
		ExistingAudio: track.AudioFile,
	}
}

// Update возвращает новый черновик с измененным полем
func Update(d Draft, field Field, value string) Draft {
	switch field {
	case FieldTitle:
		d.Title = value
	case FieldArtist:
		d.Artist = value
	case FieldAlbum:
		d.Album = value
	case FieldCoverImage:
		d.CoverImage = value
	}
	return d
}

// Value возвращает значение поля черновика
func (d Draft) Value(field Field) string {
	switch field {
	case FieldTitle:
		return d.Title
	case FieldArtist:
		return d.Artist
	case FieldAlbum:
		return d.Album
	case FieldCoverImage:
		return d.CoverImage
	}
	return ""
}

// AddGenre добавляет жанр, сохраняя порядок и игнорируя дубликаты
func AddGenre(d Draft, genre string) Draft {
	d.Genres = d.Genres.Add(strings.TrimSpace(genre))
	return d
}

// RemoveGenre удаляет жанр из черновика
func RemoveGenre(d Draft, genre string) Draft {
	d.Genres = d.Genres.Remove(genre)
	return d
}

// PrefillFromTags заполняет пустые поля черновика тегами аудиофайла.
// Уже введенные значения не перезаписываются.
func PrefillFromTags(d Draft, tags metadata.Tags) Draft {
	if strings.TrimSpace(d.Title) == "" {
		d.Title = tags.Title
	}
	if strings.TrimSpace(d.Artist) == "" {
		d.Artist = tags.Artist
	}
	if strings.TrimSpace(d.Album) == "" {
		d.Album = tags.Album
	}
	if tags.Genre != "" {
		d = AddGenre(d, tags.Genre)
	}
	return d
}

// input формирует тело запроса из черновика
func (d Draft) input() data.TrackInput {
	genres := d.Genres
	if genres == nil {
		genres = data.Genres{}
	}
	return data.TrackInput{
		Title:      strings.TrimSpace(d.Title),
		Artist:     strings.TrimSpace(d.Artist),
		Album:      strings.TrimSpace(d.Album),
		Genres:     genres,
		CoverImage: strings.TrimSpace(d.CoverImage),
	}
}
