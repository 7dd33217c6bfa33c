// Package data содержит модель данных каталога треков
package data

import (
	"net/url"
	"strconv"
	"time"
)

// Track описывает трек каталога в том виде, в котором его отдает API
type Track struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Artist     string    `json:"artist"`
	Album      string    `json:"album"`
	Genres     Genres    `json:"genres"`
	Slug       string    `json:"slug,omitempty"`
	CoverImage string    `json:"coverImage"`
	AudioFile  string    `json:"audioFile,omitempty"` // Имя файла в хранилище API
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HasAudio сообщает, прикреплен ли к треку аудиофайл
func (t Track) HasAudio() bool {
	return t.AudioFile != ""
}

// TrackInput тело запроса на создание или изменение трека
type TrackInput struct {
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album"`
	Genres     Genres `json:"genres"`
	CoverImage string `json:"coverImage"`
}

// Genres упорядоченное множество жанров: порядок вставки сохраняется, дубликаты игнорируются
type Genres []string

// Add возвращает множество с добавленным жанром. Пустые строки и дубликаты игнорируются.
func (g Genres) Add(genre string) Genres {
	if genre == "" || g.Contains(genre) {
		return g
	}
	out := make(Genres, len(g), len(g)+1)
	copy(out, g)
	return append(out, genre)
}

// Remove возвращает множество без указанного жанра
func (g Genres) Remove(genre string) Genres {
	out := make(Genres, 0, len(g))
	for _, existing := range g {
		if existing != genre {
			out = append(out, existing)
		}
	}
	return out
}

// Contains проверяет наличие жанра
func (g Genres) Contains(genre string) bool {
	for _, existing := range g {
		if existing == genre {
			return true
		}
	}
	return false
}

// Поля сортировки списка
const (
	SortTitle     = "title"
	SortArtist    = "artist"
	SortAlbum     = "album"
	SortCreatedAt = "createdAt"
)

// Направления сортировки
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SortFields перечисляет допустимые поля сортировки в порядке переключения
var SortFields = []string{SortCreatedAt, SortTitle, SortArtist, SortAlbum}

// DefaultLimit размер страницы по умолчанию
const DefaultLimit = 10

// Query параметры запроса списка треков
type Query struct {
	Search string
	Sort   string
	Order  string
	Genre  string
	Artist string
	Page   int
	Limit  int
}

// DefaultQuery возвращает параметры первой страницы с сортировкой по дате создания
func DefaultQuery(limit int) Query {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Query{
		Sort:  SortCreatedAt,
		Order: OrderDesc,
		Page:  1,
		Limit: limit,
	}
}

// Values кодирует параметры в query string, пропуская пустые значения
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", q.Search)
	set("sort", q.Sort)
	set("order", q.Order)
	set("genre", q.Genre)
	set("artist", q.Artist)
	return v
}

// QueryPatch частичное изменение параметров; nil означает "не менять"
type QueryPatch struct {
	Search *string
	Sort   *string
	Order  *string
	Genre  *string
	Artist *string
	Limit  *int
}

// Apply накладывает изменения на параметры. Страница не трогается.
func (p QueryPatch) Apply(q Query) Query {
	if p.Search != nil {
		q.Search = *p.Search
	}
	if p.Sort != nil {
		q.Sort = *p.Sort
	}
	if p.Order != nil {
		q.Order = *p.Order
	}
	if p.Genre != nil {
		q.Genre = *p.Genre
	}
	if p.Artist != nil {
		q.Artist = *p.Artist
	}
	if p.Limit != nil && *p.Limit > 0 {
		q.Limit = *p.Limit
	}
	return q
}

// Pagination метаданные постраничного вывода из последнего успешного ответа
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// ListResult ответ API на запрос списка
type ListResult struct {
	Tracks []Track    `json:"data"`
	Meta   Pagination `json:"meta"`
}

// BulkDeleteResult ответ API на массовое удаление
type BulkDeleteResult struct {
	Success []string `json:"success"`
	Failed  []string `json:"failed"`
}
