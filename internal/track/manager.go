// Package track содержит логику управления списком треков: загрузку страниц,
// выбор, воспроизведение и оптимистичное удаление
package track

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/modal"
)

// Service удаленные операции, нужные списку треков
type Service interface {
	ListTracks(ctx context.Context, q data.Query) (data.ListResult, error)
	Genres(ctx context.Context) ([]string, error)
	DeleteTrack(ctx context.Context, id string) error
	DeleteTracks(ctx context.Context, ids []string) (data.BulkDeleteResult, error)
}

// LoadRequest снимок параметров запроса списка с порядковым номером
type LoadRequest struct {
	Seq   uint64
	Query data.Query
}

// LoadResult ответ на LoadRequest
type LoadResult struct {
	Seq    uint64
	Result data.ListResult
	Err    error
}

// RemoteOp удаленный вызов, отложенный до выполнения вне цикла интерфейса
type RemoteOp func(ctx context.Context) error

// Manager хранит состояние списка треков.
// Все методы, кроме Fetch и возвращаемых RemoteOp, меняют состояние и должны
// вызываться из одного потока (цикла обработки событий интерфейса).
type Manager struct {
	svc    Service
	logger *slog.Logger

	tracks     []data.Track
	pagination data.Pagination
	loading    bool
	errMessage string
	loadFailed bool // errMessage выставлена неудачной загрузкой списка
	selected   map[string]bool
	playing    string
	query      data.Query
	refresh    int
	seq        uint64
	genres     []string

	createDialog modal.State
	editDialog   modal.State
	editing      string
}

// NewManager создает новый экземпляр Manager
func NewManager(svc Service, limit int, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		svc:      svc,
		logger:   logger,
		tracks:   []data.Track{},
		selected: make(map[string]bool),
		query:    data.DefaultQuery(limit),
	}
}

// Tracks возвращает треки текущей страницы в порядке сервера
func (m *Manager) Tracks() []data.Track {
	return m.tracks
}

// Pagination возвращает метаданные последнего успешного ответа
func (m *Manager) Pagination() data.Pagination {
	return m.pagination
}

// Query возвращает текущие параметры запроса
func (m *Manager) Query() data.Query {
	return m.query
}

// Loading сообщает, что запрос списка еще выполняется
func (m *Manager) Loading() bool {
	return m.loading
}

// Err возвращает текст текущей ошибки или пустую строку
func (m *Manager) Err() string {
	return m.errMessage
}

// RefreshCount число принудительных перезагрузок через Retry
func (m *Manager) RefreshCount() int {
	return m.refresh
}

// Genres возвращает доступные жанры
func (m *Manager) Genres() []string {
	return m.genres
}

// IsSelected проверяет, выбран ли трек
func (m *Manager) IsSelected(id string) bool {
	return m.selected[id]
}

// SelectedIDs возвращает выбранные идентификаторы в порядке списка
func (m *Manager) SelectedIDs() []string {
	ids := make([]string, 0, len(m.selected))
	for _, t := range m.tracks {
		if m.selected[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// PlayingID возвращает идентификатор воспроизводимого трека
func (m *Manager) PlayingID() string {
	return m.playing
}

// Playing возвращает воспроизводимый трек, если он есть на странице
func (m *Manager) Playing() (data.Track, bool) {
	if m.playing == "" {
		return data.Track{}, false
	}
	return m.find(m.playing)
}

// StartLoad отмечает начало загрузки и возвращает запрос с новым номером
func (m *Manager) StartLoad() LoadRequest {
	m.seq++
	m.loading = true
	return LoadRequest{Seq: m.seq, Query: m.query}
}

// Fetch выполняет запрос списка. Состояние Manager не меняется,
// поэтому метод можно вызывать вне цикла интерфейса.
func (m *Manager) Fetch(ctx context.Context, req LoadRequest) LoadResult {
	result, err := m.svc.ListTracks(ctx, req.Query)
	return LoadResult{Seq: req.Seq, Result: result, Err: err}
}

// FinishLoad применяет результат загрузки. Устаревшие ответы, номер которых
// меньше последнего выданного, игнорируются; в этом случае возвращается false.
func (m *Manager) FinishLoad(res LoadResult) bool {
	if res.Seq != m.seq {
		m.logger.Debug("устаревший ответ списка отброшен", "seq", res.Seq, "latest", m.seq)
		return false
	}
	m.loading = false

	if res.Err != nil {
		m.logger.Warn("ошибка загрузки списка треков", "error", res.Err)
		m.errMessage = fmt.Sprintf("Не удалось загрузить треки: %v", res.Err)
		m.loadFailed = true
		m.tracks = []data.Track{}
		m.selected = make(map[string]bool)
		return true
	}

	// Ошибка удаленного изменения остается видна после перезагрузки
	if m.loadFailed {
		m.errMessage = ""
		m.loadFailed = false
	}
	m.tracks = res.Result.Tracks
	if m.tracks == nil {
		m.tracks = []data.Track{}
	}
	m.pagination = res.Result.Meta

	// Выбор ограничен загруженной страницей
	visible := make(map[string]bool, len(m.tracks))
	for _, t := range m.tracks {
		visible[t.ID] = true
	}
	for id := range m.selected {
		if !visible[id] {
			delete(m.selected, id)
		}
	}
	return true
}

// Load синхронно загружает текущую страницу
func (m *Manager) Load(ctx context.Context) error {
	res := m.Fetch(ctx, m.StartLoad())
	m.FinishLoad(res)
	return res.Err
}

// SetParameters объединяет изменения с параметрами запроса и сбрасывает страницу на первую
func (m *Manager) SetParameters(patch data.QueryPatch) LoadRequest {
	m.query = patch.Apply(m.query)
	m.query.Page = 1
	return m.StartLoad()
}

// ChangePage переходит на страницу n. Границы проверяет вызывающий.
func (m *Manager) ChangePage(n int) LoadRequest {
	m.query.Page = n
	return m.StartLoad()
}

// NextPage переходит на следующую страницу, если она есть
func (m *Manager) NextPage() (LoadRequest, bool) {
	if m.query.Page >= m.pagination.TotalPages {
		return LoadRequest{}, false
	}
	return m.ChangePage(m.query.Page + 1), true
}

// PrevPage переходит на предыдущую страницу, если она есть
func (m *Manager) PrevPage() (LoadRequest, bool) {
	if m.query.Page <= 1 {
		return LoadRequest{}, false
	}
	return m.ChangePage(m.query.Page - 1), true
}

// ToggleSelect добавляет или убирает трек из выбора
func (m *Manager) ToggleSelect(id string) {
	if m.selected[id] {
		delete(m.selected, id)
		return
	}
	if _, ok := m.find(id); ok {
		m.selected[id] = true
	}
}

// SelectAllVisible выбирает все треки страницы или снимает выбор, если выбраны все
func (m *Manager) SelectAllVisible() {
	if len(m.tracks) == 0 {
		return
	}

	allSelected := true
	for _, t := range m.tracks {
		if !m.selected[t.ID] {
			allSelected = false
			break
		}
	}

	if allSelected {
		m.selected = make(map[string]bool)
		return
	}
	for _, t := range m.tracks {
		m.selected[t.ID] = true
	}
}

// TogglePlay переключает воспроизведение трека.
// Повторный вызов для того же трека останавливает его, вызов для другого
// трека переключает указатель. Трек без аудиофайла не воспроизводится.
// Возвращает true, если указатель изменился.
func (m *Manager) TogglePlay(id string) bool {
	if id == "" {
		return false
	}
	if id == m.playing {
		m.playing = ""
		return true
	}
	t, ok := m.find(id)
	if !ok || !t.HasAudio() {
		return false
	}
	m.playing = id
	return true
}

// StopPlayback сбрасывает указатель воспроизведения
func (m *Manager) StopPlayback() {
	m.playing = ""
}

// DeleteOne сразу убирает трек из списка и возвращает удаленный вызов.
// При ошибке вызова нужно вызвать MutationFailed.
func (m *Manager) DeleteOne(id string) RemoteOp {
	if m.removeLocal(id) {
		m.decrementTotal(1)
	}
	delete(m.selected, id)
	if m.playing == id {
		m.playing = ""
	}

	return func(ctx context.Context) error {
		return m.svc.DeleteTrack(ctx, id)
	}
}

// DeleteSelected сразу убирает выбранные треки и возвращает их идентификаторы
// в порядке списка и удаленный вызов массового удаления. Без выбора возвращает nil.
func (m *Manager) DeleteSelected() ([]string, RemoteOp) {
	ids := m.SelectedIDs()
	if len(ids) == 0 {
		return nil, nil
	}

	removed := 0
	for _, id := range ids {
		if m.removeLocal(id) {
			removed++
		}
		if m.playing == id {
			m.playing = ""
		}
	}
	m.decrementTotal(removed)
	m.selected = make(map[string]bool)

	return ids, func(ctx context.Context) error {
		result, err := m.svc.DeleteTracks(ctx, ids)
		if err != nil {
			return err
		}
		if len(result.Failed) > 0 {
			return fmt.Errorf("не удалось удалить треки: %v", result.Failed)
		}
		return nil
	}
}

// BulkDeleted вызывается после успешного массового удаления.
// Если страница опустела, возвращает запрос на перезагрузку: на предыдущую
// страницу, либо ту же первую страницу.
func (m *Manager) BulkDeleted() (LoadRequest, bool) {
	if len(m.tracks) > 0 {
		return LoadRequest{}, false
	}
	if m.query.Page > 1 {
		return m.ChangePage(m.query.Page - 1), true
	}
	return m.StartLoad(), true
}

// MutationFailed показывает ошибку удаленного изменения и перезагружает список
func (m *Manager) MutationFailed(err error) LoadRequest {
	m.logger.Warn("ошибка изменения каталога", "error", err)
	req := m.StartLoad()
	m.errMessage = fmt.Sprintf("Операция не выполнена: %v", err)
	m.loadFailed = false
	return req
}

// CreateCompleted добавляет созданный трек в начало списка и закрывает диалог создания
func (m *Manager) CreateCompleted(t data.Track) {
	m.tracks = append([]data.Track{t}, m.tracks...)
	m.pagination.Total++
	m.createDialog.Close()
}

// UpdateCompleted заменяет трек с тем же идентификатором и закрывает диалог редактирования
func (m *Manager) UpdateCompleted(t data.Track) {
	for i := range m.tracks {
		if m.tracks[i].ID == t.ID {
			m.tracks[i] = t
			break
		}
	}
	if m.playing == t.ID && !t.HasAudio() {
		m.playing = ""
	}
	m.CloseDialogs()
}

// Retry сбрасывает ошибку и принудительно перезагружает список
func (m *Manager) Retry() LoadRequest {
	m.errMessage = ""
	m.loadFailed = false
	m.refresh++
	return m.StartLoad()
}

// DismissError скрывает текущую ошибку
func (m *Manager) DismissError() {
	m.errMessage = ""
	m.loadFailed = false
}

// SetError показывает ошибку, не связанную с загрузкой списка
func (m *Manager) SetError(message string) {
	m.errMessage = message
	m.loadFailed = false
}

// LoadGenres загружает список жанров
func (m *Manager) LoadGenres(ctx context.Context) error {
	genres, err := m.svc.Genres(ctx)
	if err != nil {
		return fmt.Errorf("ошибка загрузки жанров: %w", err)
	}
	m.SetGenres(genres)
	return nil
}

// SetGenres сохраняет список жанров
func (m *Manager) SetGenres(genres []string) {
	m.genres = genres
}

// OpenCreate открывает диалог создания
func (m *Manager) OpenCreate() {
	m.editDialog.Close()
	m.editing = ""
	m.createDialog.Open()
}

// OpenEdit открывает диалог редактирования трека
func (m *Manager) OpenEdit(id string) (data.Track, bool) {
	t, ok := m.find(id)
	if !ok {
		return data.Track{}, false
	}
	m.createDialog.Close()
	m.editing = id
	m.editDialog.Open()
	return t, true
}

// CloseDialogs закрывает оба диалога
func (m *Manager) CloseDialogs() {
	m.createDialog.Close()
	m.editDialog.Close()
	m.editing = ""
}

// CreateOpen сообщает, что открыт диалог создания
func (m *Manager) CreateOpen() bool {
	return m.createDialog.IsOpen()
}

// EditOpen сообщает, что открыт диалог редактирования
func (m *Manager) EditOpen() bool {
	return m.editDialog.IsOpen()
}

// EditingID возвращает идентификатор редактируемого трека
func (m *Manager) EditingID() string {
	return m.editing
}

func (m *Manager) find(id string) (data.Track, bool) {
	for _, t := range m.tracks {
		if t.ID == id {
			return t, true
		}
	}
	return data.Track{}, false
}

// removeLocal убирает трек из списка и сообщает, был ли он найден
func (m *Manager) removeLocal(id string) bool {
	for i, t := range m.tracks {
		if t.ID == id {
			tracks := make([]data.Track, 0, len(m.tracks)-1)
			tracks = append(tracks, m.tracks[:i]...)
			m.tracks = append(tracks, m.tracks[i+1:]...)
			return true
		}
	}
	return false
}

func (m *Manager) decrementTotal(n int) {
	m.pagination.Total -= n
	if m.pagination.Total < 0 {
		m.pagination.Total = 0
	}
}
