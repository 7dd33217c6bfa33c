// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-tracks/internal/form"
	"github.com/hazadus/go-tracks/internal/player"
	"github.com/hazadus/go-tracks/internal/track"
	"github.com/hazadus/go-tracks/internal/tui/editor"
	"github.com/hazadus/go-tracks/internal/tui/header"
	tuiPlayer "github.com/hazadus/go-tracks/internal/tui/player"
	"github.com/hazadus/go-tracks/internal/tui/tracklist"
)

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// EditorScreen - диалог создания или редактирования
	EditorScreen
)

// Client удаленные операции каталога, нужные интерфейсу
type Client interface {
	track.Service
	form.Service
	FileURL(fileRef string) string
}

// Options настройки главной модели
type Options struct {
	PageLimit      int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Внутренние сообщения с результатами удаленных вызовов
type (
	loadedMsg struct {
		result track.LoadResult
	}

	genresMsg struct {
		genres []string
		err    error
	}

	deletedMsg struct {
		id  string
		err error
	}

	bulkDeletedMsg struct {
		ids []string
		err error
	}
)

// MainModel представляет главную модель TUI. Все изменения состояния каталога
// выполняются только в Update.
type MainModel struct {
	client  Client
	manager *track.Manager
	logger  *slog.Logger
	timeout time.Duration

	header    header.Model
	tracklist tracklist.Model
	editor    editor.Model
	bar       tuiPlayer.Model

	width  int
	height int
}

// NewMainModel создает новую главную модель
func NewMainModel(client Client, ctrl tuiPlayer.Controller, opts Options) *MainModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	manager := track.NewManager(client, opts.PageLimit, logger)

	return &MainModel{
		client:    client,
		manager:   manager,
		logger:    logger,
		timeout:   timeout,
		header:    header.New(manager.Query()),
		tracklist: tracklist.NewModel(),
		bar:       tuiPlayer.NewModel(ctrl),
	}
}

// Manager возвращает состояние списка треков
func (m *MainModel) Manager() *track.Manager {
	return m.manager
}

// CurrentScreen возвращает активный экран
func (m *MainModel) CurrentScreen() ScreenType {
	if m.manager.CreateOpen() || m.manager.EditOpen() {
		return EditorScreen
	}
	return TracklistScreen
}

// Init загружает первую страницу и список жанров
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.load(m.manager.StartLoad()),
		m.loadGenres(),
		m.tracklist.Init(),
		m.bar.Listen(),
	)
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.tracklist, cmd = m.tracklist.Update(msg, m.listState())
		cmds = append(cmds, cmd)
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
		m.bar, cmd = m.bar.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.tracklist, cmd = m.tracklist.Update(msg, m.listState())
		return m, cmd

	// Результаты удаленных вызовов
	case loadedMsg:
		if !m.manager.FinishLoad(msg.result) {
			return m, nil
		}
		if msg.result.Err != nil {
			m.logger.Warn("ошибка загрузки списка", "error", msg.result.Err)
		}
		return m, m.syncPlayback()

	case genresMsg:
		if msg.err != nil {
			m.logger.Warn("ошибка загрузки жанров", "error", msg.err)
			return m, nil
		}
		m.manager.SetGenres(msg.genres)
		m.header = m.header.SetGenres(msg.genres)
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			return m, m.load(m.manager.MutationFailed(msg.err))
		}
		m.logger.Info("трек удален", "track_id", msg.id)
		return m, nil

	case bulkDeletedMsg:
		if msg.err != nil {
			return m, m.load(m.manager.MutationFailed(msg.err))
		}
		m.logger.Info("треки удалены", "count", len(msg.ids))
		if req, ok := m.manager.BulkDeleted(); ok {
			return m, m.load(req)
		}
		return m, nil

	// Панель фильтров
	case header.ParamsChangedMsg:
		return m, m.load(m.manager.SetParameters(msg.Patch))

	case header.BulkDeleteMsg:
		return m, m.deleteSelected()

	case header.BlurMsg:
		return m, nil

	// Список треков
	case tracklist.FocusFiltersMsg:
		var cmd tea.Cmd
		m.header, cmd = m.header.Focus()
		return m, cmd

	case tracklist.PlayToggleMsg:
		if m.manager.TogglePlay(msg.ID) {
			return m, m.syncPlayback()
		}
		return m, nil

	case tracklist.PauseMsg:
		m.bar = m.bar.TogglePause()
		return m, nil

	case tracklist.SelectToggleMsg:
		m.manager.ToggleSelect(msg.ID)
		return m, nil

	case tracklist.SelectAllMsg:
		m.manager.SelectAllVisible()
		return m, nil

	case tracklist.PageMsg:
		req, ok := m.manager.NextPage()
		if msg.Delta < 0 {
			req, ok = m.manager.PrevPage()
		}
		if ok {
			return m, m.load(req)
		}
		return m, nil

	case tracklist.DeleteMsg:
		op := m.manager.DeleteOne(msg.ID)
		id := msg.ID
		return m, tea.Batch(m.syncPlayback(), m.run(op, func(err error) tea.Msg {
			return deletedMsg{id: id, err: err}
		}))

	case tracklist.CreateMsg:
		m.manager.OpenCreate()
		m.editor = editor.NewCreate(m.client, m.manager.Genres(), m.logger)
		return m, tea.Batch(m.editor.Init(), m.resizeEditor())

	case tracklist.EditMsg:
		t, ok := m.manager.OpenEdit(msg.ID)
		if !ok {
			return m, nil
		}
		m.editor = editor.NewEdit(m.client, t, m.manager.Genres(), m.logger)
		return m, tea.Batch(m.editor.Init(), m.resizeEditor())

	case tracklist.RetryMsg:
		return m, m.load(m.manager.Retry())

	case tracklist.DismissErrorMsg:
		m.manager.DismissError()
		return m, nil

	// Диалог
	case editor.CloseMsg:
		m.manager.CloseDialogs()
		return m, nil

	case editor.SubmittedMsg:
		m.editor, _ = m.editor.Update(msg)
		return m, m.handleSubmitted(msg)

	case editor.AudioDeletedMsg:
		m.editor, _ = m.editor.Update(msg)
		if msg.Err != nil {
			m.logger.Warn("ошибка удаления аудиофайла", "track_id", msg.ID, "error", msg.Err)
			return m, nil
		}
		m.logger.Info("аудиофайл удален", "track_id", msg.ID)
		if m.manager.PlayingID() == msg.ID {
			m.manager.StopPlayback()
		}
		return m, tea.Batch(m.syncPlayback(), m.load(m.manager.StartLoad()))

	// Плеер
	case tuiPlayer.ProgressMsg:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		return m, cmd

	case tuiPlayer.PlaybackFinishedMsg:
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Update(msg)
		if msg.TrackID != "" && msg.TrackID == m.manager.PlayingID() {
			m.manager.StopPlayback()
		}
		return m, cmd

	case tuiPlayer.PlaybackErrorMsg:
		m.bar, _ = m.bar.Update(msg)
		if msg.TrackID != m.manager.PlayingID() {
			return m, nil
		}
		m.logger.Warn("ошибка воспроизведения", "track_id", msg.TrackID, "error", msg.Err)
		m.manager.StopPlayback()
		m.manager.SetError(fmt.Sprintf("Ошибка воспроизведения: %v", msg.Err))
		return m, nil
	}

	// Прочие сообщения (мигание курсора, анимация) получает активный компонент
	return m.forward(msg)
}

// handleKey направляет нажатия активному компоненту
func (m *MainModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.CurrentScreen() == EditorScreen {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		return m, cmd
	}

	if m.header.Focused() {
		var cmd tea.Cmd
		m.header, cmd = m.header.Update(msg)
		return m, cmd
	}

	if msg.String() == "ctrl+d" {
		return m, header.BulkDelete
	}

	var cmd tea.Cmd
	m.tracklist, cmd = m.tracklist.Update(msg, m.listState())
	return m, cmd
}

func (m *MainModel) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.CurrentScreen() == EditorScreen:
		m.editor, cmd = m.editor.Update(msg)
	case m.header.Focused():
		m.header, cmd = m.header.Update(msg)
	default:
		m.tracklist, cmd = m.tracklist.Update(msg, m.listState())
	}
	return m, cmd
}

// handleSubmitted применяет результат отправки диалога к списку
func (m *MainModel) handleSubmitted(msg editor.SubmittedMsg) tea.Cmd {
	t := msg.Result.Track
	if msg.Err != nil {
		m.logger.Warn("ошибка сохранения трека", "track_id", t.ID, "error", msg.Err)
		// Трек создан, но файл не загружен: показываем его в списке
		if msg.Mode == editor.ModeCreate && t.ID != "" {
			return m.load(m.manager.StartLoad())
		}
		return nil
	}

	if msg.Mode == editor.ModeCreate {
		m.logger.Info("трек создан", "track_id", t.ID)
		m.manager.CreateCompleted(t)
		return nil
	}
	m.logger.Info("трек изменен", "track_id", t.ID)
	m.manager.UpdateCompleted(t)
	return m.syncPlayback()
}

// deleteSelected удаляет выбранные треки
func (m *MainModel) deleteSelected() tea.Cmd {
	ids, op := m.manager.DeleteSelected()
	if op == nil {
		return nil
	}
	return tea.Batch(m.syncPlayback(), m.run(op, func(err error) tea.Msg {
		return bulkDeletedMsg{ids: ids, err: err}
	}))
}

// syncPlayback приводит плеер в соответствие с указателем воспроизведения
func (m *MainModel) syncPlayback() tea.Cmd {
	id := m.manager.PlayingID()
	if id == "" {
		var cmd tea.Cmd
		m.bar, cmd = m.bar.Stop()
		return cmd
	}
	if m.bar.Active() && m.bar.TrackID() == id {
		return nil
	}

	t, ok := m.manager.Playing()
	if !ok {
		return nil
	}
	title := t.Title
	if t.Artist != "" {
		title = t.Artist + " - " + t.Title
	}

	var cmd tea.Cmd
	m.bar, cmd = m.bar.Start(player.Source{
		TrackID: t.ID,
		Title:   title,
		URL:     m.client.FileURL(t.AudioFile),
	})
	m.logger.Info("воспроизведение", "track_id", t.ID, "file", t.AudioFile)
	return cmd
}

// load выполняет запрос списка вне цикла обработки событий
func (m *MainModel) load(req track.LoadRequest) tea.Cmd {
	manager, timeout := m.manager, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return loadedMsg{result: manager.Fetch(ctx, req)}
	}
}

func (m *MainModel) loadGenres() tea.Cmd {
	client, timeout := m.client, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		genres, err := client.Genres(ctx)
		return genresMsg{genres: genres, err: err}
	}
}

// run выполняет удаленное изменение и превращает результат в сообщение
func (m *MainModel) run(op track.RemoteOp, done func(error) tea.Msg) tea.Cmd {
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return done(op(ctx))
	}
}

func (m *MainModel) resizeEditor() tea.Cmd {
	if m.width == 0 {
		return nil
	}
	width, height := m.width, m.height
	return func() tea.Msg { return tea.WindowSizeMsg{Width: width, Height: height} }
}

func (m *MainModel) listState() tracklist.State {
	return tracklist.State{
		Tracks:     m.manager.Tracks(),
		Selected:   m.manager.IsSelected,
		PlayingID:  m.manager.PlayingID(),
		Pagination: m.manager.Pagination(),
		Page:       m.manager.Query().Page,
		Loading:    m.manager.Loading(),
		Err:        m.manager.Err(),
	}
}

// View отображает интерфейс
func (m *MainModel) View() string {
	if m.CurrentScreen() == EditorScreen {
		return m.editor.View()
	}

	var b strings.Builder
	b.WriteString(m.header.View(len(m.manager.SelectedIDs())))
	b.WriteString("\n")
	b.WriteString(m.tracklist.View(m.listState()))
	if bar := m.bar.View(); bar != "" {
		b.WriteString("\n")
		b.WriteString(bar)
	}
	return b.String()
}

// Close закрывает ресурсы главной модели
func (m *MainModel) Close() error {
	return m.bar.Close()
}
