// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/utils"
)

var (
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	cursorItemStyle   = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	noAudioStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	errorStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).MarginLeft(2)
	confirmStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).MarginLeft(2)
	emptyStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginLeft(4)
	paginationStyle   = lipgloss.NewStyle().PaddingLeft(4)
	helpStyle         = lipgloss.NewStyle().PaddingLeft(4).PaddingBottom(1)
	columnHeaderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(4)
)

// PlayToggleMsg переключает воспроизведение трека
type PlayToggleMsg struct{ ID string }

// PauseMsg приостанавливает или возобновляет воспроизведение
type PauseMsg struct{}

// EditMsg открывает диалог редактирования трека
type EditMsg struct{ ID string }

// DeleteMsg удаляет трек после подтверждения
type DeleteMsg struct{ ID string }

// SelectToggleMsg переключает выбор трека
type SelectToggleMsg struct{ ID string }

// SelectAllMsg выбирает все треки страницы или снимает выбор
type SelectAllMsg struct{}

// PageMsg переходит на соседнюю страницу
type PageMsg struct{ Delta int }

// CreateMsg открывает диалог создания
type CreateMsg struct{}

// RetryMsg повторяет загрузку после ошибки
type RetryMsg struct{}

// DismissErrorMsg скрывает ошибку
type DismissErrorMsg struct{}

// FocusFiltersMsg передает фокус панели фильтров
type FocusFiltersMsg struct{}

// State данные для отображения, которыми владеет track.Manager
type State struct {
	Tracks     []data.Track
	Selected   func(id string) bool
	PlayingID  string
	Pagination data.Pagination
	Page       int
	Loading    bool
	Err        string
}

// Model представляет модель экрана списка треков: курсор, индикаторы и справку
type Model struct {
	cursor        int
	pendingDelete *data.Track
	spinner       spinner.Model
	paginator     paginator.Model
	help          help.Model
	width         int
	height        int
}

// NewModel создает новую модель списка треков
func NewModel() Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := paginator.New()
	p.Type = paginator.Arabic
	p.ArabicFormat = "Стр. %d из %d"

	return Model{
		spinner:   s,
		paginator: p,
		help:      help.New(),
	}
}

// Init запускает анимацию индикатора загрузки
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Cursor возвращает позицию курсора
func (m Model) Cursor() int {
	return m.cursor
}

// Update обрабатывает сообщения. state нужен, чтобы определить трек под курсором.
func (m Model) Update(msg tea.Msg, state State) (Model, tea.Cmd) {
	m.cursor = clamp(m.cursor, len(state.Tracks))

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg, state)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg, state State) (Model, tea.Cmd) {
	// Ожидание подтверждения удаления перехватывает все клавиши
	if m.pendingDelete != nil {
		id := m.pendingDelete.ID
		m.pendingDelete = nil
		if key.Matches(msg, Keys.Confirm) {
			return m, send(DeleteMsg{ID: id})
		}
		return m, nil
	}

	current, hasCurrent := data.Track{}, false
	if len(state.Tracks) > 0 {
		current, hasCurrent = state.Tracks[m.cursor], true
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, Keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.cursor < len(state.Tracks)-1 {
			m.cursor++
		}
	case key.Matches(msg, Keys.PrevPage):
		// Выход за границы страниц недоступен
		if state.Page > 1 && !state.Loading {
			m.cursor = 0
			return m, send(PageMsg{Delta: -1})
		}
	case key.Matches(msg, Keys.NextPage):
		if state.Page < state.Pagination.TotalPages && !state.Loading {
			m.cursor = 0
			return m, send(PageMsg{Delta: 1})
		}
	case key.Matches(msg, Keys.Play):
		if hasCurrent && (current.HasAudio() || current.ID == state.PlayingID) {
			return m, send(PlayToggleMsg{ID: current.ID})
		}
	case key.Matches(msg, Keys.Pause):
		if state.PlayingID != "" {
			return m, send(PauseMsg{})
		}
	case key.Matches(msg, Keys.Edit):
		if hasCurrent {
			return m, send(EditMsg{ID: current.ID})
		}
	case key.Matches(msg, Keys.Delete):
		if hasCurrent {
			m.pendingDelete = &current
		}
	case key.Matches(msg, Keys.Select):
		if hasCurrent {
			return m, send(SelectToggleMsg{ID: current.ID})
		}
	case key.Matches(msg, Keys.SelectAll):
		return m, send(SelectAllMsg{})
	case key.Matches(msg, Keys.Create):
		return m, send(CreateMsg{})
	case key.Matches(msg, Keys.Retry):
		return m, send(RetryMsg{})
	case key.Matches(msg, Keys.Dismiss):
		if state.Err != "" {
			return m, send(DismissErrorMsg{})
		}
	case key.Matches(msg, Keys.Filter):
		return m, send(FocusFiltersMsg{})
	}
	return m, nil
}

// View отображает список
func (m Model) View(state State) string {
	var b strings.Builder

	if state.Err != "" {
		b.WriteString(errorStyle.Render("⚠ " + state.Err + "  (r: повторить, x: скрыть)"))
		b.WriteString("\n\n")
	}

	if m.pendingDelete != nil {
		b.WriteString(confirmStyle.Render(fmt.Sprintf("Удалить «%s»? y/n", m.pendingDelete.Title)))
		b.WriteString("\n\n")
	}

	if state.Loading {
		b.WriteString(emptyStyle.Render(m.spinner.View() + " Загрузка..."))
		b.WriteString("\n")
	}

	switch {
	case len(state.Tracks) == 0 && !state.Loading && state.Err == "":
		b.WriteString(emptyStyle.Render("Треков нет. Нажмите c, чтобы добавить."))
		b.WriteString("\n")
	case len(state.Tracks) > 0:
		b.WriteString(columnHeaderStyle.Render(fmt.Sprintf("     %-*s %-*s %-*s %s",
			titleWidth, "Название", artistWidth, "Исполнитель", albumWidth, "Альбом", "Жанры")))
		b.WriteString("\n")
		cursor := clamp(m.cursor, len(state.Tracks))
		for i, t := range state.Tracks {
			selected := state.Selected != nil && state.Selected(t.ID)
			b.WriteString(RenderRow(t, selected, t.ID == state.PlayingID, i == cursor))
			b.WriteString("\n")
		}
	}

	if state.Pagination.TotalPages > 1 {
		p := m.paginator
		p.TotalPages = state.Pagination.TotalPages
		p.Page = state.Page - 1
		b.WriteString("\n")
		b.WriteString(paginationStyle.Render(fmt.Sprintf("%s • всего %d", p.View(), state.Pagination.Total)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.help.View(Keys)))
	return b.String()
}

const (
	titleWidth  = 32
	artistWidth = 20
	albumWidth  = 20
)

// RenderRow отображает одну строку трека: отметку выбора, отметку воспроизведения,
// название, исполнителя, альбом и жанры. Треки без аудиофайла приглушены.
func RenderRow(t data.Track, selected, playing, cursor bool) string {
	check := "[ ]"
	if selected {
		check = "[x]"
	}
	mark := " "
	switch {
	case playing:
		mark = "▶"
	case !t.HasAudio():
		mark = "–"
	}

	row := fmt.Sprintf("%s %s %-*s %-*s %-*s %s",
		check,
		mark,
		titleWidth, utils.TruncateString(t.Title, titleWidth),
		artistWidth, utils.TruncateString(t.Artist, artistWidth),
		albumWidth, utils.TruncateString(t.Album, albumWidth),
		strings.Join(t.Genres, ", "),
	)

	if cursor {
		return cursorItemStyle.Render("> " + row)
	}
	if !t.HasAudio() {
		return itemStyle.Render(noAudioStyle.Render(row))
	}
	return itemStyle.Render(row)
}

func send(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func clamp(cursor, n int) int {
	if cursor >= n {
		cursor = n - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	return cursor
}
