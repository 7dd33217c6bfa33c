// Package header содержит панель поиска и фильтров над списком треков
package header

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tracks/internal/data"
)

var (
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	barStyle      = lipgloss.NewStyle().MarginLeft(2).MarginBottom(1)
)

// ParamsChangedMsg отправляется при изменении параметров поиска
type ParamsChangedMsg struct {
	Patch data.QueryPatch
}

// BulkDeleteMsg запрашивает удаление выбранных треков
type BulkDeleteMsg struct{}

// BlurMsg отправляется, когда панель отдает фокус списку
type BlurMsg struct{}

type field int

const (
	searchField field = iota
	artistField
	sortField
	orderField
	genreField
	numFields
)

// KeyMap клавиши панели
type KeyMap struct {
	Next       key.Binding
	Prev       key.Binding
	Apply      key.Binding
	CycleUp    key.Binding
	CycleDown  key.Binding
	Leave      key.Binding
	BulkDelete key.Binding
}

// Keys клавиши панели по умолчанию
var Keys = KeyMap{
	Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "след. поле")),
	Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "пред. поле")),
	Apply:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "применить")),
	CycleUp:    key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "след. значение")),
	CycleDown:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "пред. значение")),
	Leave:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "к списку")),
	BulkDelete: key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "удалить выбранные")),
}

// ShortHelp реализует help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Apply, k.CycleUp, k.Leave, k.BulkDelete}
}

// FullHelp реализует help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Prev, k.CycleDown}}
}

// Model панель фильтров. Хранит только то, что видно на экране;
// параметры запроса принадлежат track.Manager.
type Model struct {
	search  textinput.Model
	artist  textinput.Model
	sortIdx int
	order   string
	genre   string
	genres  []string
	focus   field
	focused bool
}

// New создает панель, заполненную параметрами q
func New(q data.Query) Model {
	search := textinput.New()
	search.Prompt = ""
	search.Placeholder = "поиск"
	search.Width = 24
	search.SetValue(q.Search)

	artist := textinput.New()
	artist.Prompt = ""
	artist.Placeholder = "исполнитель"
	artist.Width = 18
	artist.SetValue(q.Artist)

	m := Model{
		search: search,
		artist: artist,
		order:  q.Order,
		genre:  q.Genre,
	}
	for i, f := range data.SortFields {
		if f == q.Sort {
			m.sortIdx = i
		}
	}
	if m.order == "" {
		m.order = data.OrderDesc
	}
	return m
}

// SetGenres задает варианты жанров для фильтра
func (m Model) SetGenres(genres []string) Model {
	m.genres = genres
	return m
}

// Focused сообщает, что панель принимает ввод
func (m Model) Focused() bool {
	return m.focused
}

// Focus передает ввод панели
func (m Model) Focus() (Model, tea.Cmd) {
	m.focused = true
	return m, m.applyFocus()
}

// Blur убирает фокус с панели
func (m Model) Blur() Model {
	m.focused = false
	m.search.Blur()
	m.artist.Blur()
	return m
}

// BulkDelete возвращает команду запроса массового удаления
func BulkDelete() tea.Msg {
	return BulkDeleteMsg{}
}

// Update обрабатывает ввод, пока панель в фокусе
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, Keys.BulkDelete):
		return m, BulkDelete
	case key.Matches(keyMsg, Keys.Leave):
		return m.Blur(), func() tea.Msg { return BlurMsg{} }
	case key.Matches(keyMsg, Keys.Next):
		m.focus = (m.focus + 1) % numFields
		return m, m.applyFocus()
	case key.Matches(keyMsg, Keys.Prev):
		m.focus = (m.focus + numFields - 1) % numFields
		return m, m.applyFocus()
	}

	switch m.focus {
	case searchField, artistField:
		if key.Matches(keyMsg, Keys.Apply) {
			return m, m.textChanged()
		}
		var cmd tea.Cmd
		if m.focus == searchField {
			m.search, cmd = m.search.Update(msg)
		} else {
			m.artist, cmd = m.artist.Update(msg)
		}
		return m, cmd

	default:
		step := 0
		switch {
		case key.Matches(keyMsg, Keys.CycleUp), key.Matches(keyMsg, Keys.Apply):
			step = 1
		case key.Matches(keyMsg, Keys.CycleDown):
			step = -1
		}
		if step == 0 {
			return m, nil
		}
		return m.cycle(step)
	}
}

// cycle переключает значение выбранного селектора
func (m Model) cycle(step int) (Model, tea.Cmd) {
	var patch data.QueryPatch
	switch m.focus {
	case sortField:
		m.sortIdx = (m.sortIdx + step + len(data.SortFields)) % len(data.SortFields)
		sort := data.SortFields[m.sortIdx]
		patch.Sort = &sort
	case orderField:
		if m.order == data.OrderAsc {
			m.order = data.OrderDesc
		} else {
			m.order = data.OrderAsc
		}
		order := m.order
		patch.Order = &order
	case genreField:
		// Первый вариант "все жанры" соответствует пустой строке
		options := append([]string{""}, m.genres...)
		idx := 0
		for i, g := range options {
			if g == m.genre {
				idx = i
			}
		}
		m.genre = options[(idx+step+len(options))%len(options)]
		genre := m.genre
		patch.Genre = &genre
	}
	return m, changed(patch)
}

func (m Model) textChanged() tea.Cmd {
	search := strings.TrimSpace(m.search.Value())
	artist := strings.TrimSpace(m.artist.Value())
	return changed(data.QueryPatch{Search: &search, Artist: &artist})
}

func changed(patch data.QueryPatch) tea.Cmd {
	return func() tea.Msg {
		return ParamsChangedMsg{Patch: patch}
	}
}

func (m *Model) applyFocus() tea.Cmd {
	m.search.Blur()
	m.artist.Blur()
	if !m.focused {
		return nil
	}
	switch m.focus {
	case searchField:
		return m.search.Focus()
	case artistField:
		return m.artist.Focus()
	}
	return nil
}

// View отображает панель; selected число выбранных треков
func (m Model) View(selected int) string {
	style := func(f field) lipgloss.Style {
		if m.focused && m.focus == f {
			return focusedStyle
		}
		return blurredStyle
	}

	genre := m.genre
	if genre == "" {
		genre = "все"
	}
	orderMark := "↓"
	if m.order == data.OrderAsc {
		orderMark = "↑"
	}

	parts := []string{
		labelStyle.Render("Поиск: ") + style(searchField).Render(m.search.View()),
		labelStyle.Render("Исполнитель: ") + style(artistField).Render(m.artist.View()),
		labelStyle.Render("Сортировка: ") + style(sortField).Render(sortLabel(data.SortFields[m.sortIdx])),
		style(orderField).Render(orderMark),
		labelStyle.Render("Жанр: ") + style(genreField).Render(genre),
	}
	line := strings.Join(parts, "  ")
	if selected > 0 {
		line += "  " + selectedStyle.Render(fmt.Sprintf("Выбрано: %d, ctrl+d удалить", selected))
	}
	return barStyle.Render(line)
}

func sortLabel(sort string) string {
	switch sort {
	case data.SortTitle:
		return "название"
	case data.SortArtist:
		return "исполнитель"
	case data.SortAlbum:
		return "альбом"
	default:
		return "дата"
	}
}
