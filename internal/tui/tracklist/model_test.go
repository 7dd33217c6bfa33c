package tracklist

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-tracks/internal/data"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func testState() State {
	return State{
		Tracks: []data.Track{
			{ID: "1", Title: "Test Track 1", Artist: "Test Artist 1", AudioFile: "1.mp3", Genres: []string{"Rock"}},
			{ID: "2", Title: "Test Track 2", Artist: "Test Artist 2"},
			{ID: "3", Title: "Test Track 3", Artist: "Test Artist 3", AudioFile: "3.mp3"},
		},
		Pagination: data.Pagination{Total: 25, Page: 2, Limit: 3, TotalPages: 9},
		Page:       2,
	}
}

// press отправляет клавишу и возвращает сообщение из команды
func press(t *testing.T, m Model, s string, state State) (Model, tea.Msg) {
	t.Helper()
	m, cmd := m.Update(keyMsg(s), state)
	if cmd == nil {
		return m, nil
	}
	return m, cmd()
}

func TestCursorMovement(t *testing.T) {
	state := testState()
	m := NewModel()

	m, _ = press(t, m, "up", state)
	if m.Cursor() != 0 {
		t.Errorf("Курсор не должен уходить выше первой строки: %d", m.Cursor())
	}

	for range 5 {
		m, _ = press(t, m, "j", state)
	}
	if m.Cursor() != 2 {
		t.Errorf("Курсор не должен уходить ниже последней строки: %d", m.Cursor())
	}

	// Страница стала короче: курсор прижимается к последней строке
	state.Tracks = state.Tracks[:1]
	m, _ = m.Update(keyMsg("k"), state)
	if m.Cursor() != 0 {
		t.Errorf("Ожидался курсор 0, получено %d", m.Cursor())
	}
}

func TestPlayToggle(t *testing.T) {
	state := testState()
	m := NewModel()

	_, msg := press(t, m, "enter", state)
	if got, ok := msg.(PlayToggleMsg); !ok || got.ID != "1" {
		t.Errorf("Ожидалось PlayToggleMsg{1}, получено %#v", msg)
	}

	m, _ = press(t, m, "down", state)
	if _, msg = press(t, m, "p", state); msg != nil {
		t.Errorf("Для трека без аудио воспроизведение недоступно, получено %#v", msg)
	}
}

func TestPauseOnlyWhilePlaying(t *testing.T) {
	state := testState()
	m := NewModel()

	if _, msg := press(t, m, "s", state); msg != nil {
		t.Errorf("Без воспроизведения пауза недоступна: %#v", msg)
	}

	state.PlayingID = "3"
	if _, msg := press(t, m, "s", state); msg != (PauseMsg{}) {
		t.Errorf("Ожидалось PauseMsg, получено %#v", msg)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	state := testState()
	m := NewModel()
	m, _ = press(t, m, "down", state)

	m, msg := press(t, m, "d", state)
	if msg != nil {
		t.Fatalf("Удаление требует подтверждения, получено %#v", msg)
	}
	if !strings.Contains(m.View(state), "Удалить «Test Track 2»? y/n") {
		t.Error("Должен отображаться запрос подтверждения")
	}

	m, msg = press(t, m, "y", state)
	if got, ok := msg.(DeleteMsg); !ok || got.ID != "2" {
		t.Errorf("Ожидалось DeleteMsg{2}, получено %#v", msg)
	}
	if strings.Contains(m.View(state), "y/n") {
		t.Error("Запрос подтверждения должен закрыться")
	}

	// Отказ
	m, _ = press(t, m, "d", state)
	m, msg = press(t, m, "n", state)
	if msg != nil {
		t.Errorf("После отказа удаления быть не должно: %#v", msg)
	}

	// Любая другая клавиша тоже отменяет запрос
	m, _ = press(t, m, "d", state)
	if _, msg = press(t, m, "e", state); msg != nil {
		t.Errorf("Клавиша во время подтверждения не должна выполнять действие: %#v", msg)
	}
}

func TestSelectionAndActions(t *testing.T) {
	state := testState()
	m := NewModel()
	m, _ = press(t, m, "down", state)

	tests := []struct {
		key  string
		want tea.Msg
	}{
		{" ", SelectToggleMsg{ID: "2"}},
		{"a", SelectAllMsg{}},
		{"e", EditMsg{ID: "2"}},
		{"c", CreateMsg{}},
		{"r", RetryMsg{}},
		{"/", FocusFiltersMsg{}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if _, msg := press(t, m, tt.key, state); msg != tt.want {
				t.Errorf("Ожидалось %#v, получено %#v", tt.want, msg)
			}
		})
	}
}

func TestDismissOnlyWithError(t *testing.T) {
	state := testState()
	m := NewModel()

	if _, msg := press(t, m, "x", state); msg != nil {
		t.Errorf("Без ошибки скрывать нечего: %#v", msg)
	}
	state.Err = "сервер недоступен"
	if _, msg := press(t, m, "x", state); msg != (DismissErrorMsg{}) {
		t.Errorf("Ожидалось DismissErrorMsg, получено %#v", msg)
	}
	if !strings.Contains(m.View(state), "сервер недоступен") {
		t.Error("Ошибка должна отображаться")
	}
}

func TestPageBounds(t *testing.T) {
	state := testState()
	m := NewModel()

	if _, msg := press(t, m, "right", state); msg != (PageMsg{Delta: 1}) {
		t.Errorf("Ожидалось PageMsg{1}, получено %#v", msg)
	}
	if _, msg := press(t, m, "h", state); msg != (PageMsg{Delta: -1}) {
		t.Errorf("Ожидалось PageMsg{-1}, получено %#v", msg)
	}

	state.Page = 1
	if _, msg := press(t, m, "left", state); msg != nil {
		t.Errorf("С первой страницы назад перейти нельзя: %#v", msg)
	}

	state.Page = 9
	if _, msg := press(t, m, "l", state); msg != nil {
		t.Errorf("С последней страницы вперед перейти нельзя: %#v", msg)
	}

	state.Page = 5
	state.Loading = true
	if _, msg := press(t, m, "l", state); msg != nil {
		t.Errorf("Во время загрузки переход недоступен: %#v", msg)
	}
}

func TestEmptyList(t *testing.T) {
	m := NewModel()
	state := State{Page: 1}

	for _, k := range []string{"enter", "e", "d", " "} {
		if _, msg := press(t, m, k, state); msg != nil {
			t.Errorf("Клавиша %q на пустом списке не должна давать сообщений: %#v", k, msg)
		}
	}
	if !strings.Contains(m.View(state), "Треков нет") {
		t.Error("Ожидалось сообщение о пустом списке")
	}
}

func TestRenderRow(t *testing.T) {
	track := data.Track{ID: "1", Title: "Song", Artist: "Band", Album: "LP", AudioFile: "1.mp3", Genres: []string{"Rock", "Jazz"}}

	row := RenderRow(track, true, true, false)
	for _, want := range []string{"[x]", "▶", "Song", "Band", "LP", "Rock, Jazz"} {
		if !strings.Contains(row, want) {
			t.Errorf("Строка должна содержать %q: %q", want, row)
		}
	}

	row = RenderRow(track, false, false, true)
	if !strings.Contains(row, "[ ]") || strings.Contains(row, "▶") || !strings.Contains(row, ">") {
		t.Errorf("Неверная строка под курсором: %q", row)
	}

	noAudio := data.Track{ID: "2", Title: "Silent"}
	if !strings.Contains(RenderRow(noAudio, false, false, false), "–") {
		t.Error("Трек без аудио должен быть отмечен")
	}
}

func TestViewMarks(t *testing.T) {
	state := testState()
	state.PlayingID = "3"
	state.Selected = func(id string) bool { return id == "1" }

	view := NewModel().View(state)
	if strings.Count(view, "[x]") != 1 || strings.Count(view, "▶") != 1 {
		t.Errorf("Неверные отметки в списке:\n%s", view)
	}
	if !strings.Contains(view, "Стр. 2 из 9") || !strings.Contains(view, "всего 25") {
		t.Errorf("Ожидалась пагинация:\n%s", view)
	}
}
