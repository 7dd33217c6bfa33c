// Package editor содержит модель диалога создания и редактирования трека для TUI
package editor

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/form"
	"github.com/hazadus/go-tracks/internal/metadata"
	"github.com/hazadus/go-tracks/internal/utils"
)

var (
	titleStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Width(15)
	focusedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurredStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	chipStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("238")).Padding(0, 1)
	activeChipStyle = chipStyle.Background(lipgloss.Color("205"))
	suggestStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).PaddingLeft(16)
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Mode режим диалога
type Mode int

// Режимы диалога
const (
	ModeCreate Mode = iota
	ModeEdit
)

// CloseMsg отправляется при отмене диалога
type CloseMsg struct{}

// SubmittedMsg результат отправки черновика на сервер
type SubmittedMsg struct {
	Mode   Mode
	Result form.Result
	Err    error
}

// AudioDeletedMsg результат удаления аудиофайла трека
type AudioDeletedMsg struct {
	ID  string
	Err error
}

// fieldType определяет поле ввода диалога
type fieldType int

const (
	titleField fieldType = iota
	artistField
	albumField
	coverField
	genreField
	fileField
	numFields
)

// draftFields связывает текстовые поля ввода с полями черновика
var draftFields = map[fieldType]form.Field{
	titleField:  form.FieldTitle,
	artistField: form.FieldArtist,
	albumField:  form.FieldAlbum,
	coverField:  form.FieldCoverImage,
}

const maxSuggestions = 5

// Model представляет модель диалога трека
type Model struct {
	mode    Mode
	trackID string
	draft   form.Draft

	inputs     []textinput.Model
	focusIndex fieldType

	genreOptions []string
	suggestions  []string
	chip         int // Выбранный жанр для удаления, -1 если нет

	err        string
	submitting bool
	deleting   bool
	deletion   *form.AudioDeletion

	svc       form.Service
	submitter *form.Submitter
	extractor *metadata.Extractor
	logger    *slog.Logger
	timeout   time.Duration
}

// NewCreate создает диалог создания трека
func NewCreate(svc form.Service, genres []string, logger *slog.Logger) Model {
	return newModel(ModeCreate, "", form.NewCreateDraft(), svc, genres, logger)
}

// NewEdit создает диалог редактирования трека
func NewEdit(svc form.Service, track data.Track, genres []string, logger *slog.Logger) Model {
	return newModel(ModeEdit, track.ID, form.NewEditDraft(track), svc, genres, logger)
}

func newModel(mode Mode, id string, draft form.Draft, svc form.Service, genres []string, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}

	placeholders := map[fieldType]string{
		titleField:  "Введите название трека",
		artistField: "Введите исполнителя",
		albumField:  "Введите название альбома",
		coverField:  "https://...",
		genreField:  "Начните вводить жанр",
		fileField:   "Путь к файлу MP3 или WAV",
	}

	inputs := make([]textinput.Model, numFields)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = placeholders[fieldType(i)]
		inputs[i].PromptStyle = blurredStyle
		inputs[i].TextStyle = blurredStyle
		if f, ok := draftFields[fieldType(i)]; ok {
			inputs[i].SetValue(draft.Value(f))
		}
	}

	submitter := form.NewSubmitter(svc)
	submitter.OnUploaded = func(trackID, fileRef string) {
		logger.Info("аудиофайл загружен", "track_id", trackID, "file", fileRef)
	}

	m := Model{
		mode:         mode,
		trackID:      id,
		draft:        draft,
		inputs:       inputs,
		genreOptions: genres,
		chip:         -1,
		deletion:     &form.AudioDeletion{},
		svc:          svc,
		submitter:    submitter,
		extractor:    metadata.NewExtractor(),
		logger:       logger,
		timeout:      2 * time.Minute,
	}
	m.focus(titleField)
	return m
}

// Mode возвращает режим диалога
func (m Model) Mode() Mode {
	return m.mode
}

// TrackID возвращает идентификатор редактируемого трека
func (m Model) TrackID() string {
	return m.trackID
}

// Draft возвращает текущий черновик
func (m Model) Draft() form.Draft {
	return m.draft
}

// Err возвращает текст ошибки диалога
func (m Model) Err() string {
	return m.err
}

// Init инициализирует модель
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update обрабатывает сообщения и обновляет модель
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SubmittedMsg:
		return m.handleSubmitted(msg), nil

	case AudioDeletedMsg:
		m.deleting = false
		if msg.Err != nil {
			m.err = msg.Err.Error()
			return m, nil
		}
		m.err = ""
		m.draft.ExistingAudio = ""
		return m, nil

	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 20
		}
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}

		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return CloseMsg{} }

		case "ctrl+s":
			return m.submit()

		case "ctrl+x":
			return m.deleteAudio()

		case "tab", "down":
			return m, m.focus((m.focusIndex + 1) % numFields)

		case "shift+tab", "up":
			return m, m.focus((m.focusIndex + numFields - 1) % numFields)

		case "enter":
			switch m.focusIndex {
			case genreField:
				return m.addGenre(), nil
			case fileField:
				return m.attachFile(), nil
			}
			return m, m.focus((m.focusIndex + 1) % numFields)
		}

		if m.focusIndex == genreField && m.inputs[genreField].Value() == "" {
			if next, handled := m.handleChipKey(msg); handled {
				return next, nil
			}
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	m.syncInput(m.focusIndex)
	return m, cmd
}

// focus переводит фокус на поле
func (m *Model) focus(field fieldType) tea.Cmd {
	m.focusIndex = field
	m.chip = -1

	var cmd tea.Cmd
	for i := range m.inputs {
		if fieldType(i) == field {
			cmd = m.inputs[i].Focus()
			m.inputs[i].PromptStyle = focusedStyle
			m.inputs[i].TextStyle = focusedStyle
			continue
		}
		m.inputs[i].Blur()
		m.inputs[i].PromptStyle = blurredStyle
		m.inputs[i].TextStyle = blurredStyle
	}
	return cmd
}

// syncInput переносит значение поля ввода в черновик
func (m *Model) syncInput(field fieldType) {
	if f, ok := draftFields[field]; ok {
		m.draft = form.Update(m.draft, f, m.inputs[field].Value())
		return
	}
	if field == genreField {
		m.suggestions = m.suggest(m.inputs[genreField].Value())
	}
}

// suggest подбирает жанры из списка сервера по нечеткому совпадению
func (m Model) suggest(pattern string) []string {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	available := make([]string, 0, len(m.genreOptions))
	for _, g := range m.genreOptions {
		if !m.draft.Genres.Contains(g) {
			available = append(available, g)
		}
	}

	var result []string
	for _, match := range fuzzy.Find(pattern, available) {
		result = append(result, match.Str)
		if len(result) == maxSuggestions {
			break
		}
	}
	return result
}

// addGenre добавляет первую подсказку или введенный текст
func (m Model) addGenre() Model {
	genre := strings.TrimSpace(m.inputs[genreField].Value())
	if len(m.suggestions) > 0 {
		genre = m.suggestions[0]
	}
	if genre == "" {
		return m
	}
	m.draft = form.AddGenre(m.draft, genre)
	m.inputs[genreField].SetValue("")
	m.suggestions = nil
	return m
}

// handleChipKey выбирает и удаляет жанры, когда поле жанра пустое
func (m Model) handleChipKey(msg tea.KeyMsg) (Model, bool) {
	n := len(m.draft.Genres)
	if n == 0 {
		return m, false
	}

	switch msg.String() {
	case "left":
		if m.chip < 0 {
			m.chip = n - 1
		} else if m.chip > 0 {
			m.chip--
		}
		return m, true
	case "right":
		if m.chip >= 0 && m.chip < n-1 {
			m.chip++
		} else {
			m.chip = -1
		}
		return m, true
	case "backspace", "delete":
		idx := m.chip
		if idx < 0 {
			idx = n - 1
		}
		m.draft = form.RemoveGenre(m.draft, m.draft.Genres[idx])
		if m.chip >= len(m.draft.Genres) {
			m.chip = len(m.draft.Genres) - 1
		}
		return m, true
	}
	return m, false
}

// attachFile проверяет выбранный файл и прикрепляет его. При создании трека
// пустые поля заполняются тегами файла.
// Пустой путь открепляет файл.
func (m Model) attachFile() Model {
	path := strings.TrimSpace(m.inputs[fileField].Value())
	if path == "" {
		m.draft = form.DetachFile(m.draft)
		m.err = ""
		return m
	}

	info, err := form.InspectFile(utils.ExpandPath(path))
	if err != nil {
		m.err = err.Error()
		return m
	}

	draft, err := form.AttachFile(m.draft, info)
	if err != nil {
		m.err = err.Error()
		return m
	}

	m.draft = draft
	m.err = ""
	// При редактировании файл только заменяется, метаданные трека не трогаются
	if m.mode != ModeCreate {
		return m
	}

	m.draft = form.PrefillFromTags(m.draft, m.extractor.ExtractFromFile(info.Path))
	for field, f := range draftFields {
		m.inputs[field].SetValue(m.draft.Value(f))
	}
	return m
}

// submit проверяет черновик и отправляет его на сервер в отдельной команде
func (m Model) submit() (Model, tea.Cmd) {
	validate := form.ValidateCreate
	if m.mode == ModeEdit {
		validate = form.ValidateEdit
	}
	if err := validate(m.draft); err != nil {
		m.err = err.Error()
		var vErr *form.ValidationError
		if errors.As(err, &vErr) {
			for field, f := range draftFields {
				if f == vErr.Field {
					return m, m.focus(field)
				}
			}
		}
		return m, nil
	}

	m.err = ""
	m.submitting = true

	mode, id, draft, submitter, timeout := m.mode, m.trackID, m.draft, m.submitter, m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var (
			result form.Result
			err    error
		)
		if mode == ModeCreate {
			result, err = submitter.Create(ctx, draft)
		} else {
			result, err = submitter.Update(ctx, id, draft)
		}
		return SubmittedMsg{Mode: mode, Result: result, Err: err}
	}
}

// handleSubmitted обрабатывает ответ сервера. Если трек создан, но файл не загрузился,
// диалог переходит в режим редактирования созданного трека.
func (m Model) handleSubmitted(msg SubmittedMsg) Model {
	m.submitting = false
	if msg.Err == nil {
		m.err = ""
		return m
	}

	m.err = msg.Err.Error()
	if msg.Mode == ModeCreate && msg.Result.Track.ID != "" {
		m.logger.Warn("трек создан без аудиофайла", "track_id", msg.Result.Track.ID, "error", msg.Err)
		m.mode = ModeEdit
		m.trackID = msg.Result.Track.ID
		m.draft.ExistingAudio = msg.Result.Track.AudioFile
	}
	return m
}

// deleteAudio удаляет сохраненный аудиофайл редактируемого трека
func (m Model) deleteAudio() (Model, tea.Cmd) {
	if m.mode != ModeEdit || m.deleting {
		return m, nil
	}
	if m.draft.ExistingAudio == "" && !m.deletion.Done() {
		m.err = "У трека нет аудиофайла"
		return m, nil
	}

	m.deleting = true
	deletion, svc, id, timeout := m.deletion, m.svc, m.trackID, m.timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return AudioDeletedMsg{ID: id, Err: deletion.Run(ctx, svc, id)}
	}
}

// View отображает модель
func (m Model) View() string {
	var b strings.Builder

	title := "Новый трек"
	if m.mode == ModeEdit {
		title = "Редактирование трека"
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	labels := []string{"Название*:", "Исполнитель*:", "Альбом:", "Обложка:", "Жанры:", "Аудиофайл:"}
	for i, input := range m.inputs {
		field := fieldType(i)
		b.WriteString(labelStyle.Render(labels[i]))
		b.WriteString(" ")

		if field == genreField {
			b.WriteString(m.chipsView())
		}
		b.WriteString(input.View())
		b.WriteString("\n")

		if field == genreField && len(m.suggestions) > 0 && m.focusIndex == genreField {
			b.WriteString(suggestStyle.Render(strings.Join(m.suggestions, " · ")))
			b.WriteString("\n")
		}
		if field == fileField {
			b.WriteString(suggestStyle.Render(m.fileStatus()))
			b.WriteString("\n")
		}
	}

	if m.submitting {
		b.WriteString(helpStyle.Render("Сохранение..."))
		b.WriteString("\n")
	}
	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("Tab: следующее поле • Enter в поле жанра: добавить • ←/→ и Backspace: удалить жанр"))
	b.WriteString("\n")
	footer := "Ctrl+S: сохранить • Esc: отмена"
	if m.mode == ModeEdit {
		footer += " • Ctrl+X: удалить аудиофайл"
	}
	b.WriteString(footerStyle.Render(footer))
	return b.String()
}

func (m Model) chipsView() string {
	var chips []string
	for i, g := range m.draft.Genres {
		if i == m.chip {
			chips = append(chips, activeChipStyle.Render(g))
			continue
		}
		chips = append(chips, chipStyle.Render(g))
	}
	if len(chips) == 0 {
		return ""
	}
	return strings.Join(chips, " ") + " "
}

func (m Model) fileStatus() string {
	switch {
	case m.draft.File != nil:
		return "Выбран: " + m.draft.File.Summary()
	case m.draft.ExistingAudio != "":
		return "На сервере: " + m.draft.ExistingAudio
	case m.mode == ModeEdit && m.deletion.Done():
		return "Аудиофайл удален"
	}
	return "Файл не выбран"
}
