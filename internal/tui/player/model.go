// Package player содержит строку воспроизведения для TUI
package player

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tracks/internal/player"
	"github.com/hazadus/go-tracks/internal/streaming"
	"github.com/hazadus/go-tracks/internal/utils"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5f87ff"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	barStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(lipgloss.Color("#444444")).
			PaddingLeft(2)
)

// Controller управляет воспроизведением, см. player.Player
type Controller interface {
	Play(src player.Source) error
	Pause()
	Stop()
	Progress() <-chan player.Status
	Done() <-chan string
	Close() error
}

// ProgressMsg содержит обновления прогресса воспроизведения
type ProgressMsg struct {
	Status player.Status
}

// PlaybackFinishedMsg отправляется, когда трек доиграл до конца
type PlaybackFinishedMsg struct {
	TrackID string
}

// PlaybackErrorMsg отправляется при ошибке запуска воспроизведения
type PlaybackErrorMsg struct {
	TrackID string
	Err     error
}

// Model представляет строку воспроизведения. Сама модель не хранит выбор трека:
// им владеет track.Manager, а строка только запускает и останавливает поток.
type Model struct {
	ctrl        Controller
	source      player.Source
	status      player.Status
	active      bool
	paused      bool
	progressBar progress.Model

	// Команды Start и Stop выполняются в разных горутинах. Номер поколения
	// отбрасывает устаревшие команды, мьютекс не дает им выполняться одновременно.
	generation *atomic.Uint64
	opMu       *sync.Mutex
}

// NewModel создает строку воспроизведения поверх плеера
func NewModel(ctrl Controller) Model {
	prog := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	prog.Width = 40

	return Model{
		ctrl:        ctrl,
		progressBar: prog,
		generation:  &atomic.Uint64{},
		opMu:        &sync.Mutex{},
	}
}

// Active сообщает, выбран ли трек для воспроизведения
func (m Model) Active() bool {
	return m.active
}

// TrackID возвращает идентификатор текущего трека
func (m Model) TrackID() string {
	return m.source.TrackID
}

// Start запускает воспроизведение источника, останавливая предыдущий
func (m Model) Start(src player.Source) (Model, tea.Cmd) {
	m.source = src
	m.status = player.Status{TrackID: src.TrackID}
	m.active = true
	m.paused = false

	gen := m.generation.Add(1)
	ctrl, generation, opMu := m.ctrl, m.generation, m.opMu
	return m, func() tea.Msg {
		opMu.Lock()
		defer opMu.Unlock()
		if generation.Load() != gen {
			return nil
		}
		if err := ctrl.Play(src); err != nil {
			return PlaybackErrorMsg{TrackID: src.TrackID, Err: err}
		}
		return nil
	}
}

// Stop останавливает воспроизведение
func (m Model) Stop() (Model, tea.Cmd) {
	if !m.active {
		return m, nil
	}
	m.source = player.Source{}
	m.status = player.Status{}
	m.active = false
	m.paused = false

	gen := m.generation.Add(1)
	ctrl, generation, opMu := m.ctrl, m.generation, m.opMu
	return m, func() tea.Msg {
		opMu.Lock()
		defer opMu.Unlock()
		if generation.Load() == gen {
			ctrl.Stop()
		}
		return nil
	}
}

// TogglePause приостанавливает или возобновляет воспроизведение
func (m Model) TogglePause() Model {
	if !m.active {
		return m
	}
	m.ctrl.Pause()
	m.paused = !m.paused
	return m
}

// Listen ждет следующего события плеера. После каждого сообщения
// команду нужно запускать заново.
func (m Model) Listen() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		select {
		case status := <-ctrl.Progress():
			return ProgressMsg{Status: status}
		case id := <-ctrl.Done():
			return PlaybackFinishedMsg{TrackID: id}
		}
	}
}

// Update обрабатывает сообщения плеера. События чужих треков игнорируются.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.progressBar.Width = max(10, min(60, msg.Width-50))
		return m, nil

	case ProgressMsg:
		if m.active && msg.Status.TrackID == m.source.TrackID {
			m.status = msg.Status
		}
		return m, m.Listen()

	case PlaybackFinishedMsg:
		if m.active && msg.TrackID == m.source.TrackID {
			m.active = false
			m.source = player.Source{}
			m.status = player.Status{}
		}
		return m, m.Listen()

	case PlaybackErrorMsg:
		if m.active && msg.TrackID == m.source.TrackID {
			m.active = false
			m.source = player.Source{}
			m.status = player.Status{}
		}
		return m, nil
	}
	return m, nil
}

// View отображает строку воспроизведения
func (m Model) View() string {
	if !m.active {
		return ""
	}

	var percent float64
	if m.status.Total > 0 {
		percent = float64(m.status.Current) / float64(m.status.Total)
	}

	total := "--:--"
	if m.status.Total > 0 {
		total = utils.FormatDuration(m.status.Total)
	}

	return barStyle.Render(fmt.Sprintf("%s %s  %s  %s / %s  %s",
		statusIcon(m.paused),
		titleStyle.Render(utils.TruncateString(m.source.Title, 30)),
		m.progressBar.ViewAs(percent),
		utils.FormatDuration(m.status.Current),
		total,
		statusStyle.Render(m.statusText()),
	))
}

// Close освобождает плеер
func (m Model) Close() error {
	if m.ctrl == nil {
		return nil
	}
	return m.ctrl.Close()
}

func (m Model) statusText() string {
	if m.paused {
		return "Пауза"
	}
	return streaming.StatusText(m.status.StuckCount)
}

func statusIcon(paused bool) string {
	if paused {
		return "⏸"
	}
	return "▶"
}
