// Package tui содержит компоненты для текстового пользовательского интерфейса
package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-tracks/internal/player"
	"github.com/hazadus/go-tracks/internal/tui/app"
	tuiPlayer "github.com/hazadus/go-tracks/internal/tui/player"
)

// App представляет основное TUI приложение
type App struct {
	client app.Client
	opts   app.Options

	// newController создает плеер; в тестах подменяется
	newController func() tuiPlayer.Controller
	programOpts   []tea.ProgramOption
}

// NewApp создает новый экземпляр TUI приложения
func NewApp(client app.Client, opts app.Options) *App {
	return &App{
		client:        client,
		opts:          opts,
		newController: func() tuiPlayer.Controller { return player.NewPlayer() },
		programOpts:   []tea.ProgramOption{tea.WithAltScreen()},
	}
}

// Model создает главную модель приложения
func (tuiApp *App) Model() *app.MainModel {
	return app.NewMainModel(tuiApp.client, tuiApp.newController(), tuiApp.opts)
}

// Run запускает TUI приложение
func (tuiApp *App) Run() error {
	model := tuiApp.Model()

	p := tea.NewProgram(model, tuiApp.programOpts...)
	_, err := p.Run()

	// Закрываем плеер после завершения программы
	if closeErr := model.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	return err
}
