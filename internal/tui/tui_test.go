package tui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hazadus/go-tracks/internal/api"
	"github.com/hazadus/go-tracks/internal/logging"
	"github.com/hazadus/go-tracks/internal/player"
	"github.com/hazadus/go-tracks/internal/tui/app"
	tuiPlayer "github.com/hazadus/go-tracks/internal/tui/player"
)

// silentController плеер, который ничего не воспроизводит
type silentController struct{}

func (silentController) Play(player.Source) error       { return nil }
func (silentController) Pause()                         {}
func (silentController) Stop()                          {}
func (silentController) Close() error                   { return nil }
func (silentController) Progress() <-chan player.Status { return nil }
func (silentController) Done() <-chan string            { return nil }

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/tracks":
			io.WriteString(w, `{"data":[{"id":"1","title":"Song","artist":"Band","genres":["Rock"],"slug":"song","audioFile":"1.mp3"}],"meta":{"total":1,"page":1,"limit":10,"totalPages":1}}`)
		case "/api/genres":
			io.WriteString(w, `["Rock","Jazz"]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestApp(t *testing.T, input io.Reader) *App {
	t.Helper()
	server := newCatalogServer(t)
	client, err := api.NewClient(server.URL+"/api/", time.Second, logging.Discard())
	if err != nil {
		t.Fatalf("Ошибка создания клиента: %v", err)
	}

	tuiApp := NewApp(client, app.Options{PageLimit: 10, RequestTimeout: time.Second, Logger: logging.Discard()})
	tuiApp.newController = func() tuiPlayer.Controller { return silentController{} }
	tuiApp.programOpts = []tea.ProgramOption{
		tea.WithInput(input),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
	}
	return tuiApp
}

func TestModelLoadsCatalog(t *testing.T) {
	model := newTestApp(t, strings.NewReader("")).Model()

	// Первая команда Init загружает список
	cmd := model.Init()
	if cmd == nil {
		t.Fatal("Init должен вернуть команды загрузки")
	}
	if !model.Manager().Loading() {
		t.Error("После Init список загружается")
	}
	if model.CurrentScreen() != app.TracklistScreen {
		t.Error("Начальный экран: список треков")
	}
}

func TestRunQuits(t *testing.T) {
	tuiApp := newTestApp(t, strings.NewReader("q"))

	done := make(chan error, 1)
	go func() { done <- tuiApp.Run() }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Неожиданная ошибка: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Программа должна завершиться по клавише q")
	}
}
