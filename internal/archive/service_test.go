package archive

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/hazadus/go-tracks/internal/data"
	"github.com/hazadus/go-tracks/internal/logging"
)

// fakeCatalog отдает страницы треков и адреса файлов на тестовом сервере
type fakeCatalog struct {
	pages   map[int][]data.Track
	total   int
	listErr map[int]error
	fileURL string
}

func (c *fakeCatalog) ListTracks(_ context.Context, q data.Query) (data.ListResult, error) {
	if err := c.listErr[q.Page]; err != nil {
		return data.ListResult{}, err
	}
	return data.ListResult{
		Tracks: c.pages[q.Page],
		Meta:   data.Pagination{Total: c.total, Page: q.Page, Limit: q.Limit, TotalPages: len(c.pages)},
	}, nil
}

func (c *fakeCatalog) FileURL(fileRef string) string {
	return c.fileURL + "/files/" + fileRef
}

// fakeStore хранит объекты в памяти
type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]string
	types     map[string]string
	uploadErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, types: map[string]string{}}
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func (s *fakeStore) Upload(_ context.Context, reader io.Reader, key, contentType string) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = string(body)
	s.types[key] = contentType
	return "s3://bucket/" + key, nil
}

func newFileServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/files/")
		if name == "missing.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, "audio:"+name)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunCopiesAllPages(t *testing.T) {
	server := newFileServer(t)
	catalog := &fakeCatalog{
		pages: map[int][]data.Track{
			1: {{ID: "1", AudioFile: "1.mp3"}, {ID: "2"}},
			2: {{ID: "3", AudioFile: "3.mp3"}},
		},
		total:   3,
		fileURL: server.URL,
	}
	store := newFakeStore()

	var seen []string
	var seenMu sync.Mutex
	service := NewService(catalog, store, "backup", 2, logging.Discard())
	service.OnItem = func(item Item) {
		seenMu.Lock()
		seen = append(seen, item.TrackID)
		seenMu.Unlock()
	}

	summary, err := service.Run(context.Background(), data.DefaultQuery(2))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if summary.Archived != 2 || summary.NoAudio != 1 || summary.Failed != 0 {
		t.Errorf("Неверный итог: %+v", summary)
	}
	if store.objects["backup/1/1.mp3"] != "audio:1.mp3" || store.objects["backup/3/3.mp3"] != "audio:3.mp3" {
		t.Errorf("Неверное содержимое хранилища: %v", store.objects)
	}
	if store.types["backup/1/1.mp3"] != "audio/mpeg" {
		t.Errorf("Тип содержимого должен передаваться: %v", store.types)
	}
	if summary.Bytes != int64(len("audio:1.mp3")+len("audio:3.mp3")) {
		t.Errorf("Неверный объем: %d", summary.Bytes)
	}

	sort.Strings(seen)
	if strings.Join(seen, ",") != "1,3" {
		t.Errorf("OnItem вызван для %v", seen)
	}
}

func TestRunSkipsExisting(t *testing.T) {
	server := newFileServer(t)
	catalog := &fakeCatalog{
		pages:   map[int][]data.Track{1: {{ID: "1", AudioFile: "1.mp3"}}},
		fileURL: server.URL,
	}
	store := newFakeStore()
	store.objects["tracks/1/1.mp3"] = "old"

	summary, err := NewService(catalog, store, "tracks", 0, logging.Discard()).Run(context.Background(), data.DefaultQuery(10))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if summary.Skipped != 1 || summary.Archived != 0 {
		t.Errorf("Существующая копия должна пропускаться: %+v", summary)
	}
	if store.objects["tracks/1/1.mp3"] != "old" {
		t.Error("Существующая копия не должна перезаписываться")
	}
}

func TestRunItemFailures(t *testing.T) {
	server := newFileServer(t)
	catalog := &fakeCatalog{
		pages: map[int][]data.Track{1: {
			{ID: "1", AudioFile: "missing.mp3"},
			{ID: "2", AudioFile: "2.mp3"},
		}},
		fileURL: server.URL,
	}
	store := newFakeStore()

	summary, err := NewService(catalog, store, "tracks", 1, logging.Discard()).Run(context.Background(), data.DefaultQuery(10))
	if err != nil {
		t.Fatalf("Ошибка отдельного файла не прерывает архивацию: %v", err)
	}
	if summary.Failed != 1 || summary.Archived != 1 {
		t.Errorf("Неверный итог: %+v", summary)
	}

	for _, item := range summary.Items {
		if item.TrackID == "1" && item.Err == nil {
			t.Error("Для отсутствующего файла ожидалась ошибка")
		}
	}
}

func TestRunUploadFailure(t *testing.T) {
	server := newFileServer(t)
	catalog := &fakeCatalog{
		pages:   map[int][]data.Track{1: {{ID: "1", AudioFile: "1.mp3"}}},
		fileURL: server.URL,
	}
	store := newFakeStore()
	store.uploadErr = errors.New("access denied")

	summary, err := NewService(catalog, store, "tracks", 1, logging.Discard()).Run(context.Background(), data.DefaultQuery(10))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if summary.Failed != 1 || !strings.Contains(summary.Items[0].Err.Error(), "access denied") {
		t.Errorf("Ожидалась ошибка загрузки: %+v", summary)
	}
}

func TestRunListError(t *testing.T) {
	catalog := &fakeCatalog{
		pages:   map[int][]data.Track{1: {}, 2: {}},
		listErr: map[int]error{2: errors.New("server down")},
	}

	_, err := NewService(catalog, newFakeStore(), "tracks", 1, logging.Discard()).Run(context.Background(), data.DefaultQuery(10))
	if err == nil || !strings.Contains(err.Error(), "страницы 2") {
		t.Errorf("Ожидалась ошибка загрузки второй страницы, получено: %v", err)
	}
}

func TestKey(t *testing.T) {
	service := NewService(&fakeCatalog{}, newFakeStore(), "archive/", 1, nil)
	if got := service.Key("42", "song.mp3"); got != "archive/42/song.mp3" {
		t.Errorf("Неверный ключ: %s", got)
	}
	if got := NewService(&fakeCatalog{}, newFakeStore(), "", 1, nil).Key("42", "song.mp3"); got != "42/song.mp3" {
		t.Errorf("Неверный ключ без префикса: %s", got)
	}
}
