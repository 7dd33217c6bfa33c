package streaming

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewReader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept-Encoding") != "identity" {
			t.Errorf("Ожидалось отключение сжатия, получено: %s", r.Header.Get("Accept-Encoding"))
		}
		w.Header().Set("Content-Type", "audio/mpeg; charset=binary")
		w.Header().Set("Content-Length", "10")
		io.WriteString(w, "0123456789")
	}))
	defer server.Close()

	reader, err := NewReader(context.Background(), server.URL+"/files/a.mp3", 0)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("Ошибка чтения: %v", err)
	}
	if string(content) != "0123456789" {
		t.Errorf("Неверное содержимое: %q", content)
	}
	if reader.ContentType() != "audio/mpeg" {
		t.Errorf("Ожидался тип audio/mpeg, получено: %s", reader.ContentType())
	}
	if reader.Size() != 10 {
		t.Errorf("Ожидался размер 10, получено: %d", reader.Size())
	}
}

func TestNewReaderHTTPError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	if _, err := NewReader(context.Background(), server.URL+"/files/missing.mp3", 1024); err == nil {
		t.Error("Ожидалась ошибка для ответа 404")
	}
}

func TestNewReaderCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "data")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewReader(ctx, server.URL, 1024); err == nil {
		t.Error("Ожидалась ошибка для отмененного контекста")
	}
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		stuck int
		want  string
	}{
		{0, "Воспроизведение"},
		{2, "Буферизация..."},
		{5, "Медленная загрузка"},
		{9, "Возможная проблема с соединением"},
	}

	for _, tt := range tests {
		if got := StatusText(tt.stuck); got != tt.want {
			t.Errorf("StatusText(%d) = %q, ожидалось %q", tt.stuck, got, tt.want)
		}
	}
}
