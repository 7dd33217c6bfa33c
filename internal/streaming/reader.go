// Package streaming содержит буферизованное чтение аудиофайлов по HTTP
package streaming

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"time"
)

// DefaultBufferSize размер буфера для воспроизведения и архивации
const DefaultBufferSize = 256 * 1024

// client не ограничивает общее время запроса: файл может читаться долго,
// ограничены только соединение и ожидание заголовков
var client = &http.Client{
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       5 * time.Minute,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		ExpectContinueTimeout: time.Second,
	},
}

// Reader читает тело HTTP-ответа через буфер
type Reader struct {
	reader      *bufio.Reader
	body        io.ReadCloser
	contentType string
	size        int64
}

// NewReader открывает файл по адресу url. Чтение прерывается отменой ctx.
func NewReader(ctx context.Context, url string, bufferSize int) (*Reader, error) {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	// Сжатие только мешает декодеру
	req.Header.Set("Accept-Encoding", "identity")
	req.Header.Set("User-Agent", "go-tracks/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("ошибка HTTP: %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if base, _, err := mime.ParseMediaType(contentType); err == nil {
		contentType = base
	}

	return &Reader{
		reader:      bufio.NewReaderSize(resp.Body, bufferSize),
		body:        resp.Body,
		contentType: contentType,
		size:        resp.ContentLength,
	}, nil
}

// Read реализует io.Reader
func (sr *Reader) Read(p []byte) (n int, err error) {
	return sr.reader.Read(p)
}

// Close закрывает соединение
func (sr *Reader) Close() error {
	return sr.body.Close()
}

// ContentType тип содержимого из ответа сервера без параметров
func (sr *Reader) ContentType() string {
	return sr.contentType
}

// Size размер файла из заголовка Content-Length или -1, если он неизвестен
func (sr *Reader) Size() int64 {
	return sr.size
}

// StatusText возвращает текстовое описание состояния потока по числу
// секунд без продвижения воспроизведения
func StatusText(stuckCount int) string {
	switch {
	case stuckCount == 0:
		return "Воспроизведение"
	case stuckCount <= 3:
		return "Буферизация..."
	case stuckCount <= 5:
		return "Медленная загрузка"
	default:
		return "Возможная проблема с соединением"
	}
}
