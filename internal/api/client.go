// Package api содержит HTTP-клиент удаленного сервиса каталога треков
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/hazadus/go-tracks/internal/data"
)

// Error ошибка, полученная от сервера в ответ на запрос
type Error struct {
	Status  int    // HTTP статус ответа
	Message string // Текст ошибки из тела ответа, если сервер его прислал
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("ошибка API (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("ошибка API: %d %s", e.Status, http.StatusText(e.Status))
}

// IsNotFound сообщает, что сервер ответил 404
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// File описывает локальный файл для загрузки на сервер
type File struct {
	Name      string
	MediaType string
	Body      io.Reader
}

// Client обращается к REST API каталога
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient создает клиента для API с указанным базовым адресом (например, http://host/api/).
// timeout ограничивает время выполнения каждого запроса.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("неверный адрес API: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("неверный адрес API %q: ожидалась схема http или https", baseURL)
	}
	if u.Path == "" || u.Path[len(u.Path)-1] != '/' {
		u.Path += "/"
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   5 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 5 * time.Second,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 4,
			},
		},
		logger: logger,
	}, nil
}

// ListTracks возвращает страницу треков по заданным параметрам
func (c *Client) ListTracks(ctx context.Context, q data.Query) (data.ListResult, error) {
	var result data.ListResult
	err := c.do(ctx, http.MethodGet, "tracks", q.Values(), nil, "", &result)
	if result.Tracks == nil {
		result.Tracks = []data.Track{}
	}
	return result, err
}

// Genres возвращает список доступных жанров
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	var genres []string
	if err := c.do(ctx, http.MethodGet, "genres", nil, nil, "", &genres); err != nil {
		return nil, err
	}
	return genres, nil
}

// GetTrack возвращает трек по slug
func (c *Client) GetTrack(ctx context.Context, slug string) (data.Track, error) {
	var track data.Track
	err := c.do(ctx, http.MethodGet, "tracks/"+slug, nil, nil, "", &track)
	return track, err
}

// CreateTrack создает трек
func (c *Client) CreateTrack(ctx context.Context, input data.TrackInput) (data.Track, error) {
	var track data.Track
	err := c.doJSON(ctx, http.MethodPost, "tracks", input, &track)
	return track, err
}

// UpdateTrack изменяет метаданные трека
func (c *Client) UpdateTrack(ctx context.Context, id string, input data.TrackInput) (data.Track, error) {
	var track data.Track
	err := c.doJSON(ctx, http.MethodPut, "tracks/"+id, input, &track)
	return track, err
}

// DeleteTrack удаляет трек
func (c *Client) DeleteTrack(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tracks/"+id, nil, nil, "", nil)
}

// DeleteTracks удаляет несколько треков одним запросом
func (c *Client) DeleteTracks(ctx context.Context, ids []string) (data.BulkDeleteResult, error) {
	var result data.BulkDeleteResult
	body := struct {
		IDs []string `json:"ids"`
	}{IDs: ids}
	err := c.doJSON(ctx, http.MethodPost, "tracks/delete", body, &result)
	return result, err
}

// UploadFile загружает аудиофайл трека и возвращает обновленный трек
func (c *Client) UploadFile(ctx context.Context, id string, file File) (data.Track, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// CreateFormFile всегда ставит application/octet-stream, сервер же проверяет тип
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, path.Base(file.Name)))
	mediaType := file.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return data.Track{}, fmt.Errorf("ошибка формирования запроса: %w", err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return data.Track{}, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if err := writer.Close(); err != nil {
		return data.Track{}, fmt.Errorf("ошибка формирования запроса: %w", err)
	}

	var track data.Track
	err = c.do(ctx, http.MethodPost, "tracks/"+id+"/upload", nil, &buf, writer.FormDataContentType(), &track)
	return track, err
}

// DeleteFile удаляет аудиофайл трека
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tracks/"+id+"/file", nil, nil, "", nil)
}

// FileURL строит адрес для воспроизведения сохраненного файла
func (c *Client) FileURL(fileRef string) string {
	return c.baseURL.ResolveReference(&url.URL{Path: "files/" + fileRef}).String()
}

// doJSON отправляет тело запроса в формате JSON
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("ошибка сериализации запроса: %w", err)
	}
	return c.do(ctx, method, endpoint, nil, bytes.NewReader(payload), "application/json", out)
}

// do выполняет запрос и декодирует ответ в out, если он задан
func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body io.Reader, contentType string, out any) error {
	target := c.baseURL.ResolveReference(&url.URL{Path: endpoint})
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("запрос к API не выполнен",
			"method", method, "url", target.String(), "request_id", requestID, "error", err)
		return fmt.Errorf("ошибка выполнения запроса %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("запрос к API",
		"method", method,
		"url", target.String(),
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("ошибка разбора ответа: %w", err)
	}
	return nil
}

// decodeError извлекает текст ошибки из тела ответа сервера
func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch {
		case body.Error != "":
			apiErr.Message = body.Error
		case body.Message != "":
			apiErr.Message = body.Message
		}
		return apiErr
	}

	// Сервер прислал не JSON: показываем текст как есть
	apiErr.Message = string(bytes.TrimSpace(raw))
	return apiErr
}
