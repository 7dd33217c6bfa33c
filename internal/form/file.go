package form

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hazadus/go-tracks/internal/metadata"
	"github.com/hazadus/go-tracks/internal/utils"
)

// MaxAudioSize максимальный размер прикрепляемого аудиофайла (10 МиБ)
const MaxAudioSize = 10 * 1024 * 1024

// Ошибки прикрепления файла
var (
	ErrFileType     = errors.New("допустимы только файлы MP3 и WAV")
	ErrFileTooLarge = errors.New("размер файла не должен превышать 10 МБ")
)

// allowedMediaTypes типы аудио, которые принимает сервер
var allowedMediaTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/x-wav": true,
}

// extensionTypes типы по расширению для файлов, которые не удалось распознать по содержимому
var extensionTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".wave": "audio/wav",
}

// FileInfo описывает выбранный локальный файл
type FileInfo struct {
	Path      string
	Name      string
	Size      int64
	MediaType string
	Duration  time.Duration // 0, если длительность определить не удалось
}

// Summary возвращает имя файла с размером и длительностью, если она известна
func (f FileInfo) Summary() string {
	if f.Duration > 0 {
		return fmt.Sprintf("%s (%s, %s)", f.Name, utils.FormatFileSize(f.Size), utils.FormatDuration(f.Duration))
	}
	return fmt.Sprintf("%s (%s)", f.Name, utils.FormatFileSize(f.Size))
}

// IsAllowedMediaType проверяет тип аудио по списку разрешенных
func IsAllowedMediaType(mediaType string) bool {
	base, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		base = mediaType
	}
	return allowedMediaTypes[strings.ToLower(base)]
}

// AttachFile прикрепляет файл к черновику после проверки типа и размера.
// При ошибке возвращается исходный черновик без изменений.
func AttachFile(d Draft, file FileInfo) (Draft, error) {
	if !IsAllowedMediaType(file.MediaType) {
		return d, fmt.Errorf("%w: %s", ErrFileType, file.MediaType)
	}
	if file.Size > MaxAudioSize {
		return d, ErrFileTooLarge
	}
	d.File = &file
	return d, nil
}

// DetachFile убирает выбранный файл из черновика
func DetachFile(d Draft) Draft {
	d.File = nil
	return d
}

// InspectFile определяет размер и тип локального файла.
// Тип определяется по содержимому, а если оно не распознано, по расширению.
func InspectFile(path string) (FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return FileInfo{}, fmt.Errorf("ошибка получения информации о файле: %w", err)
	}
	if stat.IsDir() {
		return FileInfo{}, fmt.Errorf("%s является каталогом", path)
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FileInfo{}, fmt.Errorf("ошибка чтения файла: %w", err)
	}

	mediaType := http.DetectContentType(head[:n])
	if base, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = base
	}
	if mediaType == "application/octet-stream" {
		if byExt, ok := extensionTypes[strings.ToLower(filepath.Ext(path))]; ok {
			mediaType = byExt
		}
	}

	info := FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      stat.Size(),
		MediaType: mediaType,
	}

	// Длительность не обязательна: файл, который не удалось декодировать, проверит сервер
	if IsAllowedMediaType(mediaType) {
		if duration, err := metadata.NewExtractor().GetDuration(path); err == nil {
			info.Duration = duration
		}
	}
	return info, nil
}
