// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// Tags хранит теги аудиофайла, пригодные для заполнения черновика трека
type Tags struct {
	Artist string
	Title  string
	Album  string
	Genre  string
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает теги из io.ReadSeeker.
// Если тегов нет, исполнитель и название берутся из имени файла "Artist - Title".
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) Tags {
	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return tagsFromFileName(source)
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return tagsFromFileName(source)
	}

	tags := Tags{
		Artist: strings.TrimSpace(metadata.Artist()),
		Title:  strings.TrimSpace(metadata.Title()),
		Album:  strings.TrimSpace(metadata.Album()),
		Genre:  strings.TrimSpace(metadata.Genre()),
	}

	// Теги есть, но пустые: дополняем из имени файла
	if tags.Artist == "" || tags.Title == "" {
		fallback := tagsFromFileName(source)
		if tags.Artist == "" {
			tags.Artist = fallback.Artist
		}
		if tags.Title == "" {
			tags.Title = fallback.Title
		}
	}
	return tags
}

// ExtractFromFile извлекает теги из файла
func (e *Extractor) ExtractFromFile(filePath string) Tags {
	file, err := os.Open(filePath)
	if err != nil {
		return tagsFromFileName(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 или WAV файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}
	defer file.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".wav", ".wave":
		streamer, format, err = wav.Decode(file)
	default:
		streamer, format, err = mp3.Decode(file)
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка декодирования аудио: %w", err)
	}
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// tagsFromFileName разбирает имя файла в формате "Artist - Title".
// Если формат не распознан, заполняется только название.
func tagsFromFileName(source string) Tags {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return Tags{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
		}
	}

	return Tags{Title: strings.TrimSpace(nameWithoutExt)}
}
