// Package logging настраивает структурированный журнал приложения.
// Журнал пишется в файл, чтобы не портить экран TUI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Open открывает файл журнала и возвращает JSON-логгер поверх него.
// Закрыть файл нужно через возвращаемый io.Closer.
func Open(path string, level slog.Level) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("ошибка создания каталога журнала: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка открытия файла журнала: %w", err)
	}

	return New(file, level), file, nil
}

// New создает JSON-логгер, пишущий в w
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Discard возвращает логгер, который ничего не пишет. Удобен в тестах.
func Discard() *slog.Logger {
	return New(io.Discard, slog.LevelError)
}
