// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hazadus/go-tracks/internal/utils"
)

// Значения по умолчанию
const (
	DefaultAPIBaseURL     = "http://localhost:8000/api/"
	DefaultRequestTimeout = 10 * time.Second
	DefaultPageLimit      = 10
	DefaultLogFile        = "~/.tracks.log"
	DefaultArchivePrefix  = "tracks"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	PageLimit      int           `yaml:"page_limit"`
	LogFile        string        `yaml:"log_file"`

	// Настройки S3 для архивирования аудиофайлов
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
	ArchivePrefix string `yaml:"archive_prefix"`
}

// envOverrides переменные окружения, перекрывающие файл конфигурации
type envOverrides struct {
	APIBaseURL string `env:"TRACKS_API_URL"`
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Отсутствующий файл не является ошибкой: используются значения по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	path := utils.ExpandPath(filePath)

	config := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Работаем на значениях по умолчанию
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	overrides := envOverrides{}
	if err := env.Parse(&overrides); err != nil {
		return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
	}
	if overrides.APIBaseURL != "" {
		config.APIBaseURL = overrides.APIBaseURL
	}

	config.applyDefaults()
	return config, nil
}

// applyDefaults устанавливает значения по умолчанию, если они не заданы
func (c *Config) applyDefaults() {
	if c.APIBaseURL == "" {
		c.APIBaseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(c.APIBaseURL, "/") {
		c.APIBaseURL += "/"
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.PageLimit <= 0 {
		c.PageLimit = DefaultPageLimit
	}
	if c.LogFile == "" {
		c.LogFile = DefaultLogFile
	}
	if c.ArchivePrefix == "" {
		c.ArchivePrefix = DefaultArchivePrefix
	}

	// Раскрываем тильду в пути к журналу
	c.LogFile = utils.ExpandPath(c.LogFile)
}

// ArchiveEnabled сообщает, настроено ли хранилище для архивирования
func (c *Config) ArchiveEnabled() bool {
	return c.AwsBucketName != ""
}
