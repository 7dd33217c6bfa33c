package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}
	return configPath
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("TRACKS_API_URL", "")

	configPath := writeConfig(t, `api_base_url: "https://tracks.example.com/api"
request_timeout: 3s
page_limit: 25
log_file: "~/custom.log"
aws_bucket_name: "test-bucket"
aws_access_key: "test-access-key"
aws_secret_key: "test-secret-key"
aws_region: "us-east-1"
aws_endpoint: "https://s3.amazonaws.com"
archive_prefix: "backup"
`)

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Базовый URL должен заканчиваться слешем
	if loadedConfig.APIBaseURL != "https://tracks.example.com/api/" {
		t.Errorf("Ожидался APIBaseURL: https://tracks.example.com/api/, получено: %s", loadedConfig.APIBaseURL)
	}
	if loadedConfig.RequestTimeout != 3*time.Second {
		t.Errorf("Ожидался RequestTimeout: 3s, получено: %s", loadedConfig.RequestTimeout)
	}
	if loadedConfig.PageLimit != 25 {
		t.Errorf("Ожидался PageLimit: 25, получено: %d", loadedConfig.PageLimit)
	}
	if loadedConfig.AwsBucketName != "test-bucket" {
		t.Errorf("Ожидался AwsBucketName: test-bucket, получено: %s", loadedConfig.AwsBucketName)
	}
	if loadedConfig.ArchivePrefix != "backup" {
		t.Errorf("Ожидался ArchivePrefix: backup, получено: %s", loadedConfig.ArchivePrefix)
	}
	if !loadedConfig.ArchiveEnabled() {
		t.Error("Архивирование должно быть включено при заданном бакете")
	}

	home, _ := os.UserHomeDir()
	expectedLogFile := filepath.Join(home, "custom.log")
	if loadedConfig.LogFile != expectedLogFile {
		t.Errorf("Ожидался LogFile с раскрытой тильдой: %s, получено: %s", expectedLogFile, loadedConfig.LogFile)
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("TRACKS_API_URL", "")

	configPath := writeConfig(t, `aws_region: "eu-central-1"
`)

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	if loadedConfig.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Ожидался APIBaseURL по умолчанию: %s, получено: %s", DefaultAPIBaseURL, loadedConfig.APIBaseURL)
	}
	if loadedConfig.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("Ожидался RequestTimeout по умолчанию, получено: %s", loadedConfig.RequestTimeout)
	}
	if loadedConfig.PageLimit != DefaultPageLimit {
		t.Errorf("Ожидался PageLimit по умолчанию, получено: %d", loadedConfig.PageLimit)
	}
	if loadedConfig.ArchivePrefix != DefaultArchivePrefix {
		t.Errorf("Ожидался ArchivePrefix по умолчанию, получено: %s", loadedConfig.ArchivePrefix)
	}
	if loadedConfig.ArchiveEnabled() {
		t.Error("Архивирование не должно быть включено без бакета")
	}
}

func TestEnvVarOverride(t *testing.T) {
	configPath := writeConfig(t, `api_base_url: "http://file.example.com/api/"
`)

	t.Setenv("TRACKS_API_URL", "http://env.example.com/api")

	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// Переменная окружения перекрывает значение из файла
	if loadedConfig.APIBaseURL != "http://env.example.com/api/" {
		t.Errorf("Ожидался APIBaseURL из окружения, получено: %s", loadedConfig.APIBaseURL)
	}
}

func TestLoadConfigNonExistentFile(t *testing.T) {
	t.Setenv("TRACKS_API_URL", "")

	// Отсутствующий файл не ошибка: берутся значения по умолчанию
	loadedConfig, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}

	if loadedConfig.APIBaseURL != DefaultAPIBaseURL {
		t.Errorf("Ожидался APIBaseURL по умолчанию, получено: %s", loadedConfig.APIBaseURL)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	configPath := writeConfig(t, `api_base_url: "http://localhost/api/"
invalid_field: [unclosed array
`)

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Ожидалась ошибка при загрузке некорректного YAML")
	}

	if !strings.Contains(err.Error(), "yaml") {
		t.Errorf("Неожиданное сообщение об ошибке: %v", err)
	}
}

func TestTildeExpandedOnlyAtStart(t *testing.T) {
	t.Setenv("TRACKS_API_URL", "")

	dir := filepath.Join(t.TempDir(), "a~b")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Ошибка создания каталога: %v", err)
	}
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_file: \"/var/log/tracks~old.log\"\npage_limit: 7\n"), 0644); err != nil {
		t.Fatalf("Ошибка записи файла конфигурации: %v", err)
	}

	// Тильда в середине пути не раскрывается ни в пути к файлу, ни в журнале
	loadedConfig, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	if loadedConfig.PageLimit != 7 {
		t.Errorf("Файл конфигурации не прочитан: PageLimit %d", loadedConfig.PageLimit)
	}
	if loadedConfig.LogFile != "/var/log/tracks~old.log" {
		t.Errorf("Путь к журналу не должен меняться: %s", loadedConfig.LogFile)
	}
}
