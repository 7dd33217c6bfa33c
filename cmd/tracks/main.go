package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazadus/go-tracks/internal/api"
	"github.com/hazadus/go-tracks/internal/archive"
	"github.com/hazadus/go-tracks/internal/config"
	"github.com/hazadus/go-tracks/internal/logging"
	"github.com/hazadus/go-tracks/internal/s3"
)

const (
	defaultConfigPath = "~/.tracks.yaml"
)

// Application содержит зависимости, общие для всех команд
type Application struct {
	Config *config.Config
	Client *api.Client
	Logger *slog.Logger

	// NewStore создает хранилище для архивирования, в тестах подменяется
	NewStore func(cfg *config.Config) (archive.Store, error)

	closers []io.Closer
}

// initialize загружает конфигурацию, открывает журнал и создает клиент API.
// Уже настроенное приложение повторно не инициализируется.
func (app *Application) initialize(configPath string) error {
	if app.Client != nil {
		return nil
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	app.Config = cfg

	logger, closer, err := logging.Open(cfg.LogFile, slog.LevelInfo)
	if err != nil {
		return err
	}
	app.Logger = logger
	app.closers = append(app.closers, closer)

	client, err := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, logger)
	if err != nil {
		return fmt.Errorf("ошибка создания клиента API: %w", err)
	}
	app.Client = client

	app.Logger.Info("приложение запущено", "api", cfg.APIBaseURL)
	return nil
}

// logger возвращает журнал приложения или пустой журнал, если он не открыт
func (app *Application) logger() *slog.Logger {
	if app.Logger == nil {
		return logging.Discard()
	}
	return app.Logger
}

// openStore создает хранилище архива по настройкам
func (app *Application) openStore() (archive.Store, error) {
	if app.NewStore != nil {
		return app.NewStore(app.Config)
	}
	store, err := s3.NewStore(s3.Config{
		Region:     app.Config.AwsRegion,
		AccessKey:  app.Config.AwsAccessKey,
		SecretKey:  app.Config.AwsSecretKey,
		Endpoint:   app.Config.AwsEndpoint,
		BucketName: app.Config.AwsBucketName,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания S3 клиента: %w", err)
	}
	return store, nil
}

// Close закрывает открытые ресурсы
func (app *Application) Close() error {
	var errs []error
	for _, c := range app.closers {
		errs = append(errs, c.Close())
	}
	app.closers = nil
	return errors.Join(errs...)
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &Application{}
	defer app.Close()

	if err := app.createRootCommand(ctx).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
