package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tracks/internal/player"
	"github.com/hazadus/go-tracks/internal/streaming"
	"github.com/hazadus/go-tracks/internal/utils"
)

// createPlayCommand создает команду play с привязкой к экземпляру приложения
func (app *Application) createPlayCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "play [slug]",
		Short: "Play a track by its slug",
		Long:  `Stream the audio file of a catalog track found by its slug.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.playBySlug(ctx, cmd.OutOrStdout(), args[0])
		},
	}
}

// enableRawMode включает режим raw для терминала (без буферизации и echo)
func enableRawMode() {
	cmd := exec.Command("stty", "-echo", "-icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run() // Без stty плеер работает, просто без управления клавишами
}

// disableRawMode восстанавливает нормальный режим терминала
func disableRawMode() {
	cmd := exec.Command("stty", "echo", "icanon")
	cmd.Stdin = os.Stdin
	_ = cmd.Run()
}

// readSingleChar читает одиночный символ без ожидания Enter
func readSingleChar() (byte, error) {
	buffer := make([]byte, 1)
	_, err := os.Stdin.Read(buffer)
	return buffer[0], err
}

func (app *Application) playBySlug(ctx context.Context, out io.Writer, slug string) error {
	track, err := app.findTrack(ctx, slug)
	if err != nil {
		return err
	}
	if !track.HasAudio() {
		return fmt.Errorf("у трека %q нет аудиофайла", slug)
	}

	fmt.Fprintf(out, "🎵 Сейчас играет:\n")
	fmt.Fprintf(out, "   Исполнитель: %s\n", track.Artist)
	fmt.Fprintf(out, "   Название: %s\n", track.Title)
	if track.Album != "" {
		fmt.Fprintf(out, "   Альбом: %s\n", track.Album)
	}
	fmt.Fprintln(out)

	p := player.NewPlayer()
	defer p.Close()

	err = p.Play(player.Source{
		TrackID: track.ID,
		Title:   track.Artist + " - " + track.Title,
		URL:     app.Client.FileURL(track.AudioFile),
	})
	if err != nil {
		return fmt.Errorf("ошибка запуска воспроизведения: %w", err)
	}
	app.logger().Info("воспроизведение", "track", track.ID)

	fmt.Fprintf(out, "🎮 Управление:\n")
	fmt.Fprintf(out, "   [Пробел] - пауза/воспроизведение\n")
	fmt.Fprintf(out, "   [Ctrl+C] - остановить и выйти\n")
	fmt.Fprintln(out)

	enableRawMode()
	defer disableRawMode()

	// Горутина блокируется на чтении stdin и завершается вместе с процессом
	go func() {
		for {
			char, err := readSingleChar()
			if err != nil {
				return
			}
			if char == ' ' || char == '\n' || char == '\r' {
				p.Pause()
				fmt.Fprint(out, "\r\033[K")
				if p.IsPlaying() {
					fmt.Fprintln(out, "▶️  Воспроизведение")
				} else {
					fmt.Fprintln(out, "⏸️  Пауза")
				}
			}
		}
	}()

	for {
		select {
		case status := <-p.Progress():
			displayProgress(out, status)
		case <-p.Done():
			fmt.Fprintln(out, "\n✅ Воспроизведение завершено")
			return nil
		case <-ctx.Done():
			fmt.Fprintln(out, "\n⏹️  Воспроизведение остановлено пользователем")
			p.Stop()
			return nil
		}
	}
}

// displayProgress отображает прогресс воспроизведения в одной строке
func displayProgress(out io.Writer, status player.Status) {
	statusIcon := "⏱️"
	statusText := streaming.StatusText(status.StuckCount)
	switch {
	case !status.IsPlaying:
		statusIcon = "⏸️"
		statusText = "Пауза"
	case status.StuckCount > 3:
		statusIcon = "⚠️"
	}

	total := "--:--"
	percent := "??%"
	if status.Total > 0 {
		total = utils.FormatDuration(status.Total)
		percent = fmt.Sprintf("%.1f%%", float64(status.Current)/float64(status.Total)*100)
	}

	fmt.Fprintf(out, "\r\033[K%s  %s | %s / %s | Статус: %s",
		statusIcon,
		percent,
		utils.FormatDuration(status.Current),
		total,
		statusText)
}
