// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/hazadus/go-tracks/internal/streaming"
)

// Source описывает трек, который нужно воспроизвести
type Source struct {
	TrackID string
	Title   string
	URL     string // Адрес файла, см. api.Client.FileURL
}

// Status представляет текущий статус плеера
type Status struct {
	TrackID    string
	Current    time.Duration // Текущая позиция
	Total      time.Duration // Общая продолжительность, 0 если неизвестна
	IsPlaying  bool
	StuckCount int // Секунд подряд без продвижения позиции
}

// Player управляет воспроизведением треков. Одновременно играет не больше одного трека.
type Player struct {
	progressChan chan Status
	doneChan     chan string

	ctx         context.Context
	cancel      context.CancelFunc
	mutex       sync.RWMutex
	sampleRate  beep.SampleRate // Частота, с которой инициализирован speaker
	isPaused    bool
	current     *Source
	generation  int // Номер текущего воспроизведения, отличает старые мониторы
	initSpeaker func(beep.SampleRate) error

	streamer     beep.StreamSeekCloser
	ctrl         *beep.Ctrl
	streamReader *streaming.Reader
}

// NewPlayer создает новый экземпляр плеера
func NewPlayer() *Player {
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		progressChan: make(chan Status, 1),
		doneChan:     make(chan string, 1),
		ctx:          ctx,
		cancel:       cancel,
		initSpeaker: func(rate beep.SampleRate) error {
			return speaker.Init(rate, rate.N(time.Second/5))
		},
	}
}

// Progress возвращает канал для получения обновлений прогресса
func (p *Player) Progress() <-chan Status {
	return p.progressChan
}

// Done возвращает канал, в который передается идентификатор трека,
// доигравшего до конца
func (p *Player) Done() <-chan string {
	return p.doneChan
}

// Play останавливает текущий трек и начинает воспроизведение src
func (p *Player) Play(src Source) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopInternal()

	streamReader, err := streaming.NewReader(p.ctx, src.URL, streaming.DefaultBufferSize)
	if err != nil {
		return fmt.Errorf("ошибка создания потокового ридера: %w", err)
	}

	streamer, format, err := decode(streamReader, src.URL)
	if err != nil {
		streamReader.Close()
		return fmt.Errorf("ошибка декодирования аудио: %w", err)
	}

	// speaker инициализируется один раз, остальные треки передискретизируются
	if p.sampleRate == 0 {
		if err := p.initSpeaker(format.SampleRate); err != nil {
			streamer.Close()
			streamReader.Close()
			return fmt.Errorf("ошибка инициализации динамиков: %w", err)
		}
		p.sampleRate = format.SampleRate
	}

	var output beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		output = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	p.streamReader = streamReader
	p.streamer = streamer
	p.ctrl = &beep.Ctrl{Streamer: output}
	p.isPaused = false
	p.current = &src
	p.generation++

	trackID := src.TrackID
	speaker.Play(beep.Seq(p.ctrl, beep.Callback(func() {
		select {
		case p.doneChan <- trackID:
		default:
		}
	})))

	go p.monitorProgress(format, p.generation)

	return nil
}

// Pause приостанавливает или возобновляет воспроизведение
func (p *Player) Pause() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.ctrl != nil {
		speaker.Lock()
		p.isPaused = !p.isPaused
		p.ctrl.Paused = p.isPaused
		speaker.Unlock()
	}
}

// Stop останавливает воспроизведение
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopInternal()
}

// stopInternal должен вызываться под мьютексом
func (p *Player) stopInternal() {
	if p.ctrl != nil {
		speaker.Clear()
		p.ctrl = nil
	}

	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}

	if p.streamReader != nil {
		p.streamReader.Close()
		p.streamReader = nil
	}

	p.current = nil
	p.isPaused = false
}

// Close закрывает плеер и освобождает ресурсы
func (p *Player) Close() error {
	p.cancel()
	p.Stop()
	return nil
}

// IsPlaying возвращает true, если трек воспроизводится
func (p *Player) IsPlaying() bool {
	p.mutex.RLock()
	defer p.mutex.RUnlock()
	return p.ctrl != nil && !p.isPaused
}

// decode выбирает декодер по расширению файла, затем по типу содержимого
func decode(reader *streaming.Reader, rawURL string) (beep.StreamSeekCloser, beep.Format, error) {
	if isWAV(rawURL, reader.ContentType()) {
		return wav.Decode(reader)
	}
	return mp3.Decode(reader)
}

func isWAV(rawURL, contentType string) bool {
	if u, err := url.Parse(rawURL); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".wav", ".wave":
			return true
		case ".mp3":
			return false
		}
	}
	switch contentType {
	case "audio/wav", "audio/wave", "audio/x-wav":
		return true
	}
	return false
}

// monitorProgress раз в секунду отправляет статус, пока не сменится воспроизведение
func (p *Player) monitorProgress(format beep.Format, generation int) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	lastPosition := time.Duration(-1)
	stuckCount := 0

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.mutex.RLock()
			if p.streamer == nil || p.ctrl == nil || p.generation != generation {
				p.mutex.RUnlock()
				return
			}

			speaker.Lock()
			current := format.SampleRate.D(p.streamer.Position())
			total := format.SampleRate.D(p.streamer.Len())
			paused := p.isPaused
			speaker.Unlock()

			trackID := p.current.TrackID
			p.mutex.RUnlock()

			// Поток стоит на месте без паузы: скорее всего, идет буферизация
			if !paused && current == lastPosition {
				stuckCount++
			} else {
				stuckCount = 0
			}
			lastPosition = current

			if total < 0 {
				total = 0
			}

			status := Status{
				TrackID:    trackID,
				Current:    current,
				Total:      total,
				IsPlaying:  !paused,
				StuckCount: stuckCount,
			}

			select {
			case p.progressChan <- status:
			default:
			}
		}
	}
}
