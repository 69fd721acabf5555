// Package broadcast orchestrates one bulletin run end to end: pick a
// location, fetch conditions, compose and synthesize the announcement,
// and key the transmitter for the duration of playback.
package broadcast

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/bulletin"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/stations"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/transmitter"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

// ErrBroadcastInProgress is returned when a run is requested while
// another one holds the transmitter.
var ErrBroadcastInProgress = errors.New("a broadcast is already in progress")

// ConditionsFetcher is the weather-side contract of the pipeline.
type ConditionsFetcher interface {
	FetchCurrent(ctx context.Context, loc weather.Location) (weather.ConditionsSnapshot, error)
	FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastDocument, error)
}

// Synthesizer turns announcement text into an audio file at outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice bulletin.Voice, outPath string) error
}

// PlaybackController plays the artifact with the key line asserted and
// guarantees de-assertion on every exit path.
type PlaybackController interface {
	Transmit(ctx context.Context, line transmitter.KeyLine, artifactPath string) error
}

// Config wires the pipeline's collaborators and fixed texts.
type Config struct {
	Locations     []weather.Location
	CallSign      string
	CustomMessage string

	// ArtifactPath is where synthesized audio is written. It is owned for
	// the run's duration only and overwritten on the next run.
	ArtifactPath string

	Weather    ConditionsFetcher
	Speech     Synthesizer
	Controller PlaybackController

	// OpenKeyLine acquires the hardware control line. It is called before
	// any network stage so a hardware failure wastes no synthesized audio.
	OpenKeyLine func() (transmitter.KeyLine, error)
}

// Pipeline runs broadcasts. Runs never overlap; the transmitter and the
// artifact file are exclusively owned by the active run.
type Pipeline struct {
	cfg Config
	mu  sync.Mutex
}

func New(cfg Config) *Pipeline {
	if cfg.ArtifactPath == "" {
		cfg.ArtifactPath = "temp.wav"
	}
	return &Pipeline{cfg: cfg}
}

// Busy reports whether a run currently holds the transmitter.
func (p *Pipeline) Busy() bool {
	if p.mu.TryLock() {
		p.mu.Unlock()
		return false
	}
	return true
}

// Run executes one broadcast. The returned report is filled as far as the
// run got; on failure its Error field carries the cause and the same
// error is returned.
func (p *Pipeline) Run(ctx context.Context) (RunReport, error) {
	if !p.mu.TryLock() {
		return RunReport{}, ErrBroadcastInProgress
	}
	defer p.mu.Unlock()

	report := RunReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	err := p.run(ctx, &report)
	report.FinishedAt = time.Now().UTC()
	if err != nil {
		report.Error = err.Error()
		log.Printf("ERROR: broadcast %s failed: %v", report.ID, err)
		return report, err
	}

	log.Printf("INFO: broadcast %s completed for %s", report.ID, report.Location.Name)
	return report, nil
}

func (p *Pipeline) run(ctx context.Context, report *RunReport) error {
	line, err := p.cfg.OpenKeyLine()
	if err != nil {
		return err
	}
	defer line.Close()

	loc, err := stations.Pick(p.cfg.Locations)
	if err != nil {
		return err
	}
	report.Location = loc
	log.Printf("INFO: consulting weather for %s (lat %s, lon %s)", loc.Name, loc.Latitude, loc.Longitude)

	snap, err := p.cfg.Weather.FetchCurrent(ctx, loc)
	if err != nil {
		return err
	}
	forecast, err := p.cfg.Weather.FetchForecast(ctx, loc)
	if err != nil {
		return err
	}
	snap.RainMm3h = forecast.Rain3h()

	text, voice := bulletin.Compose(loc, snap, p.cfg.CallSign, p.cfg.CustomMessage)
	report.Voice = voice
	report.Announcement = text

	log.Printf("INFO: synthesizing announcement with voice %s", voice)
	if err := p.cfg.Speech.Synthesize(ctx, text, voice, p.cfg.ArtifactPath); err != nil {
		return err
	}

	return p.cfg.Controller.Transmit(ctx, line, p.cfg.ArtifactPath)
}
