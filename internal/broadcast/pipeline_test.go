package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/bulletin"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/transmitter"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

type fakeLine struct {
	mu    sync.Mutex
	trace []string
}

func (f *fakeLine) Key() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "assert")
	return nil
}

func (f *fakeLine) Unkey() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "de-assert")
	return nil
}

func (f *fakeLine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, "close")
	return nil
}

func (f *fakeLine) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.trace...)
}

type fakeFetcher struct {
	snap       weather.ConditionsSnapshot
	forecast   weather.ForecastDocument
	currentErr error
	fcErr      error
}

func (f *fakeFetcher) FetchCurrent(ctx context.Context, loc weather.Location) (weather.ConditionsSnapshot, error) {
	return f.snap, f.currentErr
}

func (f *fakeFetcher) FetchForecast(ctx context.Context, loc weather.Location) (weather.ForecastDocument, error) {
	return f.forecast, f.fcErr
}

type fakeSynth struct {
	err  error
	text string
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string, voice bulletin.Voice, outPath string) error {
	f.text = text
	return f.err
}

// fakeController keys the line like the real one does, so the pipeline
// tests can assert full key traces.
type fakeController struct {
	err   error
	delay time.Duration
}

func (f *fakeController) Transmit(ctx context.Context, line transmitter.KeyLine, artifactPath string) error {
	if err := line.Key(); err != nil {
		return err
	}
	defer line.Unkey()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func testPipeline(fetcher *fakeFetcher, synth *fakeSynth, ctrl *fakeController, line *fakeLine, openErr error) *Pipeline {
	return New(Config{
		Locations: []weather.Location{
			{Name: "Palhoça", Latitude: "-27.6", Longitude: "-48.6"},
		},
		CallSign:     "PY2ABC",
		ArtifactPath: "test-bulletin.wav",
		Weather:      fetcher,
		Speech:       synth,
		Controller:   ctrl,
		OpenKeyLine: func() (transmitter.KeyLine, error) {
			if openErr != nil {
				return nil, openErr
			}
			return line, nil
		},
	})
}

func healthySnapshot() weather.ConditionsSnapshot {
	return weather.ConditionsSnapshot{
		TemperatureKelvin: 300.0,
		Description:       "céu limpo",
		HumidityPct:       80,
		PressureHpa:       1013,
		WindSpeedMps:      3.2,
		WindDegrees:       90,
		CloudsPct:         10,
	}
}

func TestRunSuccess(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot(), forecast: weather.ForecastDocument(`{"list":[{"rain":{"3h":1.5}}]}`)}
	synth := &fakeSynth{}
	line := &fakeLine{}

	p := testPipeline(fetcher, synth, &fakeController{}, line, nil)
	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Succeeded())
	assert.NotEmpty(t, report.ID)
	assert.Equal(t, "Palhoça", report.Location.Name)
	assert.Contains(t, report.Announcement, "26,9")
	assert.Contains(t, report.Announcement, "céu limpo")
	assert.Contains(t, report.Announcement, "chuva de 1.5 mm")
	assert.Contains(t, bulletin.Voices, report.Voice)
	assert.Equal(t, report.Announcement, synth.text)
	assert.Equal(t, []string{"assert", "de-assert", "close"}, line.Trace())
}

func TestRunFetchFailureAbortsBeforeKeying(t *testing.T) {
	fetcher := &fakeFetcher{currentErr: weather.ErrFetch}
	line := &fakeLine{}

	p := testPipeline(fetcher, &fakeSynth{}, &fakeController{}, line, nil)
	report, err := p.Run(context.Background())

	require.ErrorIs(t, err, weather.ErrFetch)
	assert.False(t, report.Succeeded())
	assert.Equal(t, []string{"close"}, line.Trace(), "no keying may happen before playback")
}

func TestRunForecastFailureAbortsBeforeKeying(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot(), fcErr: weather.ErrFetch}
	line := &fakeLine{}

	p := testPipeline(fetcher, &fakeSynth{}, &fakeController{}, line, nil)
	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, weather.ErrFetch)
	assert.Equal(t, []string{"close"}, line.Trace())
}

func TestRunSynthesisFailureAbortsBeforeKeying(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot(), forecast: weather.ForecastDocument(`{}`)}
	synthErr := errors.New("synthesis exploded")
	line := &fakeLine{}

	p := testPipeline(fetcher, &fakeSynth{err: synthErr}, &fakeController{}, line, nil)
	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, synthErr)
	assert.Equal(t, []string{"close"}, line.Trace())
}

func TestRunPlaybackFailureStillUnkeys(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot(), forecast: weather.ForecastDocument(`{}`)}
	playErr := transmitter.ErrPlayback
	line := &fakeLine{}

	p := testPipeline(fetcher, &fakeSynth{}, &fakeController{err: playErr}, line, nil)
	report, err := p.Run(context.Background())

	require.ErrorIs(t, err, transmitter.ErrPlayback)
	assert.False(t, report.Succeeded())
	assert.Equal(t, []string{"assert", "de-assert", "close"}, line.Trace())
}

func TestRunHardwareUnavailable(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot()}

	p := testPipeline(fetcher, &fakeSynth{}, &fakeController{}, &fakeLine{}, transmitter.ErrHardwareUnavailable)
	_, err := p.Run(context.Background())

	require.ErrorIs(t, err, transmitter.ErrHardwareUnavailable)
}

func TestRunRefusesOverlap(t *testing.T) {
	fetcher := &fakeFetcher{snap: healthySnapshot(), forecast: weather.ForecastDocument(`{}`)}
	line := &fakeLine{}

	p := testPipeline(fetcher, &fakeSynth{}, &fakeController{delay: 200 * time.Millisecond}, line, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.Run(context.Background())
		done <- err
	}()

	// Wait until the first run holds the transmitter.
	require.Eventually(t, p.Busy, time.Second, 5*time.Millisecond)

	_, err := p.Run(context.Background())
	require.ErrorIs(t, err, ErrBroadcastInProgress)

	require.NoError(t, <-done)
	assert.False(t, p.Busy())
}
