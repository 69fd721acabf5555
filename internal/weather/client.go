package weather

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
)

var (
	// ErrFetch marks any whole-document failure against the weather API:
	// transport errors, non-2xx statuses, or an unparseable body. Per-field
	// absences inside a fetched document are NOT errors; they degrade to
	// the documented field defaults in extraction.
	ErrFetch = errors.New("weather fetch failed")

	errCircuitOpen = errors.New("circuit breaker open")
)

// DescriptionFallback is spoken when the current-conditions document has
// no textual description.
const DescriptionFallback = "sem descrição disponível"

// Config holds the OpenWeatherMap client settings. Credentials live here,
// passed in at construction; there is no package-level mutable state.
type Config struct {
	APIKey   string
	BaseURL  string // defaults to the public OpenWeatherMap v2.5 API
	Language string // defaults to pt_br
	Client   *http.Client
}

// Client fetches current conditions and short-range forecasts from
// OpenWeatherMap. Each call is a single attempt guarded by a circuit
// breaker; there are no retries and no backoff.
type Client struct {
	cfg     Config
	circuit *gobreaker.CircuitBreaker
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Language == "" {
		cfg.Language = "pt_br"
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: 10 * time.Second}
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{cfg: cfg, circuit: cb}
}

// ForecastDocument is the raw short-range forecast response. Only the
// first entry's rain volume is read from it.
type ForecastDocument []byte

// Rain3h returns the forecast rain volume for the next 3 hours, or 0
// when the document carries no rain entry.
func (d ForecastDocument) Rain3h() float64 {
	v := gjson.GetBytes(d, "list.0.rain.3h")
	if !v.Exists() {
		return 0
	}
	return v.Float()
}

// FetchCurrent retrieves current conditions for the location and extracts
// them into a snapshot. The forecast rain field is left at its default;
// the caller merges it from FetchForecast.
func (c *Client) FetchCurrent(ctx context.Context, loc Location) (ConditionsSnapshot, error) {
	doc, err := c.get(ctx, "/weather", loc)
	if err != nil {
		return ConditionsSnapshot{}, err
	}
	return extractCurrent(doc), nil
}

// FetchForecast retrieves the short-range forecast document for the location.
func (c *Client) FetchForecast(ctx context.Context, loc Location) (ForecastDocument, error) {
	doc, err := c.get(ctx, "/forecast", loc)
	if err != nil {
		return nil, err
	}
	return ForecastDocument(doc), nil
}

func (c *Client) get(ctx context.Context, path string, loc Location) ([]byte, error) {
	if c.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", ErrFetch)
	}

	values := url.Values{}
	values.Set("lat", loc.Latitude)
	values.Set("lon", loc.Longitude)
	values.Set("appid", c.cfg.APIKey)
	values.Set("lang", c.cfg.Language)

	u := fmt.Sprintf("%s%s?%s", c.cfg.BaseURL, path, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}

		return io.ReadAll(resp.Body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v: %v", ErrFetch, errCircuitOpen, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	doc, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrFetch)
	}
	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("%w: response is not valid JSON", ErrFetch)
	}
	return doc, nil
}

// extractCurrent reads each announcement field independently from the
// current-conditions document. A missing or wrongly-shaped field takes
// its default instead of failing the snapshot.
func extractCurrent(doc []byte) ConditionsSnapshot {
	snap := ConditionsSnapshot{
		TemperatureKelvin: math.NaN(),
		Description:       DescriptionFallback,
	}

	if v := gjson.GetBytes(doc, "main.temp"); v.Exists() && v.Type == gjson.Number {
		snap.TemperatureKelvin = v.Float()
	}
	if v := gjson.GetBytes(doc, "weather.0.description"); v.Exists() && v.String() != "" {
		snap.Description = v.String()
	}
	if v := gjson.GetBytes(doc, "main.humidity"); v.Exists() {
		snap.HumidityPct = int(v.Int())
	}
	if v := gjson.GetBytes(doc, "main.pressure"); v.Exists() {
		snap.PressureHpa = int(v.Int())
	}
	if v := gjson.GetBytes(doc, "wind.speed"); v.Exists() {
		snap.WindSpeedMps = v.Float()
	}
	if v := gjson.GetBytes(doc, "wind.deg"); v.Exists() {
		snap.WindDegrees = int(v.Int())
	}
	if v := gjson.GetBytes(doc, "clouds.all"); v.Exists() {
		snap.CloudsPct = int(v.Int())
	}

	return snap
}
