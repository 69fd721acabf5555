package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// ErrConfiguration marks missing or malformed settings. It is fatal
// before any other stage runs.
var ErrConfiguration = errors.New("invalid configuration")

var validate = validator.New()

// AppConfig bundles every setting of the station. Credentials are passed
// explicitly into the clients built from it; no package keeps mutable
// global state.
type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	AzureSpeechKey    string `validate:"required"`
	AzureSpeechRegion string `validate:"required"`

	CallSign   string `validate:"required"`
	SerialPort string `validate:"required"`
	SerialBaud int    `validate:"gt=0"`

	LocationsFile     string `validate:"required"`
	CustomMessageFile string

	ArtifactPath  string `validate:"required"`
	PlayerCommand string `validate:"required"`

	// BroadcastInterval is how often the scheduler runs a bulletin.
	BroadcastInterval time.Duration `validate:"gt=0"`

	// PlaybackMaxWait bounds the playback poll loop; 0 keeps it unbounded.
	PlaybackMaxWait time.Duration

	Port string
}

// Load reads configuration from the environment (and .env when present)
// with defaults matching the original station setup.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		AzureSpeechKey:    os.Getenv("AZURE_SPEECH_KEY"),
		AzureSpeechRegion: getenvDefault("AZURE_SPEECH_REGION", "brazilsouth"),
		CallSign:          os.Getenv("CALL_SIGN"),
		SerialPort:        os.Getenv("SERIAL_PORT"),
		SerialBaud:        getenvInt("SERIAL_BAUD", 9600),
		LocationsFile:     getenvDefault("LOCATIONS_FILE", "cities.txt"),
		CustomMessageFile: getenvDefault("CUSTOM_MESSAGE_FILE", "custom_message.txt"),
		ArtifactPath:      getenvDefault("ARTIFACT_PATH", "temp.wav"),
		PlayerCommand:     getenvDefault("PLAYER_COMMAND", "aplay"),
		Port:              getenvDefault("PORT", "8080"),
	}

	interval, err := getenvDuration("BROADCAST_INTERVAL", time.Hour)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid BROADCAST_INTERVAL: %v", ErrConfiguration, err)
	}
	cfg.BroadcastInterval = interval

	maxWait, err := getenvDuration("PLAYBACK_MAX_WAIT", 0)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid PLAYBACK_MAX_WAIT: %v", ErrConfiguration, err)
	}
	cfg.PlaybackMaxWait = maxWait

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	return cfg, nil
}

// LoadCustomMessage reads the optional custom message file. Absence is
// reported, not fatal; the announcement simply omits the message.
func LoadCustomMessage(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("INFO: custom message file not found, using none: %v", err)
		return ""
	}
	return string(data)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
