// Package stations loads the broadcast location list and picks the city
// announced on each run.
package stations

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

// ErrConfiguration marks a missing or malformed location list.
var ErrConfiguration = errors.New("invalid station configuration")

// Load reads the line-oriented location file. Each non-blank line must be
// `name,latitude,longitude` with no escaping. A missing file, an empty
// list, or a line with fewer than 3 comma fields is fatal.
func Load(path string) ([]weather.Location, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading location list %s: %v", ErrConfiguration, path, err)
	}

	var locs []weather.Location
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) < 3 {
			return nil, fmt.Errorf("%w: line %d of %s has %d fields, want at least 3", ErrConfiguration, i+1, path, len(parts))
		}
		locs = append(locs, weather.Location{
			Name:      strings.TrimSpace(parts[0]),
			Latitude:  strings.TrimSpace(parts[1]),
			Longitude: strings.TrimSpace(parts[2]),
		})
	}

	if len(locs) == 0 {
		return nil, fmt.Errorf("%w: location list %s is empty", ErrConfiguration, path)
	}
	return locs, nil
}

// Pick chooses one location uniformly at random.
func Pick(locs []weather.Location) (weather.Location, error) {
	if len(locs) == 0 {
		return weather.Location{}, fmt.Errorf("%w: no locations to pick from", ErrConfiguration)
	}
	return locs[rand.Intn(len(locs))], nil
}
