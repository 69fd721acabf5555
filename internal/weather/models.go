package weather

import "math"

// Location represents a broadcast target read from the station list.
// Latitude and longitude are kept as strings because they are passed
// through verbatim as query parameters, never computed on.
type Location struct {
	Name      string `json:"name"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// ConditionsSnapshot is the per-run extracted set of weather fields used
// to compose the spoken announcement. Every field carries its documented
// default when the source document omits it; only TemperatureKelvin keeps
// an explicit "absent" marker (NaN) because its sentence degrades rather
// than defaulting to a number.
type ConditionsSnapshot struct {
	TemperatureKelvin float64 `json:"temperatureKelvin"`
	Description       string  `json:"description"`
	HumidityPct       int     `json:"humidityPercent"`
	PressureHpa       int     `json:"pressureHpa"`
	WindSpeedMps      float64 `json:"windSpeedMps"`
	WindDegrees       int     `json:"windDegrees"`
	CloudsPct         int     `json:"cloudsPercent"`
	RainMm3h          float64 `json:"rainMm3h"`
}

// HasTemperature reports whether the current-conditions document carried
// a temperature reading.
func (s ConditionsSnapshot) HasTemperature() bool {
	return !math.IsNaN(s.TemperatureKelvin)
}

// TemperatureCelsius converts the raw Kelvin reading. NaN propagates.
func (s ConditionsSnapshot) TemperatureCelsius() float64 {
	return s.TemperatureKelvin - 273.15
}
