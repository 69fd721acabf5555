// Package bulletin renders the spoken weather announcement broadcast by
// the station.
package bulletin

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

// Voice identifies one of the synthetic pt-BR voices the announcement
// can be spoken with.
type Voice string

// Voices is the fixed set of neural voices; one is drawn per broadcast.
var Voices = []Voice{
	"pt-BR-FranciscaNeural",
	"pt-BR-AntonioNeural",
	"pt-BR-BrendaNeural",
	"pt-BR-DonatoNeural",
	"pt-BR-ElzaNeural",
	"pt-BR-FabioNeural",
	"pt-BR-GiovannaNeural",
	"pt-BR-HumbertoNeural",
	"pt-BR-JulioNeural",
	"pt-BR-LeilaNeural",
	"pt-BR-LeticiaNeural",
	"pt-BR-ManuelaNeural",
	"pt-BR-NicolauNeural",
	"pt-BR-ThalitaNeural",
	"pt-BR-ValerioNeural",
	"pt-BR-YaraNeural",
}

// PickVoice draws one voice uniformly at random.
func PickVoice() Voice {
	return Voices[rand.Intn(len(Voices))]
}

// Compose builds the announcement text and draws the voice to speak it.
// The text is fully determined by its inputs; only the voice is random.
func Compose(loc weather.Location, snap weather.ConditionsSnapshot, callSign, customMessage string) (string, Voice) {
	return ComposeText(loc, snap, callSign, customMessage), PickVoice()
}

// ComposeText renders the announcement in the station's fixed sentence
// order: identification lead-in, temperature, current condition,
// humidity, pressure, wind, clouds, forecast rain, the optional custom
// message, then the station-identification and attribution boilerplate.
func ComposeText(loc weather.Location, snap weather.ConditionsSnapshot, callSign, customMessage string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s Informa: %s ", callSign, temperatureSentence(loc, snap))
	fmt.Fprintf(&b, "Condição Atual: %s. A umidade está em %d%%. ", snap.Description, snap.HumidityPct)
	fmt.Fprintf(&b, "A pressão atmosférica é de %d hPa. A velocidade do vento é de %s m/s, com uma direção de %d graus. ",
		snap.PressureHpa, formatFloat(snap.WindSpeedMps), snap.WindDegrees)
	fmt.Fprintf(&b, "As condições de nuvens são de %d%%. A previsão indica uma possível chuva de %s mm nas próximas horas. ",
		snap.CloudsPct, formatFloat(snap.RainMm3h))
	if customMessage != "" {
		fmt.Fprintf(&b, "%s ", strings.TrimSpace(customMessage))
	}
	fmt.Fprintf(&b, "Emissão Piloto de %s, localizada em Golf Golf Cinquenta e Dois Quebec Éco, Palhoça, Santa Catarina. ", callSign)
	b.WriteString("Geração da previsão do tempo com Tecnologia Microsoft Azure e OpenWeatherMap.")

	return b.String()
}

// temperatureSentence degrades to a spoken unavailability notice when the
// source document carried no temperature, instead of voicing a literal
// not-a-number token.
func temperatureSentence(loc weather.Location, snap weather.ConditionsSnapshot) string {
	if !snap.HasTemperature() {
		return fmt.Sprintf("A temperatura atual em %s está indisponível.", loc.Name)
	}
	return fmt.Sprintf("A temperatura atual em %s é de %s graus Celsius.", loc.Name, FormatTemperature(snap.TemperatureCelsius()))
}

// FormatTemperature renders degrees Celsius with exactly one decimal
// digit and the spoken-Portuguese comma separator: 26.85 -> "26,9".
func FormatTemperature(celsius float64) string {
	return strings.Replace(strconv.FormatFloat(celsius, 'f', 1, 64), ".", ",", 1)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
