package broadcast

import (
	"time"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/bulletin"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

// RunReport describes the outcome of one broadcast run.
type RunReport struct {
	ID           string           `json:"id"`
	Location     weather.Location `json:"location"`
	Voice        bulletin.Voice   `json:"voice,omitempty"`
	Announcement string           `json:"announcement,omitempty"`
	StartedAt    time.Time        `json:"startedAt"`
	FinishedAt   time.Time        `json:"finishedAt"`
	Error        string           `json:"error,omitempty"`
}

// Succeeded reports whether the run completed without an error.
func (r RunReport) Succeeded() bool {
	return r.Error == ""
}
