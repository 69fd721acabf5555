// Package status keeps the most recent broadcast outcome for the control
// API. Only the latest run is retained; the station keeps no broadcast
// history.
package status

import (
	"errors"
	"sync"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/broadcast"
)

// ErrNoBroadcasts is returned before the first run of the process.
var ErrNoBroadcasts = errors.New("no broadcasts have run yet")

// Recorder is a concurrency-safe holder of the latest run report.
type Recorder struct {
	mu     sync.RWMutex
	latest *broadcast.RunReport
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record replaces the stored report with the given one.
func (r *Recorder) Record(report broadcast.RunReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latest = &report
}

// Latest returns the most recent run report.
func (r *Recorder) Latest() (broadcast.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.latest == nil {
		return broadcast.RunReport{}, ErrNoBroadcasts
	}
	return *r.latest, nil
}
