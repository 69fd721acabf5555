// Package scheduler runs the broadcast pipeline on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/broadcast"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/status"
)

// Scheduler periodically triggers a bulletin broadcast and records the
// outcome. A single station schedule only; overlapping runs are refused
// by the pipeline itself.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  *broadcast.Pipeline
	recorder  *status.Recorder
	interval  time.Duration
	runWait   time.Duration
}

// New creates a Scheduler. runWait bounds the context of each scheduled
// run; 0 means no bound.
func New(pipeline *broadcast.Pipeline, recorder *status.Recorder, interval, runWait time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		pipeline:  pipeline,
		recorder:  recorder,
		interval:  interval,
		runWait:   runWait,
	}
}

// Start schedules the periodic broadcast job and starts the underlying
// scheduler asynchronously.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		log.Println("scheduler: starting scheduled broadcast")

		ctx := context.Background()
		cancel := context.CancelFunc(func() {})
		if s.runWait > 0 {
			ctx, cancel = context.WithTimeout(ctx, s.runWait)
		}
		defer cancel()

		report, err := s.pipeline.Run(ctx)
		if err != nil {
			if errors.Is(err, broadcast.ErrBroadcastInProgress) {
				log.Println("scheduler: previous broadcast still running; skipping")
				return
			}
			log.Printf("scheduler: broadcast failed: %v", err)
		}
		if s.recorder != nil {
			s.recorder.Record(report)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
