package transmitter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"time"
)

var (
	// ErrPlayback marks a player that could not be launched. Any
	// already-asserted key signal is still de-asserted before this
	// surfaces.
	ErrPlayback = errors.New("audio playback failed")

	// ErrPlaybackTimeout marks a player that outlived the configured
	// maximum wait and was killed, with the key line force-de-asserted.
	ErrPlaybackTimeout = errors.New("audio playback exceeded maximum wait")
)

// pollInterval is how often playback completion is checked. The loop
// suspends between checks; it never busy-spins.
const pollInterval = 500 * time.Millisecond

// playerHandle observes a running playback unit of work. Only completion
// status is observed, never output.
type playerHandle interface {
	Finished() bool
	Kill() error
}

type launchFunc func(artifactPath string) (playerHandle, error)

// Controller owns the Keyed Playback state machine: assert the key
// signal, launch the player, poll until it completes, de-assert. The
// de-assertion runs on every exit path once the signal was asserted.
type Controller struct {
	launch   launchFunc
	interval time.Duration

	// maxWait bounds the polling loop; 0 keeps the original unbounded
	// behavior where a hung player stalls the run indefinitely.
	maxWait time.Duration
}

// NewController builds a controller that plays artifacts with the given
// external player command (e.g. "aplay").
func NewController(playerCommand string, maxWait time.Duration) *Controller {
	return &Controller{
		launch:   launchProcess(playerCommand),
		interval: pollInterval,
		maxWait:  maxWait,
	}
}

// Transmit asserts the key line, plays the artifact, and de-asserts when
// playback completes. Completion is observed only on poll ticks. The
// deferred de-assert covers success, launch failure, timeout, and
// context cancellation alike.
func (c *Controller) Transmit(ctx context.Context, line KeyLine, artifactPath string) error {
	if err := line.Key(); err != nil {
		return err
	}
	log.Printf("INFO: transmitter keyed")
	defer func() {
		if err := line.Unkey(); err != nil {
			log.Printf("ERROR: de-asserting key line: %v", err)
			return
		}
		log.Printf("INFO: transmitter de-keyed")
	}()

	handle, err := c.launch(artifactPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPlayback, err)
	}

	started := time.Now()
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if killErr := handle.Kill(); killErr != nil {
				log.Printf("ERROR: killing player after cancellation: %v", killErr)
			}
			return ctx.Err()
		case <-ticker.C:
			if handle.Finished() {
				return nil
			}
			if c.maxWait > 0 && time.Since(started) >= c.maxWait {
				if killErr := handle.Kill(); killErr != nil {
					log.Printf("ERROR: killing player after timeout: %v", killErr)
				}
				return fmt.Errorf("%w (%s)", ErrPlaybackTimeout, c.maxWait)
			}
		}
	}
}

// processHandle wraps an external player subprocess.
type processHandle struct {
	cmd  *exec.Cmd
	done chan struct{}
}

func launchProcess(command string) launchFunc {
	return func(artifactPath string) (playerHandle, error) {
		cmd := exec.Command(command, artifactPath)
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
		if err := cmd.Start(); err != nil {
			return nil, err
		}

		h := &processHandle{cmd: cmd, done: make(chan struct{})}
		go func() {
			// Exit status is irrelevant; only completion is observed.
			_ = cmd.Wait()
			close(h.done)
		}()
		return h, nil
	}
}

func (h *processHandle) Finished() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

func (h *processHandle) Kill() error {
	if h.cmd.Process == nil {
		return nil
	}
	return h.cmd.Process.Kill()
}
