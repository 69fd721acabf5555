package httpapi

import (
	"context"
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/broadcast"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/status"
)

// RegisterRoutes wires the station control handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, pipeline *broadcast.Pipeline, recorder *status.Recorder) {
	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		report, err := recorder.Latest()
		if err != nil {
			if errors.Is(err, status.ErrNoBroadcasts) {
				return fiber.NewError(fiber.StatusNotFound, "no broadcasts have run yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read broadcast status")
		}
		return c.JSON(report)
	})

	// Manual trigger. The broadcast runs in the background; its outcome
	// lands in /status. While one is on air a second trigger is refused.
	v1.Post("/broadcast", func(c *fiber.Ctx) error {
		if pipeline.Busy() {
			return fiber.NewError(fiber.StatusConflict, "a broadcast is already in progress")
		}

		go func() {
			report, err := pipeline.Run(context.Background())
			if err != nil {
				if errors.Is(err, broadcast.ErrBroadcastInProgress) {
					return
				}
				log.Printf("ERROR: triggered broadcast failed: %v", err)
			}
			recorder.Record(report)
		}()

		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"accepted": true,
		})
	})
}
