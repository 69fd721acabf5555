package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/api/http"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/broadcast"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/config"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/scheduler"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/speech"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/stations"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/status"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/transmitter"
	"github.com/vimace2003/Previsao-do-tempo-VHF-Linux/internal/weather"
)

func main() {
	once := flag.Bool("once", false, "run a single broadcast and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	locations, err := stations.Load(cfg.LocationsFile)
	if err != nil {
		log.Fatalf("failed to load locations: %v", err)
	}

	customMessage := config.LoadCustomMessage(cfg.CustomMessageFile)

	log.Printf("INFO: configuration loaded: call sign %s, serial port %s, %d locations",
		cfg.CallSign, cfg.SerialPort, len(locations))

	// Shared HTTP client for outbound calls.
	httpClient := &http.Client{Timeout: 30 * time.Second}

	weatherClient := weather.NewClient(weather.Config{
		APIKey: cfg.OpenWeatherAPIKey,
		Client: httpClient,
	})
	speechClient := speech.NewClient(speech.Config{
		SubscriptionKey: cfg.AzureSpeechKey,
		Region:          cfg.AzureSpeechRegion,
		Client:          httpClient,
	})

	pipeline := broadcast.New(broadcast.Config{
		Locations:     locations,
		CallSign:      cfg.CallSign,
		CustomMessage: customMessage,
		ArtifactPath:  cfg.ArtifactPath,
		Weather:       weatherClient,
		Speech:        speechClient,
		Controller:    transmitter.NewController(cfg.PlayerCommand, cfg.PlaybackMaxWait),
		OpenKeyLine: func() (transmitter.KeyLine, error) {
			return transmitter.OpenSerialKeyLine(cfg.SerialPort, cfg.SerialBaud)
		},
	})

	if *once {
		if _, err := pipeline.Run(context.Background()); err != nil {
			log.Fatalf("broadcast failed: %v", err)
		}
		return
	}

	recorder := status.NewRecorder()

	sched := scheduler.New(pipeline, recorder, cfg.BroadcastInterval, 0)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "previsao-do-tempo-vhf",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "previsao-do-tempo-vhf",
		})
	})

	httpapi.RegisterRoutes(app, pipeline, recorder)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}

	_ = os.Remove(cfg.ArtifactPath)
}
