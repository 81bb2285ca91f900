package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"refdata-manager/core/config"
	"refdata-manager/core/database"
	"refdata-manager/core/events"
	"refdata-manager/core/loader"
	"refdata-manager/core/logger"
	"refdata-manager/core/middleware/auth"
	"refdata-manager/core/middleware/rayid"
	"refdata-manager/core/reconcile"
	"refdata-manager/core/storage"
	"refdata-manager/core/store"

	"refdata-manager/feature/counterparties"
	"refdata-manager/feature/ingest"
	"refdata-manager/feature/securities"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reference data manager server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to the entity store. Nothing works without it.
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := store.Migrate(db); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}
		if err := database.VerifySchema(db); err != nil {
			logg.Warn("Schema verification failed", zap.Error(err))
		}
		entityStore := store.NewStore(db, logg)

		// 4. Storage is optional: without it, batch files cannot be pulled
		// from the bucket but the record API still works.
		var client storage.Client
		if c, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Storage client unavailable, bucket ingestion disabled", zap.Error(err))
		} else {
			client = c
		}

		// 5. Change-event publication: buffered queue drained by a
		// background worker into the configured sink.
		queue := events.NewQueue(cfg.Events)
		worker := events.NewWorker(events.NewLogSink(logg), queue.Events(), logg)
		workerCtx, stopWorker := context.WithCancel(context.Background())
		workerDone := make(chan struct{})
		go func() {
			defer close(workerDone)
			_ = worker.Run(workerCtx)
		}()

		// 6. The resolution engine itself.
		engine := reconcile.NewService(reconcile.DefaultPolicy(), entityStore, queue, logg)

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 8. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(securities.NewFeature(engine, entityStore, logg))
		mgr.Register(counterparties.NewFeature(engine, entityStore, logg))
		runner := ingest.NewRunner(engine, cfg.Ingest.Workers, logg)
		mgr.Register(ingest.NewFeature(ingest.NewService(client, cfg.Storage.Bucket, runner, logg)))

		// Middleware Registration
		// RayID must be first so every request is traceable.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Health stays public; everything behind it needs the API key.
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})

		app.Use(auth.New(cfg.Server.ApiKey))

		if err := mgr.LoadAll(app, logg); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()

		// The server is down, so nothing publishes anymore; stop the worker
		// and wait for it to flush the queued events.
		stopWorker()
		<-workerDone
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
