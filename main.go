// main.go
package main

import (
	"log"

	"car-rental/cmd"
	"car-rental/internal/data/repository"
	"car-rental/internal/jobs"
	"car-rental/internal/notify"
	"car-rental/internal/storage"
	"car-rental/internal/wire"
	"car-rental/pkg/cache"
	"car-rental/pkg/database"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Redis is optional; a nil client disables the stats cache
	redisClient := cache.NewRedisClient(config.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Event notifier; fall back to a no-op when the broker is absent
	var notifier notify.Notifier = notify.NopNotifier{}
	if config.AMQP.URL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(config.AMQP.URL, logger)
		if err != nil {
			logger.Warn("AMQP unreachable, event notifications disabled", zap.Error(err))
		} else {
			defer amqpNotifier.Close()
			notifier = amqpNotifier
		}
	}

	// Receipt storage on local disk
	receipts, err := storage.NewLocalReceiptStore(config.Uploads.ReceiptDir, config.App.BaseURL, logger)
	if err != nil {
		logger.Fatal("Failed to init receipt store", zap.Error(err))
	}

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Wire all dependencies
	app := wire.Wiring(repos, config, notifier, receipts, redisClient, logger)

	// Recurring sweeps (overdue returns)
	scheduler := jobs.NewScheduler(app.Service.Booking, logger)
	scheduler.Start()
	defer scheduler.Stop()

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port, logger)
}
