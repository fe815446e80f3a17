package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cadence_engine/internal/app"
	"cadence_engine/internal/infra/config"
	idb "cadence_engine/internal/infra/database"
	"cadence_engine/internal/infra/logger"
	"cadence_engine/internal/infra/scheduler"
)

func main() {
	fmt.Println("Cadence generation engine starting...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg)
	log := logger.Get()
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, MeetingWindowDays: %d",
		cfg.LogLevel, cfg.Environment, cfg.MeetingWindowDays)

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully.")

	// Initialize Repositories
	okrRepo := idb.NewPostgresOKRRepository(db)
	orgRepo := idb.NewPostgresOrgRepository(db)
	meetingRepo := idb.NewPostgresMeetingRepository(db)
	taskRepo := idb.NewPostgresTaskRepository(db)
	activityLog := idb.NewPostgresActivityLog(db)
	log.Info("Repositories initialized.")

	// Initialize Services
	meetingService := app.NewMeetingServiceImpl(okrRepo, meetingRepo, log)
	taskService := app.NewRecurringTaskServiceImpl(taskRepo, okrRepo, orgRepo, activityLog, log)
	log.Info("Generation services initialized.")

	// Initialize GenerationScheduler
	genScheduler := scheduler.NewGenerationScheduler(
		meetingService,
		taskService,
		orgRepo,
		okrRepo,
		log,
		cfg.CronSpecMeetingSweep,
		cfg.CronSpecTaskSweep,
		cfg.MeetingWindowDays,
	)
	genScheduler.Start()

	log.Info("Application setup complete. Scheduler is running.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit // Block until a signal is received

	log.Info("Shutting down application...")
	genScheduler.Stop()
	// db.Close() is handled by defer
	log.Info("Application shut down gracefully.")
}
