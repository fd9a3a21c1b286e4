package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"taskhub/backend/internal/api"
	"taskhub/backend/internal/config"
	"taskhub/backend/internal/worker"
)

const (
	reminderInterval = time.Hour
	cleanupInterval  = 6 * time.Hour
	shutdownTimeout  = 15 * time.Second
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("loading config", "error", err)
		os.Exit(1)
	}

	server, err := api.NewServer(cfg, logger)
	if err != nil {
		logger.Error("initializing server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	w := worker.New(worker.Config{
		RedisClient:  redisClient,
		Queues:       cfg.Worker.Queues,
		Logger:       logger,
		PollInterval: cfg.Worker.PollInterval,
	})
	w.RegisterHandler(worker.JobTypeTaskReminder, worker.TaskReminderHandler(server.DB(), logger))
	w.RegisterHandler(worker.JobTypeTokenCleanup, worker.TokenCleanupHandler(server.DB(), logger))
	w.Start(cfg.Worker.Concurrency)
	defer w.Stop()

	go scheduleJobs(ctx, worker.NewJobQueue(redisClient), logger)

	httpServer := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "env", cfg.Server.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

// scheduleJobs enqueues the recurring maintenance jobs until ctx is done.
func scheduleJobs(ctx context.Context, queue *worker.JobQueue, logger *slog.Logger) {
	reminderTicker := time.NewTicker(reminderInterval)
	cleanupTicker := time.NewTicker(cleanupInterval)
	defer reminderTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-reminderTicker.C:
			if err := queue.Enqueue("reminders", worker.JobTypeTaskReminder, nil); err != nil {
				logger.Error("enqueueing reminder job", "error", err)
			}
		case <-cleanupTicker.C:
			if err := queue.Enqueue("maintenance", worker.JobTypeTokenCleanup, nil); err != nil {
				logger.Error("enqueueing cleanup job", "error", err)
			}
		}
	}
}
