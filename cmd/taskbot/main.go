package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskbot/internal/config"
	"taskbot/internal/files"
	"taskbot/internal/projects"
	"taskbot/internal/schedule"
	"taskbot/internal/server"
	"taskbot/internal/slack"
	"taskbot/internal/storage/jsonstore"
	"taskbot/internal/tasks"
	"taskbot/internal/team"
	"taskbot/internal/util"
	"taskbot/internal/weather"
)

func main() {
	configFlag := flag.String("config", util.EnvOrDefault("TASKBOT_CONFIG", "taskbot.yaml"), "Path to YAML config file")
	addrFlag := flag.String("addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configFlag)
	if err != nil {
		logger.Error("unable to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if *addrFlag != "" {
		cfg.Addr = *addrFlag
	}

	store, err := jsonstore.Open(cfg.DataFile, logger)
	if err != nil {
		logger.Error("unable to open data file", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("state loaded", slog.String("path", store.Path()))

	slackClient := slack.NewClient(cfg.Slack.BotToken, logger)
	weatherClient := weather.NewClient(cfg.Weather.APIKey, logger)

	sched := schedule.New(logger)
	if err := schedule.RegisterStandups(sched, slackClient, cfg.Standup.Channel, cfg.Standup.Hour, cfg.Standup.Minute, logger); err != nil {
		logger.Error("unable to register standups", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sched.Start()

	srv := server.New(server.Deps{
		Config:   cfg,
		Store:    store,
		Tasks:    tasks.NewManager(store, logger),
		Projects: projects.NewManager(store, logger),
		Team:     team.NewManager(store, slackClient, logger),
		Files:    files.NewManager(store, logger),
		Schedule: schedule.NewManager(store, sched, slackClient, logger),
		Platform: slackClient,
		Weather:  weatherClient,
		Logger:   logger,
	})

	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	sched.Stop()

	logger.Info("server stopped")
}
