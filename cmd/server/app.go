package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/pulsefeedhq/pulsefeed/internal/api"
	"github.com/pulsefeedhq/pulsefeed/internal/comments"
	"github.com/pulsefeedhq/pulsefeed/internal/config"
	"github.com/pulsefeedhq/pulsefeed/internal/db"
	"github.com/pulsefeedhq/pulsefeed/internal/models"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	storage "github.com/pulsefeedhq/pulsefeed/pkg/redis"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	log, err := logger.NewLogger(
		logger.WithAppName("pulsefeed"),
		logger.WithOutputDir("./logs"),
	)
	if err != nil {
		panic(err)
	}
	defer log.Close()

	rclient, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Redis connection failed")
		os.Exit(1)
	}
	defer rclient.Close(log)

	database, err := db.NewDB(ctx, cfg.DSN(), models.RegisterModels(), db.WithLogger(log))
	if err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Database connection failed")
		os.Exit(1)
	}
	defer db.CloseDB(log)

	store := comments.NewGormStore(database)
	directory := comments.NewGormDirectory(database)
	events := comments.NewNotificationSink(database, log)
	service := comments.NewService(store, directory, events, rclient)

	app := fiber.New(fiber.Config{
		AppName: "PulseFeed",
	})

	api.NewRoutes(ctx, app, api.Deps{
		Config:   cfg,
		DB:       database,
		Logger:   log,
		Rclient:  rclient,
		Comments: service,
	})

	log.Info(ctx).WithMeta(utils.Map{"addr": cfg.ServerAddr}).Logs("Starting HTTP server")
	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Error(ctx).WithMeta(utils.Map{"error": err.Error()}).Logs("Server stopped")
	}
}
