// Package api assembles the fiber application: middleware stack, versioned
// routes and graceful shutdown.
package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	v1 "github.com/pulsefeedhq/pulsefeed/internal/api/v1"
	"github.com/pulsefeedhq/pulsefeed/internal/auth"
	"github.com/pulsefeedhq/pulsefeed/internal/comments"
	"github.com/pulsefeedhq/pulsefeed/internal/config"
	"github.com/pulsefeedhq/pulsefeed/pkg/logger"
	storage "github.com/pulsefeedhq/pulsefeed/pkg/redis"
	"github.com/pulsefeedhq/pulsefeed/pkg/utils"
	"gorm.io/gorm"
)

// Deps collects everything route registration needs.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Logger   *logger.Logger
	Rclient  *storage.RedisClient
	Comments *comments.Service
}

// NewRoutes installs the middleware stack and registers all versioned routes
// on app.
func NewRoutes(ctx context.Context, app *fiber.App, d Deps) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(compress.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
	}))
	app.Use(logger.SetupLogger(d.Logger))
	app.Use(d.Logger.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.Success(c).WithMessage("ok").Send()
	})

	requireAuth := auth.RequireAuth(auth.Options{
		Secret:  d.Config.JWTSecret,
		Rclient: d.Rclient,
		Logger:  d.Logger,
	})

	validator := utils.NewValidator()
	commentsHandler := v1.NewCommentsHandler(d.Comments, validator, d.Logger)
	notificationsHandler := v1.NewNotificationsHandler(d.DB, d.Logger)

	api := app.Group("/api/v1")

	// Static segments before the :id wildcard; fiber matches in order.
	api.Get("/comments/post/:postId", commentsHandler.ListByPost)
	api.Get("/comments/replies/:parentId", commentsHandler.ListReplies)
	api.Get("/comments/:id", commentsHandler.Get)

	api.Post("/comments", requireAuth, commentsHandler.Create)
	api.Put("/comments/:id", requireAuth, commentsHandler.Modify)
	api.Delete("/comments/:id", requireAuth, commentsHandler.Delete)

	api.Get("/notifications", requireAuth, notificationsHandler.List)
	api.Put("/notifications/:id/read", requireAuth, notificationsHandler.MarkRead)

	go func() {
		<-ctx.Done()
		d.Logger.Info(context.Background()).Logs("Shutting down HTTP server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			d.Logger.Error(context.Background()).WithMeta(utils.Map{
				"error": err.Error(),
			}).Logs("Server shutdown failed")
		}
	}()
}
