package server

import (
	"railway/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type Options struct {
	Name         string
	CORSOrigins  string
	ErrorHandler fiber.ErrorHandler
	// Quiet disables the request log.
	Quiet bool
}

func NewApp(opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:           opts.Name,
		ReduceMemoryUsage: true,
		ErrorHandler:      opts.ErrorHandler,
		BodyLimit:         10 * 1024 * 1024,
	})

	app.Use(recover.New())
	if !opts.Quiet {
		app.Use(logger.New(logger.Config{
			Format: "[HTTP] ${time} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(cors.New(middleware.CORSConfig(opts.CORSOrigins)))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": opts.Name})
	})

	return app
}
