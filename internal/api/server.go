// Package api exposes coverage lookups over HTTP.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Server is the public HTTP server.
type Server struct {
	app     *fiber.App
	log     *slog.Logger
	handler *Handler
}

// NewServer builds the fiber application with its middlewares and routes.
func NewServer(svc CoverageService, log *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "cellmap",
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	s := &Server{app: app, log: log, handler: NewHandler(svc, log)}
	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddlewares() {
	s.app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	s.app.Use(requestLogger(s.log))
	s.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
	}))
	s.app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
}

func (s *Server) setupRoutes() {
	s.app.Get("/ping", s.handler.Ping)

	api := s.app.Group("/api/v1")
	api.Get("/coverage", s.handler.Coverage)
	api.All("/coverage", s.handler.MethodNotAllowed)
	api.Get("/operators", s.handler.Operators)
	api.All("/operators", s.handler.MethodNotAllowed)
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info("Starting HTTP server", "address", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.InfoContext(ctx, "Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := toAppError(err)
		if appErr == ErrInternalServer {
			log.ErrorContext(c.UserContext(), "HTTP Error", "path", c.Path(), "error", err)
		}
		return sendError(c, appErr)
	}
}

func requestLogger(log *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		log.DebugContext(c.UserContext(), "HTTP request",
			"method", c.Method(),
			"path", c.Path(),
			"status", c.Response().StatusCode(),
			"duration", time.Since(start))
		return err
	}
}
