// Package httpapi exposes the score ledger to the browser as a JSON API.
package httpapi

import (
	"context"
	"strings"

	"decryptzone/challenge"
	"decryptzone/identity"
	"decryptzone/render"
	"decryptzone/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// TokenVerifier turns a bearer token into a caller identity
type TokenVerifier interface {
	Verify(token string) (*identity.Identity, error)
}

// Config holds HTTP server settings
type Config struct {
	AllowedOrigins []string
}

// Server is the fiber application serving the ledger routes
type Server struct {
	app      *fiber.App
	ledger   service.LedgerService
	catalog  *challenge.Catalog
	renderer *render.LeaderboardRenderer
	verifier TokenVerifier
}

// NewServer builds the fiber app and registers every route
func NewServer(cfg Config, ledger service.LedgerService, catalog *challenge.Catalog, renderer *render.LeaderboardRenderer, verifier TokenVerifier) *Server {
	s := &Server{
		ledger:   ledger,
		catalog:  catalog,
		renderer: renderer,
		verifier: verifier,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "decryptzone",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	origins := strings.Join(cfg.AllowedOrigins, ",")
	if origins == "" {
		origins = "*"
	}

	s.app.Use(recover.New())
	s.app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	s.app.Use(accessLog())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		ExposeHeaders: "Content-Length, Content-Type, X-Request-ID",
		MaxAge:        86400,
	}))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := s.app.Group("/api", identityMiddleware(s.verifier))
	api.Post("/users/me", s.ensureUser)
	api.Get("/leaderboard", s.leaderboard)
	api.Get("/leaderboard.png", s.leaderboardImage)
	api.Post("/solves", s.submitSolve)
	api.Get("/progress", s.progress)
	api.Get("/challenges", s.challenges)
	api.Post("/challenges/:id/attempts", s.attempt)
}

// App exposes the underlying fiber app, used by tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves HTTP on addr until Shutdown is called
func (s *Server) Listen(addr string) error {
	log.WithField("addr", addr).Info("HTTP API listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
