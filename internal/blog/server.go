// Package blog serves the blog page, its posts as JSON and a couple of
// greeting endpoints.
package blog

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/static"
	"github.com/woxQAQ/hellofriend/internal/config"
	"go.uber.org/zap"
)

const (
	idleTimeout = 5 * time.Minute
	readTimeout = time.Minute
)

// Server is the blog HTTP server.
type Server struct {
	app      *fiber.App
	cfg      config.BlogConfig
	store    *Store
	renderer *Renderer
	logger   *zap.Logger
}

// NewServer creates a server and registers its routes.
func NewServer(cfg config.BlogConfig, logger *zap.Logger) *Server {
	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:     "hellofriend-blog",
			IdleTimeout: idleTimeout,
			ReadTimeout: readTimeout,
		}),
		cfg:      cfg,
		store:    NewStore(cfg.PostsDir),
		renderer: NewRenderer(cfg.Minify),
		logger:   logger.With(zap.String("component", "blog-server")),
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(s.requestLogger)
	s.app.Use(helmet.New())

	if s.cfg.AssetsDir != "" {
		s.app.Get("/assets/*", static.New(s.cfg.AssetsDir))
	}

	s.app.Get("/hello-hypertext", func(c fiber.Ctx) error {
		return c.SendString("Hello friend.")
	})
	s.app.Get("/blog/:name", s.handlePost)
	s.app.All("/", s.handleDefault)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	s.logger.Info("Blog server listening",
		zap.String("addr", s.cfg.Addr),
		zap.String("posts_dir", s.cfg.PostsDir),
	)
	return s.app.Listen(s.cfg.Addr, fiber.ListenConfig{DisableStartupMessage: true})
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// handlePost renders /blog/<name>, or returns the post itself for
// /blog/<name>.json.
func (s *Server) handlePost(c fiber.Ctx) error {
	name := c.Params("name")
	asJSON := strings.HasSuffix(name, PostExt)
	name = strings.TrimSuffix(name, PostExt)

	post, err := s.store.Load(name)
	if err != nil {
		var notFound *PostNotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).SendString(err.Error())
		}
		s.logger.Error("Failed to load post", zap.String("post", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	if asJSON {
		return c.JSON(post)
	}

	body, err := s.renderer.Render(post)
	if err != nil {
		s.logger.Error("Failed to render post", zap.String("post", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(body)
}

// handleDefault greets GET, echoes POST bodies escaped, and refuses the rest.
func (s *Server) handleDefault(c fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet:
		return c.SendString("Hello, friend.")
	case fiber.MethodPost:
		return c.SendString(fmt.Sprintf("Hello, %s!", html.EscapeString(string(c.Body()))))
	default:
		return c.SendStatus(fiber.StatusMethodNotAllowed)
	}
}

func (s *Server) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Debug("Request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return err
}
