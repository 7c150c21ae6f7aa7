package server

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"interview-agent/internal/candidate"
	"interview-agent/internal/interview"
	"interview-agent/internal/report"
)

const defaultBodyLimit = 50 * 1024 * 1024

// TextExtractor converts an uploaded document into plain text.
type TextExtractor interface {
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// ProfileParser structures raw resume text into a candidate profile. It never
// fails; extraction errors are carried inside the returned profile.
type ProfileParser interface {
	ParseResume(ctx context.Context, text string) *candidate.Profile
}

// Transcriber converts recorded audio into text, returning sentinel text on
// failure rather than an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) string
}

// Config holds the HTTP server settings.
type Config struct {
	// Listen is the address the server binds to, e.g. ":8080".
	Listen string
	// BodyLimit caps request body size in bytes. Audio uploads need room.
	BodyLimit int
}

// Deps aggregates everything the request handlers need.
type Deps struct {
	Store       *interview.Store
	Extractor   TextExtractor
	Profiles    ProfileParser
	Transcriber Transcriber
	Questions   interview.QuestionGenerator
	Reports     *report.Generator
	Logger      *zap.Logger
}

// Server is the HTTP front of the interview agent.
type Server struct {
	app    *fiber.App
	cfg    *Config
	deps   Deps
	logger *zap.Logger
}

// New builds the fiber application with all routes registered.
func New(cfg *Config, deps Deps) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config is required")
	}
	if deps.Store == nil || deps.Extractor == nil || deps.Profiles == nil ||
		deps.Transcriber == nil || deps.Questions == nil || deps.Reports == nil {
		return nil, errors.New("all server dependencies are required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bodyLimit := cfg.BodyLimit
	if bodyLimit <= 0 {
		bodyLimit = defaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:    app,
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}

	app.Use(fiberrecover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST",
	}))
	app.Use(s.requestLogger)

	app.Get("/", s.handleRoot)
	app.Post("/start-interview", s.handleStartInterview)
	app.Post("/submit-answer", s.handleSubmitAnswer)
	app.Post("/end-interview", s.handleEndInterview)

	return s, nil
}

// Listen serves requests until the listener fails or the server is shut down.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Listen)
}

// Shutdown drains in-flight requests within the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	return s.app.ShutdownWithTimeout(timeout)
}

// App exposes the underlying fiber application for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info("http request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("duration", time.Since(start)),
	)

	return err
}
