// Package server is the thin HTTP boundary: routing, sessions and
// error-to-status mapping. All logic lives in the services it calls.
package server

import (
	"context"
	"lineagemap/app/config"
	"lineagemap/app/service/account"
	"lineagemap/app/service/dataset"
	"lineagemap/app/service/demo"
	"lineagemap/app/service/view"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/samber/do"
	"github.com/samber/oops"
)

const userIDKey = "user_id"

type Service struct {
	cfg        *config.Config
	app        *fiber.App
	sessions   *session.Store
	datasetSvc *dataset.Service
	demoSvc    *demo.Service
	viewSvc    *view.Service
	accountSvc *account.Service
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg: do.MustInvoke[*config.Config](di),
		sessions: session.New(session.Config{
			KeyLookup:      "cookie:lineagemap_session",
			CookieHTTPOnly: true,
		}),
		datasetSvc: do.MustInvoke[*dataset.Service](di),
		demoSvc:    do.MustInvoke[*demo.Service](di),
		viewSvc:    do.MustInvoke[*view.Service](di),
		accountSvc: do.MustInvoke[*account.Service](di),
	}

	app := fiber.New(fiber.Config{
		AppName:               "lineagemap",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())

	api := app.Group("/api")

	api.Get("/samples", s.handleSamples)
	api.Get("/sample/:id/tree", s.handleSampleTree)
	api.Get("/tree/me", s.handleMyTree)
	api.Put("/tree/me", s.handleSaveMyTree)
	api.Get("/tree/:name", s.handleNamedTree)
	api.Get("/public/:slug/tree", s.handlePublicTree)
	api.Get("/preview", s.handlePreview)

	api.Post("/register", s.handleRegister)
	api.Post("/login", s.handleLogin)
	api.Post("/logout", s.handleLogout)
	api.Get("/me", s.handleMe)
	api.Post("/me/public", s.handleSetPublic)
	api.Post("/me/state", s.handleSetState)

	s.app = app

	return s, nil
}

func (s *Service) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()

		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			slog.Warn("HTTP shutdown error", "error", err)
		}
	}()

	slog.Info("HTTP API listening", "addr", s.cfg.Server.Listen)

	if err := s.app.Listen(s.cfg.Server.Listen); err != nil {
		slog.Error("HTTP server stopped", "error", err)
	}
}

// sessionAdapter exposes a fiber session as the flat string store the demo
// policy works against.
type sessionAdapter struct {
	sess *session.Session
}

func (a sessionAdapter) Get(key string) string {
	if v, ok := a.sess.Get(key).(string); ok {
		return v
	}

	return ""
}

func (a sessionAdapter) Set(key, value string) {
	a.sess.Set(key, value)
}

func (s *Service) session(c *fiber.Ctx) (*session.Session, error) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil, oops.Errorf("failed to load session: %w", err)
	}

	return sess, nil
}

func (s *Service) currentUser(sess *session.Session) (*account.User, error) {
	uid, ok := sess.Get(userIDKey).(int64)
	if !ok {
		return nil, nil
	}

	return s.accountSvc.ByID(uid)
}

// respondError maps service error codes to HTTP statuses. Everything
// without a known code is an internal error and gets logged.
func respondError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal error"

	if o, ok := oops.AsOops(err); ok {
		switch o.Code() {
		case dataset.CodeNotFound:
			status = fiber.StatusNotFound
			message = o.Error()
		case dataset.CodeDegenerate:
			status = fiber.StatusInternalServerError
			message = o.Error()
		case account.CodeInvalidInput:
			status = fiber.StatusBadRequest
			message = o.Error()
		case account.CodeEmailTaken:
			status = fiber.StatusConflict
			message = o.Error()
		}
	}

	if status == fiber.StatusInternalServerError {
		slog.Error("Request failed", "path", c.Path(), "error", err)
	}

	return c.Status(status).JSON(fiber.Map{"ok": false, "error": message})
}
