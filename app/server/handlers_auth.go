package server

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleRegister(c *fiber.Ctx) error {
	var req credentials
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}

	user, err := s.accountSvc.Register(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	sess.Set(userIDKey, user.ID)

	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "email": user.Email, "state": user.State})
}

func (s *Service) handleLogin(c *fiber.Ctx) error {
	var req credentials
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}

	user, err := s.accountSvc.Authenticate(req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "invalid email or password"})
	}

	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	sess.Set(userIDKey, user.ID)

	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "email": user.Email, "state": user.State})
}

func (s *Service) handleLogout(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	sess.Delete(userIDKey)

	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (s *Service) handleMe(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.currentUser(sess)
	if err != nil {
		return respondError(c, err)
	}

	if user == nil {
		return c.JSON(fiber.Map{"authenticated": false})
	}

	return c.JSON(fiber.Map{
		"authenticated": true,
		"email":         user.Email,
		"state":         user.State,
		"public_slug":   user.PublicSlug,
		"is_public":     user.IsPublic,
	})
}

func (s *Service) handleSetPublic(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.currentUser(sess)
	if err != nil {
		return respondError(c, err)
	}

	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "not authenticated"})
	}

	var req struct {
		IsPublic bool `json:"is_public"`
	}

	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}

	if err := s.accountSvc.SetPublic(user.ID, req.IsPublic); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "is_public": req.IsPublic, "public_slug": user.PublicSlug})
}

func (s *Service) handleSetState(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.currentUser(sess)
	if err != nil {
		return respondError(c, err)
	}

	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"ok": false, "error": "not authenticated"})
	}

	var req struct {
		FamilyID string `json:"family_id"`
	}

	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}

	state := user.State
	if req.FamilyID != "" {
		state["family_id"] = req.FamilyID
	}

	if err := s.accountSvc.SetState(user.ID, state); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true, "state": state})
}
