package server

import (
	"encoding/json"
	"lineagemap/app/service/family"
	"lineagemap/app/service/view"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/gofiber/fiber/v2"
)

// Landing cards show at most this many timeline entries.
const timelinePreviewLimit = 5

func (s *Service) handleSamples(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"samples": s.datasetSvc.ListAvailableIDs(),
		"default": s.cfg.Samples.DefaultID,
	})
}

func (s *Service) handleSampleTree(c *fiber.Ctx) error {
	id := strings.ToLower(strings.TrimSpace(c.Params("id")))

	if !pie.Contains(s.datasetSvc.ListAvailableIDs(), id) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "sample not found"})
	}

	graph, err := s.datasetSvc.LoadNormalized(id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(graph)
}

func (s *Service) handleMyTree(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.currentUser(sess)
	if err != nil {
		return respondError(c, err)
	}

	if user != nil && s.accountSvc.HasFamily(user.ID) {
		graph, err := s.accountSvc.Family(user.ID)
		if err != nil {
			return respondError(c, err)
		}

		return c.JSON(graph)
	}

	// not logged in or no saved family yet: demo dataset, session sticky
	demoID := s.demoSvc.Current(sessionAdapter{sess}, c.Query("sample"))

	if err := sess.Save(); err != nil {
		return respondError(c, err)
	}

	graph, err := s.datasetSvc.LoadNormalized(demoID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(graph)
}

func (s *Service) handleSaveMyTree(c *fiber.Ctx) error {
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

	var raw map[string]any
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"ok": false, "error": "invalid JSON body"})
	}

	if err := s.accountSvc.SaveFamily(user.ID, family.Normalize(raw)); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"ok": true})
}

func (s *Service) handleNamedTree(c *fiber.Ctx) error {
	graph, err := s.datasetSvc.LoadNamed(c.Params("name"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(graph)
}

func (s *Service) handlePublicTree(c *fiber.Ctx) error {
	graph, found, err := s.accountSvc.PublicFamily(c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}

	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	return c.JSON(graph)
}

func (s *Service) handlePreview(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.currentUser(sess)
	if err != nil {
		return respondError(c, err)
	}

	demoID := ""
	if user == nil {
		demoID = s.demoSvc.Current(sessionAdapter{sess}, c.Query("sample"))

		if err := sess.Save(); err != nil {
			return respondError(c, err)
		}
	}

	effective := demoID
	if effective == "" {
		effective = s.cfg.Samples.DefaultID
	}

	graph, err := s.datasetSvc.LoadNormalized(effective)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"samples":          s.datasetSvc.ListAvailableIDs(),
		"demo_sample":      demoID,
		"tree_preview":     view.NewTreePreview(graph),
		"timeline_preview": view.Timeline(graph, timelinePreviewLimit),
		"map_bg":           s.viewSvc.MapBackground(effective),
	})
}
