package account

import (
	"encoding/json"
	"errors"
	"lineagemap/app/service/family"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

func (s *Service) familyPath(uid int64) string {
	return filepath.Join(s.cfg.Data.Dir, "families", strconv.FormatInt(uid, 10), "family.json")
}

// HasFamily reports whether the user has a stored family document.
func (s *Service) HasFamily(uid int64) bool {
	_, err := os.Stat(s.familyPath(uid))

	return err == nil
}

// Family loads the user's family document, falling back to the default
// demo dataset when the user has none yet.
func (s *Service) Family(uid int64) (family.Graph, error) {
	data, err := os.ReadFile(s.familyPath(uid))
	if errors.Is(err, os.ErrNotExist) {
		return s.datasetSvc.LoadNormalized(s.cfg.Samples.DefaultID)
	}
	if err != nil {
		return family.NewGraph(), oops.Errorf("failed to read family file: %w", err)
	}

	return family.Decode(data)
}

// SaveFamily persists the user's family document as canonical JSON.
func (s *Service) SaveFamily(uid int64, graph family.Graph) error {
	path := s.familyPath(uid)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return oops.Errorf("failed to create family dir: %w", err)
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return oops.Errorf("failed to encode family: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.Errorf("failed to write family file: %w", err)
	}

	return nil
}

func (s *Service) ensureStarterFamily(uid int64) (string, error) {
	path := s.familyPath(uid)

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", oops.Errorf("failed to create family dir: %w", err)
	}

	data, err := json.MarshalIndent(starterFamily(), "", "  ")
	if err != nil {
		return "", oops.Errorf("failed to encode starter family: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", oops.Errorf("failed to write starter family: %w", err)
	}

	return path, nil
}

// starterFamily is the two-person blank dataset every new account begins
// with.
func starterFamily() map[string]any {
	return map[string]any{
		"meta": map[string]any{
			"family_name": "My Family",
			"created_at":  time.Now().UTC().Format(time.RFC3339),
			"starter":     true,
		},
		"people":        []any{blankPerson(), blankPerson()},
		"relationships": []any{},
	}
}

func blankPerson() map[string]any {
	return map[string]any{
		"id":    "p_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:6],
		"name":  "",
		"born":  "",
		"died":  "",
		"photo": "",
		"location": map[string]any{
			"city":    "",
			"region":  "",
			"country": "",
		},
		"events": []any{},
	}
}
