// Package view derives read-only preview views from a normalized graph.
package view

import (
	"lineagemap/app/config"
	"lineagemap/app/service/family"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

// Landing previews show at most two lineage starting points.
const rootPreviewLimit = 2

// TreePreview is the landing-card payload. Children stays empty, the
// full tree is rendered client-side from the graph itself.
type TreePreview struct {
	Parents  []family.Person `json:"parents"`
	Children []family.Person `json:"children"`
}

type Service struct {
	backgrounds       map[string]string
	defaultBackground string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	backgrounds := make(map[string]string, len(cfg.Maps.Backgrounds))
	for id, asset := range cfg.Maps.Backgrounds {
		backgrounds[strings.ToLower(id)] = asset
	}

	return &Service{
		backgrounds:       backgrounds,
		defaultBackground: cfg.Maps.DefaultBackground,
	}, nil
}

// MapBackground returns the background asset for a dataset,
// case-insensitively, falling back to the shared default.
func (s *Service) MapBackground(datasetID string) string {
	sid := strings.ToLower(strings.TrimSpace(datasetID))

	if asset, ok := s.backgrounds[sid]; ok {
		return asset
	}

	return s.defaultBackground
}

// Roots returns up to two people with no recorded parent, in original
// order. A graph without lineage data degrades to its first two people so
// previews never come up blank.
func Roots(g family.Graph) []family.Person {
	childIDs := make(map[string]struct{}, len(g.Relationships))

	for _, rel := range g.Relationships {
		if id := rel.ChildID(); id != "" {
			childIDs[id] = struct{}{}
		}
	}

	roots := pie.Filter(g.People, func(p family.Person) bool {
		_, isChild := childIDs[p.ID()]
		return !isChild
	})

	if len(roots) == 0 {
		roots = g.People
	}

	if len(roots) > rootPreviewLimit {
		roots = roots[:rootPreviewLimit]
	}

	return roots
}

// NewTreePreview wraps Roots in the shape the landing card expects.
func NewTreePreview(g family.Graph) TreePreview {
	return TreePreview{
		Parents:  Roots(g),
		Children: []family.Person{},
	}
}

// Timeline returns people that have a photo, sorted by name ascending
// (stable, so equal names keep their original relative order), truncated
// to limit.
func Timeline(g family.Graph, limit int) []family.Person {
	people := pie.Filter(g.People, func(p family.Person) bool {
		return p.Photo() != ""
	})

	people = pie.SortStableUsing(people, func(a, b family.Person) bool {
		return a.Name() < b.Name()
	})

	if limit >= 0 && len(people) > limit {
		people = people[:limit]
	}

	return people
}
