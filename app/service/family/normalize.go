package family

import (
	"encoding/json"

	"github.com/samber/oops"
)

// Key spellings seen in the wild, in resolution order. Graph-flavored
// exports use source/target, older ones parent/child.
var (
	parentKeys = []string{"parentId", "parent", "sourceId", "source"}
	childKeys  = []string{"childId", "child", "targetId", "target"}

	peopleKeys       = []string{"people", "persons", "nodes"}
	relationshipKeys = []string{"relationships", "edges", "links"}
)

// NormalizeRelationships maps arbitrary relationship records to the
// canonical parentId/childId pair. It filters rather than validates:
// non-list input yields an empty slice, non-map elements and records with
// a missing endpoint are dropped silently. Order is preserved and
// duplicates are kept.
func NormalizeRelationships(raw any) []Relationship {
	out := []Relationship{}

	list, ok := raw.([]any)
	if !ok {
		return out
	}

	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}

		parent, ok := firstPresent(m, parentKeys)
		if !ok {
			continue
		}

		child, ok := firstPresent(m, childKeys)
		if !ok {
			continue
		}

		rel := make(Relationship, len(m))
		for k, v := range m {
			rel[k] = v
		}

		rel["parentId"] = stringify(parent)
		rel["childId"] = stringify(child)

		out = append(out, rel)
	}

	return out
}

// Normalize reduces a decoded payload of any supported vintage to the
// canonical graph shape. It never fails: wrong-typed or missing containers
// degrade to empty slices.
func Normalize(raw map[string]any) Graph {
	g := NewGraph()

	if raw == nil {
		return g
	}

	if people, ok := firstPresent(raw, peopleKeys); ok {
		if list, ok := people.([]any); ok {
			for _, item := range list {
				if m, ok := item.(map[string]any); ok {
					g.People = append(g.People, Person(m))
				}
			}
		}
	}

	if rels, ok := firstPresent(raw, relationshipKeys); ok {
		g.Relationships = NormalizeRelationships(rels)
	}

	return g
}

// Decode parses a stored family document and normalizes it. Documents
// written before the canonical schema (nodes/links at the top level) decode
// to the same graph as their canonical equivalent.
func Decode(data []byte) (Graph, error) {
	var raw map[string]any

	if err := json.Unmarshal(data, &raw); err != nil {
		return NewGraph(), oops.Errorf("failed to parse family document: %w", err)
	}

	return Normalize(raw), nil
}

// firstPresent returns the value of the first key that is present with a
// non-nil value.
func firstPresent(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}

	return nil, false
}
