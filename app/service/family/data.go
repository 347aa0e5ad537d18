package family

import (
	"fmt"
	"strconv"
)

// Person keeps whatever keys the source dataset used. Authors and export
// tools disagree on schema, so only a handful of keys are interpreted and
// everything else is carried along untouched.
type Person map[string]any

// Relationship is a directed parent -> child edge. After normalization the
// parentId/childId keys are authoritative; alternate spellings from the
// source record stay in the map but are no longer consulted.
type Relationship map[string]any

// Graph is the canonical dataset shape. Both slices are always non-nil.
type Graph struct {
	People        []Person       `json:"people"`
	Relationships []Relationship `json:"relationships"`
}

func NewGraph() Graph {
	return Graph{
		People:        []Person{},
		Relationships: []Relationship{},
	}
}

func (p Person) ID() string {
	return stringify(p["id"])
}

func (p Person) Name() string {
	if v, ok := p["name"]; ok && v != nil {
		return stringify(v)
	}

	return ""
}

func (p Person) Photo() string {
	if v, ok := p["photo"]; ok && v != nil {
		return stringify(v)
	}

	return ""
}

func (r Relationship) ParentID() string {
	return stringify(r["parentId"])
}

func (r Relationship) ChildID() string {
	return stringify(r["childId"])
}

// stringify coerces loosely-typed id values to strings. JSON numbers decode
// as float64, so integral ids like 7 must not come out as "7.000000".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
