package view

import (
	"lineagemap/app/service/family"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func person(kv ...any) family.Person {
	p := family.Person{}
	for i := 0; i+1 < len(kv); i += 2 {
		p[kv[i].(string)] = kv[i+1]
	}

	return p
}

func edge(parent, child string) family.Relationship {
	return family.Relationship{"parentId": parent, "childId": child}
}

func TestRoots_LinearChain(t *testing.T) {
	g := family.Graph{
		People: []family.Person{
			person("id", "a"), person("id", "b"), person("id", "c"),
		},
		Relationships: []family.Relationship{edge("a", "b"), edge("b", "c")},
	}

	roots := Roots(g)

	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID())
}

func TestRoots_NoRelationships(t *testing.T) {
	g := family.Graph{
		People: []family.Person{
			person("id", "a"), person("id", "b"), person("id", "c"),
		},
		Relationships: []family.Relationship{},
	}

	roots := Roots(g)

	require.Len(t, roots, 2)
	assert.Equal(t, "a", roots[0].ID())
	assert.Equal(t, "b", roots[1].ID())
}

func TestRoots_EveryoneIsAChild(t *testing.T) {
	g := family.Graph{
		People:        []family.Person{person("id", "a"), person("id", "b")},
		Relationships: []family.Relationship{edge("a", "b"), edge("b", "a")},
	}

	roots := Roots(g)

	require.Len(t, roots, 2, "degrades to the first people when no root exists")
	assert.Equal(t, "a", roots[0].ID())
}

func TestRoots_NumericIDsMatchStringEdges(t *testing.T) {
	g := family.Graph{
		People:        []family.Person{person("id", float64(1)), person("id", float64(2))},
		Relationships: []family.Relationship{edge("1", "2")},
	}

	roots := Roots(g)

	require.Len(t, roots, 1)
	assert.Equal(t, "1", roots[0].ID())
}

func TestTimeline(t *testing.T) {
	g := family.Graph{
		People: []family.Person{
			person("id", "1", "name", "Catelyn", "photo", "c.jpg"),
			person("id", "2", "name", "Arya"),
			person("id", "3", "name", "Bran", "photo", "b.jpg"),
			person("id", "4", "name", "Bran", "photo", "b2.jpg"),
			person("id", "5", "photo", "anon.jpg"),
		},
	}

	people := Timeline(g, 10)

	require.Len(t, people, 4, "people without a photo are skipped")
	assert.Equal(t, "5", people[0].ID(), "missing name sorts first")
	assert.Equal(t, "3", people[1].ID())
	assert.Equal(t, "4", people[2].ID(), "equal names keep original order")
	assert.Equal(t, "1", people[3].ID())
}

func TestTimeline_Truncates(t *testing.T) {
	g := family.Graph{
		People: []family.Person{
			person("id", "1", "name", "a", "photo", "x"),
			person("id", "2", "name", "b", "photo", "x"),
			person("id", "3", "name", "c", "photo", "x"),
		},
	}

	assert.Len(t, Timeline(g, 2), 2)
	assert.Empty(t, Timeline(g, 0))
}

func TestMapBackground(t *testing.T) {
	svc := &Service{
		backgrounds: map[string]string{
			"stark": "img/maps/westeros-parchment.jpg",
		},
		defaultBackground: "img/maps/world-parchment.jpg",
	}

	assert.Equal(t, "img/maps/westeros-parchment.jpg", svc.MapBackground("stark"))
	assert.Equal(t, "img/maps/westeros-parchment.jpg", svc.MapBackground(" STARK "))
	assert.Equal(t, "img/maps/world-parchment.jpg", svc.MapBackground("gupta"))
	assert.Equal(t, "img/maps/world-parchment.jpg", svc.MapBackground(""))
}

func TestNewTreePreview(t *testing.T) {
	g := family.Graph{
		People:        []family.Person{person("id", "a")},
		Relationships: []family.Relationship{},
	}

	preview := NewTreePreview(g)

	require.Len(t, preview.Parents, 1)
	assert.NotNil(t, preview.Children)
	assert.Empty(t, preview.Children)
}
