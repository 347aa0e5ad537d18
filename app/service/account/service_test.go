package account

import (
	"database/sql"
	"lineagemap/app/config"
	"lineagemap/app/service/dataset"
	"lineagemap/app/service/family"
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	dir := t.TempDir()

	samplesDir := filepath.Join(dir, "repo-samples")
	require.NoError(t, os.MkdirAll(samplesDir, 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(samplesDir, "stark.json"),
		[]byte(`{"people": [{"id": "p1", "name": "Eddard"}], "relationships": []}`),
		0644,
	))

	cfg := &config.Config{
		Data:    config.Data{Dir: dir},
		Samples: config.Samples{RepoDir: samplesDir, DefaultID: "stark"},
	}

	datasetSvc := dataset.NewWithLocations(
		dataset.NewDir(filepath.Join(dir, "samples")),
		[]dataset.Location{dataset.NewDir(samplesDir)},
		dataset.NewDir(dir),
	)

	db, err := sql.Open("sqlite", filepath.Join(dir, "users.db"))
	require.NoError(t, err)

	svc, err := newService(cfg, db, datasetSvc)
	require.NoError(t, err)

	t.Cleanup(func() { _ = svc.Shutdown() })

	return svc
}

func errCode(t *testing.T, err error) string {
	t.Helper()

	o, ok := oops.AsOops(err)
	require.True(t, ok, "expected an oops error, got %v", err)

	code, ok := o.Code().(string)
	require.True(t, ok, "expected a string error code, got %v", o.Code())

	return code
}

func TestRegister(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("Ned@Stark.example", "winterfell1")
	require.NoError(t, err)

	assert.Equal(t, "ned@stark.example", user.Email)
	assert.Equal(t, "ned", user.PublicSlug)
	assert.Equal(t, "me", user.State["family_id"])
	assert.FileExists(t, user.FamilyFile)

	graph, err := svc.Family(user.ID)
	require.NoError(t, err)
	assert.Len(t, graph.People, 2, "starter family has two blank people")
	assert.Empty(t, graph.Relationships)
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "longenough"},
		{"not an email", "nope", "longenough"},
		{"short password", "ned@stark.example", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.email, tt.password)

			require.Error(t, err)
			assert.Equal(t, CodeInvalidInput, errCode(t, err))
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Register("ned@stark.example", "winterfell1")
	require.NoError(t, err)

	_, err = svc.Register("ned@stark.example", "winterfell2")
	require.Error(t, err)
	assert.Equal(t, CodeEmailTaken, errCode(t, err))
}

func TestRegister_SlugCollision(t *testing.T) {
	svc := newTestService(t)

	first, err := svc.Register("arya@stark.example", "needle123")
	require.NoError(t, err)

	second, err := svc.Register("arya@faceless.example", "noone1234")
	require.NoError(t, err)

	assert.Equal(t, "arya", first.PublicSlug)
	assert.Equal(t, "arya-2", second.PublicSlug)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.Register("ned@stark.example", "winterfell1")
	require.NoError(t, err)

	user, err := svc.Authenticate("NED@stark.example", "winterfell1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, created.ID, user.ID)

	user, err = svc.Authenticate("ned@stark.example", "wrong-password")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.Authenticate("ghost@stark.example", "winterfell1")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestByID_Unknown(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.ByID(12345)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestPublicFamily(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("ned@stark.example", "winterfell1")
	require.NoError(t, err)

	_, found, err := svc.PublicFamily("ned")
	require.NoError(t, err)
	assert.False(t, found, "private by default")

	require.NoError(t, svc.SetPublic(user.ID, true))

	graph, found, err := svc.PublicFamily("ned")
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, graph.People, 2)

	_, found, err = svc.PublicFamily("nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSetState(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("ned@stark.example", "winterfell1")
	require.NoError(t, err)

	state := user.State
	state["family_id"] = "winterfell"
	require.NoError(t, svc.SetState(user.ID, state))

	reloaded, err := svc.ByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "winterfell", reloaded.State["family_id"])
}

func TestFamily_FallsBackToDefaultSample(t *testing.T) {
	svc := newTestService(t)

	graph, err := svc.Family(999)
	require.NoError(t, err)
	require.Len(t, graph.People, 1)
	assert.Equal(t, "p1", graph.People[0].ID())
}

func TestSaveFamilyRoundTrip(t *testing.T) {
	svc := newTestService(t)

	user, err := svc.Register("ned@stark.example", "winterfell1")
	require.NoError(t, err)

	graph := family.Graph{
		People:        []family.Person{{"id": "x", "name": "Lyanna"}},
		Relationships: []family.Relationship{},
	}

	require.NoError(t, svc.SaveFamily(user.ID, graph))

	loaded, err := svc.Family(user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.People, 1)
	assert.Equal(t, "Lyanna", loaded.People[0].Name())
}

func TestMigrate_AddsLegacyColumns(t *testing.T) {
	dir := t.TempDir()

	db, err := sql.Open("sqlite", filepath.Join(dir, "users.db"))
	require.NoError(t, err)

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`)
	require.NoError(t, err)

	cfg := &config.Config{
		Data:    config.Data{Dir: dir},
		Samples: config.Samples{RepoDir: dir, DefaultID: "stark"},
	}

	datasetSvc := dataset.NewWithLocations(
		dataset.NewDir(filepath.Join(dir, "samples")),
		[]dataset.Location{dataset.NewDir(dir)},
		dataset.NewDir(dir),
	)

	svc, err := newService(cfg, db, datasetSvc)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Shutdown() })

	user, err := svc.Register("old@db.example", "longenough")
	require.NoError(t, err)
	assert.Equal(t, "old", user.PublicSlug)
}
