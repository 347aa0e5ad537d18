// Package account keeps the user registry (sqlite) and per-user family
// documents (JSON files under the data dir).
package account

import (
	"database/sql"
	"encoding/json"
	"errors"
	"lineagemap/app/config"
	"lineagemap/app/service/dataset"
	"lineagemap/app/service/family"
	"lineagemap/app/service/slug"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// Error codes for request-level failures, surfaced to users as messages.
const (
	CodeInvalidInput = "invalid_input"
	CodeEmailTaken   = "email_taken"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  family_file TEXT NOT NULL DEFAULT '',
  public_slug TEXT NOT NULL DEFAULT '',
  is_public INTEGER NOT NULL DEFAULT 0,
  state_json TEXT NOT NULL DEFAULT '{}',
  created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// Columns added after the first release; old databases get them via ALTER.
var legacyColumns = map[string]string{
	"family_file": "TEXT NOT NULL DEFAULT ''",
	"public_slug": "TEXT NOT NULL DEFAULT ''",
	"is_public":   "INTEGER NOT NULL DEFAULT 0",
	"state_json":  "TEXT NOT NULL DEFAULT '{}'",
}

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	cfg        *config.Config
	db         *sql.DB
	validate   *validator.Validate
	datasetSvc *dataset.Service
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if err := os.MkdirAll(filepath.Dir(cfg.DB.Path), 0755); err != nil {
		return nil, oops.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DB.Path)
	if err != nil {
		return nil, oops.Errorf("failed to open users db: %w", err)
	}

	return newService(cfg, db, do.MustInvoke[*dataset.Service](di))
}

func newService(cfg *config.Config, db *sql.DB, datasetSvc *dataset.Service) (*Service, error) {
	s := &Service{
		cfg:        cfg,
		db:         db,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		datasetSvc: datasetSvc,
	}

	if err := s.migrate(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Service) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return oops.Errorf("failed to create users table: %w", err)
	}

	rows, err := s.db.Query(`PRAGMA table_info(users)`)
	if err != nil {
		return oops.Errorf("failed to inspect users table: %w", err)
	}
	defer rows.Close()

	have := map[string]bool{}

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, colType    string
			dflt             sql.NullString
		)

		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return oops.Errorf("failed to scan table info: %w", err)
		}

		have[name] = true
	}

	if err := rows.Err(); err != nil {
		return oops.Errorf("failed to read table info: %w", err)
	}

	for col, ddl := range legacyColumns {
		if have[col] {
			continue
		}

		if _, err := s.db.Exec(`ALTER TABLE users ADD COLUMN ` + col + ` ` + ddl); err != nil {
			return oops.Errorf("failed to add column %s: %w", col, err)
		}
	}

	return nil
}

// Register creates an account with a unique public slug derived from the
// email's local part, and seeds its starter family file.
func (s *Service) Register(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.validate.Var(email, "required,email,max=254"); err != nil {
		return nil, oops.Code(CodeInvalidInput).Errorf("please enter a valid email")
	}

	if len(password) < 8 {
		return nil, oops.Code(CodeInvalidInput).Errorf("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, oops.Errorf("failed to hash password: %w", err)
	}

	base, _, _ := strings.Cut(email, "@")
	publicSlug := slug.Unique(base, s.slugTaken)

	state := map[string]any{"family_id": "me"}
	stateJSON, _ := json.Marshal(state)

	res, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, public_slug, state_json) VALUES (?, ?, ?, ?)`,
		email, string(hash), publicSlug, string(stateJSON),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, oops.Code(CodeEmailTaken).Errorf("that email is already registered")
		}

		return nil, oops.Errorf("failed to insert user: %w", err)
	}

	uid, err := res.LastInsertId()
	if err != nil {
		return nil, oops.Errorf("insert failed, no row id: %w", err)
	}

	path, err := s.ensureStarterFamily(uid)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.Exec(`UPDATE users SET family_file = ? WHERE id = ?`, path, uid); err != nil {
		return nil, oops.Errorf("failed to record family file: %w", err)
	}

	return &User{
		ID:         uid,
		Email:      email,
		FamilyFile: path,
		PublicSlug: publicSlug,
		State:      state,
	}, nil
}

// Authenticate returns the matching user, or nil when the credentials do
// not match any account.
func (s *Service) Authenticate(email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, nil
	}

	var (
		id   int64
		hash string
	)

	err := s.db.QueryRow(`SELECT id, password_hash FROM users WHERE email = ?`, email).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Errorf("failed to query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, nil
	}

	return s.ByID(id)
}

// ByID returns the user, or nil when the id references no account.
func (s *Service) ByID(id int64) (*User, error) {
	var (
		user      User
		isPublic  int
		stateJSON string
	)

	err := s.db.QueryRow(
		`SELECT id, email, family_file, public_slug, is_public, state_json FROM users WHERE id = ?`, id,
	).Scan(&user.ID, &user.Email, &user.FamilyFile, &user.PublicSlug, &isPublic, &stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, oops.Errorf("failed to query user: %w", err)
	}

	user.IsPublic = isPublic == 1

	user.State = map[string]any{}
	if err := json.Unmarshal([]byte(stateJSON), &user.State); err != nil {
		// state is advisory, a corrupted blob resets to empty
		user.State = map[string]any{}
	}

	return &user, nil
}

func (s *Service) SetPublic(id int64, public bool) error {
	flag := 0
	if public {
		flag = 1
	}

	if _, err := s.db.Exec(`UPDATE users SET is_public = ? WHERE id = ?`, flag, id); err != nil {
		return oops.Errorf("failed to update visibility: %w", err)
	}

	return nil
}

func (s *Service) SetState(id int64, state map[string]any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return oops.Errorf("failed to encode state: %w", err)
	}

	if _, err := s.db.Exec(`UPDATE users SET state_json = ? WHERE id = ?`, string(data), id); err != nil {
		return oops.Errorf("failed to update state: %w", err)
	}

	return nil
}

// PublicFamily resolves a public slug to its family graph. found is false
// when the slug is unknown or the owner has not made the page public.
func (s *Service) PublicFamily(slugText string) (family.Graph, bool, error) {
	safe := slug.Make(slugText)

	var (
		id       int64
		isPublic int
	)

	err := s.db.QueryRow(`SELECT id, is_public FROM users WHERE public_slug = ?`, safe).Scan(&id, &isPublic)
	if errors.Is(err, sql.ErrNoRows) {
		return family.NewGraph(), false, nil
	}
	if err != nil {
		return family.NewGraph(), false, oops.Errorf("failed to query slug: %w", err)
	}

	if isPublic != 1 {
		return family.NewGraph(), false, nil
	}

	graph, err := s.Family(id)

	return graph, err == nil, err
}

func (s *Service) slugTaken(candidate string) bool {
	var one int

	return s.db.QueryRow(`SELECT 1 FROM users WHERE public_slug = ?`, candidate).Scan(&one) == nil
}

func (s *Service) Shutdown() error {
	return s.db.Close()
}
