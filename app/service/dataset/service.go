package dataset

import (
	"lineagemap/app/config"
	"lineagemap/app/service/family"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

// Error codes attached to oops errors so the boundary layer can tell a
// typo'd dataset id apart from a present-but-unusable document.
const (
	CodeNotFound   = "dataset_not_found"
	CodeDegenerate = "dataset_degenerate"
)

// Service resolves demo datasets by probing an ordered list of storage
// locations. The writable cache comes first so a one-time seeding is
// observed on later lookups, then the shipped samples, then legacy spots.
type Service struct {
	cache   WritableLocation
	origins []Location
	data    Location
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	cacheDir := filepath.Join(cfg.Data.Dir, "samples")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, oops.Errorf("failed to create samples cache dir: %w", err)
	}

	origins := []Location{NewDir(cfg.Samples.RepoDir)}
	for _, dir := range cfg.Samples.LegacyDirs {
		origins = append(origins, NewDir(dir))
	}

	s := NewWithLocations(NewDir(cacheDir), origins, NewDir(cfg.Data.Dir))

	if err := s.SeedIfMissing(); err != nil {
		return nil, oops.Errorf("failed to seed samples: %w", err)
	}

	return s, nil
}

// NewWithLocations wires explicit locations; tests use in-memory ones.
// origins[0] is treated as the canonical shipped-samples source for
// seeding, data holds free-form named family files.
func NewWithLocations(cache WritableLocation, origins []Location, data Location) *Service {
	return &Service{
		cache:   cache,
		origins: origins,
		data:    data,
	}
}

// Candidates returns every location probed for id, in fixed priority
// order. Recomputed per call, never cached.
func (s *Service) Candidates(id string) []Location {
	all := make([]Location, 0, len(s.origins)+1)
	all = append(all, s.cache)
	all = append(all, s.origins...)

	return all
}

// LoadRaw returns the document from the first location holding it. The
// returned error lists every probed location for diagnostics.
func (s *Service) LoadRaw(id string) ([]byte, error) {
	file := sampleFile(id)

	for _, loc := range s.Candidates(id) {
		if !loc.Exists(file) {
			continue
		}

		return loc.Read(file)
	}

	probed := pie.Map(s.Candidates(id), Location.Name)

	return nil, oops.
		Code(CodeNotFound).
		With("probed", probed).
		Errorf("sample %q not found, looked in: %s", id, strings.Join(probed, ", "))
}

// LoadNormalized resolves and canonicalizes a dataset. A document that
// normalizes to zero people is reported as degenerate, distinct from a
// missing one.
func (s *Service) LoadNormalized(id string) (family.Graph, error) {
	data, err := s.LoadRaw(id)
	if err != nil {
		return family.NewGraph(), err
	}

	graph, err := family.Decode(data)
	if err != nil {
		return graph, err
	}

	if len(graph.People) == 0 {
		return graph, oops.
			Code(CodeDegenerate).
			Errorf("sample %q loaded but produced 0 people, check JSON schema/keys", id)
	}

	return graph, nil
}

// ListAvailableIDs unions dataset ids across every location, lowercased
// and deduplicated. Locations that cannot be listed contribute nothing.
func (s *Service) ListAvailableIDs() []string {
	all := s.Candidates("")
	found := make([][]string, len(all))

	var g errgroup.Group

	for i, loc := range all {
		g.Go(func() error {
			files, err := loc.List()
			if err != nil {
				slog.Debug("Skipping unlistable location", "location", loc.Name(), "error", err)
				return nil
			}

			found[i] = files

			return nil
		})
	}

	_ = g.Wait()

	ids := []string{}

	for _, files := range found {
		for _, f := range files {
			if !strings.EqualFold(filepath.Ext(f), ".json") {
				continue
			}

			ids = append(ids, strings.ToLower(strings.TrimSuffix(f, filepath.Ext(f))))
		}
	}

	return pie.Sort(pie.Unique(ids))
}

// SeedIfMissing copies shipped samples absent from the writable cache.
// Copy-if-absent is idempotent and safe to race: a duplicate copy rewrites
// identical content.
func (s *Service) SeedIfMissing() error {
	if len(s.origins) == 0 {
		return nil
	}

	repo := s.origins[0]

	files, err := repo.List()
	if err != nil {
		// Shipped samples are optional, a missing repo dir is fine.
		return nil
	}

	seeded := 0

	for _, f := range files {
		if !strings.EqualFold(filepath.Ext(f), ".json") || s.cache.Exists(f) {
			continue
		}

		data, err := repo.Read(f)
		if err != nil {
			return oops.Errorf("failed to read shipped sample %s: %w", f, err)
		}

		if err := s.cache.Write(f, data); err != nil {
			return oops.Errorf("failed to seed sample %s: %w", f, err)
		}

		seeded++
	}

	if seeded > 0 {
		slog.Info("Seeded samples into cache", "count", seeded)
	}

	return nil
}

// LoadNamed resolves a free-form family name against the data dir,
// preferring the family_<name>.json convention over bare <name>.json.
func (s *Service) LoadNamed(name string) (family.Graph, error) {
	safe := safeName(name)

	candidates := []string{"family_" + safe + ".json", safe + ".json"}

	for _, file := range candidates {
		if !s.data.Exists(file) {
			continue
		}

		data, err := s.data.Read(file)
		if err != nil {
			return family.NewGraph(), err
		}

		return family.Decode(data)
	}

	return family.NewGraph(), oops.
		Code(CodeNotFound).
		With("probed", candidates).
		Errorf("family %q not found, expected file %s", name, candidates[0])
}

func sampleFile(id string) string {
	if strings.HasSuffix(id, ".json") {
		return id
	}

	return id + ".json"
}

// safeName keeps only characters that cannot escape the data dir.
func safeName(name string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}
