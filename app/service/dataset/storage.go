package dataset

import (
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

// Location is one place dataset files may live. Resolution order over a
// list of locations is the whole control flow of this service, so the
// capability is kept small enough to fake in tests.
type Location interface {
	Name() string
	Exists(file string) bool
	Read(file string) ([]byte, error)
	List() ([]string, error)
}

// WritableLocation additionally accepts seeded files.
type WritableLocation interface {
	Location
	Write(file string, data []byte) error
}

// Dir is a filesystem-backed location.
type Dir struct {
	path string
}

func NewDir(path string) Dir {
	return Dir{path: path}
}

func (d Dir) Name() string {
	return d.path
}

func (d Dir) Exists(file string) bool {
	info, err := os.Stat(filepath.Join(d.path, file))

	return err == nil && !info.IsDir()
}

func (d Dir) Read(file string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.path, file))
	if err != nil {
		return nil, oops.Errorf("failed to read %s: %w", file, err)
	}

	return data, nil
}

func (d Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, oops.Errorf("failed to list %s: %w", d.path, err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		names = append(names, entry.Name())
	}

	return names, nil
}

func (d Dir) Write(file string, data []byte) error {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return oops.Errorf("failed to create %s: %w", d.path, err)
	}

	if err := os.WriteFile(filepath.Join(d.path, file), data, 0644); err != nil {
		return oops.Errorf("failed to write %s: %w", file, err)
	}

	return nil
}
