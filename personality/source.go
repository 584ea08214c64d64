package personality

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/randool/chatmesh/core"
)

// Source provides named, immutable personality templates.
type Source interface {
	// Get returns the template content for name, or an error wrapping
	// core.ErrUnknownPersonality.
	Get(name string) (string, error)
	// Names enumerates the available personality names, sorted.
	Names() []string
}

// DirSource serves templates from files in a directory; the personality name
// is the file name. Matches the layout used by chat deployments where
// operators drop template files next to the config.
type DirSource struct {
	dir string
}

// NewDirSource creates a directory-backed template source.
func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Get reads the template file for name.
func (s *DirSource) Get(name string) (string, error) {
	// Names are plain file names; anything path-like is rejected rather
	// than resolved.
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownPersonality, name)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %q", core.ErrUnknownPersonality, name)
		}
		return "", fmt.Errorf("read personality %q: %w", name, err)
	}
	return string(data), nil
}

// Names lists the template files in the directory, sorted.
func (s *DirSource) Names() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// MapSource is an in-memory Source, handy for tests and embedded defaults.
type MapSource map[string]string

// Get returns the template content for name.
func (s MapSource) Get(name string) (string, error) {
	content, ok := s[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownPersonality, name)
	}
	return content, nil
}

// Names enumerates the map keys, sorted.
func (s MapSource) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
