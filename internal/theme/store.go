package theme

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Preferences is the layout of the preferences file.
type Preferences struct {
	Theme string `toml:"theme"`
}

// FileStore keeps the preference in a TOML file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath is $XDG_CONFIG_HOME/nestsearch/preferences.toml, or the
// platform equivalent.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to locate user config directory")
	}
	return filepath.Join(dir, "nestsearch", "preferences.toml"), nil
}

// Path returns the file the store reads and writes.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored theme. A missing file yields Default.
func (s *FileStore) Load() (Theme, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Default, nil
	}
	if err != nil {
		return Default, errors.Wrapf(err, "failed to read preferences %s", s.path)
	}

	var prefs Preferences
	if err := toml.Unmarshal(data, &prefs); err != nil {
		return Default, errors.Wrapf(err, "failed to parse preferences %s", s.path)
	}
	return Parse(prefs.Theme), nil
}

// Save writes t, creating the parent directory when needed.
func (s *FileStore) Save(t Theme) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrapf(err, "failed to create %s", filepath.Dir(s.path))
	}

	data, err := toml.Marshal(Preferences{Theme: t.String()})
	if err != nil {
		return errors.Wrap(err, "failed to encode preferences")
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write preferences %s", s.path)
	}
	return nil
}
