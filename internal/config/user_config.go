package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/fpt/folio/internal/infra"
)

// UserDirs locates per-user folio data
type UserDirs struct {
	BaseDir      string // $HOME/.folio
	LogsDir      string // $HOME/.folio/logs
	SettingsFile string // $HOME/.folio/settings.json
}

// DefaultUserDirs resolves the directories under the user's home
func DefaultUserDirs() (*UserDirs, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get user home directory")
	}
	return NewUserDirs(filepath.Join(homeDir, infra.SettingsDirName)), nil
}

// NewUserDirs lays out the directories under baseDir
func NewUserDirs(baseDir string) *UserDirs {
	return &UserDirs{
		BaseDir:      baseDir,
		LogsDir:      filepath.Join(baseDir, "logs"),
		SettingsFile: filepath.Join(baseDir, "settings.json"),
	}
}

// LogFile is the agent's log file
func (d *UserDirs) LogFile() string {
	return filepath.Join(d.LogsDir, "folio.log")
}

// EnsureDirectories creates the directories if they don't exist
func (d *UserDirs) EnsureDirectories() error {
	for _, dir := range []string{d.BaseDir, d.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}
