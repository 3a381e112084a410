package infra

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// SettingsDirName is the per-project and per-user settings directory
const SettingsDirName = ".folio"

// settingsFileNames are tried in order inside each settings directory
var settingsFileNames = []string{"settings.json", "settings.yaml", "settings.yml"}

// FileSettingsRepository represents file-persisted settings repository
type FileSettingsRepository struct {
	configPath string // Specific path (empty means search for file)
}

// InMemorySettingsRepository represents in-memory-only settings repository
type InMemorySettingsRepository struct {
	data []byte
}

// NewFileSettingsRepository creates a new file-based settings repository
func NewFileSettingsRepository(configPath string) *FileSettingsRepository {
	return &FileSettingsRepository{
		configPath: configPath,
	}
}

// NewInMemorySettingsRepository creates a new in-memory settings repository
func NewInMemorySettingsRepository() *InMemorySettingsRepository {
	return &InMemorySettingsRepository{}
}

// FileSettingsRepository methods
func (fr *FileSettingsRepository) Load() ([]byte, error) {
	configPath := fr.configPath
	if configPath == "" {
		foundPath, err := fr.FindSettingsFile()
		if err != nil {
			return nil, err
		}
		if foundPath == "" {
			return nil, errors.New("no settings file found")
		}
		configPath = foundPath
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.Errorf("settings file does not exist: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read settings file")
	}

	return data, nil
}

func (fr *FileSettingsRepository) Save(data []byte) error {
	configPath := fr.Location()
	if configPath == "" {
		// No existing file, save to .folio in current directory
		configPath = filepath.Join(SettingsDirName, "settings.json")
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write settings file")
	}

	return nil
}

// FindSettingsFile searches .folio in the current directory, then $HOME/.folio
func (fr *FileSettingsRepository) FindSettingsFile() (string, error) {
	dirs := []string{SettingsDirName}
	if homeDir, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(homeDir, SettingsDirName))
	}

	for _, dir := range dirs {
		for _, name := range settingsFileNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p, nil
			}
		}
	}

	return "", nil
}

func (fr *FileSettingsRepository) Location() string {
	if fr.configPath != "" {
		return fr.configPath
	}
	found, _ := fr.FindSettingsFile()
	return found
}

// InMemorySettingsRepository methods
func (mr *InMemorySettingsRepository) Load() ([]byte, error) {
	if mr.data == nil {
		return nil, errors.New("no data stored in memory repository")
	}
	return mr.data, nil
}

func (mr *InMemorySettingsRepository) Save(data []byte) error {
	mr.data = make([]byte, len(data))
	copy(mr.data, data)
	return nil
}

func (mr *InMemorySettingsRepository) FindSettingsFile() (string, error) {
	// In-memory repository doesn't have files
	return "", nil
}

func (mr *InMemorySettingsRepository) Location() string {
	return ""
}
