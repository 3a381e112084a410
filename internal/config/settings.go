package config

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/fpt/folio/internal/infra"
	"github.com/fpt/folio/internal/repository"
	pkgLogger "github.com/fpt/folio/pkg/logger"
)

// DefaultMaxFanOut bounds concurrent directory reads during read-folder
const DefaultMaxFanOut = 16

// DefaultAddr is where the agent listens when settings name no address
const DefaultAddr = "127.0.0.1:7767"

// Settings represents the main application settings
type Settings struct {
	Agent   AgentSettings           `json:"agent" yaml:"agent"`
	Access  repository.AccessConfig `json:"access" yaml:"access"`
	Metrics MetricsSettings         `json:"metrics" yaml:"metrics"`

	// Repository for persistence (nil for in-memory only)
	settingsRepository repository.SettingsRepository `json:"-" yaml:"-"`
}

// AgentSettings contains agent behavior configuration
type AgentSettings struct {
	Addr      string `json:"addr" yaml:"addr"`               // host:port the bridge listens on
	LogLevel  string `json:"log_level" yaml:"log_level"`     // debug, info, warn or error
	MaxFanOut int    `json:"max_fan_out" yaml:"max_fan_out"` // concurrent directory reads per tree build
	Collation string `json:"collation" yaml:"collation"`     // BCP 47 tag used to order names
}

// MetricsSettings controls the Prometheus endpoint
type MetricsSettings struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// NewSettings creates new settings with in-memory repository
func NewSettings() *Settings {
	return NewSettingsWithRepository(infra.NewInMemorySettingsRepository())
}

// NewSettingsWithRepository creates new settings with injected repository
func NewSettingsWithRepository(settingsRepository repository.SettingsRepository) *Settings {
	settings := GetDefaultSettings()
	settings.settingsRepository = settingsRepository
	return settings
}

// NewSettingsWithPath creates new settings with file-based repository
func NewSettingsWithPath(configPath string) *Settings {
	repo := infra.NewFileSettingsRepository(configPath)
	return NewSettingsWithRepository(repo)
}

// Load loads settings from the repository. Keys missing from the stored
// document keep their default values.
func (s *Settings) Load() error {
	if s.settingsRepository == nil {
		return errors.New("no settings repository configured")
	}

	data, err := s.settingsRepository.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load settings")
	}

	if err := unmarshalSettings(data, s); err != nil {
		return errors.Wrap(err, "failed to parse settings")
	}

	applyDefaults(s)
	return nil
}

// Save saves settings to the repository, as YAML when the target file has a
// YAML extension and as JSON otherwise
func (s *Settings) Save() error {
	if s.settingsRepository == nil {
		return errors.New("no settings repository configured")
	}

	data, err := s.marshal(isYAMLPath(s.settingsRepository.Location()))
	if err != nil {
		return errors.Wrap(err, "failed to marshal settings")
	}

	return s.settingsRepository.Save(data)
}

func (s *Settings) marshal(asYAML bool) ([]byte, error) {
	if asYAML {
		return yaml.Marshal(s)
	}
	return json.MarshalIndent(s, "", "  ")
}

func unmarshalSettings(data []byte, s *Settings) error {
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		return json.Unmarshal(data, s)
	}
	return yaml.Unmarshal(data, s)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Location reports the file the settings came from, if any
func (s *Settings) Location() string {
	if s.settingsRepository == nil {
		return ""
	}
	return s.settingsRepository.Location()
}

// LoadSettings loads application settings from a JSON or YAML file
func LoadSettings(configPath string) (*Settings, error) {
	settings := NewSettingsWithPath(configPath)

	// If config path is empty, search for existing settings file
	if configPath == "" {
		foundPath, _ := settings.settingsRepository.FindSettingsFile()
		if foundPath == "" {
			// No settings file found, create default one and return defaults
			return createDefaultSettingsFile()
		}
	}

	err := settings.Load()
	if err != nil {
		// If file doesn't exist and a specific path was provided, create it
		if configPath != "" {
			if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
				return createSettingsFileAtPath(configPath)
			}
		}
		return nil, err
	}

	return settings, nil
}

// GetDefaultSettings returns default application settings
func GetDefaultSettings() *Settings {
	return &Settings{
		Agent: AgentSettings{
			Addr:      DefaultAddr,
			LogLevel:  "info",
			MaxFanOut: DefaultMaxFanOut,
			Collation: "und",
		},
		Access: infra.DefaultAccessConfig(),
		Metrics: MetricsSettings{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// applyDefaults fills in missing fields with default values
func applyDefaults(settings *Settings) {
	defaults := GetDefaultSettings()

	if settings.Agent.Addr == "" {
		settings.Agent.Addr = defaults.Agent.Addr
	}
	if settings.Agent.LogLevel == "" {
		settings.Agent.LogLevel = defaults.Agent.LogLevel
	}
	if settings.Agent.MaxFanOut == 0 {
		settings.Agent.MaxFanOut = defaults.Agent.MaxFanOut
	}
	if settings.Agent.Collation == "" {
		settings.Agent.Collation = defaults.Agent.Collation
	}
	if settings.Metrics.Path == "" {
		settings.Metrics.Path = defaults.Metrics.Path
	}
}

// ValidateSettings validates the settings configuration
func ValidateSettings(settings *Settings) error {
	if _, _, err := net.SplitHostPort(settings.Agent.Addr); err != nil {
		return errors.Wrapf(err, "invalid agent.addr %q", settings.Agent.Addr)
	}

	switch strings.ToLower(settings.Agent.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return errors.Errorf("unsupported log level: %s (must be 'debug', 'info', 'warn' or 'error')", settings.Agent.LogLevel)
	}

	if settings.Agent.MaxFanOut <= 0 {
		return errors.New("max_fan_out must be positive")
	}

	if _, err := language.Parse(settings.Agent.Collation); err != nil {
		return errors.Wrapf(err, "invalid collation %q", settings.Agent.Collation)
	}

	for _, pattern := range settings.Access.BlacklistedFiles {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, "invalid blacklist pattern %q", pattern)
		}
	}

	if settings.Metrics.Enabled && !strings.HasPrefix(settings.Metrics.Path, "/") {
		return errors.Errorf("metrics.path must start with '/': %s", settings.Metrics.Path)
	}

	return nil
}

// createDefaultSettingsFile creates a default settings.json file in ~/.folio/
func createDefaultSettingsFile() (*Settings, error) {
	dirs, err := DefaultUserDirs()
	if err != nil {
		return GetDefaultSettings(), nil // Fall back to defaults without file creation
	}
	return createSettingsFileAtPath(dirs.SettingsFile)
}

// createSettingsFileAtPath creates a default settings file at the specified path
func createSettingsFileAtPath(settingsPath string) (*Settings, error) {
	settings := NewSettingsWithPath(settingsPath)

	if err := settings.Save(); err != nil {
		// Return defaults without repository if saving fails
		return GetDefaultSettings(), nil
	}

	logger := pkgLogger.NewComponentLogger("settings")
	logger.InfoWithIntention(pkgLogger.IntentionConfig, "Created default settings file", "path", settingsPath)
	logger.InfoWithIntention(pkgLogger.IntentionStatus, "You can edit this file to customize your configuration")

	return settings, nil
}
