package repository

// SettingsRepository abstracts settings persistence
type SettingsRepository interface {
	Load() ([]byte, error)
	Save(data []byte) error
	FindSettingsFile() (string, error)
	// Location is the path Load and Save use, or "" when nothing is on disk
	Location() string
}
