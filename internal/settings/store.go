package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"talkback/internal/domain"
)

// FileStore persists settings as a single JSON document in the user
// config directory. Writes are atomic from the reader's point of view
// (temp file plus rename).
type FileStore struct {
	path string
}

// NewFileStore creates a store at path, or at the default location when
// path is empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine config directory: %w", err)
		}
		path = filepath.Join(configDir, "talkback", "settings.json")
	}
	return &FileStore{path: path}, nil
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

// Load reads persisted settings. An absent or malformed file yields the
// defaults; only hard IO failures surface an error, and even then the
// returned value is usable.
func (s *FileStore) Load() (domain.Settings, error) {
	contents, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultSettings(), nil
		}
		return domain.DefaultSettings(), fmt.Errorf("failed to read settings file %q: %w", s.path, err)
	}

	// Pointer fields distinguish absent keys from explicit false, so a
	// partial document overlays the defaults instead of zeroing them.
	var parsed struct {
		Credential   *string `json:"credential"`
		AutoSend     *bool   `json:"autoSend"`
		SpeakReplies *bool   `json:"speakReplies"`
	}
	if err := json.Unmarshal(contents, &parsed); err != nil {
		return domain.DefaultSettings(), nil
	}

	loaded := domain.SettingsPatch{
		Credential:   parsed.Credential,
		AutoSend:     parsed.AutoSend,
		SpeakReplies: parsed.SpeakReplies,
	}
	return loaded.Apply(domain.DefaultSettings()), nil
}

// Save overwrites the persisted settings.
func (s *FileStore) Save(settings domain.Settings) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	contents, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, contents, 0o600); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace settings file: %w", err)
	}
	return nil
}
