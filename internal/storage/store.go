// Package storage persists pipeline artifacts as flat files under a
// single data directory.
//
// Every artifact has a fixed file name, so a rerun of a stage replaces
// the previous artifact instead of accumulating copies. JSON artifacts
// are written indented so they stay readable when opened by hand.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"scrooge/internal/errors"
)

// DefaultDir is where artifacts land when no data directory is configured.
const DefaultDir = "data"

// Artifact file names. Fixed so each pipeline stage can find the output
// of the previous one across process runs.
const (
	DescriptionArtifact = "project_description.txt"
	ProfileArtifact     = "project_profile.json"
	BillingArtifact     = "mock_billing.json"
	ReportArtifact      = "cost_optimization_report.json"
)

// Store reads and writes artifacts in one directory. It implements
// interfaces.ArtifactStore.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, or at DefaultDir when dir is
// empty. The directory itself is created on first write, not here, so
// constructing a store never fails.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir
	}
	return &Store{dir: dir}
}

// Dir returns the directory the store writes into
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path an artifact name resolves to
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Exists reports whether an artifact has been saved
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// SaveJSON writes value as indented JSON, replacing any previous
// artifact of the same name, and returns the full path written.
func (s *Store) SaveJSON(name string, value interface{}) (string, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", errors.FileErrorWithCause(fmt.Sprintf("failed to encode %s", name), err).
			WithContext("artifact", name)
	}
	return s.write(name, data)
}

// LoadJSON reads a JSON artifact into value. A missing artifact is
// reported as a FileError whose suggestion names the step that
// produces it.
func (s *Store) LoadJSON(name string, value interface{}) error {
	data, err := s.read(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return errors.FileErrorWithCause(fmt.Sprintf("failed to decode %s", name), err).
			WithContext("path", s.Path(name)).
			WithSuggestion("Delete the corrupted file and rerun the step that produces it")
	}
	return nil
}

// SaveText writes a plain text artifact and returns the full path written
func (s *Store) SaveText(name string, content string) (string, error) {
	return s.write(name, []byte(content))
}

// LoadText reads a plain text artifact
func (s *Store) LoadText(name string) (string, error) {
	data, err := s.read(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) write(name string, data []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", errors.FileErrorWithCause("failed to create data directory", err).
			WithContext("dir", s.dir).
			WithSuggestion("Check directory permissions or choose another --data-dir")
	}
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.FileErrorWithCause(fmt.Sprintf("failed to write %s", name), err).
			WithContext("path", path).
			WithSuggestion("Check directory permissions or choose another --data-dir")
	}
	return path, nil
}

func (s *Store) read(name string) ([]byte, error) {
	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileErrorf("artifact %s not found", name).
				WithContext("path", path).
				WithSuggestion(prerequisiteFor(name))
		}
		return nil, errors.FileErrorWithCause(fmt.Sprintf("failed to read %s", name), err).
			WithContext("path", path)
	}
	return data, nil
}

// prerequisiteFor names the step that produces an artifact, for the
// suggestion shown when a later step cannot find it
func prerequisiteFor(name string) string {
	switch name {
	case DescriptionArtifact:
		return "Enter a project description first ('scrooge menu', option 1)"
	case ProfileArtifact:
		return "Run 'scrooge profile' or a full analysis first"
	case BillingArtifact:
		return "Run 'scrooge billing' or a full analysis first"
	case ReportArtifact:
		return "Run 'scrooge analyze' or 'scrooge recommend' first"
	default:
		return "Run the step that produces this artifact first"
	}
}
