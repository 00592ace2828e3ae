// Package profiles persists named import profiles: reusable column-alias
// configurations for recurring non-standard spreadsheet layouts.
package profiles

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nanashi-new/darts/app/modules/protocol/parsers"
)

// ErrNotFound indicates the named profile does not exist.
var ErrNotFound = errors.New("import profile not found")

// Store persists the import-profile list. Kept as an interface so the JSON
// document can later be swapped for the main storage engine.
type Store interface {
	List() ([]parsers.ImportProfile, error)
	Get(name string) (parsers.ImportProfile, error)
	Save(profile parsers.ImportProfile) error
	Delete(name string) error
}

// FileStore keeps profiles in one JSON document, rewritten whole on every
// mutation. Single-user desktop assumption: no concurrent-writer protection.
type FileStore struct {
	path string
}

// NewFileStore creates a store over the given JSON document path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) List() ([]parsers.ImportProfile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read import profiles: %w", err)
	}
	var list []parsers.ImportProfile
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to decode import profiles: %w", err)
	}
	return list, nil
}

func (s *FileStore) Get(name string) (parsers.ImportProfile, error) {
	list, err := s.List()
	if err != nil {
		return parsers.ImportProfile{}, err
	}
	for _, profile := range list {
		if profile.Name == name {
			return profile, nil
		}
	}
	return parsers.ImportProfile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Save inserts or replaces the profile with the same name.
func (s *FileStore) Save(profile parsers.ImportProfile) error {
	list, err := s.List()
	if err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].Name == profile.Name {
			list[i] = profile
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, profile)
	}
	return s.write(list)
}

func (s *FileStore) Delete(name string) error {
	list, err := s.List()
	if err != nil {
		return err
	}
	kept := list[:0]
	found := false
	for _, profile := range list {
		if profile.Name == name {
			found = true
			continue
		}
		kept = append(kept, profile)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.write(kept)
}

func (s *FileStore) write(list []parsers.ImportProfile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode import profiles: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write import profiles: %w", err)
	}
	return nil
}
