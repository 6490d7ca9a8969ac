package corpus

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// SaveVectorTable persists a vector table to disk using GOB encoding.
func SaveVectorTable(t *VectorTable, path string) error {
	return saveGob(t, path)
}

// LoadVectorTable reads a vector table from disk.
func LoadVectorTable(path string) (*VectorTable, error) {
	var t VectorTable
	if err := loadGob(&t, path); err != nil {
		return nil, err
	}
	if err := checkVersion(t.Version); err != nil {
		return nil, err
	}
	return &t, nil
}

// SaveNeighborTable persists a neighbor table to disk using GOB encoding.
func SaveNeighborTable(t *NeighborTable, path string) error {
	return saveGob(t, path)
}

// LoadNeighborTable reads a neighbor table from disk.
func LoadNeighborTable(path string) (*NeighborTable, error) {
	var t NeighborTable
	if err := loadGob(&t, path); err != nil {
		return nil, err
	}
	if err := checkVersion(t.Version); err != nil {
		return nil, err
	}
	return &t, nil
}

func checkVersion(version int) error {
	if version != CurrentVersion {
		return fmt.Errorf("%w: got %d, want %d (rebuild with 'paperlens build')",
			ErrUnsupportedVersion, version, CurrentVersion)
	}
	return nil
}

// saveGob writes to a temp file first, then renames for atomicity.
func saveGob(v interface{}, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}

	tempPath := path + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(v); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding artifact: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func loadGob(v interface{}, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return fmt.Errorf("opening artifact: %w", err)
	}
	defer f.Close()

	dec := gob.NewDecoder(f)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding artifact %s: %w", filepath.Base(path), err)
	}

	return nil
}
