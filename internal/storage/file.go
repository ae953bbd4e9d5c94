package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// File persists each namespace as <dir>/<namespace>.json. Writes go through
// a temp file and rename so a crash mid-save never truncates a snapshot.
type File struct {
	dir string
}

// NewFile creates the data directory if needed and returns a file backend.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(namespace string) string {
	return filepath.Join(f.dir, namespace+".json")
}

// Load reads the namespace snapshot, returning nil when absent.
func (f *File) Load(namespace string) ([]byte, error) {
	data, err := os.ReadFile(f.path(namespace))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", namespace, err)
	}
	return data, nil
}

// Save atomically replaces the namespace snapshot.
func (f *File) Save(namespace string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, namespace+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot %s: %w", namespace, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot %s: %w", namespace, err)
	}

	if err := os.Rename(tmpName, f.path(namespace)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot %s: %w", namespace, err)
	}
	return nil
}
