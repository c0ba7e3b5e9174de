// ABOUTME: Saves fetched CSV exports to disk
// ABOUTME: Views hand the bytes from the store to a Saver instead of writing files themselves
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Saver persists an export payload under a filename and reports where it went.
type Saver interface {
	Save(filename string, data []byte) (string, error)
}

// FileSaver writes exports into a directory, creating it if needed.
type FileSaver struct {
	Dir string
}

// NewFileSaver returns a saver rooted at dir. An empty dir means the working directory.
func NewFileSaver(dir string) *FileSaver {
	if strings.TrimSpace(dir) == "" {
		dir = "."
	}
	return &FileSaver{Dir: dir}
}

// Save writes data to Dir/filename and returns the full path. Only the base
// name of filename is used.
func (s *FileSaver) Save(filename string, data []byte) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return "", fmt.Errorf("invalid export filename %q", filename)
	}

	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(s.Dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}
