// Package archive stores raw provider payloads captured during refreshes.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SscSPs/finance_dashboard_app/internal/core/ports/sinks"
)

// FileArchiver writes payloads into a local directory.
type FileArchiver struct {
	dir string
}

var _ sinks.Archiver = (*FileArchiver)(nil)

// NewFileArchiver creates the directory if needed.
func NewFileArchiver(dir string) (*FileArchiver, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create archive dir %q: %w", dir, err)
	}
	return &FileArchiver{dir: dir}, nil
}

// Archive writes data to dir/name through a temp file so readers never see a partial payload.
func (a *FileArchiver) Archive(_ context.Context, name string, data []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	target := filepath.Join(a.dir, name)

	tmp, err := os.CreateTemp(a.dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %q: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %q: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", fmt.Errorf("rename into %q: %w", target, err)
	}
	return target, nil
}

// cleanName rejects names that would escape the archive root.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid archive name %q", name)
	}
	return name, nil
}
