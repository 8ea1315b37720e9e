// Package storage handles the on-disk side of the mirror: directory creation,
// size comparison against remote metadata, collision suffixes, and chunked
// writes with progress reporting.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"canvasgrab/pkg/errs"
	"canvasgrab/pkg/urlutil"
)

// Manager writes downloaded content below a base output directory
type Manager struct {
	baseDir string
}

// NewManager creates a storage manager rooted at the output directory
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, errs.New(errs.ErrorTypeFilesystem, "failed to create output directory: %v", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// BaseDir returns the output directory path
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// EnsureDir creates (if needed) and returns the directory for a sequence of
// path segments below the base directory. Segments are sanitized; a segment
// may itself contain slashes and then contributes multiple levels.
func (m *Manager) EnsureDir(segments ...string) (string, error) {
	parts := append([]string{m.baseDir}, urlutil.SanitizeSegments(segments)...)
	dir := filepath.Join(parts...)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errs.New(errs.ErrorTypeFilesystem, "failed to create directory %s: %v", dir, err)
	}
	return dir, nil
}

// FileSize returns the byte length of an existing file and whether it exists
func (m *Manager) FileSize(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return 0, false
	}
	return info.Size(), true
}

// DisambiguatedName returns a file name of the form base_<n><ext> with the
// smallest n >= 1 for which no file exists in dir yet. Used when a same-named
// file with a different size is already on disk.
func (m *Manager) DisambiguatedName(dir, name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for count := 1; ; count++ {
		candidate := fmt.Sprintf("%s_%d%s", base, count, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// SaveStream writes a response body to path in fixed-size chunks, calling
// progress with each chunk's byte count. The data lands in a temporary file
// that is renamed into place, so a failed download never leaves a truncated
// file under the final name.
func (m *Manager) SaveStream(path string, body io.Reader, chunkSize int, progress func(n int64)) error {
	tempFile := path + ".part"
	out, err := os.Create(tempFile)
	if err != nil {
		return errs.New(errs.ErrorTypeFilesystem, "failed to create file %s: %v", tempFile, err)
	}

	buf := make([]byte, chunkSize)
	var copyErr error
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				copyErr = errs.New(errs.ErrorTypeFilesystem, "failed to write %s: %v", path, writeErr)
				break
			}
			if progress != nil {
				progress(int64(n))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			copyErr = errs.New(errs.ErrorTypeNetwork, "failed reading download body: %v", readErr)
			break
		}
	}

	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(tempFile)
		return copyErr
	}
	if closeErr != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, "failed to close %s: %v", tempFile, closeErr)
	}

	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return errs.New(errs.ErrorTypeFilesystem, "failed to move %s into place: %v", path, err)
	}
	return nil
}

// SaveText writes a text body (a rendered page) to path in one shot
func (m *Manager) SaveText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return errs.New(errs.ErrorTypeFilesystem, "failed to write %s: %v", path, err)
	}
	return nil
}
