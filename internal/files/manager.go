package files

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/infrastructure"
)

var (
	// ErrInvalidName is returned for names that are empty, contain a path
	// separator or would escape the managed directory.
	ErrInvalidName = errors.New("invalid file name")
	// ErrNotFound is returned when a report does not exist.
	ErrNotFound = errors.New("file not found")
)

// Manager provides file management operations
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		paths:  paths,
		logger: infrastructure.WithComponent(logger, "files"),
	}
}

// Paths returns the directories the manager operates on
func (m *Manager) Paths() *config.Paths {
	return m.paths
}

// SaveUpload stores an uploaded file as <uploads>/<runID>_<filename>.
// The content is written to a temporary name first and renamed when complete.
func (m *Manager) SaveUpload(runID, filename string, r io.Reader) (string, error) {
	if err := ValidateName(runID); err != nil {
		return "", apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("run id %q", runID), err)
	}
	base := filepath.Base(filepath.Clean("/" + filename))
	if err := ValidateName(base); err != nil {
		return "", apperrors.NewAppError(apperrors.ErrTypeValidation, fmt.Sprintf("upload %q", filename), err)
	}

	dst := m.paths.GetUploadPath(runID, base)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", apperrors.NewStorageError("failed to create upload directory", err).WithContext("path", filepath.Dir(dst))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+runID+"_*.upload")
	if err != nil {
		return "", apperrors.NewStorageError("failed to create upload file", err).WithContext("path", dst)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("failed to write upload", err).WithContext("path", dst)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", apperrors.NewStorageError("failed to finalize upload", err).WithContext("path", dst)
	}

	m.logger.Debug("Upload saved",
		slog.String("run_id", runID),
		slog.String("path", dst),
		slog.Int64("size_bytes", written))

	return dst, nil
}

// RemoveRun deletes every upload that belongs to runID.
// Files of other runs are never touched.
func (m *Manager) RemoveRun(runID string) error {
	if err := ValidateName(runID); err != nil {
		return fmt.Errorf("run id %q: %w", runID, err)
	}

	entries, err := os.ReadDir(m.paths.UploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	prefix := runID + "_"
	var errs []error
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(m.paths.UploadsDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	m.logger.Debug("Run uploads removed",
		slog.String("run_id", runID),
		slog.Int("removed", removed))

	return errors.Join(errs...)
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Debug("Copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	// Ensure destination directory exists
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	// Sync to ensure write is complete
	return dstFile.Sync()
}

// MoveFile moves a file from source to destination
func (m *Manager) MoveFile(src, dst string) error {
	// Try rename first (atomic if on same filesystem)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Fall back to copy and delete
	if err := m.CopyFile(src, dst); err != nil {
		return err
	}

	return os.Remove(src)
}

// ResolveReport returns the absolute path of a report in the reports
// directory. Names with separators, dot segments or hidden names are
// rejected with ErrInvalidName.
func (m *Manager) ResolveReport(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	if strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}

	full := m.paths.GetReportPath(name)
	rel, err := filepath.Rel(m.paths.ReportsDir, full)
	if err != nil || rel != name {
		return "", ErrInvalidName
	}

	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	if info.IsDir() {
		return "", ErrNotFound
	}

	return full, nil
}

// ValidateName reports whether name can be used as a single path element.
// A name without separators cannot leave its parent directory.
func ValidateName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidName
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return ErrInvalidName
	}
	return nil
}
