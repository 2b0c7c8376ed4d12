package files

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	tmpDir := t.TempDir()
	paths := &config.Paths{
		BaseDir:    tmpDir,
		DataDir:    filepath.Join(tmpDir, "data"),
		UploadsDir: filepath.Join(tmpDir, "data", "uploads"),
		ReportsDir: filepath.Join(tmpDir, "data", "reports"),
		StagingDir: filepath.Join(tmpDir, "data", "staging"),
		LogsDir:    filepath.Join(tmpDir, "logs"),
	}
	require.NoError(t, paths.EnsureDirectories())
	logger, _ := testutil.NewTestLogger(t)
	return NewManager(paths, logger)
}

func TestNewManager(t *testing.T) {
	paths := &config.Paths{DataDir: "/test/data"}

	manager := NewManager(paths, nil)
	assert.NotNil(t, manager)
	assert.Equal(t, paths, manager.Paths())
	assert.NotNil(t, manager.logger)
}

func TestSaveUpload(t *testing.T) {
	manager := newTestManager(t)

	t.Run("stores content under run scoped name", func(t *testing.T) {
		path, err := manager.SaveUpload("abcd1234", "orders.csv", strings.NewReader("order_id\n1\n"))
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(manager.paths.UploadsDir, "abcd1234_orders.csv"), path)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "order_id\n1\n", string(data))
	})

	t.Run("strips client directories from filename", func(t *testing.T) {
		path, err := manager.SaveUpload("abcd1234", "../../etc/customers.csv", strings.NewReader("x"))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(manager.paths.UploadsDir, "abcd1234_customers.csv"), path)
	})

	t.Run("leaves no temporary files behind", func(t *testing.T) {
		entries, err := os.ReadDir(manager.paths.UploadsDir)
		require.NoError(t, err)
		for _, entry := range entries {
			assert.False(t, strings.HasPrefix(entry.Name(), "."), "temporary file %s left behind", entry.Name())
		}
	})

	t.Run("rejects invalid run id", func(t *testing.T) {
		_, err := manager.SaveUpload("../x", "orders.csv", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("rejects empty filename", func(t *testing.T) {
		_, err := manager.SaveUpload("abcd1234", "", strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeValidation, appErr.Type)
	})

	t.Run("storage failure is typed", func(t *testing.T) {
		broken := newTestManager(t)
		blocker := filepath.Join(broken.Paths().DataDir, "blocked")
		require.NoError(t, os.MkdirAll(broken.Paths().DataDir, 0755))
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
		broken.Paths().UploadsDir = filepath.Join(blocker, "uploads")

		_, err := broken.SaveUpload("abcd1234", "orders.csv", strings.NewReader("x"))

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperrors.ErrTypeStorage, appErr.Type)
		assert.Contains(t, appErr.Context, "path")
	})
}

func TestRemoveRun(t *testing.T) {
	manager := newTestManager(t)

	for _, name := range []string{"customers.csv", "orders.csv", "products.csv"} {
		_, err := manager.SaveUpload("run00001", name, strings.NewReader("a"))
		require.NoError(t, err)
		_, err = manager.SaveUpload("run00002", name, strings.NewReader("b"))
		require.NoError(t, err)
	}

	require.NoError(t, manager.RemoveRun("run00001"))

	entries, err := os.ReadDir(manager.paths.UploadsDir)
	require.NoError(t, err)
	var remaining []string
	for _, entry := range entries {
		remaining = append(remaining, entry.Name())
	}
	assert.ElementsMatch(t, []string{
		"run00002_customers.csv",
		"run00002_orders.csv",
		"run00002_products.csv",
	}, remaining)

	t.Run("missing uploads directory is not an error", func(t *testing.T) {
		require.NoError(t, os.RemoveAll(manager.paths.UploadsDir))
		assert.NoError(t, manager.RemoveRun("run00002"))
	})

	t.Run("invalid run id", func(t *testing.T) {
		assert.ErrorIs(t, manager.RemoveRun(""), ErrInvalidName)
	})
}

func TestCopyFile(t *testing.T) {
	manager := newTestManager(t)
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "source.csv")
	require.NoError(t, os.WriteFile(src, []byte("a,b\n1,2\n"), 0644))

	dst := filepath.Join(tmpDir, "nested", "dir", "copy.csv")
	require.NoError(t, manager.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	t.Run("missing source", func(t *testing.T) {
		err := manager.CopyFile(filepath.Join(tmpDir, "missing.csv"), dst)
		assert.Error(t, err)
	})
}

func TestMoveFile(t *testing.T) {
	manager := newTestManager(t)
	tmpDir := t.TempDir()

	src := filepath.Join(tmpDir, "report.tmp")
	require.NoError(t, os.WriteFile(src, []byte("report"), 0644))

	dst := filepath.Join(tmpDir, "report.csv")
	require.NoError(t, manager.MoveFile(src, dst))

	assert.NoFileExists(t, src)
	assert.FileExists(t, dst)

	t.Run("missing source", func(t *testing.T) {
		assert.Error(t, manager.MoveFile(filepath.Join(tmpDir, "missing"), dst))
	})
}

func TestResolveReport(t *testing.T) {
	manager := newTestManager(t)
	require.NoError(t, os.WriteFile(manager.paths.GetReportPath("All_Reports_abcd1234.zip"), []byte("zip"), 0644))
	require.NoError(t, os.Mkdir(manager.paths.GetReportPath("subdir"), 0755))

	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{name: "existing report", input: "All_Reports_abcd1234.zip"},
		{name: "missing report", input: "All_Reports_ffffffff.zip", wantErr: ErrNotFound},
		{name: "directory", input: "subdir", wantErr: ErrNotFound},
		{name: "empty", input: "", wantErr: ErrInvalidName},
		{name: "parent traversal", input: "../secret.txt", wantErr: ErrInvalidName},
		{name: "dot dot", input: "..", wantErr: ErrInvalidName},
		{name: "backslash", input: `..\secret.txt`, wantErr: ErrInvalidName},
		{name: "hidden partial", input: ".All_Reports_abcd1234.partial.zip", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := manager.ResolveReport(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, manager.paths.GetReportPath(tt.input), path)
		})
	}
}

func TestConcurrentUploads(t *testing.T) {
	manager := newTestManager(t)

	const numGoroutines = 10
	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			runID := fmt.Sprintf("run%05d", id)
			_, err := manager.SaveUpload(runID, "orders.csv", strings.NewReader(runID))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < numGoroutines; i++ {
		runID := fmt.Sprintf("run%05d", i)
		data, err := os.ReadFile(manager.paths.GetUploadPath(runID, "orders.csv"))
		require.NoError(t, err)
		assert.Equal(t, runID, string(data))
	}
}
