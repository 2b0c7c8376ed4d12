package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/services"
	"salespulse/internal/shared/testutil"
	api "salespulse/pkg/contracts/api/v1"
	"salespulse/pkg/contracts/domain"
)

type fakeReportService struct {
	err    error
	calls  int
	inputs map[string]string
}

func (f *fakeReportService) Run(ctx context.Context, src dataprocessing.Sources, runID string) (*domain.RunResult, error) {
	f.calls++
	f.inputs = make(map[string]string)
	for name, s := range map[string]dataprocessing.Source{
		api.FieldCustomers: src.Customers,
		api.FieldOrders:    src.Orders,
		api.FieldProducts:  src.Products,
	} {
		data, _ := io.ReadAll(s.Reader)
		f.inputs[name] = string(data)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RunResult{RunID: runID, ArchiveName: "All_Reports_" + runID + ".zip"}, nil
}

type handlerEnv struct {
	router http.Handler
	paths  *config.Paths
}

func testPaths(t *testing.T) *config.Paths {
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
	return paths
}

func newHandlerEnv(t *testing.T, service ReportServiceInterface, maxUpload int64) handlerEnv {
	t.Helper()
	paths := testPaths(t)
	logger, _ := testutil.NewTestLogger(t)
	errorHandler := apierrors.NewErrorHandler(logger, false)

	fm := files.NewManager(paths, logger)
	if service == nil {
		exp := exporter.NewReportExporter(paths.ReportsDir, paths.StagingDir, fm, logger)
		service = services.NewAnalyticsService(dataprocessing.NewMerger(), exp, nil, logger)
	}

	handler := NewReportsHandler(service, fm, maxUpload, logger, errorHandler)
	handler.newRunID = func() string { return "run12345" }

	r := chi.NewRouter()
	r.Mount("/api/reports", handler.Routes())
	return handlerEnv{router: r, paths: paths}
}

func multipartRequest(t *testing.T, parts map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, content := range parts {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func fixtureParts() map[string]string {
	f := testutil.DefaultSalesFixtures()
	return map[string]string{
		api.FieldCustomers: f.Customers,
		api.FieldOrders:    f.Orders,
		api.FieldProducts:  f.Products,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func assertNoUploadsLeft(t *testing.T, paths *config.Paths) {
	t.Helper()
	entries, err := os.ReadDir(paths.UploadsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportsHandler_CreateReport(t *testing.T) {
	env := newHandlerEnv(t, nil, 1<<20)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartRequest(t, fixtureParts()))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp api.ReportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "run12345", resp.RunID)
	assert.Equal(t, "All_Reports_run12345.zip", resp.ArchiveName)
	assert.Equal(t, "/api/reports/download/All_Reports_run12345.zip", resp.DownloadURL)
	assert.Equal(t, "70.00", resp.Stats.TotalRevenue)
	assert.Equal(t, "Ann", resp.Stats.TopCustomer)

	assertNoUploadsLeft(t, env.paths)

	t.Run("download archive", func(t *testing.T) {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, resp.DownloadURL, nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "All_Reports_run12345.zip")
		assert.NotZero(t, rec.Body.Len())
	})
}

func TestReportsHandler_MissingFile(t *testing.T) {
	service := &fakeReportService{}
	env := newHandlerEnv(t, service, 1<<20)

	parts := fixtureParts()
	delete(parts, api.FieldOrders)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartRequest(t, parts))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Missing file for orders", body["detail"])
	assert.Zero(t, service.calls)
	assertNoUploadsLeft(t, env.paths)
}

func TestReportsHandler_UnsupportedFileType(t *testing.T) {
	service := &fakeReportService{}
	env := newHandlerEnv(t, service, 1<<20)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, content := range fixtureParts() {
		name := field + ".csv"
		if field == api.FieldProducts {
			name = "products.pdf"
		}
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		fw.Write([]byte(content))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, service.calls)
}

func TestReportsHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "data processing",
			err:        apierrors.NewDataProcessingError(apierrors.StageColumn, domain.DatasetProducts, errors.New("missing column price")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeDataProcessing,
		},
		{
			name:       "empty dataset",
			err:        apierrors.NewEmptyDatasetError("estimate trend"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   apierrors.TypeDataEmpty,
		},
		{
			name:       "export",
			err:        apierrors.NewExportError("write archive", "/reports/x.zip", errors.New("disk full")),
			wantStatus: http.StatusInternalServerError,
			wantType:   apierrors.TypeExport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &fakeReportService{err: tt.err}
			env := newHandlerEnv(t, service, 1<<20)

			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, multipartRequest(t, fixtureParts()))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantType, decode(t, rec)["type"])
			assert.Equal(t, 1, service.calls)
			assert.Equal(t, testutil.DefaultSalesFixtures().Orders, service.inputs[api.FieldOrders])
			assertNoUploadsLeft(t, env.paths)
		})
	}
}

func TestReportsHandler_PayloadTooLarge(t *testing.T) {
	service := &fakeReportService{}
	env := newHandlerEnv(t, service, 64)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartRequest(t, fixtureParts()))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, service.calls)
}

func TestReportsHandler_WrongContentType(t *testing.T) {
	env := newHandlerEnv(t, &fakeReportService{}, 1<<20)

	req := httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestReportsHandler_DownloadReport(t *testing.T) {
	env := newHandlerEnv(t, &fakeReportService{}, 1<<20)
	require.NoError(t, os.WriteFile(filepath.Join(env.paths.ReportsDir, "data_run12345.csv"), []byte("a,b\n"), 0644))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "existing", path: "/api/reports/download/data_run12345.csv", wantStatus: http.StatusOK},
		{name: "missing", path: "/api/reports/download/data_missing.csv", wantStatus: http.StatusNotFound},
		{name: "encoded traversal", path: "/api/reports/download/..%2Fsecret.txt", wantStatus: http.StatusBadRequest},
		{name: "hidden partial", path: "/api/reports/download/.All_Reports_run12345.zip.partial", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}
