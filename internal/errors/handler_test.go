package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/infrastructure"
	"salespulse/internal/shared/testutil"
)

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "missing upload",
			err:        MissingUpload("customers"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
		},
		{
			name:       "data processing failure",
			err:        fmt.Errorf("run: %w", NewDataProcessingError(StageCoerce, "orders", io.EOF).AtColumn("quantity")),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataProcessing,
			wantTitle:  "Analysis Failed",
		},
		{
			name:       "empty dataset",
			err:        NewEmptyDatasetError("estimate trend"),
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeDataEmpty,
			wantTitle:  "Analysis Failed",
		},
		{
			name:       "export failure",
			err:        NewExportError("zip", "reports/All_Reports_x.zip", io.ErrShortWrite),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeExport,
			wantTitle:  "Report Export Failed",
		},
		{
			name:       "not found app error",
			err:        NewNotFoundError("report"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
			wantTitle:  "Resource Not Found",
		},
		{
			name:       "unknown error",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
			r = r.WithContext(infrastructure.WithTraceID(r.Context(), "trace-123"))

			handler.HandleError(w, r, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, tt.wantTitle, body["title"])
			assert.Equal(t, "trace-123", body["trace_id"])
			assert.Equal(t, "/api/reports", body["instance"])
			assert.NotContains(t, body, "stack")

			testutil.AssertLogContains(t, logs, slog.LevelError, "request failed")
		})
	}
}

func TestErrorHandler_HandleError_Nil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_DataProcessingExtensions(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	r := httptest.NewRequest(http.MethodPost, "/api/reports", nil)
	problem := handler.ErrorToProblem(NewDataProcessingError(StageColumn, "products", io.EOF), r)

	assert.Equal(t, "column", problem.Extensions["stage"])
	assert.Equal(t, "products", problem.Extensions["dataset"])
	assert.Contains(t, problem.Detail, "Data Processing Failed")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, httptest.NewRequest(http.MethodGet, "/api/reports", nil), "nil map")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "nil map", body["panic"])
	assert.NotEmpty(t, body["stack"])
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "The analytics route you seek does not exist.")

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/reports", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Method DELETE is not allowed")
}

func TestProblemDetails_Write(t *testing.T) {
	problem := NewProblemDetails(http.StatusUnprocessableEntity, TypeDataEmpty, "Empty", "no rows", "/api/reports").
		WithExtension("trace_id", "abc")

	w := httptest.NewRecorder()
	// a JSON content type set earlier in the chain must not win
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, problem.Write(w))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, ProblemContentType, w.Header().Get("Content-Type"))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, TypeDataEmpty, body["type"])
	assert.Equal(t, float64(http.StatusUnprocessableEntity), body["status"])
	assert.Equal(t, "abc", body["trace_id"])
}
