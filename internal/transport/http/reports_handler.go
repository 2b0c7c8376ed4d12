package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"salespulse/internal/dataprocessing"
	apierrors "salespulse/internal/errors"
	"salespulse/internal/files"
	"salespulse/internal/infrastructure"
	"salespulse/internal/middleware"
	"salespulse/internal/validation"
	api "salespulse/pkg/contracts/api/v1"
	"salespulse/pkg/contracts/domain"
)

// multipartMemory is the part of an upload kept in memory before spilling to disk
const multipartMemory = 8 << 20

// ReportsHandler handles report creation and download
type ReportsHandler struct {
	service        ReportServiceInterface
	files          *files.Manager
	fileValidator  *validation.FileValidator
	validate       *validator.Validate
	maxUploadBytes int64
	newRunID       func() string
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewReportsHandler creates a new reports handler
func NewReportsHandler(service ReportServiceInterface, fm *files.Manager, maxUploadBytes int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportsHandler {
	logger = logger.With(slog.String("handler", "reports"))
	return &ReportsHandler{
		service:        service,
		files:          fm,
		fileValidator:  validation.NewFileValidator(logger),
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
		newRunID:       infrastructure.NewRunID,
		logger:         logger,
		errorHandler:   errorHandler,
	}
}

// Routes returns the report routes
func (h *ReportsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(middleware.ContentTypeValidator(h.errorHandler, "multipart/form-data")).Post("/", h.CreateReport)
	r.Get("/download/{filename}", h.DownloadReport)

	return r
}

// CreateReport handles POST /api/reports. The three datasets arrive as
// multipart files; uploads are removed once the run finishes.
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.ErrPayloadTooLarge)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	runID := h.newRunID()
	logger := h.logger.With(slog.String("run_id", runID))
	defer func() {
		if err := h.files.RemoveRun(runID); err != nil {
			infrastructure.WithError(logger, err).WarnContext(ctx, "failed to remove uploads")
		}
	}()

	saved := make(map[string]dataprocessing.Source, len(api.UploadFields))
	var opened []*os.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, field := range api.UploadFields {
		path, name, err := h.saveUpload(runID, field, r.MultipartForm)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		f, err := os.Open(path)
		if err != nil {
			h.errorHandler.HandleError(w, r, fmt.Errorf("reopen upload %s: %w", field, err))
			return
		}
		opened = append(opened, f)
		saved[field] = dataprocessing.Source{Filename: name, Reader: f}
	}

	logger.InfoContext(ctx, "report run accepted")

	result, err := h.service.Run(ctx, dataprocessing.Sources{
		Customers: saved[api.FieldCustomers],
		Orders:    saved[api.FieldOrders],
		Products:  saved[api.FieldProducts],
	}, runID)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, api.ReportResponse{
		Status:      "success",
		DownloadURL: downloadURL(result),
		RunResult:   *result,
	})
}

// saveUpload stores one multipart file and returns its path and client name
func (h *ReportsHandler) saveUpload(runID, field string, form *multipart.Form) (string, string, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return "", "", apierrors.MissingUpload(field)
	}
	header := headers[0]

	if err := h.fileValidator.ValidateInputName(header.Filename); err != nil {
		return "", "", apierrors.ErrValidation(field, err.Error())
	}

	file, err := header.Open()
	if err != nil {
		return "", "", apierrors.InvalidRequestWithError(err)
	}
	defer file.Close()

	path, err := h.files.SaveUpload(runID, field+"_"+safeUploadName(header.Filename), file)
	if err != nil {
		return "", "", fmt.Errorf("save upload %s: %w", field, err)
	}
	return path, header.Filename, nil
}

// DownloadReport handles GET /api/reports/download/{filename}
func (h *ReportsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	req := api.DownloadRequest{Filename: name}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "A plain report file name is required"))
		return
	}

	path, err := h.files.ResolveReport(req.Filename)
	switch {
	case errors.Is(err, files.ErrInvalidName):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("filename", "A plain report file name is required"))
		return
	case errors.Is(err, files.ErrNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NotFoundError("Report "+req.Filename))
		return
	case err != nil:
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "downloading report", slog.String("filename", req.Filename))

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", req.Filename))
	http.ServeFile(w, r, path)
}

func downloadURL(result *domain.RunResult) string {
	return "/api/reports/download/" + url.PathEscape(result.ArchiveName)
}

// safeUploadName strips client directories so the field prefix survives
func safeUploadName(name string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if err := files.ValidateName(base); err != nil {
		return "upload"
	}
	return base
}
