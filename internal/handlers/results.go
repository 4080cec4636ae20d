package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/store"
	"github.com/diaglab/apiserver/types"
)

const (
	maxReportMemory = 16 << 20
	maxReportBytes  = 32 << 20
	formFieldReport = "report"
)

// ResultHandler provides HTTP handlers for test results.
type ResultHandler struct {
	resultService *services.ResultService
}

// NewResultHandler constructs a handler with the provided service.
func NewResultHandler(resultService *services.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// ResultRouter registers result routes on the given router.
func ResultRouter(r chi.Router, resultService *services.ResultService, requireAuth, requireAdmin func(http.Handler) http.Handler) {
	handler := NewResultHandler(resultService)

	r.Get("/", handler.List)
	r.Post("/", handler.Create)
	// Shared {email} placeholder: the report routes carry a numeric
	// id. chi allows one wildcard name per segment.
	r.With(requireAuth, requireAdmin).Put("/{email}/report", handler.UploadReport)
	r.Get("/{email}/report", handler.DownloadReport)
	r.Get("/{email}", handler.ListByEmail)
}

func (h *ResultHandler) List(w http.ResponseWriter, r *http.Request) {
	results, err := h.resultService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *ResultHandler) Create(w http.ResponseWriter, r *http.Request) {
	var result types.Result
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result.Email = strings.TrimSpace(result.Email)
	if result.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	created, err := h.resultService.Create(r.Context(), result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create result")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ResultHandler) ListByEmail(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	results, err := h.resultService.ListByEmail(r.Context(), email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list results")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// UploadReport attaches the report file to a result.
func (h *ResultHandler) UploadReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := r.ParseMultipartForm(maxReportMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, err := parseReportFile(r.MultipartForm)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.resultService.AttachReport(r.Context(), id, file.Filename, file.ContentType, file.Data)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store report")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DownloadReport streams the stored report to the caller.
func (h *ResultHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "email")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reader, err := h.resultService.OpenReport(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound), errors.Is(err, services.ErrNoReport):
			writeError(w, http.StatusNotFound, "report not found")
		default:
			writeError(w, http.StatusInternalServerError, "failed to open report")
		}
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = io.Copy(w, reader)
}

// ReportFile represents an uploaded report.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

func parseReportFile(form *multipart.Form) (ReportFile, error) {
	if form == nil {
		return ReportFile{}, errors.New("missing form data")
	}

	files := form.File[formFieldReport]
	if len(files) == 0 {
		return ReportFile{}, errors.New("report file is required")
	}
	if len(files) > 1 {
		return ReportFile{}, errors.New("only one report file is allowed")
	}

	fileHeader := files[0]
	file, err := fileHeader.Open()
	if err != nil {
		return ReportFile{}, fmt.Errorf("failed to read report file: %w", err)
	}

	data, err := readFileLimited(file, maxReportBytes)
	_ = file.Close()
	if err != nil {
		return ReportFile{}, err
	}

	return ReportFile{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	limited := io.LimitReader(reader, limit+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, errors.New("failed to read upload")
	}
	if int64(len(data)) > limit {
		return nil, errors.New("uploaded file too large")
	}
	return data, nil
}
