// Package httpadapter exposes the contract intelligence API over HTTP.
package httpadapter

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/contract-intelligence/internal/core/domain"
	"github.com/kirillkom/contract-intelligence/internal/core/ports"
	"github.com/kirillkom/contract-intelligence/internal/observability/metrics"
)

// maxUploadBytes caps uploads at 50MB, matching the documented API limit.
const maxUploadBytes = 50 << 20

type Router struct {
	submitter ports.ContractSubmitter
	reader    ports.ContractReader
	storage   ports.ObjectStorage
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	submitter ports.ContractSubmitter,
	reader ports.ContractReader,
	storage ports.ObjectStorage,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	return &Router{
		submitter: submitter,
		reader:    reader,
		storage:   storage,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/contracts", rt.contractsCollection)
	mux.HandleFunc("/v1/contracts/", rt.contractsItem)

	var handler http.Handler = mux
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
		handler = rt.metrics.Middleware("api", handler)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) contractsCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadContract(w, r)
	case http.MethodGet:
		rt.listContracts(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (rt *Router) contractsItem(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/contracts/")
	id, sub, _ := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "contract id is required")
		return
	}

	switch sub {
	case "":
		rt.getContract(w, r, id)
	case "status":
		rt.getContractStatus(w, r, id)
	case "download":
		rt.downloadContract(w, r, id)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (rt *Router) uploadContract(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	if !isPDFUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		writeError(w, http.StatusBadRequest, "only PDF contracts are accepted")
		return
	}

	rec, err := rt.submitter.Submit(
		r.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	if rt.metrics != nil {
		rt.metrics.ObserveUploadSize(rec.FileSize)
	}

	writeJSON(w, http.StatusAccepted, uploadResponse{
		ContractID: rec.ID,
		Filename:   rec.Filename,
		FileSize:   rec.FileSize,
		Status:     rec.Status,
		Message:    "contract accepted for processing",
	})
}

func (rt *Router) listContracts(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summaries, total, err := rt.reader.List(r.Context(), filter)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	filter = filter.Normalize()
	writeJSON(w, http.StatusOK, listResponse{
		Contracts:  summaries,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: (total + filter.PageSize - 1) / filter.PageSize,
	})
}

func (rt *Router) getContractStatus(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statusResponseFrom(rec))
}

// getContract returns the full parsed record once processing is complete.
// While the pipeline is still running it answers 202 with the live status
// payload so clients can keep polling the same URL.
func (rt *Router) getContract(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	switch rec.Status {
	case domain.StatusPending, domain.StatusProcessing:
		writeJSON(w, http.StatusAccepted, statusResponseFrom(rec))
	case domain.StatusFailed:
		writeError(w, http.StatusInternalServerError,
			fmt.Sprintf("contract processing failed: %s", errorMessageOr(rec.ErrorMessage, "unknown error")))
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

func (rt *Router) downloadContract(w http.ResponseWriter, r *http.Request, id string) {
	rec, err := rt.reader.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}

	reader, err := rt.storage.Open(r.Context(), rec.StoragePath)
	if err != nil {
		if domain.IsKind(err, domain.ErrContractNotFound) {
			writeError(w, http.StatusNotFound, "contract file not found on server")
			return
		}
		writeError(w, mapErrorToHTTPStatus(err), err.Error())
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rec.Filename))
	_, _ = io.Copy(w, reader)
}

type uploadResponse struct {
	ContractID string                  `json:"contract_id"`
	Filename   string                  `json:"filename"`
	FileSize   int64                   `json:"file_size"`
	Status     domain.ProcessingStatus `json:"status"`
	Message    string                  `json:"message"`
}

type listResponse struct {
	Contracts  []domain.ContractSummary `json:"contracts"`
	Total      int                      `json:"total"`
	Page       int                      `json:"page"`
	PageSize   int                      `json:"page_size"`
	TotalPages int                      `json:"total_pages"`
}

type statusResponse struct {
	ContractID            string                  `json:"contract_id"`
	Status                domain.ProcessingStatus `json:"status"`
	Progress              int                     `json:"progress"`
	ErrorMessage          string                  `json:"error_message,omitempty"`
	SubmittedAt           time.Time               `json:"submitted_at"`
	ProcessingTimeSeconds *float64                `json:"processing_time_seconds,omitempty"`
}

func statusResponseFrom(rec *domain.ContractRecord) statusResponse {
	return statusResponse{
		ContractID:            rec.ID,
		Status:                rec.Status,
		Progress:              rec.Progress,
		ErrorMessage:          rec.ErrorMessage,
		SubmittedAt:           rec.SubmittedAt,
		ProcessingTimeSeconds: rec.ProcessingTimeSeconds,
	}
}

func parseListFilter(r *http.Request) (domain.ContractFilter, error) {
	query := r.URL.Query()
	filter := domain.ContractFilter{}

	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return filter, fmt.Errorf("invalid page %q", raw)
		}
		filter.Page = page
	}
	if raw := query.Get("page_size"); raw != "" {
		pageSize, err := strconv.Atoi(raw)
		if err != nil || pageSize < 1 {
			return filter, fmt.Errorf("invalid page_size %q", raw)
		}
		filter.PageSize = pageSize
	}
	if raw := query.Get("status"); raw != "" {
		switch domain.ProcessingStatus(raw) {
		case domain.StatusPending, domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed:
			filter.Status = domain.ProcessingStatus(raw)
		default:
			return filter, fmt.Errorf("invalid status %q", raw)
		}
	}

	var err error
	if filter.MinScore, err = parseScoreParam(query.Get("min_score"), "min_score"); err != nil {
		return filter, err
	}
	if filter.MaxScore, err = parseScoreParam(query.Get("max_score"), "max_score"); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseScoreParam(raw, name string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	score, err := strconv.ParseFloat(raw, 64)
	if err != nil || score < 0 || score > 100 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &score, nil
}

func isPDFUpload(filename, contentType string) bool {
	if strings.EqualFold(strings.TrimSpace(contentType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

func errorMessageOr(message, fallback string) string {
	if strings.TrimSpace(message) == "" {
		return fallback
	}
	return message
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
