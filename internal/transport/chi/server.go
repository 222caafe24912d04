// Package chi is the HTTP transport: hand-routed chi endpoints over the
// search and record services, with a JSON error envelope mapping domain
// sentinels to status codes.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/recall-vault/recall/internal/domain"
	"github.com/recall-vault/recall/internal/domain/record"
	"github.com/recall-vault/recall/internal/domain/search/request"
	"github.com/recall-vault/recall/internal/domain/search/result"
)

const defaultQuickLimit = 10

// SearchService is the retrieval pipeline surface the server exposes.
type SearchService interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, int, string, error)
	QuickSearch(ctx context.Context, owner, prefix string, limit int) ([]result.Result, error)
	FindSimilar(ctx context.Context, owner, recordID string, limit int) ([]result.Result, error)
}

// RecordService is the ingestion and lookup surface.
type RecordService interface {
	Put(ctx context.Context, rec *record.Record) error
	Get(ctx context.Context, owner, id string) (record.Record, error)
	Delete(ctx context.Context, owner, id string) error
}

// Pinger reports store liveness for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the HTTP handlers.
type Server struct {
	search  SearchService
	records RecordService
	store   Pinger
	logger  *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(search SearchService, records RecordService, store Pinger, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{search: search, records: records, store: store, logger: logger}
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.handleSearch)
	r.Get("/search/quick", s.handleQuickSearch)
	r.Get("/records/{id}/similar", s.handleFindSimilar)
	r.Put("/records/{id}", s.handlePutRecord)
	r.Get("/records/{id}", s.handleGetRecord)
	r.Delete("/records/{id}", s.handleDeleteRecord)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var dto searchRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	req, err := dto.toRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	results, total, enhanced, err := s.search.Search(r.Context(), &req)
	if err != nil {
		s.writeDomainError(w, err, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, searchResponseDTO{
		Results:       resultsToDTO(results),
		Total:         total,
		EnhancedQuery: enhanced,
	})
}

func (s *Server) handleQuickSearch(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	prefix := r.URL.Query().Get("prefix")
	if owner == "" || prefix == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "owner and prefix are required")
		return
	}
	limit := queryInt(r, "limit", defaultQuickLimit)

	results, err := s.search.QuickSearch(r.Context(), owner, prefix, limit)
	if err != nil {
		s.writeDomainError(w, err, "quick search failed")
		return
	}
	writeJSON(w, http.StatusOK, resultListDTO{Results: resultsToDTO(results)})
}

func (s *Server) handleFindSimilar(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "owner is required")
		return
	}
	id := chi.URLParam(r, "id")
	limit := queryInt(r, "limit", defaultQuickLimit)

	results, err := s.search.FindSimilar(r.Context(), owner, id, limit)
	if err != nil {
		s.writeDomainError(w, err, "find similar failed")
		return
	}
	writeJSON(w, http.StatusOK, resultListDTO{Results: resultsToDTO(results)})
}

func (s *Server) handlePutRecord(w http.ResponseWriter, r *http.Request) {
	var dto recordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	dto.ID = chi.URLParam(r, "id")
	if dto.Owner == "" || dto.Text == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "owner and text are required")
		return
	}

	rec := dto.toRecord()
	if err := s.records.Put(r.Context(), &rec); err != nil {
		s.writeDomainError(w, err, "put record failed")
		return
	}
	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "owner is required")
		return
	}

	rec, err := s.records.Get(r.Context(), owner, chi.URLParam(r, "id"))
	if err != nil {
		s.writeDomainError(w, err, "get record failed")
		return
	}
	writeJSON(w, http.StatusOK, recordToDTO(&rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "owner is required")
		return
	}

	if err := s.records.Delete(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		s.writeDomainError(w, err, "delete record failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

// writeDomainError maps domain sentinels to HTTP statuses; everything else
// becomes an opaque 500.
func (s *Server) writeDomainError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, codeRecordNotFound, domain.ErrRecordNotFound.Error())
	case errors.Is(err, domain.ErrEmbeddingProviderError):
		writeError(w, http.StatusBadGateway, codeProviderError, domain.ErrEmbeddingProviderError.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}
