package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/rmo02/dash-financeiro/pkg/config"
	"github.com/rmo02/dash-financeiro/pkg/csv"
	"github.com/rmo02/dash-financeiro/pkg/models"
	"github.com/rmo02/dash-financeiro/pkg/normalize"
	"github.com/rmo02/dash-financeiro/pkg/parser"
	"github.com/rmo02/dash-financeiro/pkg/session"
)

const maxUploadBytes = 32 << 20

// Server exposes one dashboard session over HTTP.
type Server struct {
	config *config.Config
	logger *log.Logger
	mux    *http.ServeMux
	store  *session.Store
}

func New(cfg *config.Config, logger *log.Logger) *Server {
	s := &Server{
		config: cfg,
		logger: logger,
		mux:    http.NewServeMux(),
		store:  session.New(logger, parser.New(logger, parser.WithSheet(cfg.Sheet))),
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/upload", s.withLogging(s.handleUpload))
	s.mux.HandleFunc("/api/dataset", s.withLogging(s.handleDataset))
	s.mux.HandleFunc("/api/dimensions", s.withLogging(s.handleDimensions))
	s.mux.HandleFunc("/api/filters", s.withLogging(s.handleFilters))
	s.mux.HandleFunc("/api/filters/reset", s.withLogging(s.handleResetFilters))
	s.mux.HandleFunc("/api/report", s.withLogging(s.handleReport))
	s.mux.HandleFunc("/api/records", s.withLogging(s.handleRecords))
	s.mux.HandleFunc("/api/export", s.withLogging(s.handleExport))
}

// ---------------- upload ----------------

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("workbook")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}

	ds, err := s.store.Load(r.Context(), data, header.Filename)
	if err != nil {
		s.respondLoadError(w, r, err)
		return
	}

	s.logger.Info("workbook uploaded", "file", header.Filename, "records", len(ds.Records), "warnings", len(ds.Warnings))
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"dataset":   ds,
		"records":   len(ds.Records),
		"selection": s.store.Selection(),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) respondLoadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, session.ErrStaleGeneration):
		s.respondError(w, r, http.StatusConflict, "upload superseded by a newer one", err)
	case normalize.IsValidationError(err):
		s.respondError(w, r, http.StatusUnprocessableEntity, session.Message(err), err)
	default:
		s.respondError(w, r, http.StatusBadRequest, session.Message(err), err)
	}
}

// ---------------- read handlers ----------------

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	ds, err := s.store.Dataset()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "success",
		"dataset":    ds,
		"records":    len(ds.Records),
		"loading":    s.store.Loading(),
		"last_error": session.Message(s.store.LastError()),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	dims, err := s.store.Dimensions()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, dims); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	report, err := s.store.Report()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, report); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	records, err := s.store.Filtered()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"records": records,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- filters ----------------

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
	case http.MethodPut:
		var sel models.Selection
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&sel); err != nil {
			s.respondError(w, r, http.StatusBadRequest, "invalid selection", err)
			return
		}
		s.store.SetSelection(sel)
	default:
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.writeSelection(w)
}

func (s *Server) handleResetFilters(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}
	s.store.ResetFilters()
	s.writeSelection(w)
}

func (s *Server) writeSelection(w http.ResponseWriter) {
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"selection": s.store.Selection(),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// ---------------- export ----------------

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	name := r.URL.Query().Get("encoding")
	if name == "" {
		name = s.config.CSV.Encoding
	}
	enc, err := csv.ParseEncoding(name)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "invalid encoding", err)
		return
	}

	ds, err := s.store.Dataset()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	records, err := s.store.Filtered()
	if err != nil {
		s.respondNoDataset(w, r, err)
		return
	}
	data, err := csv.Encode(csv.Create(records, nil), enc)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to encode csv", err)
		return
	}

	filename := strings.TrimSuffix(ds.FileName, filepath.Ext(ds.FileName)) + "-filtrado.csv"
	w.Header().Set("Content-Type", fmt.Sprintf("text/csv; charset=%s", enc))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (s *Server) respondNoDataset(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrNoDataset) {
		s.respondError(w, r, http.StatusConflict, session.Message(err), nil)
		return
	}
	s.respondError(w, r, http.StatusInternalServerError, "internal server error", err)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
