package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/jorgeml/coinbase-ledger/pkg/importer"
	"github.com/jorgeml/coinbase-ledger/pkg/ledger"
	"github.com/jorgeml/coinbase-ledger/pkg/reconcile"
)

// Server handles HTTP requests for snapshot extraction previews.
type Server struct {
	importers []importer.Importer
	logger    *log.Logger
	mux       *http.ServeMux
	rendered  sync.Map
}

// New creates a new HTTP server.
func New(importers []importer.Importer, logger *log.Logger) *Server {
	return &Server{
		importers: importers,
		logger:    logger,
		mux:       http.NewServeMux(),
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/extract", s.withLogging(s.handleExtract))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
	s.mux.HandleFunc("/healthz", s.withLogging(s.handleHealth))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleExtract accepts a snapshot upload, runs identification across the
// configured importers and returns the rendered directives.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	file, header, err := r.FormFile("snapshot")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read file", err)
		return
	}
	defer file.Close()

	// Importers operate on paths, so the upload is staged in a temp file
	// that keeps the original extension for identification.
	tmp, err := os.CreateTemp("", "snapshot-*"+filepath.Ext(header.Filename))
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to stage file", err)
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		s.respondError(w, r, http.StatusInternalServerError, "failed to stage file", err)
		return
	}
	tmp.Close()

	var match importer.Importer
	for _, imp := range s.importers {
		if imp.Identify(tmp.Name()) {
			match = imp
			break
		}
	}
	if match == nil {
		s.respondError(w, r, http.StatusUnprocessableEntity, "no importer claimed the file", nil)
		return
	}

	entries, err := match.Extract(tmp.Name(), nil)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to extract snapshot", err)
		return
	}

	report := reconcile.Build(ledger.Transactions(entries), nil)

	archival, err := match.Filename(tmp.Name())
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to derive filename", err)
		return
	}

	rendered := string(ledger.Render(entries, nil))
	s.rendered.Store(archival, rendered)

	if err := s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "success",
		"account":  match.Account(tmp.Name()),
		"file":     archival,
		"entries":  rendered,
		"new":      report.MissingCount(),
		"existing": report.ExistingCount(),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleFiles serves the rendered output of a previously extracted snapshot.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := r.URL.Path[len("/api/files/"):]
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.rendered.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	rendered, ok := value.(string)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := io.WriteString(w, rendered); err != nil {
		s.logger.Warn("failed to write response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
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

// withLogging wraps a handler to log requests and recover panics.
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
