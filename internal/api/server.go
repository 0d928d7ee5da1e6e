// Package api exposes the local control surface over HTTP: start/stop the
// crawl, inspect status, list records and trigger exports. It binds to
// loopback by default; there is no auth.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/crawler"
	"github.com/atmaxmoj/socialmediascrawler/internal/observability"
	"github.com/atmaxmoj/socialmediascrawler/internal/storage"
	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// CrawlController is the interface the API uses to control the crawl loop.
type CrawlController interface {
	Start(ctx context.Context) error
	Stop() error
	Status() crawler.Status
}

// Server provides the REST control API.
type Server struct {
	mux    *http.ServeMux
	addr   string
	logger *slog.Logger

	ctrl      CrawlController
	store     storage.Gateway
	metrics   *observability.Metrics
	exportDir string

	srv *http.Server
}

// NewServer creates a control server. metrics may be nil to disable the
// stats and exposition endpoints.
func NewServer(addr, exportDir string, ctrl CrawlController, store storage.Gateway, metrics *observability.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		mux:       http.NewServeMux(),
		addr:      addr,
		logger:    logger.With("component", "api_server"),
		ctrl:      ctrl,
		store:     store,
		metrics:   metrics,
		exportDir: exportDir,
	}
	s.registerRoutes()
	return s
}

// Start begins serving in the background.
func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:         s.addr,
		Handler:      s.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	s.logger.Info("control server starting", "addr", s.addr)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("control server error", "error", err)
		}
	}()
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("POST /api/start", s.handleStart)
	s.mux.HandleFunc("POST /api/stop", s.handleStop)

	s.mux.HandleFunc("GET /api/records", s.handleRecords)
	s.mux.HandleFunc("DELETE /api/records", s.handleClearRecords)
	s.mux.HandleFunc("GET /api/records/{id}", s.handleGetRecord)
	s.mux.HandleFunc("POST /api/export", s.handleExport)

	if s.metrics != nil {
		s.mux.HandleFunc("GET /api/stats", s.handleStats)
		s.mux.Handle("GET /metrics", s.metrics)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.ctrl.Status()
	count, err := s.store.Count(r.Context())
	if err == nil {
		st.RecordCount = count
	}
	s.jsonResponse(w, http.StatusOK, st)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Start(context.Background()); err != nil {
		if errors.Is(err, types.ErrAlreadyRunning) {
			s.jsonResponse(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Stop(); err != nil && !errors.Is(err, types.ErrNotRunning) {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	var (
		records []*types.PostRecord
		err     error
	)
	if p := r.URL.Query().Get("platform"); p != "" {
		records, err = s.store.GetAllByPlatform(r.Context(), types.Platform(p))
	} else {
		records, err = s.store.GetAll(r.Context())
	}
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []*types.PostRecord{}
	}
	s.jsonResponse(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": "record not found"})
			return
		}
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteAll(r.Context()); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	s.logger.Info("records cleared")
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// handleExport renders all records (optionally filtered by platform) in the
// requested format and writes the file under the export directory.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Format   string `json:"format"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if body.Format == "" {
		body.Format = string(storage.FormatJSON)
	}

	var (
		records []*types.PostRecord
		err     error
	)
	if body.Platform != "" {
		records, err = s.store.GetAllByPlatform(r.Context(), types.Platform(body.Platform))
	} else {
		records, err = s.store.GetAll(r.Context())
	}
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	res, err := storage.Export(records, storage.Format(body.Format))
	if err != nil {
		if errors.Is(err, types.ErrUnknownFormat) {
			s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	path := filepath.Join(s.exportDir, res.Filename)
	if err := os.WriteFile(path, []byte(res.Data), 0o644); err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("export written", "path", path, "records", len(records))
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":   "exported",
		"path":     path,
		"filename": res.Filename,
		"records":  len(records),
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
