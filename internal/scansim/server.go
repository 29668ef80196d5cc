package scansim

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// DefaultStepInterval is the delay between job milestones.
const DefaultStepInterval = 500 * time.Millisecond

// Options configures the simulated scan service.
type Options struct {
	// StepInterval is the delay between job milestones. Zero uses
	// DefaultStepInterval.
	StepInterval time.Duration

	// Files seeds the simulated folder tree. Nil uses a built-in fixture.
	Files []FileEntry

	// Failures maps folder ids to an error reason. Scanning such a
	// folder fails the job partway through with that reason.
	Failures map[string]string

	// Logger receives request and job logs. Nil uses slog.Default().
	Logger *slog.Logger
}

// Server simulates the folder-scan service over HTTP. Jobs advance
// through the same milestones the real service reports, on a timer
// instead of actual Drive traffic.
type Server struct {
	logger *slog.Logger
	router *chi.Mux
	opts   Options

	mu   sync.RWMutex
	jobs map[string]*job
}

// New returns a Server ready to serve requests.
func New(opts Options) *Server {
	if opts.StepInterval <= 0 {
		opts.StepInterval = DefaultStepInterval
	}
	if opts.Files == nil {
		opts.Files = defaultFiles()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	s := &Server{
		logger: opts.Logger.With("component", "scansim"),
		router: chi.NewRouter(),
		opts:   opts,
		jobs:   make(map[string]*job),
	}
	s.routes()
	return s
}

// Router returns the HTTP handler for the service.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/scan", s.handleListFiles)
	s.router.Post("/api/scan", s.handleStartScan)
	s.router.Get("/api/scan/{jobID}/status", s.handleJobStatus)
	s.router.Get("/api/scan/{jobID}/download", s.handleDownload)
}

func requestLogger(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				log.Info("request completed",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"duration", time.Since(start),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStartScan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FolderID string `json:"folder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FolderID == "" {
		s.respondError(w, http.StatusBadRequest, "folder_id is required")
		return
	}

	jobID := uuid.NewString()

	// Record the job before answering so the first status poll can
	// never miss it.
	s.mu.Lock()
	s.jobs[jobID] = &job{
		Status:  statusProcessing,
		Message: "Authentication in progress",
	}
	s.mu.Unlock()

	go s.runScan(jobID, req.FolderID)

	s.logger.Info("scan started", "job_id", jobID, "folder_id", req.FolderID)
	s.respondJSON(w, http.StatusOK, map[string]string{
		"job_id":  jobID,
		"message": "Scan started",
	})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	j, ok := s.getJob(chi.URLParam(r, "jobID"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "Job not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"status":   j.Status,
		"message":  j.Message,
		"progress": j.Progress,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	j, ok := s.getJob(chi.URLParam(r, "jobID"))
	if !ok {
		s.respondError(w, http.StatusNotFound, "Job not found")
		return
	}
	if j.Status != statusCompleted {
		s.respondError(w, http.StatusBadRequest, "Scan not completed yet")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="google_drive_scan.csv"`)
	w.Write(j.export)
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	type fileRecord struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		MimeType     string    `json:"mimeType"`
		ModifiedTime time.Time `json:"modifiedTime"`
	}

	records := make([]fileRecord, 0, len(s.opts.Files))
	for _, f := range s.opts.Files {
		records = append(records, fileRecord{
			ID:           f.ID,
			Name:         f.Name,
			MimeType:     f.MimeType,
			ModifiedTime: f.Modified,
		})
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"files": records})
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondError writes the service's error envelope.
func (s *Server) respondError(w http.ResponseWriter, code int, detail string) {
	s.respondJSON(w, code, map[string]string{"detail": detail})
}
