package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lazypower/council/internal/executive"
	"github.com/lazypower/council/internal/store"
)

// Server is the council HTTP API server.
type Server struct {
	db      *store.DB
	router  chi.Router
	version string
	started time.Time
	log     *zap.Logger

	// mu serializes access to the executive and its advisors.
	mu   sync.Mutex
	exec *executive.Executive
}

// New creates a new Server over the given executive and decision journal.
func New(exec *executive.Executive, db *store.DB, version string) *Server {
	s := &Server{
		db:      db,
		exec:    exec,
		version: version,
		started: time.Now(),
		log:     zap.NewNop(),
	}
	s.routes()
	return s
}

// SetLogger configures request and error logging.
func (s *Server) SetLogger(l *zap.Logger) {
	if l != nil {
		s.log = l
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/advisors", s.handleListAdvisors)
		r.Post("/advisors", s.handleRegisterAdvisor)
		r.Get("/advisors/{id}", s.handleGetAdvisor)
		r.Get("/advisors/{id}/memories", s.handleListMemories)
		r.Post("/advisors/{id}/memories", s.handleAddMemory)
		r.Post("/advisors/{id}/retain", s.handleRetain)

		r.Post("/decide", s.handleDecide)
		r.Post("/reflect", s.handleReflect)
		r.Get("/decisions", s.handleListDecisions)
		r.Get("/decisions/{id}", s.handleGetDecision)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.Ping(); err != nil {
		dbOK = false
	}

	s.mu.Lock()
	advisors := len(s.exec.Advisors())
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"uptime":   time.Since(s.started).Seconds(),
		"db":       dbOK,
		"db_path":  s.db.Path,
		"advisors": advisors,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
