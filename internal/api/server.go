package api

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/oddlyprompt/ExitorDie/internal/config"
	"github.com/oddlyprompt/ExitorDie/internal/score"
	"github.com/oddlyprompt/ExitorDie/internal/store"
)

// Server handles HTTP requests
type Server struct {
	db        store.DB
	pipeline  *score.Pipeline
	cfg       *config.Config
	logger    *log.Logger
	startTime time.Time
}

// NewServer creates a new API server
func NewServer(db store.DB, cfg *config.Config) *Server {
	logger := log.New(os.Stdout, "[API] ", log.LstdFlags|log.LUTC)

	return &Server{
		db:        db,
		pipeline:  score.NewPipeline(db),
		cfg:       cfg,
		logger:    logger,
		startTime: time.Now(),
	}
}

// Routes sets up the HTTP routes with proper middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.RequestLoggingMiddleware)
	r.Use(s.RecoveryHandler)
	r.Use(middleware.Timeout(s.cfg.RequestTimeout))
	r.Use(s.CORSMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/content", s.handleGetContent)
		r.Post("/admin/content", s.handleAdminContent)
		r.Get("/daily", s.handleDaily)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Post("/score/submit", s.handleSubmitScore)
		r.Get("/items/{hash}", s.handleGetItem)
	})

	return r
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Server-Version", ServerVersion)
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
