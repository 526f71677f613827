// Package server provides the HTTP API for the training companion.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mkoda/bifrost/internal/course"
	"github.com/mkoda/bifrost/internal/optimizer"
	"github.com/mkoda/bifrost/internal/oracle"
	"github.com/mkoda/bifrost/internal/store"
	"github.com/mkoda/bifrost/internal/types"
)

// Settings is the persisted, user-editable settings document.
type Settings struct {
	Calculator types.CalculatorConfig `json:"calculator"`
	Targets    types.Targets          `json:"targets"`
}

// DefaultSettings returns the built-in settings used before any save.
func DefaultSettings() Settings {
	return Settings{
		Calculator: types.DefaultCalculator(),
		Targets:    types.DefaultTargets(),
	}
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	store      *store.Store
	oracle     oracle.Client
	courses    course.Provider
	optimizer  *optimizer.Optimizer
	state      *stateHub

	settingsMu sync.RWMutex
	settings   Settings

	// optimizeMu serializes optimization runs; a new run supersedes the
	// previous one's in-flight oracle requests.
	optimizeMu sync.Mutex
}

// Config holds server configuration
type Config struct {
	Host           string
	Port           int
	OracleURL      string
	CourseDataPath string
	CourseDataURL  string
	DatabasePath   string
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	client := oracle.NewHTTPClient(cfg.OracleURL)

	var courses course.Provider
	switch {
	case cfg.CourseDataPath != "":
		courses = course.NewFileProvider(cfg.CourseDataPath)
	case cfg.CourseDataURL != "":
		courses = course.NewHTTPProvider(cfg.CourseDataURL)
	}

	s := &Server{
		store:     db,
		oracle:    client,
		courses:   courses,
		optimizer: optimizer.New(client),
		state:     newStateHub(),
		settings:  DefaultSettings(),
	}
	s.loadSettings()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSaveSettings)

	mux.HandleFunc("GET /api/state", s.handleGetState)
	mux.HandleFunc("POST /api/state", s.handleIngestState)
	mux.HandleFunc("POST /api/state-reset", s.handleResetState)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("GET /api/evaluate", s.handleEvaluate)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/optimize", s.handleOptimize)
	mux.HandleFunc("POST /api/optimize/stream", s.handleOptimizeStream)
	mux.HandleFunc("GET /api/runs", s.handleListRuns)

	mux.HandleFunc("GET /api/course-set/{id}", s.handleCourseSet)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for optimization runs and SSE
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// loadSettings restores the persisted settings document if one exists.
func (s *Server) loadSettings() {
	doc, err := s.store.LoadSettings(context.Background())
	if err != nil {
		log.Printf("Failed to load settings: %v", err)
		return
	}
	if doc == nil {
		return
	}
	var settings Settings
	if err := json.Unmarshal(doc, &settings); err != nil {
		log.Printf("Ignoring corrupt settings document: %v", err)
		return
	}
	settings.Calculator = settings.Calculator.Normalize()
	s.settings = settings
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := s.store.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// currentSettings returns a copy of the active settings.
func (s *Server) currentSettings() Settings {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
