package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/wordhtml/internal/config"
	"github.com/dgallion1/wordhtml/internal/convert"
	"github.com/dgallion1/wordhtml/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for wordhtml.
type Server struct {
	router    chi.Router
	converter *convert.Converter
	results   *store.Store
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(conv *convert.Converter, results *store.Store, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		converter: conv,
		results:   results,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/api/convert/document", s.handleConvertDocument)
		r.Post("/api/convert/text", s.handleConvertText)
		r.Post("/api/convert/path", s.handleConvertPath)

		r.Get("/api/conversions/{id}", s.handleGetConversion)
		r.Get("/api/conversions/{id}/html", s.handleGetConversionHTML)

		r.Get("/api/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
