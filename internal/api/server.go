package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/docversions/internal/config"
	"github.com/dgallion1/docversions/internal/menu"
	"github.com/dgallion1/docversions/internal/site"
	"github.com/dgallion1/docversions/internal/versions"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server serves site pages with the versions menu injected, plus a small
// JSON API over the version list.
type Server struct {
	router   chi.Router
	store    *versions.Store
	renderer *site.Renderer
	opts     menu.Options
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(store *versions.Store, renderer *site.Renderer, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:    store,
		renderer: renderer,
		opts: menu.Options{
			ContainerID: cfg.ContainerID,
			PathPrefix:  cfg.PathPrefix,
			Strict:      cfg.StrictContainer,
		},
		log: log,
		cfg: cfg,
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

	r.Get("/health", s.handleHealth)
	r.Get("/"+site.ScriptPath, s.handleScript)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))

		r.Get("/versions", s.handleListVersions)
		r.Get("/stats/render", s.handleRenderStats)

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
			r.Post("/versions/reload", s.handleReloadVersions)
		})
	})

	r.Get("/*", s.handlePage)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
