package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/biomente/biomente/internal/api"
	"github.com/biomente/biomente/internal/api/handlers"
	"github.com/biomente/biomente/internal/api/middleware"
)

type RouterConfig struct {
	ProfileHandler      *handlers.ProfileHandler
	ProjectHandler      *handlers.ProjectHandler
	SearchHandler       *handlers.SearchHandler
	DocumentHandler     *handlers.DocumentHandler
	ArticleHandler      *handlers.ArticleHandler
	ComparisonHandler   *handlers.ComparisonHandler
	BibliographyHandler *handlers.BibliographyHandler
	ChatHandler         *handlers.ChatHandler
	StateHandler        *handlers.StateHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 25 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/state", cfg.StateHandler.Get)

	r.Route("/profiles", func(r chi.Router) {
		r.Post("/", cfg.ProfileHandler.Create)
		r.Post("/{id}/select", cfg.ProfileHandler.Select)
	})
	r.Post("/logout", cfg.ProfileHandler.Logout)

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", cfg.ProjectHandler.Create)
		r.Post("/{id}/switch", cfg.ProjectHandler.Switch)
	})

	r.Route("/search", func(r chi.Router) {
		r.Post("/", cfg.SearchHandler.Search)
		r.Post("/more", cfg.SearchHandler.LoadMore)
		r.Post("/fragment", cfg.SearchHandler.SearchFragment)
	})

	r.Route("/documents", func(r chi.Router) {
		r.Post("/", cfg.DocumentHandler.Upload)
		r.Get("/download", cfg.DocumentHandler.DownloadURL)
	})

	r.Route("/articles", func(r chi.Router) {
		r.Post("/save", cfg.ArticleHandler.Save)
		r.Post("/compare/{doi}", cfg.ArticleHandler.MarkCompare)
	})

	r.Route("/comparison", func(r chi.Router) {
		r.Post("/", cfg.ComparisonHandler.Start)
		r.Get("/", cfg.ComparisonHandler.Get)
		r.Delete("/", cfg.ComparisonHandler.Clear)
	})

	r.Post("/bibliography", cfg.BibliographyHandler.Export)

	r.Route("/chat", func(r chi.Router) {
		r.Post("/", cfg.ChatHandler.Message)
		r.Delete("/{doi}", cfg.ChatHandler.End)
	})

	return r
}
