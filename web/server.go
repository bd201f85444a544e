package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hypergopher/trailblog"
)

// Server holds the HTTP surface of the blog: handlers, templates, and the
// admin gate, all over an injected Blog core.
type Server struct {
	blog     *trailblog.Blog
	pages    map[string]*trailblog.Page
	mailer   trailblog.Mailer
	auth     *Auth
	renderer *Renderer
	limiter  *RateLimiter
	logger   *slog.Logger
}

// Options configures a Server.
type Options struct {
	Blog   *trailblog.Blog            // Blog is the post/cache core. Required.
	Pages  map[string]*trailblog.Page // Pages are the static markdown pages, keyed by slug.
	Mailer trailblog.Mailer           // Mailer relays contact messages. Optional; without it the contact form reports an error.
	Auth   *Auth                      // Auth is the admin gate. Required.
	Logger *slog.Logger
}

// NewServer creates a Server with the provided options.
func NewServer(opts Options) (*Server, error) {
	if opts.Blog == nil {
		return nil, errors.New("Blog is required")
	}
	if opts.Auth == nil {
		return nil, errors.New("Auth is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	renderer, err := NewRenderer(opts.Logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		blog:     opts.Blog,
		pages:    opts.Pages,
		mailer:   opts.Mailer,
		auth:     opts.Auth,
		renderer: renderer,
		limiter:  NewRateLimiter(5, time.Minute),
		logger:   opts.Logger,
	}, nil
}

// Router builds the route table.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/", s.handleHome)
	r.Get("/search", s.handleSearch)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Get("/contact", s.handleContactForm)
	r.With(s.limiter.Limit).Post("/contact", s.handleContact)
	r.Get("/thanks", s.handleThanks)

	for slug := range s.pages {
		r.Get("/"+slug, s.handlePage(slug))
	}

	r.Route("/blog/{state}", func(r chi.Router) {
		r.Use(s.stateCtx)
		r.Get("/", s.handleStatePage)
		r.Get("/{id}", s.handlePermalink)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.RequireAdmin)
			r.Get("/{id}/edit", s.handleEditForm)
			r.Post("/{id}/edit", s.handleEdit)
			r.Get("/{id}/translate", s.handleTranslateForm)
			r.Post("/{id}/translate", s.handleTranslate)
			r.Post("/{id}/delete", s.handleDelete)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.auth.RequireAdmin)
		r.Get("/newpost", s.handleNewPostForm)
		r.Post("/newpost", s.handleNewPost)
		r.Get("/data", s.handleData)
		r.Post("/admin/rewrite", s.handleRewrite)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderer.RenderError(w, http.StatusNotFound, "Page not found.")
	})

	return r
}
