package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates are the templates that render inside the base layout.
var pageTemplates = []string{
	"home.html",
	"state.html",
	"permalink.html",
	"newpost.html",
	"editpost.html",
	"translate.html",
	"data.html",
	"search.html",
	"contact.html",
	"thanks.html",
	"page.html",
	"login.html",
	"error.html",
}

// Renderer executes the embedded HTML templates. Each page template plugs a
// content block into the shared base layout.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(logger *slog.Logger) (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{templates: templates, logger: logger}, nil
}

// Render writes the named page with the given data.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data map[string]any) {
	tmpl, ok := r.templates[name]
	if !ok {
		r.logger.Error("unknown template", slog.String("name", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		r.logger.Error("failed to render template",
			slog.String("name", name), slog.String("error", err.Error()))
	}
}

// RenderError writes the shared error page.
func (r *Renderer) RenderError(w http.ResponseWriter, status int, message string) {
	r.Render(w, status, "error.html", map[string]any{
		"Title":   "Something went wrong",
		"Status":  status,
		"Message": message,
	})
}
