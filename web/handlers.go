package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hypergopher/trailblog"
)

// embedSnippets is shown on the post forms. There is no markup language for
// posts, so these ready-made snippets make it easy to drop photos and videos
// in from a phone.
const embedSnippets = `Img Code:

<a href="?dl=1"><img src="dl=1" alt=""></a>

Vimeo Code:

<div class="embed-container"><iframe src="" frameborder="0" allowfullscreen></iframe></div>

Youtube Code:

<div class="embed-container"><iframe src="" frameborder="0" allowfullscreen></iframe></div>`

func (s *Server) baseData(r *http.Request, title string) map[string]any {
	return map[string]any{
		"Title":   title,
		"IsAdmin": s.auth.IsAdmin(r),
		"States":  trailblog.DefaultStates(),
	}
}

func parsePostID(r *http.Request) (string, int64, error) {
	state := chi.URLParam(r, "state")
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed post id: %w", err)
	}
	return state, id, nil
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.TopPosts(r.Context(), false)
	if err != nil {
		s.logger.Error("failed to load top posts", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := s.baseData(r, "Trail journal")
	data["Posts"] = posts
	s.renderer.Render(w, http.StatusOK, "home.html", data)
}

func (s *Server) handleStatePage(w http.ResponseWriter, r *http.Request) {
	state := chi.URLParam(r, "state")
	posts, err := s.blog.PostsForState(r.Context(), state, false)
	if err != nil {
		s.logger.Error("failed to load state posts",
			slog.String("state", state), slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := s.baseData(r, state)
	data["State"] = state
	data["Posts"] = posts
	data["Count"] = len(posts)
	s.renderer.Render(w, http.StatusOK, "state.html", data)
}

func (s *Server) handlePermalink(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	post, err := s.blog.PostByID(r.Context(), state, id, false)
	if errors.Is(err, trailblog.ErrPostNotFound) {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}
	if err != nil {
		s.logger.Error("failed to load post", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load the post.")
		return
	}

	data := s.baseData(r, post.Subject)
	data["Post"] = post
	s.renderer.Render(w, http.StatusOK, "permalink.html", data)
}

func (s *Server) handleNewPostForm(w http.ResponseWriter, r *http.Request) {
	data := s.baseData(r, "New post")
	data["Code"] = embedSnippets
	data["State"] = ""
	data["Subject"] = ""
	data["Content"] = ""
	s.renderer.Render(w, http.StatusOK, "newpost.html", data)
}

func (s *Server) handleNewPost(w http.ResponseWriter, r *http.Request) {
	state := r.FormValue("state")
	subject := r.FormValue("subject")
	content := r.FormValue("content")

	post, err := s.blog.CreatePost(r.Context(), state, subject, content)
	if errors.Is(err, trailblog.ErrInvalidPostInput) || errors.Is(err, trailblog.ErrUnknownState) {
		data := s.baseData(r, "New post")
		data["Code"] = embedSnippets
		data["Error"] = "Subject and content are both required."
		data["Subject"] = subject
		data["Content"] = content
		data["State"] = state
		s.renderer.Render(w, http.StatusUnprocessableEntity, "newpost.html", data)
		return
	}
	if err != nil {
		s.logger.Error("failed to create post", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not save the post.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/blog/%s/%d", post.State, post.ID), http.StatusSeeOther)
}

func (s *Server) handleEditForm(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	post, err := s.blog.PostByID(r.Context(), state, id, false)
	if errors.Is(err, trailblog.ErrPostNotFound) {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}
	if err != nil {
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load the post.")
		return
	}

	data := s.baseData(r, "Edit post")
	data["Post"] = post
	data["Code"] = embedSnippets
	s.renderer.Render(w, http.StatusOK, "editpost.html", data)
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	subject := r.FormValue("subject")
	content := r.FormValue("content")

	post, err := s.blog.EditPost(r.Context(), state, id, subject, content)
	if errors.Is(err, trailblog.ErrInvalidPostInput) {
		current, getErr := s.blog.PostByID(r.Context(), state, id, false)
		if getErr != nil {
			s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
			return
		}
		data := s.baseData(r, "Edit post")
		data["Post"] = current
		data["Code"] = embedSnippets
		data["Error"] = "Subject and content are both required."
		s.renderer.Render(w, http.StatusUnprocessableEntity, "editpost.html", data)
		return
	}
	if errors.Is(err, trailblog.ErrPostNotFound) {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}
	if err != nil {
		s.logger.Error("failed to edit post", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not save the post.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/blog/%s/%d", post.State, post.ID), http.StatusSeeOther)
}

func (s *Server) handleTranslateForm(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	post, err := s.blog.PostByID(r.Context(), state, id, false)
	if errors.Is(err, trailblog.ErrPostNotFound) {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}
	if err != nil {
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load the post.")
		return
	}

	data := s.baseData(r, "Translate post")
	data["Post"] = post
	s.renderer.Render(w, http.StatusOK, "translate.html", data)
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	post, err := s.blog.TranslatePost(r.Context(), state, id,
		r.FormValue("subject_translation"), r.FormValue("content_translation"))
	if errors.Is(err, trailblog.ErrPostNotFound) {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}
	if err != nil {
		s.logger.Error("failed to translate post", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not save the translation.")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/blog/%s/%d", post.State, post.ID), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	state, id, err := parsePostID(r)
	if err != nil {
		s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
		return
	}

	if err := s.blog.DeletePost(r.Context(), state, id); err != nil {
		if errors.Is(err, trailblog.ErrPostNotFound) {
			s.renderer.RenderError(w, http.StatusNotFound, "No such post.")
			return
		}
		s.logger.Error("failed to delete post", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not delete the post.")
		return
	}

	http.Redirect(w, r, "/blog/"+state, http.StatusSeeOther)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	posts, err := s.blog.AllPosts(r.Context())
	if err != nil {
		s.logger.Error("failed to load all posts", slog.String("error", err.Error()))
		s.renderer.RenderError(w, http.StatusInternalServerError, "Could not load posts.")
		return
	}

	data := s.baseData(r, "All posts")
	data["Posts"] = posts
	s.renderer.Render(w, http.StatusOK, "data.html", data)
}

func (s *Server) handleRewrite(w http.ResponseWriter, r *http.Request) {
	// The rewrite runs to completion in the background; it checkpoints
	// its own cursor and can be retriggered safely.
	go func() {
		if _, err := s.blog.RewriteAll(context.Background(), 100, nil); err != nil {
			s.logger.Error("schema rewrite failed", slog.String("error", err.Error()))
		}
	}()

	http.Redirect(w, r, "/data", http.StatusSeeOther)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	data := s.baseData(r, "Search")
	data["Query"] = q

	if q != "" {
		posts, err := s.blog.SearchPosts(r.Context(), q, 25)
		if err != nil {
			s.logger.Error("search failed", slog.String("error", err.Error()))
			s.renderer.RenderError(w, http.StatusInternalServerError, "Search is unavailable.")
			return
		}
		data["Posts"] = posts
	}

	s.renderer.Render(w, http.StatusOK, "search.html", data)
}

func (s *Server) handleContactForm(w http.ResponseWriter, r *http.Request) {
	data := s.baseData(r, "Contact")
	data["Author"] = ""
	data["Email"] = ""
	data["Message"] = ""
	s.renderer.Render(w, http.StatusOK, "contact.html", data)
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	msg := trailblog.ContactMessage{
		Author:  r.FormValue("author"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("content"),
	}

	rerender := func() {
		data := s.baseData(r, "Contact")
		data["Error"] = "*Sorry, your message did not send. Please enter valid and required fields."
		data["Author"] = msg.Author
		data["Email"] = msg.Email
		data["Message"] = msg.Message
		s.renderer.Render(w, http.StatusUnprocessableEntity, "contact.html", data)
	}

	if s.mailer == nil {
		s.logger.Error("contact form submitted but no mailer is configured")
		rerender()
		return
	}

	if err := trailblog.RelayContact(r.Context(), s.mailer, msg); err != nil {
		if !errors.Is(err, trailblog.ErrInvalidContact) {
			s.logger.Error("failed to relay contact message", slog.String("error", err.Error()))
		}
		rerender()
		return
	}

	http.Redirect(w, r, "/thanks?n="+url.QueryEscape(msg.Author), http.StatusSeeOther)
}

func (s *Server) handleThanks(w http.ResponseWriter, r *http.Request) {
	data := s.baseData(r, "Thanks")
	data["Name"] = r.URL.Query().Get("n")
	s.renderer.Render(w, http.StatusOK, "thanks.html", data)
}

func (s *Server) handlePage(slug string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := s.pages[slug]
		data := s.baseData(r, page.Title)
		data["Page"] = page
		s.renderer.Render(w, http.StatusOK, "page.html", data)
	}
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	data := s.baseData(r, "Sign in")
	data["Next"] = r.URL.Query().Get("next")
	s.renderer.Render(w, http.StatusOK, "login.html", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	next := r.FormValue("next")
	if next == "" || next[0] != '/' {
		next = "/"
	}

	if !s.auth.Login(w, r.FormValue("username"), r.FormValue("password")) {
		data := s.baseData(r, "Sign in")
		data["Error"] = "Wrong username or password."
		data["Next"] = next
		s.renderer.Render(w, http.StatusUnauthorized, "login.html", data)
		return
	}

	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Logout(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
