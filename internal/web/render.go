package web

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/laguz/internal/apperr"
)

//go:embed templates/*.html
var templateFS embed.FS

// renderer holds one parsed template set per page, each sharing the layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "note.html", "edit.html", "error.html"} {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web: parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return &renderer{pages: pages}, nil
}

// render writes a page. Render failures after the status line are logged,
// not surfaced: the client already has a partial body.
func (rn *renderer) render(w http.ResponseWriter, status int, page string, data any) {
	t, ok := rn.pages[page]
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		slog.Error("unknown template", slog.String("page", page))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("template execute failed", slog.String("page", page), slog.String("error", err.Error()))
	}
}

// errorPage is the boundary renderer's view model.
type errorPage struct {
	Status  int
	Message string
	Detail  string
}

// renderError is the single boundary renderer: handlers return their error
// up the chain and this converts the failure kind into a user-facing page.
// 404 and 401 each get their own message; everything else gets the generic
// fallback and a server-side log entry.
func (rn *renderer) renderError(w http.ResponseWriter, err error) {
	status := apperr.Status(err)
	page := errorPage{Status: status, Message: apperr.Message(err)}

	switch status {
	case http.StatusNotFound:
		page.Detail = "The note you are looking for does not exist or was deleted."
	case http.StatusUnauthorized:
		page.Detail = "You need to sign in to view this page."
	case http.StatusConflict:
		page.Detail = "The note changed while you were editing it. Reload and try again."
	default:
		page.Detail = "An unexpected error occurred. Please try again later."
		slog.Error("web handler failed", slog.String("error", err.Error()))
	}

	rn.render(w, status, "error.html", page)
}
