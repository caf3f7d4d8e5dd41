// Package web serves the server-rendered note UI.
//
// Handlers return errors instead of writing failure responses themselves;
// a single boundary (renderError) converts the typed failure kinds from
// apperr into user-facing pages. The presentation of a note is a pure
// function of the resolved record.
package web

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/laguz/internal/checksum"
	"github.com/starford/laguz/internal/models"
	"github.com/starford/laguz/internal/noteservice"
)

// Handler holds the web route handlers.
type Handler struct {
	svc *noteservice.Service
	rn  *renderer
}

// NewHandler creates a web handler with parsed templates.
func NewHandler(svc *noteservice.Service) (*Handler, error) {
	rn, err := newRenderer()
	if err != nil {
		return nil, err
	}
	return &Handler{svc: svc, rn: rn}, nil
}

// handlerFunc is a route handler that reports failure by returning an error.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// boundary adapts a handlerFunc to http.HandlerFunc, routing any returned
// error through the boundary renderer.
func (h *Handler) boundary(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.rn.renderError(w, err)
		}
	}
}

// NewRouter creates the explicit web route table.
func NewRouter(svc *noteservice.Service) (chi.Router, error) {
	h, err := NewHandler(svc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Get("/", h.boundary(h.index))
	r.Get("/new", h.boundary(h.newNote))
	r.Post("/notes", h.boundary(h.createNote))
	r.Get("/notes/{id}", h.boundary(h.viewNote))
	r.Get("/notes/{id}/edit", h.boundary(h.editNote))
	r.Post("/notes/{id}", h.boundary(h.updateNote))
	r.Post("/notes/{id}/delete", h.boundary(h.deleteNote))
	return r, nil
}

type indexPage struct {
	Notes []models.Note
	Total int
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) error {
	notes, total, err := h.svc.ListNotes(r.Context(), 100, 0, r.URL.Query().Get("tag"), "")
	if err != nil {
		return err
	}
	h.rn.render(w, http.StatusOK, "index.html", indexPage{Notes: notes, Total: total})
	return nil
}

type notePage struct {
	Note     *models.Note
	Revision string
}

// viewNote renders a single note: heading with the title, the content body
// with whitespace preserved verbatim, and the Delete/Edit affordances whose
// handlers live on their own routes.
func (h *Handler) viewNote(w http.ResponseWriter, r *http.Request) error {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	h.rn.render(w, http.StatusOK, "note.html", notePage{
		Note:     note,
		Revision: checksum.Short(note.Checksum),
	})
	return nil
}

func (h *Handler) newNote(w http.ResponseWriter, _ *http.Request) error {
	h.rn.render(w, http.StatusOK, "edit.html", notePage{Note: &models.Note{}})
	return nil
}

func (h *Handler) editNote(w http.ResponseWriter, r *http.Request) error {
	note, err := h.svc.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}
	h.rn.render(w, http.StatusOK, "edit.html", notePage{Note: note})
	return nil
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	note, err := h.svc.CreateNote(r.Context(), r.PostFormValue("title"), r.PostFormValue("content"), nil)
	if err != nil {
		return err
	}
	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
	return nil
}

func (h *Handler) updateNote(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	id := chi.URLParam(r, "id")
	note, err := h.svc.UpdateNote(r.Context(), id,
		r.PostFormValue("title"), r.PostFormValue("content"), nil, r.PostFormValue("checksum"))
	if err != nil {
		return err
	}
	http.Redirect(w, r, "/notes/"+note.ID, http.StatusSeeOther)
	return nil
}

func (h *Handler) deleteNote(w http.ResponseWriter, r *http.Request) error {
	if err := h.svc.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		return err
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
	return nil
}
