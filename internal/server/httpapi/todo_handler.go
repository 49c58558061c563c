package httpapi

import (
	"net/http"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/services"
)

type createTodoRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date"`
}

func (s *HTTPServer) handleTodoList(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	items, total, err := s.todos.List(r.Context(), callerID(r), page, perPage)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildPage(r.URL.Path, items, total, page, perPage))
}

func (s *HTTPServer) handleTodoGet(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.Get(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoJSON(todo))
}

func (s *HTTPServer) handleTodoCreate(w http.ResponseWriter, r *http.Request) {
	var req createTodoRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	todo, err := s.todos.Create(r.Context(), callerID(r), services.CreateTodoParams{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		DueDate:     req.DueDate,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTodoJSON(todo))
}

func (s *HTTPServer) handleTodoUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.TodoPatch
	if err := decodeBody(r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}

	todo, err := s.todos.Update(r.Context(), callerID(r), r.PathValue("id"), &patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoJSON(todo))
}

func (s *HTTPServer) handleTodoToggle(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todos.Toggle(r.Context(), callerID(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toTodoJSON(todo))
}

func (s *HTTPServer) handleTodoDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.todos.Delete(r.Context(), callerID(r), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
