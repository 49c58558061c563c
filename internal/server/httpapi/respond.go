package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
)

// userJSON is the client-facing user shape. The password hash never appears
// here.
type userJSON struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// todoJSON is the client-facing todo shape.
type todoJSON struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toTodoJSON(t *models.Todo) todoJSON {
	return todoJSON{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		IsCompleted: t.IsCompleted,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type messageJSON struct {
	Message string `json:"message"`
}

type validationJSON struct {
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, messageJSON{Message: "Unauthenticated."})
}

// writeError maps service errors onto the API's status codes. Anything
// unrecognized is a storage or programming failure and renders as a generic
// 500 so internals never leak.
func (s *HTTPServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var v *common.ValidationError
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusUnprocessableEntity, validationJSON{
			Message: "The given data was invalid.",
			Errors:  v.Fields,
		})
	case errors.Is(err, common.ErrorUnauthorized):
		writeUnauthorized(w)
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, messageJSON{Message: "Not found."})
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, messageJSON{Message: "Server error."})
	}
}

// decodeBody unmarshals the request body into dst, reporting malformed JSON
// as a validation failure.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		v := common.NewValidationError()
		v.Add("body", "The request body must be valid JSON.")
		return v
	}
	return nil
}
