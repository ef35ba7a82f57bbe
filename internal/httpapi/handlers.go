package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"todoPlanManagement/internal/auth"
	"todoPlanManagement/internal/service"
)

type handlers struct {
	svc *service.Service
}

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorBody{Error: msg})
}

var kindStatus = map[service.Kind]int{
	service.KindMissingHeader:     http.StatusNotFound,
	service.KindUserNotFound:      http.StatusNotFound,
	service.KindTodoNotFound:      http.StatusNotFound,
	service.KindInvalidIdentifier: http.StatusBadRequest,
	service.KindDuplicateUsername: http.StatusBadRequest,
	service.KindAlreadyPro:        http.StatusBadRequest,
	service.KindInvalidInput:      http.StatusBadRequest,
	service.KindQuotaExceeded:     http.StatusForbidden,
}

// writeServiceError maps a service error to its status code.
// Internal errors are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) || se.Kind == service.KindInternal {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	code, ok := kindStatus[se.Kind]
	if !ok {
		code = http.StatusBadRequest
	}
	writeError(w, code, se.Message)
}

// decodeBody reads an optional JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	return err == nil || errors.Is(err, io.EOF)
}

// username returns the acting username, or "" when the header is missing.
func username(r *http.Request) string {
	p, err := auth.ParseFromHeader(r.Header)
	if err != nil {
		return ""
	}
	return p.Username
}

// POST /users
func (h *handlers) createUser(w http.ResponseWriter, r *http.Request) {
	var in service.CreateUserInput
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := h.svc.CreateUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// GET /users/{id}
func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// PATCH /users/{id}/pro
func (h *handlers) upgradeToPro(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.UpgradeToPro(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// GET /todos
func (h *handlers) listTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.ListTodos(r.Context(), username(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todos)
}

// POST /todos
func (h *handlers) createTodo(w http.ResponseWriter, r *http.Request) {
	var in service.TodoInput
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.svc.CreateTodo(r.Context(), username(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// PUT /todos/{id}
func (h *handlers) updateTodo(w http.ResponseWriter, r *http.Request) {
	var in service.TodoInput
	if !decodeBody(r, &in) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	t, err := h.svc.UpdateTodo(r.Context(), username(r), mux.Vars(r)["id"], in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// PATCH /todos/{id}/done
func (h *handlers) markTodoDone(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.MarkTodoDone(r.Context(), username(r), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /todos/{id}
func (h *handlers) deleteTodo(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTodo(r.Context(), username(r), mux.Vars(r)["id"]); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
