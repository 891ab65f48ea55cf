package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"task-tracker/internal/api"
	"task-tracker/internal/domain"
	"task-tracker/internal/errors"
	"task-tracker/internal/validation"

	"github.com/gorilla/mux"
)

// TaskHandler serves the /api/tasks resource.
type TaskHandler struct {
	api api.API
}

// NewTaskHandler creates a handler backed by the facade.
func NewTaskHandler(a api.API) *TaskHandler {
	return &TaskHandler{api: a}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := readReq(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.api.CreateTask(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *TaskHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.api.GetTask)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.api.ListTasks(r.Context(), api.ListQuery{
		Page:     q.Get("page"),
		Size:     q.Get("size"),
		Sort:     q.Get("sortBy"),
		Dir:      q.Get("sortDir"),
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Assignee: q.Get("assignee"),
		Category: q.Get("category"),
	})
	respond(w, r, page, err)
}

func (h *TaskHandler) ByStatus(w http.ResponseWriter, r *http.Request) {
	views, err := h.api.ListByStatus(r.Context(), mux.Vars(r)["status"])
	respond(w, r, views, err)
}

func (h *TaskHandler) ByPriority(w http.ResponseWriter, r *http.Request) {
	views, err := h.api.ListByPriority(r.Context(), mux.Vars(r)["priority"])
	respond(w, r, views, err)
}

func (h *TaskHandler) ByAssignee(w http.ResponseWriter, r *http.Request) {
	views, err := h.api.ListByAssignee(r.Context(), mux.Vars(r)["assignee"])
	respond(w, r, views, err)
}

func (h *TaskHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.api.SearchTasks(r.Context(), q.Get("text"), q.Get("page"), q.Get("size"))
	respond(w, r, page, err)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req domain.UpdateTaskRequest
	if err := readReq(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	view, err := h.api.UpdateTask(r.Context(), id, req)
	respond(w, r, view, err)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.api.MarkCompleted)
}

func (h *TaskHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.api.MarkInProgress)
}

func (h *TaskHandler) Pending(w http.ResponseWriter, r *http.Request) {
	h.byID(w, r, h.api.MarkPending)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.api.DeleteTask(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	views, err := h.api.ListOverdue(r.Context())
	respond(w, r, views, err)
}

func (h *TaskHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.api.GetStatistics(r.Context())
	respond(w, r, stats, err)
}

func (h *TaskHandler) byID(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) (*domain.TaskView, error)) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := op(r.Context(), id)
	respond(w, r, view, err)
}

func respond(w http.ResponseWriter, r *http.Request, body interface{}, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		ve := validation.NewValidationError()
		ve.AddInvalidFormatError("id", raw, "integer")
		return 0, ve
	}
	return id, nil
}

func readReq(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if _, ok := err.(*http.MaxBytesError); ok {
			return errors.NewInvalidInputError("body", nil, fmt.Sprintf("larger than %d bytes", MaxRequestBodyBytes))
		}
		return errors.NewInvalidInputError("body", nil, "malformed JSON")
	}
	return nil
}
