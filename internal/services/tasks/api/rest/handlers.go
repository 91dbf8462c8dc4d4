// Package rest exposes the task service over a JSON HTTP API.
package rest

import (
	"net/http"
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/tasktrack/internal/platform/errors"
	"github.com/louisbranch/tasktrack/internal/platform/httpx"
	"github.com/louisbranch/tasktrack/internal/services/tasks/authn"
	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
)

// Handler serves the task HTTP endpoints.
type Handler struct {
	service *domain.Service
}

// NewHandler constructs the task HTTP handler.
func NewHandler(service *domain.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := authn.CallerFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, apperrors.New(apperrors.CodeCredentialsMissing, "caller identity is required"))
		return
	}
	var req createTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeRequestInvalid, "invalid request body", err))
		return
	}
	author, err := h.service.ResolveCallerUser(r.Context(), caller.Email)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	task, err := h.service.CreateTask(r.Context(), domain.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AuthorID:    author.ID,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusCreated, toTaskResponse(task))
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	input := domain.ListTasksInput{
		Filter: domain.TaskFilter{
			Title:      query.Get("title"),
			Status:     query.Get("status"),
			Priority:   query.Get("priority"),
			AuthorID:   query.Get("author_id"),
			AssigneeID: query.Get("assignee_id"),
			Expression: query.Get("filter"),
		},
	}
	var err error
	if input.Page, err = queryInt(query.Get("page")); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodePageInvalid, "invalid page", err))
		return
	}
	if input.Size, err = queryInt(query.Get("page_size")); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodePageInvalid, "invalid page_size", err))
		return
	}
	page, err := h.service.ListTasks(r.Context(), input)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskPageResponse(page))
}

func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	caller, ok := authn.CallerFromContext(r.Context())
	if !ok {
		httpx.WriteError(w, apperrors.New(apperrors.CodeCredentialsMissing, "caller identity is required"))
		return
	}
	var req updateTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeRequestInvalid, "invalid request body", err))
		return
	}
	task, err := h.service.UpdateTask(r.Context(), r.PathValue("id"), req.patch(), caller)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	message, err := h.service.DeleteTask(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, deleteTaskResponse{Message: message})
}

// handleAssignTask serves the custom assign method, routed AIP-style as
// POST /v1/tasks/{id}:assign.
func (h *Handler) handleAssignTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := strings.CutSuffix(r.PathValue("name"), ":assign")
	if !ok || taskID == "" {
		httpx.WriteError(w, apperrors.New(apperrors.CodeNotFound, "unknown task method"))
		return
	}
	var req assignTaskRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, apperrors.Wrap(apperrors.CodeRequestInvalid, "invalid request body", err))
		return
	}
	task, err := h.service.AssignTask(r.Context(), taskID, req.UserID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toTaskResponse(task))
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

func queryInt(value string) (int, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}
