package rest

import "net/http"

// Routes registers the task API endpoints on the provided mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /v1/tasks", h.handleCreateTask)
	mux.HandleFunc("GET /v1/tasks", h.handleListTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", h.handleGetTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", h.handleUpdateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", h.handleDeleteTask)
	mux.HandleFunc("POST /v1/tasks/{name}", h.handleAssignTask)
	mux.HandleFunc("GET /v1/users/{id}", h.handleGetUser)
}
