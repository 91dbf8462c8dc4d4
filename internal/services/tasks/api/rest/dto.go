package rest

import (
	"time"

	"github.com/louisbranch/tasktrack/internal/platform/pagination"
	"github.com/louisbranch/tasktrack/internal/services/tasks/domain"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AssigneeID  string `json:"assignee_id"`
}

// updateTaskRequest distinguishes omitted fields from empty values: a nil
// pointer leaves the field untouched, a present value is applied.
type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssigneeID  *string `json:"assignee_id"`
}

func (r updateTaskRequest) patch() domain.TaskPatch {
	var patch domain.TaskPatch
	if r.Title != nil {
		patch.Title = domain.NewOptional(*r.Title)
	}
	if r.Description != nil {
		patch.Description = domain.NewOptional(*r.Description)
	}
	if r.Status != nil {
		patch.Status = domain.NewOptional(*r.Status)
	}
	if r.Priority != nil {
		patch.Priority = domain.NewOptional(*r.Priority)
	}
	if r.AssigneeID != nil {
		patch.AssigneeID = domain.NewOptional(*r.AssigneeID)
	}
	return patch
}

type assignTaskRequest struct {
	UserID string `json:"user_id"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	AuthorID    string `json:"author_id"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toTaskResponse(task domain.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		AuthorID:    task.AuthorID,
		AssigneeID:  task.AssigneeID,
		CreatedAt:   task.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:   task.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type taskPageResponse struct {
	Content       []taskResponse `json:"content"`
	Page          int            `json:"page"`
	Size          int            `json:"size"`
	TotalElements int64          `json:"total_elements"`
	TotalPages    int64          `json:"total_pages"`
}

func toTaskPageResponse(page domain.TaskPage) taskPageResponse {
	content := make([]taskResponse, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		content = append(content, toTaskResponse(task))
	}
	return taskPageResponse{
		Content:       content,
		Page:          page.Page,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    pagination.TotalPages(page.TotalElements, page.Size),
	}
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

type deleteTaskResponse struct {
	Message string `json:"message"`
}
