package handler

import (
	"strings"
	"time"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// --- Requests ---

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72,maxbytes=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *registerRequest) normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *loginRequest) normalize() { r.Email = strings.TrimSpace(r.Email) }

type createTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type patchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed"`
}

// --- Responses ---

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userEnvelope struct {
	User userResponse `json:"user"`
}

// taskResponse keeps the document-style "_id" key the browser client reads.
type taskResponse struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AuthorID    string    `json:"authorId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type taskEnvelope struct {
	Task taskResponse `json:"task"`
}

type taskListEnvelope struct {
	Tasks []taskResponse `json:"tasks"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		AuthorID:    t.AuthorID,
		CreatedAt:   t.CreatedAt.UTC(),
		UpdatedAt:   t.UpdatedAt.UTC(),
	}
}

func toTaskList(tasks []*domain.Task) []taskResponse {
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	return out
}
