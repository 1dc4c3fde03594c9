package ports

import (
	"context"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// CreateTaskInput carries validated task data.
type CreateTaskInput struct {
	Title       string
	Description string
}

// TaskService defines the task use cases. Mutations take the caller identity
// and enforce domain.CanModify.
type TaskService interface {
	Create(ctx context.Context, identity domain.Identity, input CreateTaskInput) (*domain.Task, error)
	ListMine(ctx context.Context, identity domain.Identity) ([]*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error)
	Delete(ctx context.Context, identity domain.Identity, id string) error
}
