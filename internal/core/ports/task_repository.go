package ports

import (
	"context"
	"time"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// TaskRepository defines persistence for tasks. Every lookup by ID returns
// domain.ErrTaskNotFound for IDs that are not syntactically valid, so callers
// cannot tell a malformed reference from a missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id string) (*domain.Task, error)
	// ListByAuthor returns the author's tasks, newest first.
	ListByAuthor(ctx context.Context, authorID string) ([]*domain.Task, error)
	// UpdateStatus sets status and updatedAt in a single atomic write and
	// returns the task as stored after the write.
	UpdateStatus(ctx context.Context, id string, status domain.TaskStatus, updatedAt time.Time) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}
