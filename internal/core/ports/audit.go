package ports

import (
	"context"

	"github.com/despi4/secure-todo-api/internal/core/domain"
)

// EventRepository persists task audit events.
type EventRepository interface {
	InsertEvent(ctx context.Context, event *domain.TaskEvent) error
}

// AuditService records a single task audit event.
type AuditService interface {
	Record(ctx context.Context, event domain.TaskEvent) error
}

// EventPublisher hands audit events off for asynchronous recording. Publish
// must not block the caller.
type EventPublisher interface {
	Publish(event domain.TaskEvent)
}
