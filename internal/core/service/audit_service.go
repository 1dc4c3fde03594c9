package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

type auditService struct {
	repo ports.EventRepository
	log  zerolog.Logger
}

// NewAuditService returns an AuditService that writes events to repo.
func NewAuditService(repo ports.EventRepository, log zerolog.Logger) ports.AuditService {
	return &auditService{repo: repo, log: log}
}

// Record persists one audit event.
func (s *auditService) Record(ctx context.Context, event domain.TaskEvent) error {
	if event.TaskID == "" || event.Action == "" {
		return fmt.Errorf("record audit event: missing task id or action")
	}
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	s.log.Debug().
		Str("task_id", event.TaskID).
		Str("action", string(event.Action)).
		Str("actor_id", event.ActorID).
		Msg("audit event recorded")
	return nil
}
