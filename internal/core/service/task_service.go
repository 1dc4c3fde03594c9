package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

type TaskService struct {
	repo      ports.TaskRepository
	publisher ports.EventPublisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewTaskService returns a TaskService. publisher may be nil, in which case no
// audit events are emitted.
func NewTaskService(repo ports.TaskRepository, publisher ports.EventPublisher, logger zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, publisher: publisher, logger: logger, now: time.Now}
}

// Create stores a new pending task owned by identity.
func (s *TaskService) Create(ctx context.Context, identity domain.Identity, in ports.CreateTaskInput) (*domain.Task, error) {
	if identity.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateTaskInput(in); err != nil {
		return nil, err
	}

	now := s.timestamp()
	task, err := s.repo.Create(ctx, &domain.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusPending,
		AuthorID:    identity.Subject,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.logger.Info().Str("task_id", task.ID).Str("author_id", task.AuthorID).Msg("task created")
	s.publish(domain.TaskEvent{
		TaskID:  task.ID,
		ActorID: identity.Subject,
		Action:  domain.ActionCreated,
		Status:  task.Status,
		At:      now,
	})
	return task, nil
}

// ListMine returns the caller's own tasks, newest first.
func (s *TaskService) ListMine(ctx context.Context, identity domain.Identity) ([]*domain.Task, error) {
	if identity.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	tasks, err := s.repo.ListByAuthor(ctx, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}
	return tasks, nil
}

// Get returns any task by ID. Reads are public.
func (s *TaskService) Get(ctx context.Context, id string) (*domain.Task, error) {
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// UpdateStatus changes the status of a task the caller may modify.
//
// Concurrent patches of the same task are last-writer-wins; the write itself
// is a single atomic update and the returned task is the state it produced.
func (s *TaskService) UpdateStatus(ctx context.Context, identity domain.Identity, id string, status domain.TaskStatus) (*domain.Task, error) {
	if !status.Valid() {
		return nil, domain.NewValidationError("status", "status must be one of: pending, completed")
	}

	task, err := s.authorize(ctx, identity, id)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	updatedAt := s.timestamp()
	if !updatedAt.After(task.UpdatedAt) {
		updatedAt = task.UpdatedAt.Add(time.Millisecond)
	}

	updated, err := s.repo.UpdateStatus(ctx, task.ID, status, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("update task status: %w", err)
	}

	s.publish(domain.TaskEvent{
		TaskID:  updated.ID,
		ActorID: identity.Subject,
		Action:  domain.ActionStatusChanged,
		Status:  updated.Status,
		At:      updatedAt,
	})
	return updated, nil
}

// Delete removes a task the caller may modify.
func (s *TaskService) Delete(ctx context.Context, identity domain.Identity, id string) error {
	task, err := s.authorize(ctx, identity, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if err := s.repo.Delete(ctx, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	s.logger.Info().Str("task_id", task.ID).Str("actor_id", identity.Subject).Msg("task deleted")
	s.publish(domain.TaskEvent{
		TaskID:  task.ID,
		ActorID: identity.Subject,
		Action:  domain.ActionDeleted,
		At:      s.timestamp(),
	})
	return nil
}

// authorize loads the task and applies the owner/admin policy.
func (s *TaskService) authorize(ctx context.Context, identity domain.Identity, id string) (*domain.Task, error) {
	if identity.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	task, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanModify(identity, task) {
		s.logger.Warn().
			Str("task_id", task.ID).
			Str("actor_id", identity.Subject).
			Msg("task modification denied")
		return nil, domain.ErrForbidden
	}
	return task, nil
}

func (s *TaskService) publish(event domain.TaskEvent) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

// timestamp returns the current time at the store's millisecond resolution.
func (s *TaskService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func validateTaskInput(in ports.CreateTaskInput) error {
	var issues []domain.FieldIssue
	switch n := len([]rune(in.Title)); {
	case n == 0:
		issues = append(issues, domain.FieldIssue{Path: "title", Message: "title is required"})
	case n > domain.MaxTitleLength:
		issues = append(issues, domain.FieldIssue{Path: "title", Message: fmt.Sprintf("title must be at most %d characters", domain.MaxTitleLength)})
	}
	switch n := len([]rune(in.Description)); {
	case n == 0:
		issues = append(issues, domain.FieldIssue{Path: "description", Message: "description is required"})
	case n > domain.MaxDescriptionLength:
		issues = append(issues, domain.FieldIssue{Path: "description", Message: fmt.Sprintf("description must be at most %d characters", domain.MaxDescriptionLength)})
	}
	if len(issues) > 0 {
		return &domain.ValidationError{Issues: issues}
	}
	return nil
}
