package domain

import "time"

// TaskStatus represents the completion state of a task.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusCompleted TaskStatus = "completed"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
)

// Valid reports whether s is one of the two enumerated statuses.
func (s TaskStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Task is a single to-do record. AuthorID is set once at creation and is the
// ownership reference used by CanModify.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	AuthorID    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
