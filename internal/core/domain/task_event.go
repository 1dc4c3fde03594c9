package domain

import "time"

// TaskAction names a mutation recorded in the task audit trail.
type TaskAction string

const (
	ActionCreated       TaskAction = "created"
	ActionStatusChanged TaskAction = "status_changed"
	ActionDeleted       TaskAction = "deleted"
)

// TaskEvent is an audit record of a successful task mutation.
type TaskEvent struct {
	TaskID  string
	ActorID string
	Action  TaskAction
	Status  TaskStatus // status after the mutation; empty for deletes
	At      time.Time
}
