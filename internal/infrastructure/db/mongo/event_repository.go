package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/despi4/secure-todo-api/internal/core/domain"
	"github.com/despi4/secure-todo-api/internal/core/ports"
)

const collectionTaskEvents = "task_events"

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col *mongo.Collection
}

var _ ports.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{col: db.Collection(collectionTaskEvents)}
}

// InsertEvent appends a task audit event to the task_events collection.
func (r *EventRepository) InsertEvent(ctx context.Context, event *domain.TaskEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := bson.M{
		"taskId":      event.TaskID,
		"actorId":     event.ActorID,
		"action":      string(event.Action),
		"at":          millis(event.At),
		"processedAt": millis(time.Now()),
	}
	if event.Status != "" {
		doc["status"] = string(event.Status)
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert task event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the per-task history index.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "taskId", Value: 1}, {Key: "at", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("task_events indexes: %w", err)
	}
	return nil
}
