package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/common"
	"taskboard/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskFilter is the declarative query the list operation translates into a
// store find. SortBy is empty for store-natural order; deadline bounds are
// inclusive and already normalized to midnight.
type TaskFilter struct {
	Status      string
	Labels      []string
	MinDeadline *time.Time
	MaxDeadline *time.Time
	SortBy      string
	SortAsc     bool
	Skip        int64
	Limit       int64
}

// TaskRepository is the task store contract. Update and delete are matched
// on both id and owner, so a foreign task is indistinguishable from a
// missing one.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	UpdateByIDAndOwner(ctx context.Context, id, owner string, fields map[string]interface{}) (matched, modified int64, err error)
	DeleteByIDAndOwner(ctx context.Context, id, owner string) (deleted int64, err error)
	ListByOwner(ctx context.Context, owner string, filter TaskFilter) ([]model.Task, error)
	RenameOwner(ctx context.Context, oldUsername, newUsername string) error
}

type mongoTaskRepository struct {
	tasks *mongo.Collection
}

func NewMongoTaskRepository(db *mongo.Database) TaskRepository {
	return &mongoTaskRepository{tasks: db.Collection("tasks")}
}

func (r *mongoTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if _, err := r.tasks.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("mongoTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoTaskRepository) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	err := r.tasks.FindOne(ctx, bson.M{"_id": id}).Decode(task)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoTaskRepository.FindByID: %w", err)
	}
	return task, nil
}

func (r *mongoTaskRepository) UpdateByIDAndOwner(ctx context.Context, id, owner string, fields map[string]interface{}) (int64, int64, error) {
	result, err := r.tasks.UpdateOne(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{"$set": fields},
	)
	if err != nil {
		return 0, 0, fmt.Errorf("mongoTaskRepository.UpdateByIDAndOwner: %w", err)
	}
	return result.MatchedCount, result.ModifiedCount, nil
}

func (r *mongoTaskRepository) DeleteByIDAndOwner(ctx context.Context, id, owner string) (int64, error) {
	result, err := r.tasks.DeleteOne(ctx, bson.M{"_id": id, "owner": owner})
	if err != nil {
		return 0, fmt.Errorf("mongoTaskRepository.DeleteByIDAndOwner: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoTaskRepository) ListByOwner(ctx context.Context, owner string, filter TaskFilter) ([]model.Task, error) {
	query := bson.M{"owner": owner}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if len(filter.Labels) > 0 {
		query["label"] = bson.M{"$in": filter.Labels}
	}
	if filter.MinDeadline != nil || filter.MaxDeadline != nil {
		deadline := bson.M{}
		if filter.MinDeadline != nil {
			deadline["$gte"] = *filter.MinDeadline
		}
		if filter.MaxDeadline != nil {
			deadline["$lte"] = *filter.MaxDeadline
		}
		query["deadline"] = deadline
	}

	opts := options.Find().SetSkip(filter.Skip).SetLimit(filter.Limit)
	if filter.SortBy != "" {
		order := 1
		if !filter.SortAsc {
			order = -1
		}
		opts.SetSort(bson.D{{Key: filter.SortBy, Value: order}})
	}

	cursor, err := r.tasks.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("mongoTaskRepository.ListByOwner find: %w", err)
	}
	defer cursor.Close(ctx)

	tasks := []model.Task{}
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("mongoTaskRepository.ListByOwner decode: %w", err)
	}
	return tasks, nil
}

func (r *mongoTaskRepository) RenameOwner(ctx context.Context, oldUsername, newUsername string) error {
	_, err := r.tasks.UpdateMany(ctx,
		bson.M{"owner": oldUsername},
		bson.M{"$set": bson.M{"owner": newUsername}},
	)
	if err != nil {
		return fmt.Errorf("mongoTaskRepository.RenameOwner %s -> %s: %w", oldUsername, newUsername, err)
	}
	return nil
}
