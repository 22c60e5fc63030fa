package repository

import (
	"context"
	"errors"
	"fmt"

	"taskboard/internal/common"
	"taskboard/internal/domain/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UserRepository is the credential store contract. UpdateByUsername applies
// only the fields present in the update map; callers must pass password
// material pre-hashed, the store never sees plaintext.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	UpdateByUsername(ctx context.Context, username string, fields map[string]interface{}) (matched, modified int64, err error)
}

type mongoUserRepository struct {
	users *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{users: db.Collection("users")}
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	_, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("mongoUserRepository.Create: %w", err)
	}
	return nil
}

func (r *mongoUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	user := &model.User{}
	err := r.users.FindOne(ctx, bson.M{"username": username}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("mongoUserRepository.FindByUsername: %w", err)
	}
	return user, nil
}

func (r *mongoUserRepository) UpdateByUsername(ctx context.Context, username string, fields map[string]interface{}) (int64, int64, error) {
	result, err := r.users.UpdateOne(ctx, bson.M{"username": username}, bson.M{"$set": fields})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, 0, fmt.Errorf("username already taken: %w", common.ErrConflict)
		}
		return 0, 0, fmt.Errorf("mongoUserRepository.UpdateByUsername: %w", err)
	}
	return result.MatchedCount, result.ModifiedCount, nil
}
