package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"taskboard/internal/common"
	"taskboard/internal/domain/model"
	"taskboard/internal/domain/repository"
)

// In-memory stand-ins for the mongo repositories, close enough to the real
// matched/modified semantics for the service contracts under test.

type fakeUserRepo struct {
	users map[string]*model.User // keyed by username
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if _, exists := r.users[user.Username]; exists {
		return fmt.Errorf("user with given username already exists: %w", common.ErrConflict)
	}
	u := *user
	r.users[user.Username] = &u
	return nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	user, ok := r.users[username]
	if !ok {
		return nil, common.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (r *fakeUserRepo) UpdateByUsername(_ context.Context, username string, fields map[string]interface{}) (int64, int64, error) {
	user, ok := r.users[username]
	if !ok {
		return 0, 0, nil
	}
	if newName, ok := fields["username"].(string); ok && newName != username {
		if _, taken := r.users[newName]; taken {
			return 0, 0, fmt.Errorf("username already taken: %w", common.ErrConflict)
		}
		delete(r.users, username)
		user.Username = newName
		r.users[newName] = user
	}
	if v, ok := fields["email"].(string); ok {
		user.Email = v
	}
	if v, ok := fields["full_name"].(string); ok {
		user.FullName = v
	}
	if v, ok := fields["hashed_password"].(string); ok {
		user.HashedPassword = v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		user.UpdatedAt = &v
	}
	return 1, 1, nil
}

type fakeTaskRepo struct {
	tasks map[string]*model.Task // keyed by task id

	renameErr       error // injected cascade failure
	findErr         error // injected read failure
	forceUnmodified bool  // simulate matched-but-not-modified anomaly
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*model.Task{}}
}

func (r *fakeTaskRepo) Create(_ context.Context, task *model.Task) error {
	t := *task
	r.tasks[task.ID] = &t
	return nil
}

func (r *fakeTaskRepo) FindByID(_ context.Context, id string) (*model.Task, error) {
	if r.findErr != nil {
		return nil, fmt.Errorf("fakeTaskRepo.FindByID: %w", r.findErr)
	}
	task, ok := r.tasks[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	t := *task
	return &t, nil
}

func (r *fakeTaskRepo) UpdateByIDAndOwner(_ context.Context, id, owner string, fields map[string]interface{}) (int64, int64, error) {
	task, ok := r.tasks[id]
	if !ok || task.Owner != owner {
		return 0, 0, nil
	}
	if r.forceUnmodified {
		return 1, 0, nil
	}
	if v, ok := fields["title"].(string); ok {
		task.Title = v
	}
	if v, ok := fields["description"].(string); ok {
		task.Description = v
	}
	if v, ok := fields["status"].(string); ok {
		task.Status = v
	}
	if v, ok := fields["label"].(string); ok {
		task.Label = v
	}
	if v, ok := fields["deadline"].(time.Time); ok {
		task.Deadline = &v
	}
	if v, ok := fields["updated_at"].(time.Time); ok {
		task.UpdatedAt = &v
	}
	return 1, 1, nil
}

func (r *fakeTaskRepo) DeleteByIDAndOwner(_ context.Context, id, owner string) (int64, error) {
	task, ok := r.tasks[id]
	if !ok || task.Owner != owner {
		return 0, nil
	}
	delete(r.tasks, id)
	return 1, nil
}

func (r *fakeTaskRepo) ListByOwner(_ context.Context, owner string, filter repository.TaskFilter) ([]model.Task, error) {
	matches := []model.Task{}
	for _, task := range r.tasks {
		if task.Owner != owner {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if len(filter.Labels) > 0 && !contains(filter.Labels, task.Label) {
			continue
		}
		if filter.MinDeadline != nil && (task.Deadline == nil || task.Deadline.Before(*filter.MinDeadline)) {
			continue
		}
		if filter.MaxDeadline != nil && (task.Deadline == nil || task.Deadline.After(*filter.MaxDeadline)) {
			continue
		}
		matches = append(matches, *task)
	}

	if filter.SortBy != "" {
		sort.Slice(matches, func(i, j int) bool {
			a, b := sortKey(matches[i], filter.SortBy), sortKey(matches[j], filter.SortBy)
			if filter.SortAsc {
				return a.Before(b)
			}
			return b.Before(a)
		})
	}

	if filter.Skip > 0 {
		if filter.Skip >= int64(len(matches)) {
			return []model.Task{}, nil
		}
		matches = matches[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < int64(len(matches)) {
		matches = matches[:filter.Limit]
	}
	return matches, nil
}

func (r *fakeTaskRepo) RenameOwner(_ context.Context, oldUsername, newUsername string) error {
	if r.renameErr != nil {
		return r.renameErr
	}
	for _, task := range r.tasks {
		if task.Owner == oldUsername {
			task.Owner = newUsername
		}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

func sortKey(task model.Task, field string) time.Time {
	if field == SortByUpdatedAt {
		if task.UpdatedAt == nil {
			return time.Time{}
		}
		return *task.UpdatedAt
	}
	return task.CreatedAt
}
