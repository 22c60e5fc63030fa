package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/common"
	"taskboard/internal/domain/model"
	"taskboard/internal/domain/repository"

	"github.com/google/uuid"
)

const (
	defaultTaskStatus = "not done"

	// ListLimitDefault and ListLimitMax bound page sizes to keep response
	// bodies small; anything above the ceiling is rejected, not clamped.
	ListLimitDefault = 100
	ListLimitMax     = 500

	SortByCreatedAt = "created_at"
	SortByUpdatedAt = "updated_at"
	SortOrderAsc    = "asc"
	SortOrderDesc   = "desc"
)

// TaskService is the task query/update engine. Every operation takes the
// authenticated owner's username and scopes the store call to it; a task
// owned by someone else is reported as not found, never as forbidden.
type TaskService struct {
	taskRepo repository.TaskRepository
	log      *slog.Logger
}

func NewTaskService(taskRepo repository.TaskRepository, log *slog.Logger) *TaskService {
	return &TaskService{taskRepo: taskRepo, log: log}
}

type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Label       string `json:"label,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// TaskPatch applies only present fields; nil (absent or JSON null) leaves
// the stored value untouched.
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Label       *string `json:"label"`
	Deadline    *string `json:"deadline"`
}

// ListTasksRequest carries the query parameters. Limit is a pointer so an
// absent parameter (default page size applies) is distinguishable from an
// explicit zero (rejected like any other out-of-range value).
type ListTasksRequest struct {
	Status      string
	Labels      []string
	SortBy      string
	SortOrder   string
	MinDeadline string
	MaxDeadline string
	Skip        int64
	Limit       *int64
}

type TaskCollection struct {
	Tasks []model.Task `json:"tasks"`
}

func (s *TaskService) Create(ctx context.Context, owner string, req CreateTaskRequest) (*model.Task, error) {
	if req.Title == "" {
		return nil, common.Errorf("title is required: %w", common.ErrBadRequest)
	}
	status := req.Status
	if status == "" {
		status = defaultTaskStatus
	}

	task := &model.Task{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Owner:       owner,
		Label:       req.Label,
		CreatedAt:   time.Now().UTC(),
	}

	if req.Deadline != "" {
		deadline, err := parseDeadline(req.Deadline)
		if err != nil {
			return nil, common.Errorf("invalid deadline %q: %w", req.Deadline, common.ErrBadRequest)
		}
		task.Deadline = &deadline
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to insert task: %w", err)
	}

	s.log.Info("task created", "task_id", task.ID, "owner", owner)
	return task, nil
}

// Update applies the patch to the task matched on both id and owner. The
// matched-but-unmodified case is treated as a storage anomaly; because the
// update always touches updated_at, a no-op payload cannot trigger it.
func (s *TaskService) Update(ctx context.Context, taskID, owner string, patch TaskPatch) (*model.Task, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, common.Errorf("invalid UUID format %q: %w", taskID, common.ErrBadRequest)
	}

	fields := map[string]interface{}{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
	}
	if patch.Label != nil {
		fields["label"] = *patch.Label
	}
	if patch.Deadline != nil {
		deadline, err := parseDeadline(*patch.Deadline)
		if err != nil {
			return nil, common.Errorf("invalid deadline %q: %w", *patch.Deadline, common.ErrBadRequest)
		}
		fields["deadline"] = deadline
	}

	if len(fields) == 0 {
		return nil, common.Errorf("no fields to update provided: %w", common.ErrBadRequest)
	}
	fields["updated_at"] = time.Now().UTC()

	matched, modified, err := s.taskRepo.UpdateByIDAndOwner(ctx, taskID, owner, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	if matched == 0 {
		return nil, common.Errorf("task not found: %w", common.ErrNotFound)
	}
	if modified == 0 {
		s.log.Error("task matched but not modified", "task_id", taskID, "owner", owner)
		return nil, common.Errorf("failed to update task data: %w", common.ErrInternalServer)
	}

	// Refetch races with a concurrent delete; only an empty result is
	// reported as not found, a store fault stays a store fault.
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.Errorf("updated task not found: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.log.Info("task updated", "task_id", taskID, "owner", owner)
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, taskID, owner string) error {
	if _, err := uuid.Parse(taskID); err != nil {
		return common.Errorf("invalid UUID format %q: %w", taskID, common.ErrBadRequest)
	}

	deleted, err := s.taskRepo.DeleteByIDAndOwner(ctx, taskID, owner)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if deleted == 0 {
		return common.Errorf("failed to delete task with id %s: %w", taskID, common.ErrNotFound)
	}

	s.log.Info("task deleted", "task_id", taskID, "owner", owner)
	return nil
}

// List translates the declarative request into an owner-scoped store query.
// An empty result set is a valid, non-error answer.
func (s *TaskService) List(ctx context.Context, owner string, req ListTasksRequest) ([]model.Task, error) {
	if req.SortOrder != "" && req.SortBy == "" {
		return nil, common.Errorf("sort_order provided without sort_by: %w", common.ErrBadRequest)
	}
	if req.SortBy != "" && req.SortBy != SortByCreatedAt && req.SortBy != SortByUpdatedAt {
		return nil, common.Errorf("sort_by must be one of created_at, updated_at: %w", common.ErrBadRequest)
	}
	if req.SortOrder != "" && req.SortOrder != SortOrderAsc && req.SortOrder != SortOrderDesc {
		return nil, common.Errorf("sort_order must be one of asc, desc: %w", common.ErrBadRequest)
	}
	if req.Skip < 0 {
		return nil, common.Errorf("skip must be non-negative: %w", common.ErrBadRequest)
	}
	if req.Limit != nil && (*req.Limit < 1 || *req.Limit > ListLimitMax) {
		return nil, common.Errorf("limit must be between 1 and %d: %w", ListLimitMax, common.ErrBadRequest)
	}

	filter := repository.TaskFilter{
		Status:  req.Status,
		Labels:  req.Labels,
		SortBy:  req.SortBy,
		SortAsc: req.SortOrder != SortOrderDesc,
		Skip:    req.Skip,
		Limit:   ListLimitDefault,
	}
	if req.Limit != nil {
		filter.Limit = *req.Limit
	}

	if req.MinDeadline != "" {
		min, err := parseDeadline(req.MinDeadline)
		if err != nil {
			return nil, common.Errorf("invalid min_deadline %q: %w", req.MinDeadline, common.ErrBadRequest)
		}
		filter.MinDeadline = &min
	}
	if req.MaxDeadline != "" {
		max, err := parseDeadline(req.MaxDeadline)
		if err != nil {
			return nil, common.Errorf("invalid max_deadline %q: %w", req.MaxDeadline, common.ErrBadRequest)
		}
		filter.MaxDeadline = &max
	}

	tasks, err := s.taskRepo.ListByOwner(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

// parseDeadline accepts a bare calendar date or an RFC 3339 instant and
// normalizes either to midnight UTC, the canonical stored form.
func parseDeadline(value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
