package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"taskboard/internal/api/middleware"
	"taskboard/internal/app/service"
	"taskboard/internal/common"

	"github.com/go-chi/chi/v5"
)

type TaskHandler struct {
	taskService *service.TaskService
}

func NewTaskHandler(taskService *service.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Route("/tasks", func(tr chi.Router) {
		tr.Post("/", h.createTask)
		tr.Get("/", h.listTasks)
		tr.Put("/{taskID}", h.updateTask)
		tr.Delete("/{taskID}", h.deleteTask)
	})
}

func (h *TaskHandler) createTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	task, err := h.taskService.Create(r.Context(), user.Username, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) listTasks(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	query := r.URL.Query()
	req := service.ListTasksRequest{
		Status:      query.Get("task_status"),
		SortBy:      query.Get("sort_by"),
		SortOrder:   query.Get("sort_order"),
		MinDeadline: query.Get("min_deadline"),
		MaxDeadline: query.Get("max_deadline"),
	}

	// include_labels may be repeated and/or comma-separated.
	for _, raw := range query["include_labels"] {
		for _, label := range strings.Split(raw, ",") {
			if label = strings.TrimSpace(label); label != "" {
				req.Labels = append(req.Labels, label)
			}
		}
	}

	if rawSkip := query.Get("skip"); rawSkip != "" {
		skip, err := strconv.ParseInt(rawSkip, 10, 64)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "skip must be an integer")
			return
		}
		req.Skip = skip
	}
	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err := strconv.ParseInt(rawLimit, 10, 64)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		req.Limit = &limit
	}

	tasks, err := h.taskService.List(r.Context(), user.Username, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, service.TaskCollection{Tasks: tasks})
}

func (h *TaskHandler) updateTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var patch service.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	task, err := h.taskService.Update(r.Context(), chi.URLParam(r, "taskID"), user.Username, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) deleteTask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUser(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.taskService.Delete(r.Context(), chi.URLParam(r, "taskID"), user.Username); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"detail": "Task was successfully deleted"})
}
