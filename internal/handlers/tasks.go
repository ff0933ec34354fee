package handlers

import (
	"net/http"

	"TASKTRACKER_BACK-END/internal/dto"
	"TASKTRACKER_BACK-END/internal/middleware"
	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/services"
	"TASKTRACKER_BACK-END/internal/utils"
)

// TasksHandler manages task endpoints
type TasksHandler struct {
	tasks *services.TaskService
}

// NewTasksHandler creates a new TasksHandler
func NewTasksHandler(tasks *services.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// ListTasks handles GET /api/tasks
// @Summary List my tasks
// @Description Returns the caller's tasks, newest first, filtered by a case-insensitive title search
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10, max 100)"
// @Param search query string false "Title substring"
// @Success 200 {object} dto.TaskListResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tasks [get]
func (h *TasksHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	limit := q.Get("limit")
	if limit == "" {
		limit = q.Get("pageSize")
	}

	page, err := h.tasks.List(r.Context(), principal, services.ListTasksInput{
		Page:     utils.ParsePositiveInt(q.Get("page"), 1),
		PageSize: utils.ParsePositiveInt(limit, 0),
		Search:   q.Get("search"),
	})
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toTaskListResponse(page))
}

// GetTask handles GET /api/tasks/{id}
// @Summary Get a task
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tasks/{id} [get]
func (h *TasksHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.Get(r.Context(), principal, r.PathValue("id"))
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toTaskResponse(task))
}

// CreateTask handles POST /api/tasks
// @Summary Create a new task
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateTaskRequest true "Task payload"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tasks [post]
func (h *TasksHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	task, err := h.tasks.Create(r.Context(), principal, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, toTaskResponse(task))
}

// UpdateTask handles PUT /api/tasks/{id}
// @Summary Update a task
// @Description Partial update of the caller's own task; omitted fields are unchanged
// @Tags tasks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Param payload body dto.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tasks/{id} [put]
func (h *TasksHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := utils.DecodeJSONRequest(w, r, &req); err != nil {
		return
	}

	task, err := h.tasks.Update(r.Context(), principal, r.PathValue("id"), services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, toTaskResponse(task))
}

// DeleteTask handles DELETE /api/tasks/{id}
// @Summary Delete a task (admin only)
// @Tags tasks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/tasks/{id} [delete]
func (h *TasksHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, ok := principalOrUnauthorized(w, r)
	if !ok {
		return
	}

	if err := h.tasks.Delete(r.Context(), principal, r.PathValue("id")); err != nil {
		utils.WriteAppError(w, err)
		return
	}

	utils.WriteJSONResponse(w, http.StatusOK, dto.MessageResponse{Message: "Task deleted successfully"})
}

func principalOrUnauthorized(w http.ResponseWriter, r *http.Request) (models.Principal, bool) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		utils.WriteErrorResponse(w, http.StatusUnauthorized, "Unauthorized", "Invalid user context")
	}
	return principal, ok
}
