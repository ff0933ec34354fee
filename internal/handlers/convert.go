package handlers

import (
	"time"

	"TASKTRACKER_BACK-END/internal/dto"
	"TASKTRACKER_BACK-END/internal/models"
	"TASKTRACKER_BACK-END/internal/services"
)

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}

func toAuthResponse(res *services.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:  toUserResponse(res.User),
		Token: res.Token,
	}
}

func toTaskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		CreatedBy: dto.TaskOwnerResponse{
			ID:    t.Owner.ID.String(),
			Name:  t.Owner.Name,
			Email: t.Owner.Email,
		},
		CreatedAt: t.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toTaskListResponse(page *services.TaskPage) dto.TaskListResponse {
	tasks := make([]dto.TaskResponse, 0, len(page.Tasks))
	for i := range page.Tasks {
		tasks = append(tasks, toTaskResponse(&page.Tasks[i]))
	}
	return dto.TaskListResponse{
		Tasks:       tasks,
		CurrentPage: page.CurrentPage,
		TotalPages:  page.TotalPages,
		TotalTasks:  page.TotalTasks,
	}
}
