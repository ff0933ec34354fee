package dto

// CreateTaskRequest represents the payload to create a task
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"` // Pending | Completed, defaults to Pending
}

// UpdateTaskRequest represents fields allowed to update a task.
// All fields are optional; only provided ones will be updated
type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// TaskOwnerResponse is the populated creator of a task
type TaskOwnerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskResponse represents a task object in responses
type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	CreatedBy   TaskOwnerResponse `json:"createdBy"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

// TaskListResponse envelope
type TaskListResponse struct {
	Tasks       []TaskResponse `json:"tasks"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
	TotalTasks  int            `json:"totalTasks"`
}
