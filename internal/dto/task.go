package dto

import (
	"time"

	"github.com/taskflow/project-management-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID           uint64              `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Priority     models.TaskPriority `json:"priority"`
	Status       models.TaskStatus   `json:"status"`
	DueDate      *time.Time          `json:"due_date"`
	ProjectID    uint64              `json:"project_id"`
	AssignedTo   *uint64             `json:"assigned_to"`
	CreatedBy    uint64              `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Project      *ProjectDTO         `json:"project,omitempty"`
	AssignedUser *UserDTO            `json:"assigned_user,omitempty"`
	Creator      *UserDTO            `json:"creator,omitempty"`
}

// TaskListItemDTO represents a task in list responses (minimal data)
type TaskListItemDTO struct {
	ID         uint64              `json:"id"`
	Title      string              `json:"title"`
	Priority   models.TaskPriority `json:"priority"`
	Status     models.TaskStatus   `json:"status"`
	DueDate    *time.Time          `json:"due_date"`
	ProjectID  uint64              `json:"project_id"`
	AssignedTo *uint64             `json:"assigned_to"`
	CreatedAt  time.Time           `json:"created_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority,
		Status:      task.Status,
		DueDate:     task.DueDate,
		ProjectID:   task.ProjectID,
		AssignedTo:  task.AssignedTo,
		CreatedBy:   task.CreatedBy,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include project if preloaded
	if task.Project.ID != 0 {
		project := ToProjectDTO(task.Project)
		dto.Project = &project
	}

	// Include assigned user if preloaded
	if task.AssignedUser != nil && task.AssignedUser.ID != 0 {
		assignedUser := ToUserDTO(*task.AssignedUser)
		dto.AssignedUser = &assignedUser
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserDTO(task.Creator)
		dto.Creator = &creator
	}

	return dto
}

// ToTaskListItemDTO converts a Task model to TaskListItemDTO
func ToTaskListItemDTO(task models.Task) TaskListItemDTO {
	return TaskListItemDTO{
		ID:         task.ID,
		Title:      task.Title,
		Priority:   task.Priority,
		Status:     task.Status,
		DueDate:    task.DueDate,
		ProjectID:  task.ProjectID,
		AssignedTo: task.AssignedTo,
		CreatedAt:  task.CreatedAt,
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}
	return items
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, perPage int, totalCount int64) TaskListResponse {
	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       page,
		PerPage:    perPage,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, perPage),
	}
}
