package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/project-management-api/internal/dto"
	apierrors "github.com/taskflow/project-management-api/internal/errors"
	"github.com/taskflow/project-management-api/internal/middleware"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/services"
	"github.com/taskflow/project-management-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns a paginated listing of tasks.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	tasks, total, err := h.taskService.ListTasks(params.Page, params.PerPage)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.PerPage, total))
}

// CreateTask creates a new task created by the current user.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title       string  `json:"title" binding:"required,max=255"`
		Description string  `json:"description"`
		Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		Status      string  `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
		DueDate     string  `json:"due_date"`
		ProjectID   uint64  `json:"project_id" binding:"required"`
		AssignedTo  *uint64 `json:"assigned_to"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		Status:      models.TaskStatus(req.Status),
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		CreatedBy:   userID,
	}
	if req.DueDate != "" {
		dueDate, err := parseDate(req.DueDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
		input.DueDate = &dueDate
	}

	task, err := h.taskService.CreateTask(input, actorFrom(c))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task with its relations.
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput
	if title, ok := rawReq["title"].(string); ok {
		input.Title = &title
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if priorityStr, ok := rawReq["priority"].(string); ok {
		priority := models.TaskPriority(priorityStr)
		input.Priority = &priority
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if _, ok := rawReq["due_date"]; ok {
		if rawReq["due_date"] == nil {
			input.ClearDueDate = true
		} else if dueDateStr, ok := rawReq["due_date"].(string); ok {
			dueDate, err := parseDate(dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &dueDate
		}
	}
	if projectIDRaw, ok := rawReq["project_id"].(float64); ok {
		projectID := uint64(projectIDRaw)
		input.ProjectID = &projectID
	}
	if _, ok := rawReq["assigned_to"]; ok {
		if rawReq["assigned_to"] == nil {
			input.ClearAssignee = true
		} else if assignedToRaw, ok := rawReq["assigned_to"].(float64); ok {
			assignedTo := uint64(assignedToRaw)
			input.AssignedTo = &assignedTo
		}
	}

	task, err := h.taskService.UpdateTask(taskID, input, actorFrom(c))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	taskID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid task ID")
		return
	}

	if err := h.taskService.DeleteTask(taskID, actorFrom(c)); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// AssignedTasks returns the tasks assigned to the current user.
func (h *TaskHandler) AssignedTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	tasks, err := h.taskService.TasksAssignedToUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// PendingTasks returns all pending tasks.
func (h *TaskHandler) PendingTasks(c *gin.Context) {
	tasks, err := h.taskService.PendingTasks()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// HighPriorityTasks returns tasks with priority high or urgent.
func (h *TaskHandler) HighPriorityTasks(c *gin.Context) {
	tasks, err := h.taskService.HighPriorityTasks()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// TasksByProject returns the tasks of one project.
func (h *TaskHandler) TasksByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "projectId")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	tasks, err := h.taskService.TasksByProject(projectID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

// SearchTasks returns tasks whose title contains the query text.
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	title := c.Query("title")
	if title == "" {
		apierrors.BadRequest(c, "Query parameter 'title' is required")
		return
	}

	tasks, err := h.taskService.SearchTasks(title)
	if err != nil {
		apierrors.InternalError(c, "Failed to search tasks")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": dto.ToTaskDTOs(tasks)})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.UnprocessableEntity(c, "Validation failed", gin.H{"error": "project does not exist"})
	case errors.Is(err, services.ErrTaskTitleRequired),
		errors.Is(err, services.ErrTaskTitleTooLong),
		errors.Is(err, services.ErrTaskProjectRequired),
		errors.Is(err, services.ErrDueDateInPast),
		errors.Is(err, services.ErrAssigneeNotFound),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrInvalidTaskPriority):
		apierrors.UnprocessableEntity(c, "Validation failed", gin.H{"error": err.Error()})
	default:
		apierrors.InternalError(c, "")
	}
}
