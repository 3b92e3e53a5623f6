package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/repository"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrTaskTitleRequired   = errors.New("task title is required")
	ErrTaskTitleTooLong    = errors.New("task title cannot exceed 255 characters")
	ErrTaskProjectRequired = errors.New("task project is required")
	ErrDueDateInPast       = errors.New("due date must be on or after today")
	ErrAssigneeNotFound    = errors.New("assigned user does not exist")
	ErrInvalidTaskStatus   = errors.New("invalid task status")
	ErrInvalidTaskPriority = errors.New("invalid task priority")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	recorder    *audit.Recorder
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, userRepo repository.UserRepository, recorder *audit.Recorder) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		recorder:    recorder,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	Status      models.TaskStatus
	DueDate     *time.Time
	ProjectID   uint64
	AssignedTo  *uint64
	CreatedBy   uint64
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Priority      *models.TaskPriority
	Status        *models.TaskStatus
	DueDate       *time.Time
	ClearDueDate  bool
	ProjectID     *uint64
	AssignedTo    *uint64
	ClearAssignee bool
}

// CreateTask creates a new task with validation and records the creation.
// The due date floor applies here only; updates never re-check it.
func (s *TaskService) CreateTask(input CreateTaskInput, actor audit.Actor) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTaskTitleRequired
	}
	if len(title) > maxNameLength {
		return nil, ErrTaskTitleTooLong
	}
	if input.ProjectID == 0 {
		return nil, ErrTaskProjectRequired
	}

	if _, err := s.projectRepo.FindByID(input.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to verify project: %w", err)
	}

	if input.AssignedTo != nil {
		if err := s.ensureUserExists(*input.AssignedTo); err != nil {
			return nil, err
		}
	}

	if input.DueDate != nil {
		now := time.Now()
		startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if input.DueDate.Before(startOfToday) {
			return nil, ErrDueDateInPast
		}
	}

	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskPriority(input.Priority) {
		return nil, ErrInvalidTaskPriority
	}
	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(input.Status) {
		return nil, ErrInvalidTaskStatus
	}

	task := &models.Task{
		Title:       title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		ProjectID:   input.ProjectID,
		AssignedTo:  input.AssignedTo,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.recorder.EntityCreated(actor, task)

	return s.taskRepo.FindByID(task.ID, "Project", "AssignedUser", "Creator")
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Project", "AssignedUser", "Creator")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// ListTasks returns a paginated page of tasks
func (s *TaskService) ListTasks(page, pageSize int) ([]models.Task, int64, error) {
	tasks, total, err := s.taskRepo.List(repository.TaskFilter{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// UpdateTask updates an existing task and records the change set
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput, actor audit.Actor) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	oldSnapshot := task.Snapshot()

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTaskTitleRequired
		}
		if len(title) > maxNameLength {
			return nil, ErrTaskTitleTooLong
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidTaskPriority(*input.Priority) {
			return nil, ErrInvalidTaskPriority
		}
		task.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidTaskStatus(*input.Status) {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ProjectID != nil {
		if _, err := s.projectRepo.FindByID(*input.ProjectID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to verify project: %w", err)
		}
		task.ProjectID = *input.ProjectID
	}
	if input.ClearAssignee {
		task.AssignedTo = nil
	} else if input.AssignedTo != nil {
		if err := s.ensureUserExists(*input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedTo = input.AssignedTo
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.recorder.EntityUpdated(actor, task, oldSnapshot)

	return s.taskRepo.FindByID(task.ID, "Project", "AssignedUser", "Creator")
}

// DeleteTask deletes a task and records the deletion
func (s *TaskService) DeleteTask(taskID uint64, actor audit.Actor) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.recorder.EntityDeleted(actor, task)

	return nil
}

// AssignTask assigns a task to a user, audited like any other update
func (s *TaskService) AssignTask(taskID, userID uint64, actor audit.Actor) (*models.Task, error) {
	return s.UpdateTask(taskID, UpdateTaskInput{AssignedTo: &userID}, actor)
}

// UpdateTaskStatus changes a task's status. No transition graph is enforced;
// any status may move to any other.
func (s *TaskService) UpdateTaskStatus(taskID uint64, status models.TaskStatus, actor audit.Actor) (*models.Task, error) {
	return s.UpdateTask(taskID, UpdateTaskInput{Status: &status}, actor)
}

// TasksByProject returns all tasks belonging to a project
func (s *TaskService) TasksByProject(projectID uint64) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{ProjectID: &projectID})
}

// TasksAssignedToUser returns all tasks assigned to a user
func (s *TaskService) TasksAssignedToUser(userID uint64) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{AssignedTo: &userID})
}

// PendingTasks returns all tasks with status pending
func (s *TaskService) PendingTasks() ([]models.Task, error) {
	status := models.TaskStatusPending
	return s.listTasks(repository.TaskFilter{Status: &status})
}

// HighPriorityTasks returns tasks whose priority is high or urgent
func (s *TaskService) HighPriorityTasks() ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{HighPriority: true})
}

// TasksByStatus returns all tasks with the given status
func (s *TaskService) TasksByStatus(status models.TaskStatus) ([]models.Task, error) {
	if !models.ValidTaskStatus(status) {
		return nil, ErrInvalidTaskStatus
	}
	return s.listTasks(repository.TaskFilter{Status: &status})
}

// SearchTasks returns tasks whose title contains the given text
func (s *TaskService) SearchTasks(title string) ([]models.Task, error) {
	return s.listTasks(repository.TaskFilter{TitleContains: title})
}

func (s *TaskService) listTasks(filter repository.TaskFilter) ([]models.Task, error) {
	tasks, _, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) ensureUserExists(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotFound
		}
		return fmt.Errorf("failed to verify user: %w", err)
	}
	return nil
}
