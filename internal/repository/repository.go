package repository

import (
	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/database"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/utils"
)

// paginate adapts a filter's page/size pair to the shared pagination scope.
func paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return database.Paginate(utils.PaginationParams{
		Page:    page,
		PerPage: pageSize,
		Offset:  (page - 1) * pageSize,
	})
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Project, error)

	// List retrieves projects with filtering and pagination
	List(filter ProjectFilter) ([]models.Project, int64, error)

	// Update updates a project
	Update(project *models.Project) error

	// DeleteWithTasks deletes a project and its tasks in one transaction
	DeleteWithTasks(id uint64) error
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	Status       *models.ProjectStatus
	NameContains string
	Page         int
	PageSize     int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete deletes a task
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	HighPriority  bool
	ProjectID     *uint64
	AssignedTo    *uint64
	CreatedBy     *uint64
	TitleContains string
	Page          int
	PageSize      int
}

// ActivityLogRepository defines the interface for activity log data access.
// Entries are append-only: there is deliberately no update or delete.
type ActivityLogRepository interface {
	// Create appends a new activity log entry
	Create(entry *models.ActivityLog) error

	// FindByID finds an entry by ID with the acting user preloaded
	FindByID(id uint64) (*models.ActivityLog, error)

	// List retrieves entries with filtering and pagination, always ordered
	// by creation time descending
	List(filter ActivityLogFilter) ([]models.ActivityLog, int64, error)

	// Recent retrieves the most recent entries up to the given limit
	Recent(limit int) ([]models.ActivityLog, error)
}

// ActivityLogFilter holds filtering options for listing activity log entries
type ActivityLogFilter struct {
	EventType    *models.ActivityEventType
	UserID       *uint64
	LoggableType string
	LoggableID   *uint64
	// Days restricts entries to the last N days, lower bound inclusive.
	Days     *int
	Page     int
	PageSize int
}
