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
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectNameRequired  = errors.New("project name is required")
	ErrProjectNameTooLong   = errors.New("project name cannot exceed 255 characters")
	ErrStartDateRequired    = errors.New("start date is required")
	ErrEndDateBeforeStart   = errors.New("end date must be on or after the start date")
	ErrInvalidProjectStatus = errors.New("invalid project status")
)

const maxNameLength = 255

// ProjectService handles project business logic
type ProjectService struct {
	projectRepo repository.ProjectRepository
	recorder    *audit.Recorder
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, recorder *audit.Recorder) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		recorder:    recorder,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
	Status      models.ProjectStatus
	CreatedBy   uint64
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Name         *string
	Description  *string
	StartDate    *time.Time
	EndDate      *time.Time
	ClearEndDate bool
	Status       *models.ProjectStatus
}

// CreateProject creates a new project. The creator is stamped from the acting
// identity and never changes afterwards.
func (s *ProjectService) CreateProject(input CreateProjectInput, actor audit.Actor) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrProjectNameRequired
	}
	if len(name) > maxNameLength {
		return nil, ErrProjectNameTooLong
	}
	if input.StartDate.IsZero() {
		return nil, ErrStartDateRequired
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, ErrEndDateBeforeStart
	}

	if input.Status == "" {
		input.Status = models.ProjectStatusActive
	}
	if !models.ValidProjectStatus(input.Status) {
		return nil, ErrInvalidProjectStatus
	}

	project := &models.Project{
		Name:        name,
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		Status:      input.Status,
		CreatedBy:   input.CreatedBy,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	s.recorder.EntityCreated(actor, project)

	return s.projectRepo.FindByID(project.ID, "Creator")
}

// GetProject returns a project with related data
func (s *ProjectService) GetProject(projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID, "Creator", "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	return project, nil
}

// ListProjects returns a paginated page of projects
func (s *ProjectService) ListProjects(page, pageSize int) ([]models.Project, int64, error) {
	projects, total, err := s.projectRepo.List(repository.ProjectFilter{
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// UpdateProject updates an existing project and records the change set
func (s *ProjectService) UpdateProject(projectID uint64, input UpdateProjectInput, actor audit.Actor) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	oldSnapshot := project.Snapshot()

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrProjectNameRequired
		}
		if len(name) > maxNameLength {
			return nil, ErrProjectNameTooLong
		}
		project.Name = name
	}
	if input.Description != nil {
		project.Description = *input.Description
	}
	if input.StartDate != nil {
		project.StartDate = *input.StartDate
	}
	if input.ClearEndDate {
		project.EndDate = nil
	} else if input.EndDate != nil {
		project.EndDate = input.EndDate
	}
	if input.Status != nil {
		if !models.ValidProjectStatus(*input.Status) {
			return nil, ErrInvalidProjectStatus
		}
		project.Status = *input.Status
	}

	if project.EndDate != nil && project.EndDate.Before(project.StartDate) {
		return nil, ErrEndDateBeforeStart
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	s.recorder.EntityUpdated(actor, project, oldSnapshot)

	return s.projectRepo.FindByID(project.ID, "Creator")
}

// DeleteProject deletes a project and cascades to its tasks. Every removed
// entity gets its own "deleted" audit entry.
func (s *ProjectService) DeleteProject(projectID uint64, actor audit.Actor) error {
	project, err := s.projectRepo.FindByID(projectID, "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if err := s.projectRepo.DeleteWithTasks(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	for i := range project.Tasks {
		s.recorder.EntityDeleted(actor, &project.Tasks[i])
	}
	s.recorder.EntityDeleted(actor, project)

	return nil
}

// ActiveProjects returns all projects with status active
func (s *ProjectService) ActiveProjects() ([]models.Project, error) {
	return s.projectsByStatus(models.ProjectStatusActive)
}

// CompletedProjects returns all projects with status completed
func (s *ProjectService) CompletedProjects() ([]models.Project, error) {
	return s.projectsByStatus(models.ProjectStatusCompleted)
}

// ProjectsByStatus returns all projects with the given status
func (s *ProjectService) ProjectsByStatus(status models.ProjectStatus) ([]models.Project, error) {
	if !models.ValidProjectStatus(status) {
		return nil, ErrInvalidProjectStatus
	}
	return s.projectsByStatus(status)
}

// SearchProjects returns projects whose name contains the given text
func (s *ProjectService) SearchProjects(name string) ([]models.Project, error) {
	projects, _, err := s.projectRepo.List(repository.ProjectFilter{NameContains: name})
	if err != nil {
		return nil, fmt.Errorf("failed to search projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectService) projectsByStatus(status models.ProjectStatus) ([]models.Project, error) {
	projects, _, err := s.projectRepo.List(repository.ProjectFilter{Status: &status})
	if err != nil {
		return nil, fmt.Errorf("failed to list projects by status: %w", err)
	}
	return projects, nil
}
