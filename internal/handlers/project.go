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

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns a paginated listing of projects.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	projects, total, err := h.projectService.ListProjects(params.Page, params.PerPage)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, params.Page, params.PerPage, total))
}

// CreateProject creates a new project owned by the current user.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
		StartDate   string `json:"start_date" binding:"required"`
		EndDate     string `json:"end_date"`
		Status      string `json:"status" binding:"omitempty,oneof=active completed on_hold cancelled"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		apierrors.BadRequest(c, "Invalid start_date")
		return
	}

	input := services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		Status:      models.ProjectStatus(req.Status),
		CreatedBy:   userID,
	}
	if req.EndDate != "" {
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			apierrors.BadRequest(c, "Invalid end_date")
			return
		}
		input.EndDate = &endDate
	}

	project, err := h.projectService.CreateProject(input, actorFrom(c))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// GetProject returns a specific project with its creator and tasks.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	project, err := h.projectService.GetProject(projectID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject updates an existing project.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateProjectInput
	if name, ok := rawReq["name"].(string); ok {
		input.Name = &name
	}
	if description, ok := rawReq["description"].(string); ok {
		input.Description = &description
	}
	if startDateStr, ok := rawReq["start_date"].(string); ok {
		startDate, err := parseDate(startDateStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid start_date")
			return
		}
		input.StartDate = &startDate
	}
	if _, ok := rawReq["end_date"]; ok {
		if rawReq["end_date"] == nil {
			input.ClearEndDate = true
		} else if endDateStr, ok := rawReq["end_date"].(string); ok {
			endDate, err := parseDate(endDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid end_date")
				return
			}
			input.EndDate = &endDate
		}
	}
	if statusStr, ok := rawReq["status"].(string); ok {
		status := models.ProjectStatus(statusStr)
		input.Status = &status
	}

	project, err := h.projectService.UpdateProject(projectID, input, actorFrom(c))
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.DeleteProject(projectID, actorFrom(c)); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// ActiveProjects returns all active projects.
func (h *ProjectHandler) ActiveProjects(c *gin.Context) {
	projects, err := h.projectService.ActiveProjects()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// CompletedProjects returns all completed projects.
func (h *ProjectHandler) CompletedProjects(c *gin.Context) {
	projects, err := h.projectService.CompletedProjects()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

// SearchProjects returns projects whose name contains the query text.
func (h *ProjectHandler) SearchProjects(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		apierrors.BadRequest(c, "Query parameter 'name' is required")
		return
	}

	projects, err := h.projectService.SearchProjects(name)
	if err != nil {
		apierrors.InternalError(c, "Failed to search projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": dto.ToProjectDTOs(projects)})
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrProjectNameRequired),
		errors.Is(err, services.ErrProjectNameTooLong),
		errors.Is(err, services.ErrStartDateRequired),
		errors.Is(err, services.ErrEndDateBeforeStart),
		errors.Is(err, services.ErrInvalidProjectStatus):
		apierrors.UnprocessableEntity(c, "Validation failed", gin.H{"error": err.Error()})
	default:
		apierrors.InternalError(c, "")
	}
}
