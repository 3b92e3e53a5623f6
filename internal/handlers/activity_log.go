package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/project-management-api/internal/dto"
	apierrors "github.com/taskflow/project-management-api/internal/errors"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/services"
	"github.com/taskflow/project-management-api/internal/utils"
)

// ActivityLogHandler coordinates activity log HTTP handlers.
type ActivityLogHandler struct {
	activityService *services.ActivityLogService
}

// NewActivityLogHandler creates a new ActivityLogHandler.
func NewActivityLogHandler(activityService *services.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{
		activityService: activityService,
	}
}

// ListActivityLogs returns a filtered, paginated listing of audit entries,
// most recent first.
func (h *ActivityLogHandler) ListActivityLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	input := services.ListActivityLogsInput{
		Page:     params.Page,
		PageSize: params.PerPage,
	}

	if eventTypeStr := c.Query("event_type"); eventTypeStr != "" {
		eventType := models.ActivityEventType(eventTypeStr)
		input.EventType = &eventType
	}
	if userIDStr := c.Query("user_id"); userIDStr != "" {
		userID, err := strconv.ParseUint(userIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid user_id")
			return
		}
		input.UserID = &userID
	}
	if daysStr := c.Query("days"); daysStr != "" {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid days")
			return
		}
		input.Days = days
	}

	entries, total, err := h.activityService.ListActivityLogs(input)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEventType) {
			apierrors.BadRequest(c, "Invalid event_type")
			return
		}
		apierrors.InternalError(c, "Failed to fetch activity logs")
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityLogListResponse(entries, params.Page, params.PerPage, total))
}

// RecentActivityLogs returns the most recent entries.
func (h *ActivityLogHandler) RecentActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))

	entries, err := h.activityService.RecentActivityLogs(limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity logs")
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": dto.ToActivityLogDTOs(entries)})
}

// ActivityLogsByUser returns the entries attributed to one user.
func (h *ActivityLogHandler) ActivityLogsByUser(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	params := utils.GetPaginationParams(c)

	entries, total, err := h.activityService.ActivityLogsByUser(userID, params.Page, params.PerPage)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity logs")
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityLogListResponse(entries, params.Page, params.PerPage, total))
}

// ActivityLogsByEvent returns the entries of one event type.
func (h *ActivityLogHandler) ActivityLogsByEvent(c *gin.Context) {
	eventType := models.ActivityEventType(c.Param("eventType"))

	params := utils.GetPaginationParams(c)

	entries, total, err := h.activityService.ActivityLogsByEvent(eventType, params.Page, params.PerPage)
	if err != nil {
		if errors.Is(err, services.ErrInvalidEventType) {
			apierrors.BadRequest(c, "Invalid event type")
			return
		}
		apierrors.InternalError(c, "Failed to fetch activity logs")
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityLogListResponse(entries, params.Page, params.PerPage, total))
}

// GetActivityLog returns one entry, including its subject when the
// referenced entity still exists.
func (h *ActivityLogHandler) GetActivityLog(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		apierrors.BadRequest(c, "Invalid activity log ID")
		return
	}

	entry, subject, err := h.activityService.GetActivityLog(id)
	if err != nil {
		if errors.Is(err, services.ErrActivityLogNotFound) {
			apierrors.NotFound(c, "Activity log entry not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch activity log")
		return
	}

	logDTO := dto.ToActivityLogDTO(*entry)
	if subject != nil {
		logDTO.Subject = subject
	}

	c.JSON(http.StatusOK, logDTO)
}
