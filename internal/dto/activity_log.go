package dto

import (
	"time"

	"github.com/taskflow/project-management-api/internal/models"
)

// ActivityLogDTO represents an activity log entry in API responses
type ActivityLogDTO struct {
	ID           uint64                   `json:"id"`
	EventType    models.ActivityEventType `json:"event_type"`
	LoggableType string                   `json:"loggable_type"`
	LoggableID   uint64                   `json:"loggable_id"`
	Description  string                   `json:"description"`
	OldValues    map[string]any           `json:"old_values,omitempty"`
	NewValues    map[string]any           `json:"new_values,omitempty"`
	UserID       *uint64                  `json:"user_id"`
	IPAddress    string                   `json:"ip_address,omitempty"`
	UserAgent    string                   `json:"user_agent,omitempty"`
	CreatedAt    time.Time                `json:"created_at"`
	User         *UserDTO                 `json:"user,omitempty"`
	// Subject is the referenced entity when it still exists; absent when
	// the entry has outlived it.
	Subject any `json:"subject,omitempty"`
}

// ActivityLogListResponse represents a paginated list of activity log entries
type ActivityLogListResponse struct {
	Logs       []ActivityLogDTO `json:"logs"`
	Page       int              `json:"page"`
	PerPage    int              `json:"per_page"`
	TotalCount int64            `json:"total_count"`
	TotalPages int              `json:"total_pages"`
}

// ToActivityLogDTO converts an ActivityLog model to ActivityLogDTO
func ToActivityLogDTO(entry models.ActivityLog) ActivityLogDTO {
	dto := ActivityLogDTO{
		ID:           entry.ID,
		EventType:    entry.EventType,
		LoggableType: entry.LoggableType,
		LoggableID:   entry.LoggableID,
		Description:  entry.Description,
		OldValues:    entry.OldValues,
		NewValues:    entry.NewValues,
		UserID:       entry.UserID,
		IPAddress:    entry.IPAddress,
		UserAgent:    entry.UserAgent,
		CreatedAt:    entry.CreatedAt,
	}

	// Include acting user if preloaded and not since removed
	if entry.User != nil && entry.User.ID != 0 {
		user := ToUserDTO(*entry.User)
		dto.User = &user
	}

	return dto
}

// ToActivityLogDTOs converts a slice of entries
func ToActivityLogDTOs(entries []models.ActivityLog) []ActivityLogDTO {
	items := make([]ActivityLogDTO, len(entries))
	for i, entry := range entries {
		items[i] = ToActivityLogDTO(entry)
	}
	return items
}

// ToActivityLogListResponse converts entries to ActivityLogListResponse
func ToActivityLogListResponse(entries []models.ActivityLog, page, perPage int, totalCount int64) ActivityLogListResponse {
	return ActivityLogListResponse{
		Logs:       ToActivityLogDTOs(entries),
		Page:       page,
		PerPage:    perPage,
		TotalCount: totalCount,
		TotalPages: totalPages(totalCount, perPage),
	}
}
