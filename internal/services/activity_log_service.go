package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/constants"
	"github.com/taskflow/project-management-api/internal/models"
	"github.com/taskflow/project-management-api/internal/repository"
)

var (
	ErrActivityLogNotFound = errors.New("activity log entry not found")
	ErrInvalidEventType    = errors.New("invalid event type")
)

// ActivityLogService exposes the read side of the audit trail. Writes go
// through the audit recorder only; this service never creates entries.
type ActivityLogService struct {
	logRepo  repository.ActivityLogRepository
	registry *audit.Registry
	db       *gorm.DB
}

// NewActivityLogService creates a new ActivityLogService
func NewActivityLogService(logRepo repository.ActivityLogRepository, registry *audit.Registry, db *gorm.DB) *ActivityLogService {
	return &ActivityLogService{
		logRepo:  logRepo,
		registry: registry,
		db:       db,
	}
}

// ListActivityLogsInput represents filters for listing activity log entries
type ListActivityLogsInput struct {
	EventType *models.ActivityEventType
	UserID    *uint64
	// Days restricts the listing to entries of the last N days; zero or
	// negative falls back to the default window.
	Days     int
	Page     int
	PageSize int
}

// ListActivityLogs returns a filtered, paginated listing, most recent first
func (s *ActivityLogService) ListActivityLogs(input ListActivityLogsInput) ([]models.ActivityLog, int64, error) {
	if input.EventType != nil && !models.ValidActivityEventType(*input.EventType) {
		return nil, 0, ErrInvalidEventType
	}

	days := input.Days
	if days <= 0 {
		days = constants.DefaultActivityLogDays
	}

	entries, total, err := s.logRepo.List(repository.ActivityLogFilter{
		EventType: input.EventType,
		UserID:    input.UserID,
		Days:      &days,
		Page:      input.Page,
		PageSize:  input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs: %w", err)
	}

	return entries, total, nil
}

// RecentActivityLogs returns the most recent entries up to limit
func (s *ActivityLogService) RecentActivityLogs(limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = constants.DefaultRecentActivityLimit
	}

	entries, err := s.logRepo.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent activity logs: %w", err)
	}

	return entries, nil
}

// ActivityLogsByUser returns the entries attributed to a user, paginated
func (s *ActivityLogService) ActivityLogsByUser(userID uint64, page, pageSize int) ([]models.ActivityLog, int64, error) {
	entries, total, err := s.logRepo.List(repository.ActivityLogFilter{
		UserID:   &userID,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs by user: %w", err)
	}

	return entries, total, nil
}

// ActivityLogsByEvent returns the entries of one event type, paginated
func (s *ActivityLogService) ActivityLogsByEvent(eventType models.ActivityEventType, page, pageSize int) ([]models.ActivityLog, int64, error) {
	if !models.ValidActivityEventType(eventType) {
		return nil, 0, ErrInvalidEventType
	}

	entries, total, err := s.logRepo.List(repository.ActivityLogFilter{
		EventType: &eventType,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity logs by event: %w", err)
	}

	return entries, total, nil
}

// GetActivityLog returns one entry plus its subject when the referenced
// entity still exists. A nil subject is normal: entries outlive deletions.
func (s *ActivityLogService) GetActivityLog(id uint64) (*models.ActivityLog, audit.Auditable, error) {
	entry, err := s.logRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrActivityLogNotFound
		}
		return nil, nil, fmt.Errorf("failed to find activity log: %w", err)
	}

	subject, err := s.registry.Resolve(s.db, entry.LoggableType, entry.LoggableID)
	if err != nil {
		// Deleted subjects and unregistered historic tags both resolve to
		// "no subject", not an error for the caller.
		subject = nil
	}

	return entry, subject, nil
}
