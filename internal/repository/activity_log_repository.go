package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/taskflow/project-management-api/internal/models"
)

// GormActivityLogRepository is a GORM implementation of ActivityLogRepository
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository creates a new ActivityLogRepository
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Create appends a new activity log entry
func (r *GormActivityLogRepository) Create(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

// FindByID finds an entry by ID with the acting user preloaded
func (r *GormActivityLogRepository) FindByID(id uint64) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	if err := r.db.Preload("User").First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// List retrieves entries with filtering and pagination. Ordering by creation
// time descending is a contract callers rely on, not a default; the id
// tiebreak keeps the order stable for entries sharing a timestamp.
func (r *GormActivityLogRepository) List(filter ActivityLogFilter) ([]models.ActivityLog, int64, error) {
	var entries []models.ActivityLog

	query := r.db.Model(&models.ActivityLog{})

	if filter.EventType != nil {
		query = query.Where("activity_logs.event_type = ?", *filter.EventType)
	}
	if filter.UserID != nil {
		query = query.Where("activity_logs.user_id = ?", *filter.UserID)
	}
	if filter.LoggableType != "" {
		query = query.Where("activity_logs.loggable_type = ?", filter.LoggableType)
	}
	if filter.LoggableID != nil {
		query = query.Where("activity_logs.loggable_id = ?", *filter.LoggableID)
	}
	if filter.Days != nil {
		since := time.Now().AddDate(0, 0, -*filter.Days)
		query = query.Where("activity_logs.created_at >= ?", since)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("activity_logs.created_at DESC, activity_logs.id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(paginate(filter.Page, filter.PageSize))
	}

	if err := listQuery.Preload("User").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// Recent retrieves the most recent entries up to the given limit
func (r *GormActivityLogRepository) Recent(limit int) ([]models.ActivityLog, error) {
	var entries []models.ActivityLog
	err := r.db.
		Preload("User").
		Order("activity_logs.created_at DESC, activity_logs.id DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
