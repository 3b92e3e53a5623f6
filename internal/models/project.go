package models

import (
	"strconv"
	"time"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusOnHold    ProjectStatus = "on_hold"
	ProjectStatusCancelled ProjectStatus = "cancelled"
)

type Project struct {
	ID          uint64        `gorm:"primarykey" json:"id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	StartDate   time.Time     `gorm:"type:date;not null" json:"start_date"`
	EndDate     *time.Time    `gorm:"type:date" json:"end_date"`
	Status      ProjectStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedBy   uint64        `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// Relations
	Creator User   `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}

// ValidProjectStatus reports whether the given value is a known project status.
func ValidProjectStatus(status ProjectStatus) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusOnHold, ProjectStatusCancelled:
		return true
	}
	return false
}

// TypeTag identifies projects in activity log entries.
func (p *Project) TypeTag() string {
	return "Project"
}

// AuditID returns the project's identifier for activity log entries.
func (p *Project) AuditID() uint64 {
	return p.ID
}

// Label returns the display label used in activity log descriptions.
func (p *Project) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return strconv.FormatUint(p.ID, 10)
}

// Snapshot returns the project's persisted attributes keyed by column name.
func (p *Project) Snapshot() map[string]any {
	return map[string]any{
		"id":          p.ID,
		"name":        p.Name,
		"description": p.Description,
		"start_date":  p.StartDate,
		"end_date":    p.EndDate,
		"status":      p.Status,
		"created_by":  p.CreatedBy,
		"created_at":  p.CreatedAt,
		"updated_at":  p.UpdatedAt,
	}
}
