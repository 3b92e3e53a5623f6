package models

import (
	"strconv"
	"time"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

type Task struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Title       string       `gorm:"type:varchar(255);not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'medium';index" json:"priority"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	DueDate     *time.Time   `gorm:"type:date" json:"due_date"`
	ProjectID   uint64       `gorm:"not null;index" json:"project_id"`
	AssignedTo  *uint64      `gorm:"index" json:"assigned_to"`
	CreatedBy   uint64       `gorm:"not null;index" json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Project      Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	AssignedUser *User   `gorm:"foreignKey:AssignedTo" json:"assigned_user,omitempty"`
	Creator      User    `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
}

// ValidTaskPriority reports whether the given value is a known task priority.
func ValidTaskPriority(priority TaskPriority) bool {
	switch priority {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityUrgent:
		return true
	}
	return false
}

// ValidTaskStatus reports whether the given value is a known task status.
func ValidTaskStatus(status TaskStatus) bool {
	switch status {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// TypeTag identifies tasks in activity log entries.
func (t *Task) TypeTag() string {
	return "Task"
}

// AuditID returns the task's identifier for activity log entries.
func (t *Task) AuditID() uint64 {
	return t.ID
}

// Label returns the display label used in activity log descriptions.
func (t *Task) Label() string {
	if t.Title != "" {
		return t.Title
	}
	return strconv.FormatUint(t.ID, 10)
}

// Snapshot returns the task's persisted attributes keyed by column name.
func (t *Task) Snapshot() map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"priority":    t.Priority,
		"status":      t.Status,
		"due_date":    t.DueDate,
		"project_id":  t.ProjectID,
		"assigned_to": t.AssignedTo,
		"created_by":  t.CreatedBy,
		"created_at":  t.CreatedAt,
		"updated_at":  t.UpdatedAt,
	}
}
