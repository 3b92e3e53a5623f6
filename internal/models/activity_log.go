package models

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityEventType string

const (
	EventCreated ActivityEventType = "created"
	EventUpdated ActivityEventType = "updated"
	EventDeleted ActivityEventType = "deleted"
)

// ActivityLog is an immutable audit record of a single create/update/delete
// event against a tracked entity. Rows are append-only; nothing in the system
// updates or deletes them.
type ActivityLog struct {
	ID           uint64            `gorm:"primarykey" json:"id"`
	EventType    ActivityEventType `gorm:"type:varchar(20);not null;index" json:"event_type"`
	LoggableType string            `gorm:"type:varchar(255);not null;index:idx_activity_logs_loggable,priority:1" json:"loggable_type"`
	LoggableID   uint64            `gorm:"not null;index:idx_activity_logs_loggable,priority:2" json:"loggable_id"`
	Description  string            `gorm:"type:text;not null" json:"description"`
	OldValues    datatypes.JSONMap `gorm:"type:json" json:"old_values,omitempty"`
	NewValues    datatypes.JSONMap `gorm:"type:json" json:"new_values,omitempty"`
	UserID       *uint64           `gorm:"index" json:"user_id"`
	IPAddress    string            `gorm:"type:varchar(45)" json:"ip_address,omitempty"`
	UserAgent    string            `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt    time.Time         `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// The referenced entity need not still exist; only the user reference is
	// a real foreign key, nulled when the user is removed.
	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"user,omitempty"`
}

// ValidActivityEventType reports whether the given value is a known event type.
func ValidActivityEventType(eventType ActivityEventType) bool {
	switch eventType {
	case EventCreated, EventUpdated, EventDeleted:
		return true
	}
	return false
}
