package audit

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/taskflow/project-management-api/internal/models"
)

// EntryWriter persists activity log entries. Satisfied by the activity log
// repository; kept narrow so the recorder stays decoupled from the query side.
type EntryWriter interface {
	Create(entry *models.ActivityLog) error
}

// Recorder builds and persists one activity log entry per observed entity
// lifecycle event. Writes are best-effort: a failed audit write is logged and
// swallowed, never failing or rolling back the mutation that triggered it.
type Recorder struct {
	entries EntryWriter
	logger  *zap.Logger
}

// NewRecorder creates a Recorder writing through the given EntryWriter.
func NewRecorder(entries EntryWriter, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		entries: entries,
		logger:  logger,
	}
}

// EntityCreated records a "created" entry for the entity. Must be called
// after the entity's identity has been assigned.
func (r *Recorder) EntityCreated(actor Actor, entity Auditable) {
	description := fmt.Sprintf("Created %s: %s", entity.TypeTag(), entity.Label())
	r.record(models.EventCreated, actor, entity, description, nil, nil)
}

// EntityUpdated records an "updated" entry carrying the entity's full
// pre-update snapshot as old values and the changed attributes as new values.
// When nothing but the update timestamp changed, no entry is written.
func (r *Recorder) EntityUpdated(actor Actor, entity Auditable, oldSnapshot map[string]any) {
	changes := Changes(oldSnapshot, entity.Snapshot())
	if changes == nil {
		return
	}

	description := fmt.Sprintf("Updated %s: %s", entity.TypeTag(), entity.Label())
	r.record(models.EventUpdated, actor, entity, description, oldSnapshot, changes)
}

// EntityDeleted records a "deleted" entry for the entity. Must be called
// after the entity has been removed from storage.
func (r *Recorder) EntityDeleted(actor Actor, entity Auditable) {
	description := fmt.Sprintf("Deleted %s: %s", entity.TypeTag(), entity.Label())
	r.record(models.EventDeleted, actor, entity, description, nil, nil)
}

func (r *Recorder) record(eventType models.ActivityEventType, actor Actor, entity Auditable, description string, oldValues, newValues map[string]any) {
	entry := &models.ActivityLog{
		EventType:    eventType,
		LoggableType: entity.TypeTag(),
		LoggableID:   entity.AuditID(),
		Description:  description,
		OldValues:    datatypes.JSONMap(oldValues),
		NewValues:    datatypes.JSONMap(newValues),
		UserID:       actor.UserID,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
	}

	if err := r.entries.Create(entry); err != nil {
		r.logger.Error("failed to persist activity log entry",
			zap.String("event_type", string(eventType)),
			zap.String("loggable_type", entry.LoggableType),
			zap.Uint64("loggable_id", entry.LoggableID),
			zap.Error(err),
		)
	}
}
