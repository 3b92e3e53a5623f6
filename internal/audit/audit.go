// Package audit records immutable activity log entries for entity
// create/update/delete events. Any entity type can opt in by implementing
// Auditable; the recorder itself knows nothing about concrete entity types.
package audit

// Auditable is the capability an entity type implements to get an audit
// trail. Snapshot keys must match the entity's persisted column names.
type Auditable interface {
	// TypeTag is the stable type tag stored as loggable_type.
	TypeTag() string

	// AuditID is the entity's identifier, stored as loggable_id.
	AuditID() uint64

	// Label is the human-readable label used in entry descriptions.
	Label() string

	// Snapshot returns the entity's current persisted attributes.
	Snapshot() map[string]any
}

// Actor carries the identity and request metadata attributed to an audit
// entry. It is threaded explicitly into every mutation instead of being read
// from ambient globals; a zero Actor represents an unauthenticated system
// action outside any HTTP request.
type Actor struct {
	UserID    *uint64
	IPAddress string
	UserAgent string
}
