package audit

import (
	"errors"

	"gorm.io/gorm"
)

// ErrUnknownTypeTag is returned when resolving a type tag no lookup was
// registered for.
var ErrUnknownTypeTag = errors.New("audit: unknown loggable type tag")

// LookupFunc loads the entity with the given id, returning
// gorm.ErrRecordNotFound when it no longer exists.
type LookupFunc func(db *gorm.DB, id uint64) (Auditable, error)

// Registry resolves (type tag, id) references from activity log entries back
// to live entities. It replaces a real polymorphic foreign key: entries hold
// loose references, so a resolved entity may legitimately be gone.
type Registry struct {
	lookups map[string]LookupFunc
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		lookups: make(map[string]LookupFunc),
	}
}

// Register adds a lookup for the given type tag, replacing any previous one.
func (r *Registry) Register(typeTag string, lookup LookupFunc) {
	r.lookups[typeTag] = lookup
}

// Resolve loads the entity referenced by (typeTag, id). Returns
// ErrUnknownTypeTag for unregistered tags and gorm.ErrRecordNotFound when the
// entity has since been deleted.
func (r *Registry) Resolve(db *gorm.DB, typeTag string, id uint64) (Auditable, error) {
	lookup, ok := r.lookups[typeTag]
	if !ok {
		return nil, ErrUnknownTypeTag
	}
	return lookup(db, id)
}
