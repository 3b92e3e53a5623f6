package constants

// Session
const (
	SessionCookieName = "pm_session"
	ContextKeyUserID  = "user_id"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 15
	MaxPageSize     = 100
)

// Auth
const (
	MinPasswordLength = 8
)

// Activity log defaults
const (
	// DefaultActivityLogDays is the recency window applied to activity log
	// listings when the caller does not supply one.
	DefaultActivityLogDays = 30

	// DefaultRecentActivityLimit caps the shortcut "recent" listing.
	DefaultRecentActivityLimit = 10
)
