package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow/project-management-api/internal/audit"
	"github.com/taskflow/project-management-api/internal/middleware"
)

// actorFrom builds the audit actor for the current request. All fields are
// best-effort: an unauthenticated caller yields a nil user id.
func actorFrom(c *gin.Context) audit.Actor {
	actor := audit.Actor{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if userID, ok := middleware.GetUserID(c); ok {
		actor.UserID = &userID
	}
	return actor
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// parseDate accepts plain dates and RFC3339 timestamps.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
