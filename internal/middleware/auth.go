package middleware

import (
	"math"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/goal-boards-api/internal/constants"
	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
)

// RequireAuth admits requests whose session names a user and puts that
// user's id on the gin context as a uint64. A session holding anything else
// under the user key is cleared before the 401 goes out.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyUserID)

		userID, ok := toUserID(raw)
		if !ok {
			if raw != nil {
				session.Clear()
				_ = session.Save()
			}
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID returns the id stored by RequireAuth.
func GetUserID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(v)
}

// toUserID accepts the integer shapes a session backend may decode a user id
// into. Zero and negative ids are rejected.
func toUserID(v any) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id != 0
	case uint:
		return uint64(id), id != 0
	case uint32:
		return uint64(id), id != 0
	case int64:
		return uint64(id), id > 0
	case int:
		return uint64(id), id > 0
	case int32:
		return uint64(id), id > 0
	case float64:
		// JSON-backed stores decode numbers as float64.
		if id <= 0 || id != math.Trunc(id) || id > math.MaxUint64 {
			return 0, false
		}
		return uint64(id), true
	default:
		return 0, false
	}
}
