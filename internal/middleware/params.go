package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/goal-boards-api/internal/errors"
)

const contextKeyObjectID = "object_id"

// RequireIDParam parses the :id path parameter. Access to the object itself
// is checked by the services, which answer 404 for objects the caller cannot
// see.
func RequireIDParam(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			apierrors.BadRequest(c, "Invalid "+resource+" ID")
			c.Abort()
			return
		}

		c.Set(contextKeyObjectID, id)
		c.Next()
	}
}

// GetObjectID returns the id parsed by RequireIDParam.
func GetObjectID(c *gin.Context) (uint64, bool) {
	id, ok := c.Get(contextKeyObjectID)
	if !ok {
		return 0, false
	}
	v, ok := id.(uint64)
	return v, ok
}
