package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
)

const paramKeyPrefix = "param:"

// RequireIDParams parses the named path parameters as positive integer ids and
// rejects the request when any is malformed. Handlers read them with IDParam.
// Ownership is checked by the services, which answer 404 for rows the user
// cannot see.
func RequireIDParams(names ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, name := range names {
			id, err := strconv.ParseUint(c.Param(name), 10, 64)
			if err != nil || id == 0 {
				apierrors.BadRequest(c, "Invalid "+name)
				c.Abort()
				return
			}
			c.Set(paramKeyPrefix+name, id)
		}
		c.Next()
	}
}

// IDParam returns a path id parsed by RequireIDParams.
func IDParam(c *gin.Context, name string) uint64 {
	id, _ := c.Get(paramKeyPrefix + name)
	v, _ := id.(uint64)
	return v
}
