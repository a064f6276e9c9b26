package middleware

import (
	"net/http"
	"strings"

	"hotel-manager/services"
	"hotel-manager/utils"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// Authenticate resolves the bearer token into a services.Actor stored on the context.
func Authenticate(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "missing bearer token")
			c.Abort()
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")))
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequirePermission runs the authorizer before the handler; 403 on refusal.
func RequirePermission(authz services.Authorizer, perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			utils.JSONError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if err := authz.Authorize(actor, perm); err != nil {
			utils.JSONError(c, http.StatusForbidden, err.Error())
			c.Abort()
			return
		}
		c.Next()
	}
}

func CurrentActor(c *gin.Context) (services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// MustActor is for handlers mounted behind Authenticate.
func MustActor(c *gin.Context) services.Actor {
	actor, _ := CurrentActor(c)
	return actor
}
