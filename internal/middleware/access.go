package middleware

import "github.com/gin-gonic/gin"

// Access bundles authentication, authorization and POST replay for route
// registration. A nil or disabled Access lets every request through.
type Access struct {
	Enabled bool
	Secret  string
	RBAC    RBACService
	// Replay runs after Authenticate so the stored response is keyed by caller.
	Replay gin.HandlerFunc
}

func (a *Access) Authenticate() gin.HandlerFunc {
	if a == nil || !a.Enabled {
		return passThrough
	}
	return AuthMiddleware(a.Secret)
}

func (a *Access) Authorize(resource, action string) gin.HandlerFunc {
	if a == nil || !a.Enabled || a.RBAC == nil {
		return passThrough
	}
	return RBACAuthorize(a.RBAC, resource, action)
}

// Idempotent returns the replay middleware, or a no-op when none is configured.
func (a *Access) Idempotent() gin.HandlerFunc {
	if a == nil || a.Replay == nil {
		return passThrough
	}
	return a.Replay
}

func passThrough(c *gin.Context) {
	c.Next()
}
