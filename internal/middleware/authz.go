package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"irisai/internal/authz"
)

// roleFromCtx returns the role id AuthMiddleware stored on the request.
func roleFromCtx(c *gin.Context) (int, bool) {
	v, ok := c.Get(CtxRoleID)
	if !ok {
		return 0, false
	}
	roleID, ok := v.(int)
	return roleID, ok
}

// RequireRoles lets the request through only when the caller's role is one of
// allowed. It must run after AuthMiddleware; a request without a role is
// treated as unauthenticated.
func RequireRoles(allowed ...int) gin.HandlerFunc {
	permitted := make(map[int]bool, len(allowed))
	for _, r := range allowed {
		permitted[r] = true
	}
	return func(c *gin.Context) {
		roleID, ok := roleFromCtx(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no role in context"})
			return
		}
		if !permitted[roleID] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// ReadOnlyGuard rejects unsafe methods for the audit role.
func ReadOnlyGuard() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, _ := roleFromCtx(c)
		if !authz.IsReadOnly(roleID) {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "read-only role"})
		}
	}
}
