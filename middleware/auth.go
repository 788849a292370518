package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ayushmanmishra18/storefront-api/auth"
)

const tokenCookie = "token"

// ValidateToken resolves the caller from the bearer token (or the token
// cookie when no Authorization header is sent) and stores the principal.
func ValidateToken(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := gate.Resolve(c.Request.Context(), extractToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		auth.SetPrincipal(c, principal)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" {
		token, _ := c.Cookie(tokenCookie)
		return token
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAdmin must run after ValidateToken.
func RequireAdmin(c *gin.Context) {
	requireRole(c, auth.RequireAdmin)
}

// RequireUser must run after ValidateToken.
func RequireUser(c *gin.Context) {
	requireRole(c, auth.RequireUser)
}

func requireRole(c *gin.Context, check func(auth.Principal) error) {
	principal, err := auth.CurrentPrincipal(c)
	if err == nil {
		err = check(principal)
	}
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	c.Next()
}
