package auth

import "github.com/gin-gonic/gin"

const principalKey = "auth_principal"

// SetPrincipal stores the resolved account for downstream handlers.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the account stored by the auth middleware.
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// CurrentPrincipal is PrincipalFrom that reports a missing principal as an error.
func CurrentPrincipal(c *gin.Context) (Principal, error) {
	p, ok := PrincipalFrom(c)
	if !ok {
		return Principal{}, ErrNoToken
	}
	return p, nil
}
